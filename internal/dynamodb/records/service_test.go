package records_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/dynamodb/records"
	"github.com/lineops/lineops/internal/dynamodb/token"
	"github.com/lineops/lineops/internal/test"
)

func TestRecordService(t *testing.T) {
	localServer := test.StartLocalServer(test.LOCAL_DDB_PORT+2, t)
	client, err := localServer.CreateLocalClient()
	if err != nil {
		t.Fatalf("Failed to create DDB client: %s", err)
	}
	tableName, err := test.CreateTable(client)
	if err != nil {
		t.Fatalf("Failed to create DDB table: %s", err)
	}
	service := records.NewRecordService(tableName, *client, token.NewSealed("test-secret"))
	ctx := context.TODO()
	tenantId := "acme"

	var recordIds []string
	for _, input := range []data.ListRecordInputDTO{
		{Name: aws.String("Dice onions"), Done: aws.Bool(true)},
		{Name: aws.String("Portion fish"), Done: aws.Bool(true)},
		{Name: aws.String("Make stock")},
	} {
		created, err := service.Create(tenantId, data.ListPrep, input)
		if err != nil {
			t.Fatalf("Failed to create record: %s", err)
		}
		if created.Done && created.DoneTime == nil {
			t.Fatalf("Completed record missing doneTime: %v", created)
		}
		recordIds = append(recordIds, created.SK)
	}
	// A full station load runs well past one storage batch, so push the
	// list over 25 records to exercise the chunked paths end to end.
	for i := 0; i < 27; i++ {
		created, err := service.Create(tenantId, data.ListPrep, data.ListRecordInputDTO{
			Name: aws.String(fmt.Sprintf("Par-cook station %d", i)),
			Done: aws.Bool(true),
		})
		if err != nil {
			t.Fatalf("Failed to create record: %s", err)
		}
		recordIds = append(recordIds, created.SK)
	}

	all, err := service.ListAll(ctx, tenantId, data.ListPrep)
	if err != nil {
		t.Fatalf("Failed to list records: %s", err)
	}
	if len(all) != 30 {
		t.Fatalf("Expected 30 records, got %d", len(all))
	}
	completed, err := service.ListCompleted(ctx, tenantId, data.ListPrep)
	if err != nil {
		t.Fatalf("Failed to list completed records: %s", err)
	}
	if len(completed) != 29 {
		t.Fatalf("Expected 29 completed records, got %d", len(completed))
	}

	completedIds := make([]string, len(completed))
	for i, record := range completed {
		completedIds[i] = record.SK
	}
	patched, err := service.BatchResetFlags(ctx, tenantId, data.ListPrep, completedIds)
	if err != nil {
		t.Fatalf("Failed to reset flags: %s", err)
	}
	if patched != 29 {
		t.Fatalf("Expected 29 patched records, got %d", patched)
	}
	completed, err = service.ListCompleted(ctx, tenantId, data.ListPrep)
	if err != nil {
		t.Fatalf("Failed to list completed records: %s", err)
	}
	if len(completed) != 0 {
		t.Fatalf("Expected no completed records after reset, got %d", len(completed))
	}
	for _, recordId := range completedIds {
		record, err := service.Get(tenantId, data.ListPrep, recordId)
		if err != nil {
			t.Fatalf("Failed to get record %s: %s", recordId, err)
		}
		if record.Done || record.DoneTime != nil {
			t.Fatalf("Flags not cleared on %s: %v", recordId, record)
		}
	}

	deleted, err := service.BatchDelete(ctx, tenantId, data.ListPrep, recordIds)
	if err != nil {
		t.Fatalf("Failed to batch delete: %s", err)
	}
	if deleted != 30 {
		t.Fatalf("Expected 30 deleted records, got %d", deleted)
	}
	all, err = service.ListAll(ctx, tenantId, data.ListPrep)
	if err != nil {
		t.Fatalf("Failed to list records: %s", err)
	}
	if len(all) != 0 {
		t.Fatalf("Expected empty list after purge, got %d", len(all))
	}

	noop, err := service.BatchDelete(ctx, tenantId, data.ListPrep, nil)
	if err != nil || noop != 0 {
		t.Fatalf("Empty batch delete should be a no-op: %d %s", noop, err)
	}
}
