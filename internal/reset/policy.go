package reset

import (
	"context"
	"fmt"
	"time"

	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/exceptions"
)

// Action is what the daily reset does to one list.
type Action int

const (
	// ActionPurgeAll deletes every record, completed or not.
	ActionPurgeAll Action = iota
	// ActionPurgeCompleted deletes only records with done == true.
	ActionPurgeCompleted
	// ActionResetFlags clears done and doneTime without deleting.
	ActionResetFlags
)

func (a Action) String() string {
	switch a {
	case ActionPurgeAll:
		return "purge-all"
	case ActionPurgeCompleted:
		return "purge-completed"
	case ActionResetFlags:
		return "reset-flags"
	}
	return "unknown"
}

type PolicyEntry struct {
	ListType data.ListType
	Action   Action
}

// ScheduledPolicies is the fixed table the daily job applies, in order.
// Not user configurable. Note the checklist is purged here while the
// client-side lazy path resets flags instead; the two behaviors evolved
// separately and both are kept (see LazySweeper).
func ScheduledPolicies() []PolicyEntry {
	return []PolicyEntry{
		{data.ListOrders, ActionPurgeAll},
		{data.ListPrep, ActionPurgeCompleted},
		{data.ListFridgeLog, ActionPurgeAll},
		{data.ListDeliveryLog, ActionPurgeAll},
		{data.ListChecklist, ActionPurgeCompleted},
	}
}

// ResetOutcome reports what one policy application touched.
type ResetOutcome struct {
	TenantId string
	ListType data.ListType
	Action   Action
	At       time.Time
	Matched  int
	Deleted  int
	Reset    int
}

// ApplyPolicy executes one reset action for one tenant's list. Zero
// matched records is a successful no-op, which is also what makes
// rerunning the job within the same business day safe. The only side
// effects are the store mutations.
func ApplyPolicy(ctx context.Context, store data.RecordRepository, tenantId string, listType data.ListType, action Action, now time.Time) (ResetOutcome, error) {
	outcome := ResetOutcome{
		TenantId: tenantId,
		ListType: listType,
		Action:   action,
		At:       now,
	}
	resource := fmt.Sprintf("%s/%s", tenantId, listType)

	var matched []data.ListRecordDTO
	var err error
	switch action {
	case ActionPurgeAll:
		matched, err = store.ListAll(ctx, tenantId, listType)
	default:
		matched, err = store.ListCompleted(ctx, tenantId, listType)
	}
	if err != nil {
		return outcome, exceptions.StoreUnavailable("query", resource, err)
	}
	outcome.Matched = len(matched)
	if len(matched) == 0 {
		return outcome, nil
	}

	recordIds := make([]string, len(matched))
	for i, record := range matched {
		recordIds[i] = record.SK
	}

	switch action {
	case ActionResetFlags:
		reset, err := store.BatchResetFlags(ctx, tenantId, listType, recordIds)
		outcome.Reset = reset
		if err != nil {
			return outcome, exceptions.StoreUnavailable("batch-update", resource, err)
		}
	default:
		deleted, err := store.BatchDelete(ctx, tenantId, listType, recordIds)
		outcome.Deleted = deleted
		if err != nil {
			return outcome, exceptions.StoreUnavailable("batch-delete", resource, err)
		}
	}
	return outcome, nil
}
