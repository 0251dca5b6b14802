package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/marker"
	"github.com/lineops/lineops/internal/reset"
	"github.com/lineops/lineops/internal/routes"
	"github.com/lineops/lineops/internal/routes/filters"
	"github.com/lineops/lineops/internal/routes/lists"
	"github.com/lineops/lineops/internal/routes/names"
	"github.com/lineops/lineops/internal/routes/tenants"
	"github.com/lineops/lineops/internal/test"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

type OpsServer struct {
	Router  *routes.Router
	Records *test.MemoryRecordStore
	Tenants *test.MemoryTenantStore
	ApiKey  string
}

func NewOpsServer(t *testing.T, apiKey string) *OpsServer {
	records := test.NewMemoryRecordStore()
	tenantStore := test.NewMemoryTenantStore("acme")
	logger := zap.NewNop()
	sweeper := reset.NewSweeper(records, tenantStore, logger)
	lazy := reset.NewLazySweeper(records, marker.NewMemoryStore(), logger)
	router := routes.NewRouter(
		[]filters.RequestFilter{
			filters.DefaultCorsFilter(),
			&filters.ApiKeyFilter{Key: apiKey},
		},
		tenants.NewRoute(tenantStore, sweeper),
		names.NewRoute(test.NewMemoryNameListStore()),
		lists.NewRoute(records, lazy),
	)
	return &OpsServer{
		Router:  router,
		Records: records,
		Tenants: tenantStore,
		ApiKey:  apiKey,
	}
}

func (s *OpsServer) Request(t *testing.T, method string, path string, body []byte, out any, params map[string]string) events.APIGatewayV2HTTPResponse {
	t.Helper()
	request := events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		QueryStringParameters: params,
		Body:                  string(body),
	}
	if s.ApiKey != "" {
		request.Headers = map[string]string{"x-api-key": s.ApiKey}
	}
	request.RequestContext.HTTP.Method = method
	request.RequestContext.HTTP.Path = path
	response := s.Router.Invoke(request, context.TODO())
	if out != nil {
		if err := json.Unmarshal([]byte(response.Body), out); err != nil {
			t.Fatalf("Failed to deserialize payload for %s %s: %s", method, path, response.Body)
		}
	}
	return response
}

func (s *OpsServer) Get(t *testing.T, out any, path string) events.APIGatewayV2HTTPResponse {
	return s.Request(t, "GET", path, nil, out, nil)
}

func (s *OpsServer) GetQuery(t *testing.T, out any, path string, params map[string]string) events.APIGatewayV2HTTPResponse {
	return s.Request(t, "GET", path, nil, out, params)
}

func (s *OpsServer) Post(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return s.Request(t, "POST", path, payload, out, nil)
}

func (s *OpsServer) Put(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return s.Request(t, "PUT", path, payload, out, nil)
}

func (s *OpsServer) Delete(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return s.Request(t, "DELETE", path, nil, nil, nil)
}

func (s *OpsServer) Options(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return s.Request(t, "OPTIONS", path, nil, nil, nil)
}

func TestRouter(t *testing.T) {
	server := NewOpsServer(t, "")

	t.Run("TenantWorkflow", func(t *testing.T) {
		var createdTenant tenants.Tenant
		created := server.Post(t, &createdTenant, "/tenants", &tenants.TenantInput{
			Name: aws.String("The Galley"),
		})
		if created.StatusCode != 200 {
			t.Fatalf("Response on create %d: %s", created.StatusCode, created.Body)
		}
		if createdTenant.Name != "The Galley" {
			t.Fatalf("Failed to set tenant name, got %s", created.Body)
		}
		var fetched tenants.Tenant
		get := server.Get(t, &fetched, "/tenants/"+createdTenant.Id)
		if get.StatusCode != 200 {
			t.Fatalf("Response on get %d: %s", get.StatusCode, get.Body)
		}
		if fetched.Id != createdTenant.Id {
			t.Fatalf("Get returned wrong tenant: %s", get.Body)
		}
		var results data.QueryResults[tenants.Tenant]
		list := server.Get(t, &results, "/tenants")
		if len(results.Items) < 2 {
			t.Fatalf("List does not contain seeded and created tenants: %s", list.Body)
		}
		missingName := server.Post(t, nil, "/tenants", &tenants.TenantInput{})
		if missingName.StatusCode != 400 {
			t.Fatalf("Expected 400 on missing name, got %d: %s", missingName.StatusCode, missingName.Body)
		}
	})

	t.Run("NameListWorkflow", func(t *testing.T) {
		var document names.NameList
		put := server.Put(t, &document, "/tenants/acme/names/suppliers", &names.NameListInput{
			Names: &[]string{"Smithfield", "Borough Produce"},
		})
		if put.StatusCode != 200 {
			t.Fatalf("Response on put %d: %s", put.StatusCode, put.Body)
		}
		var fetched names.NameList
		get := server.Get(t, &fetched, "/tenants/acme/names/suppliers")
		if get.StatusCode != 200 {
			t.Fatalf("Response on get %d: %s", get.StatusCode, get.Body)
		}
		if len(fetched.Names) != 2 || fetched.Names[0] != "Smithfield" {
			t.Fatalf("Names did not round-trip: %s", get.Body)
		}
		var empty names.NameList
		missing := server.Get(t, &empty, "/tenants/acme/names/fridges")
		if missing.StatusCode != 200 || len(empty.Names) != 0 {
			t.Fatalf("Missing document should read as empty list: %d %s", missing.StatusCode, missing.Body)
		}
		badKind := server.Get(t, nil, "/tenants/acme/names/ovens")
		if badKind.StatusCode != 400 {
			t.Fatalf("Expected 400 on unknown kind, got %d: %s", badKind.StatusCode, badKind.Body)
		}
	})

	t.Run("ListRecordWorkflow", func(t *testing.T) {
		var createdRecord lists.ListRecord
		created := server.Post(t, &createdRecord, "/tenants/acme/lists/preplist", &lists.ListRecordInput{
			Name:     aws.String("Dice onions"),
			Quantity: aws.String("2kg"),
		})
		if created.StatusCode != 200 {
			t.Fatalf("Response on create %d: %s", created.StatusCode, created.Body)
		}
		if createdRecord.Done || createdRecord.DoneTime != nil {
			t.Fatalf("New record should start open: %s", created.Body)
		}
		var updated lists.ListRecord
		update := server.Put(t, &updated, fmt.Sprintf("/tenants/acme/lists/preplist/%s", createdRecord.Id), &lists.ListRecordInput{
			Done: aws.Bool(true),
		})
		if update.StatusCode != 200 {
			t.Fatalf("Response on update %d: %s", update.StatusCode, update.Body)
		}
		if !updated.Done || updated.DoneTime == nil {
			t.Fatalf("Completing a record should stamp doneTime: %s", update.Body)
		}
		var results data.QueryResults[lists.ListRecord]
		list := server.Get(t, &results, "/tenants/acme/lists/preplist")
		if len(results.Items) != 1 || results.Items[0].Id != createdRecord.Id {
			t.Fatalf("List does not contain %s: %s", created.Body, list.Body)
		}
		deleted := server.Delete(t, fmt.Sprintf("/tenants/acme/lists/preplist/%s", createdRecord.Id))
		if deleted.StatusCode != 204 {
			t.Fatalf("Response on delete %d: %s", deleted.StatusCode, deleted.Body)
		}
		getRemoved := server.Get(t, nil, fmt.Sprintf("/tenants/acme/lists/preplist/%s", createdRecord.Id))
		if getRemoved.StatusCode != 404 {
			t.Fatalf("Expected 404 after delete, got %d: %s", getRemoved.StatusCode, getRemoved.Body)
		}
		badList := server.Get(t, nil, "/tenants/acme/lists/menus")
		if badList.StatusCode != 400 {
			t.Fatalf("Expected 400 on unknown list type, got %d: %s", badList.StatusCode, badList.Body)
		}
	})

	t.Run("RefreshSweepsStaleCompletions", func(t *testing.T) {
		staleDone := time.Now().Add(-25 * time.Hour)
		freshDone := time.Now().Add(-time.Hour)
		stale := server.Records.Seed("acme", data.ListPrep, data.ListRecordDTO{
			Name:     "Stock rotation",
			Done:     true,
			DoneTime: &staleDone,
		})
		fresh := server.Records.Seed("acme", data.ListPrep, data.ListRecordDTO{
			Name:     "Label dates",
			Done:     true,
			DoneTime: &freshDone,
		})
		var results data.QueryResults[lists.ListRecord]
		refreshed := server.GetQuery(t, &results, "/tenants/acme/lists/preplist", map[string]string{
			"refresh": "true",
		})
		if refreshed.StatusCode != 200 {
			t.Fatalf("Response on refresh %d: %s", refreshed.StatusCode, refreshed.Body)
		}
		byId := make(map[string]lists.ListRecord, len(results.Items))
		for _, item := range results.Items {
			byId[item.Id] = item
		}
		if record := byId[stale.SK]; record.Done || record.DoneTime != nil {
			t.Fatalf("Stale completion should be cleared: %s", refreshed.Body)
		}
		if record := byId[fresh.SK]; !record.Done {
			t.Fatalf("Fresh completion should survive the sweep: %s", refreshed.Body)
		}
	})

	t.Run("ChecklistRefreshOncePerDay", func(t *testing.T) {
		doneTime := time.Now().Add(-time.Hour)
		seeded := server.Records.Seed("acme", data.ListChecklist, data.ListRecordDTO{
			Name:     "Close down fryers",
			Done:     true,
			DoneTime: &doneTime,
		})
		var results data.QueryResults[lists.ListRecord]
		first := server.GetQuery(t, &results, "/tenants/acme/lists/checklist", map[string]string{
			"refresh": "true",
		})
		if first.StatusCode != 200 {
			t.Fatalf("Response on refresh %d: %s", first.StatusCode, first.Body)
		}
		if results.Items[0].Done {
			t.Fatalf("First refresh of the day should clear the checklist: %s", first.Body)
		}
		server.Put(t, nil, fmt.Sprintf("/tenants/acme/lists/checklist/%s", seeded.SK), &lists.ListRecordInput{
			Done: aws.Bool(true),
		})
		second := server.GetQuery(t, &results, "/tenants/acme/lists/checklist", map[string]string{
			"refresh": "true",
		})
		if second.StatusCode != 200 {
			t.Fatalf("Response on refresh %d: %s", second.StatusCode, second.Body)
		}
		if !results.Items[0].Done {
			t.Fatalf("Second refresh the same day should not clear again: %s", second.Body)
		}
	})

	t.Run("ManualReset", func(t *testing.T) {
		server.Records.Seed("acme", data.ListOrders, data.ListRecordDTO{Name: "Table 4"})
		server.Records.Seed("acme", data.ListOrders, data.ListRecordDTO{Name: "Table 9"})
		var result tenants.ResetResult
		triggered := server.Request(t, "POST", "/reset", nil, &result, map[string]string{
			"tenantId": "acme",
		})
		if triggered.StatusCode != 200 {
			t.Fatalf("Response on trigger %d: %s", triggered.StatusCode, triggered.Body)
		}
		if result.TenantId != "acme" || result.Deleted < 2 {
			t.Fatalf("Trigger should report purged orders: %s", triggered.Body)
		}
		remaining, err := server.Records.ListAll(context.TODO(), "acme", data.ListOrders)
		if err != nil || len(remaining) != 0 {
			t.Fatalf("Orders should be purged, found %d", len(remaining))
		}
		missing := server.Request(t, "POST", "/reset", nil, nil, nil)
		if missing.StatusCode != 400 {
			t.Fatalf("Expected 400 without tenantId, got %d: %s", missing.StatusCode, missing.Body)
		}
	})

	t.Run("ManualResetPartialFailure", func(t *testing.T) {
		server.Records.FailWith["query:acme/orders"] = errors.New("throttled")
		defer delete(server.Records.FailWith, "query:acme/orders")
		failed := server.Request(t, "POST", "/reset", nil, nil, map[string]string{
			"tenantId": "acme",
		})
		if failed.StatusCode != 500 {
			t.Fatalf("Expected 500 on partial failure, got %d: %s", failed.StatusCode, failed.Body)
		}
	})

	t.Run("WindowFilter", func(t *testing.T) {
		fresh := server.Records.Seed("acme", data.ListOrders, data.ListRecordDTO{
			Name:       "Table 12",
			CreateTime: time.Now(),
		})
		server.Records.Seed("acme", data.ListOrders, data.ListRecordDTO{
			Name:       "Two services ago",
			CreateTime: time.Now().Add(-50 * time.Hour),
		})
		var results data.QueryResults[lists.ListRecord]
		current := server.GetQuery(t, &results, "/tenants/acme/lists/orders", map[string]string{
			"window": "current",
		})
		if current.StatusCode != 200 {
			t.Fatalf("Response on window filter %d: %s", current.StatusCode, current.Body)
		}
		if len(results.Items) != 1 || results.Items[0].Id != fresh.SK {
			t.Fatalf("Expected only the current-service order: %s", current.Body)
		}
		badWindow := server.GetQuery(t, nil, "/tenants/acme/lists/orders", map[string]string{
			"window": "someday",
		})
		if badWindow.StatusCode != 400 {
			t.Fatalf("Expected 400 on unknown window, got %d: %s", badWindow.StatusCode, badWindow.Body)
		}
	})

	t.Run("RouteNotFound", func(t *testing.T) {
		missing := server.Get(t, nil, "/kitchens")
		if missing.StatusCode != 404 {
			t.Fatalf("Expected 404 on unknown route, got %d: %s", missing.StatusCode, missing.Body)
		}
	})

	t.Run("CorsPreflight", func(t *testing.T) {
		preflight := server.Options(t, "/tenants")
		if preflight.StatusCode != 200 {
			t.Fatalf("Received a %d status code, expected 200", preflight.StatusCode)
		}
		if preflight.Body != "" {
			t.Fatalf("Received a response body for OPTIONS: %s", preflight.Body)
		}
		expected := map[string]string{
			"content-length":               "0",
			"access-control-allow-headers": "Content-Type, Content-Length, X-Api-Key",
			"access-control-allow-methods": "GET, PUT, POST, DELETE",
			"access-control-allow-origin":  "*",
		}
		if !maps.Equal(preflight.Headers, expected) {
			t.Fatalf("Headers from preflight %v, do not match expected %v", preflight.Headers, expected)
		}
	})
}

func TestApiKeyFilter(t *testing.T) {
	server := NewOpsServer(t, "sesame")
	var results data.QueryResults[tenants.Tenant]
	allowed := server.Get(t, &results, "/tenants")
	if allowed.StatusCode != 200 {
		t.Fatalf("Expected 200 with the right key, got %d: %s", allowed.StatusCode, allowed.Body)
	}

	server.ApiKey = "wrong"
	denied := server.Get(t, nil, "/tenants")
	if denied.StatusCode != 401 {
		t.Fatalf("Expected 401 with the wrong key, got %d: %s", denied.StatusCode, denied.Body)
	}

	server.ApiKey = ""
	anonymous := server.Request(t, "GET", "/tenants", nil, nil, nil)
	if anonymous.StatusCode != 401 {
		t.Fatalf("Expected 401 without a key, got %d: %s", anonymous.StatusCode, anonymous.Body)
	}
}
