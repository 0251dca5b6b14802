package tenants

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/exceptions"
	"github.com/lineops/lineops/internal/reset"
	"github.com/lineops/lineops/internal/routes"
	"github.com/lineops/lineops/internal/routes/util"
)

type TenantOpsService struct {
	data    data.TenantRepository
	sweeper *reset.Sweeper
}

func NewRoute(tenantData data.TenantRepository, sweeper *reset.Sweeper) routes.Service {
	return &TenantOpsService{
		data:    tenantData,
		sweeper: sweeper,
	}
}

func (ts *TenantOpsService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/tenants":           ts.ListTenants,
		"POST:/tenants":          ts.CreateTenant,
		"GET:/tenants/:tenantId": ts.GetTenant,
		"POST:/reset":            ts.TriggerReset,
	}
}

func (ts *TenantOpsService) ListTenants(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	results, err := ts.data.List(data.RegistryScope, util.ParseQueryParams(event))
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewTenant), results, err)
}

func (ts *TenantOpsService) GetTenant(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	tenant, err := ts.data.Get(data.RegistryScope, util.RequestParam(ctx, "tenantId"))
	return util.SerializeResponseOK(NewTenant, tenant, err)
}

func (ts *TenantOpsService) CreateTenant(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := TenantInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	if input.Name == nil || *input.Name == "" {
		return events.APIGatewayV2HTTPResponse{}, exceptions.MissingParameter("name")
	}
	created, err := ts.data.Create(data.RegistryScope, input.ToData())
	return util.SerializeResponseOK(NewTenant, created, err)
}

// TriggerReset is the operator recovery path: the same per-tenant logic
// the scheduled job runs, invoked synchronously for one tenant.
func (ts *TenantOpsService) TriggerReset(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	tenantId := event.QueryStringParameters["tenantId"]
	if tenantId == "" {
		return events.APIGatewayV2HTTPResponse{}, exceptions.MissingParameter("tenantId")
	}
	summary, err := ts.sweeper.ResetTenant(ctx, tenantId)
	return util.SerializeResponseOK(NewResetResult, summary, err)
}
