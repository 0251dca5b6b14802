package lists

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/exceptions"
	"github.com/lineops/lineops/internal/reset"
	"github.com/lineops/lineops/internal/routes"
	"github.com/lineops/lineops/internal/routes/util"
	"github.com/lineops/lineops/internal/timewindow"
)

// ListRecordService is the CRUD surface the mobile screens bind to.
// A refresh=true query on GET additionally runs the lazy reset pass the
// screens perform on load, so stale completions are cleared before the
// view is returned.
type ListRecordService struct {
	records data.RecordRepository
	lazy    *reset.LazySweeper
}

func NewRoute(records data.RecordRepository, lazy *reset.LazySweeper) routes.Service {
	return &ListRecordService{
		records: records,
		lazy:    lazy,
	}
}

func (ls *ListRecordService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/tenants/:tenantId/lists/:listType":              ls.ListRecords,
		"POST:/tenants/:tenantId/lists/:listType":             ls.CreateRecord,
		"GET:/tenants/:tenantId/lists/:listType/:recordId":    ls.GetRecord,
		"PUT:/tenants/:tenantId/lists/:listType/:recordId":    ls.UpdateRecord,
		"DELETE:/tenants/:tenantId/lists/:listType/:recordId": ls.DeleteRecord,
	}
}

func requestListType(ctx context.Context) (data.ListType, error) {
	listType := data.ListType(util.RequestParam(ctx, "listType"))
	if !listType.Valid() {
		return listType, exceptions.InvalidInput("listType must be one of: orders, preplist, fridgelog, deliverylog, checklist")
	}
	return listType, nil
}

func (ls *ListRecordService) ListRecords(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	listType, err := requestListType(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	tenantId := util.RequestParam(ctx, "tenantId")
	var results data.QueryResults[data.ListRecordDTO]
	if ls.lazy != nil && event.QueryStringParameters["refresh"] == "true" {
		results, err = ls.refreshRecords(ctx, tenantId, listType)
	} else {
		results, err = ls.records.List(tenantId, listType, util.ParseQueryParams(event))
	}
	if err == nil {
		if window, ok := event.QueryStringParameters["window"]; ok {
			results.Items, err = ls.filterWindow(results.Items, window)
		}
	}
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewListRecord), results, err)
}

func (ls *ListRecordService) refreshRecords(ctx context.Context, tenantId string, listType data.ListType) (data.QueryResults[data.ListRecordDTO], error) {
	if listType == data.ListChecklist {
		if _, err := ls.lazy.ResetChecklistOncePerDay(ctx, tenantId); err != nil {
			return data.QueryResults[data.ListRecordDTO]{}, err
		}
	}
	view, err := ls.lazy.SweepStaleCompletions(ctx, tenantId, listType)
	return data.QueryResults[data.ListRecordDTO]{Items: view}, err
}

// filterWindow narrows a view to one business-day window, bucketing each
// record by its create time against the rolling cutoff.
func (ls *ListRecordService) filterWindow(items []data.ListRecordDTO, value string) ([]data.ListRecordDTO, error) {
	window, ok := timewindow.ParseWindow(value)
	if !ok {
		return nil, exceptions.InvalidInput("window must be one of: current, previous, expired")
	}
	now := time.Now()
	cutoffHour := timewindow.DefaultCutoffHour
	if ls.lazy != nil {
		now = ls.lazy.Now()
		cutoffHour = ls.lazy.CutoffHour
	}
	filtered := make([]data.ListRecordDTO, 0, len(items))
	for _, record := range items {
		var stamp *time.Time
		if !record.CreateTime.IsZero() {
			createTime := record.CreateTime
			stamp = &createTime
		}
		if timewindow.Classify(stamp, now, cutoffHour) == window {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (ls *ListRecordService) GetRecord(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	listType, err := requestListType(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	record, err := ls.records.Get(util.RequestParam(ctx, "tenantId"), listType, util.RequestParam(ctx, "recordId"))
	return util.SerializeResponseOK(NewListRecord, record, err)
}

func (ls *ListRecordService) CreateRecord(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	listType, err := requestListType(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	input := ListRecordInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	if input.Name == nil || *input.Name == "" {
		return events.APIGatewayV2HTTPResponse{}, exceptions.MissingParameter("name")
	}
	created, err := ls.records.Create(util.RequestParam(ctx, "tenantId"), listType, input.ToData())
	return util.SerializeResponseOK(NewListRecord, created, err)
}

func (ls *ListRecordService) UpdateRecord(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	listType, err := requestListType(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	input := ListRecordInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	record, err := ls.records.Update(util.RequestParam(ctx, "tenantId"), listType, util.RequestParam(ctx, "recordId"), input.ToData())
	return util.SerializeResponseOK(NewListRecord, record, err)
}

func (ls *ListRecordService) DeleteRecord(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	listType, err := requestListType(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	err = ls.records.Delete(util.RequestParam(ctx, "tenantId"), listType, util.RequestParam(ctx, "recordId"))
	return util.SerializeResponseNoContent(err)
}
