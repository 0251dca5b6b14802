package names

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/exceptions"
	"github.com/lineops/lineops/internal/routes"
	"github.com/lineops/lineops/internal/routes/util"
)

type NameList struct {
	Kind       string    `json:"kind"`
	Names      []string  `json:"names"`
	UpdateTime time.Time `json:"updateTime"`
}

func NewNameList(document data.NameListDTO) NameList {
	return NameList{
		Kind:       document.SK,
		Names:      document.Names,
		UpdateTime: document.UpdateTime,
	}
}

type NameListInput struct {
	Names *[]string `json:"names"`
}

// NameListOpsService serves the supplier and fridge name pickers.
type NameListOpsService struct {
	data data.NameListRepository
}

func NewRoute(nameData data.NameListRepository) routes.Service {
	return &NameListOpsService{
		data: nameData,
	}
}

func (ns *NameListOpsService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/tenants/:tenantId/names/:kind": ns.GetNames,
		"PUT:/tenants/:tenantId/names/:kind": ns.PutNames,
	}
}

func requestKind(ctx context.Context) (data.NameListKind, error) {
	kind := data.NameListKind(util.RequestParam(ctx, "kind"))
	if !kind.Valid() {
		return kind, exceptions.InvalidInput("kind must be one of: suppliers, fridges")
	}
	return kind, nil
}

func (ns *NameListOpsService) GetNames(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	kind, err := requestKind(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	document, err := ns.data.GetNames(util.RequestParam(ctx, "tenantId"), kind)
	return util.SerializeResponseOK(NewNameList, document, err)
}

func (ns *NameListOpsService) PutNames(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	kind, err := requestKind(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	input := NameListInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	if input.Names == nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.MissingParameter("names")
	}
	document, err := ns.data.PutNames(util.RequestParam(ctx, "tenantId"), kind, *input.Names)
	return util.SerializeResponseOK(NewNameList, document, err)
}
