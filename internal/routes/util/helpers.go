package util

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/routes"
)

func RequestParam(ctx context.Context, name string) string {
	if params, ok := ctx.Value(routes.ParamsKey).(map[string]string); ok {
		return params[name]
	}
	return ""
}

// ParseQueryParams reads limit and nextToken from the query string.
func ParseQueryParams(event events.APIGatewayV2HTTPRequest) data.QueryParams {
	params := data.QueryParams{}
	if limit, ok := event.QueryStringParameters["limit"]; ok {
		if parsed, err := strconv.Atoi(limit); err == nil {
			params.Limit = parsed
		}
	}
	if token, ok := event.QueryStringParameters["nextToken"]; ok {
		params.NextToken = []byte(token)
	}
	return params
}

func SerializeResponse[T interface{}, R interface{}](delayed func(T) R, thing T, err error, statusCode int) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	body, err := json.Marshal(delayed(thing))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Content-Length": strconv.Itoa(len(body)),
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func SerializeResponseOK[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 200)
}

func SerializeResponseNoContent(err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 204,
	}, nil
}

func MapOnList[D interface{}, R interface{}](items *[]D, thunk func(D) R) *[]R {
	if items == nil {
		return nil
	}
	mapped := make([]R, len(*items))
	for i, item := range *items {
		mapped[i] = thunk(item)
	}
	return &mapped
}

func ConvertQueryResults[D interface{}, R interface{}](items data.QueryResults[D], thunk func(D) R) data.QueryResults[R] {
	if items.Items != nil {
		newItems := make([]R, len(items.Items))
		for i, item := range items.Items {
			newItems[i] = thunk(item)
		}
		return data.QueryResults[R]{
			Items:     newItems,
			NextToken: items.NextToken,
		}
	}
	return data.QueryResults[R]{
		Items: make([]R, 0),
	}
}

func ConvertQueryResultsPartial[D interface{}, R interface{}](thunk func(D) R) func(data.QueryResults[D]) data.QueryResults[R] {
	return func(d data.QueryResults[D]) data.QueryResults[R] {
		return ConvertQueryResults(d, thunk)
	}
}
