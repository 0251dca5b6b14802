package filters

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

type FilterContext struct {
	Request  *events.APIGatewayV2HTTPRequest
	Response *events.APIGatewayV2HTTPResponse
	Context  *context.Context
}

type RequestFilter interface {
	Filter(ctx *FilterContext) (*FilterContext, bool)
}

type CorsFilter struct {
	Methods []string
	Origins []string
	Headers []string
}

func (cf *CorsFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if ctx.Request.RequestContext.HTTP.Method == "OPTIONS" {
		headers := ctx.Response.Headers
		if headers == nil {
			headers = make(map[string]string, 4)
		}
		headers["content-length"] = "0"
		headers["access-control-allow-headers"] = strings.Join(cf.Headers, ", ")
		headers["access-control-allow-methods"] = strings.Join(cf.Methods, ", ")
		headers["access-control-allow-origin"] = strings.Join(cf.Origins, ", ")
		return &FilterContext{
			Request: ctx.Request,
			Context: ctx.Context,
			Response: &events.APIGatewayV2HTTPResponse{
				Headers:    headers,
				StatusCode: ctx.Response.StatusCode,
			},
		}, true
	}
	return ctx, false
}

// ApiKeyFilter gates the ops API behind a shared key carried in
// x-api-key. An empty configured key disables the check for local
// development stacks.
type ApiKeyFilter struct {
	Key string
}

func (af *ApiKeyFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if af.Key == "" || ctx.Request.RequestContext.HTTP.Method == "OPTIONS" {
		return ctx, false
	}
	presented := ctx.Request.Headers["x-api-key"]
	if subtle.ConstantTimeCompare([]byte(presented), []byte(af.Key)) == 1 {
		return ctx, false
	}
	body := "{\"message\": \"Unauthorized\"}"
	return &FilterContext{
		Request: ctx.Request,
		Context: ctx.Context,
		Response: &events.APIGatewayV2HTTPResponse{
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			StatusCode: 401,
			Body:       body,
		},
	}, true
}

func DefaultFilterContext(event events.APIGatewayV2HTTPRequest, ctx context.Context) *FilterContext {
	return &FilterContext{
		Request: &event,
		Response: &events.APIGatewayV2HTTPResponse{
			StatusCode: 200,
		},
		Context: &ctx,
	}
}

func DefaultCorsFilter() *CorsFilter {
	methods := [4]string{"GET", "PUT", "POST", "DELETE"}
	headers := [3]string{"Content-Type", "Content-Length", "X-Api-Key"}
	origins := [1]string{"*"}
	return &CorsFilter{
		Methods: methods[:],
		Headers: headers[:],
		Origins: origins[:],
	}
}
