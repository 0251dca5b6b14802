package tenants

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/dynamodb/services"
	"github.com/lineops/lineops/internal/dynamodb/token"
)

type TenantDynamoDBService struct {
	services.TableRepository[data.TenantDTO, data.TenantInputDTO]
}

func NewTenantService(tableName string, client dynamodb.Client, marshaler token.PageMarshaler) *TenantDynamoDBService {
	return &TenantDynamoDBService{
		TableRepository: services.TableRepository[data.TenantDTO, data.TenantInputDTO]{
			DynamoDB:      client,
			TableName:     tableName,
			PageMarshaler: marshaler,
			Entity:        "Tenant",
			Shim: func(pk, sk string) data.TenantDTO {
				return data.TenantDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input data.TenantInputDTO, createTime time.Time, pk, sk string) data.TenantDTO {
				tenant := data.TenantDTO{
					PK:         pk,
					SK:         sk,
					TimeZone:   input.TimeZone,
					CreateTime: createTime,
					UpdateTime: createTime,
				}
				if input.Name != nil {
					tenant.Name = *input.Name
				}
				return tenant
			},
			OnUpdate: func(input data.TenantInputDTO, update expression.UpdateBuilder) expression.UpdateBuilder {
				if input.Name != nil {
					update = update.Set(expression.Name("name"), expression.Value(input.Name))
				}
				if input.TimeZone != nil {
					update = update.Set(expression.Name("timeZone"), expression.Value(input.TimeZone))
				}
				return update
			},
		},
	}
}

// ListAll drains the whole registry for the daily reset fan-out. No
// batching limit is applied; very large registries stretch the run
// against the platform invocation timeout.
func (ts *TenantDynamoDBService) ListAll(ctx context.Context) ([]data.TenantDTO, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(services.PartitionKey(data.RegistryScope, ts.Entity)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, err
	}
	var tenants []data.TenantDTO
	var startKey map[string]types.AttributeValue
	for {
		output, err := ts.DynamoDB.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(ts.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []data.TenantDTO
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, err
		}
		tenants = append(tenants, page...)
		if len(output.LastEvaluatedKey) == 0 {
			return tenants, nil
		}
		startKey = output.LastEvaluatedKey
	}
}
