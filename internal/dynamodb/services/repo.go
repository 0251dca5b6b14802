package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/dynamodb/token"
	"github.com/lineops/lineops/internal/exceptions"
)

// TableRepository implements the shared CRUD contract over the single
// table. Records partition under "<tenantId>:<Entity>" with a generated
// sort key. The hook functions let each collection shape its own DTOs
// without repeating the DynamoDB plumbing.
type TableRepository[T interface{}, I interface{}] struct {
	DynamoDB      dynamodb.Client
	TableName     string
	PageMarshaler token.PageMarshaler
	Entity        string
	Shim          func(pk string, sk string) T
	OnCreate      func(I, time.Time, string, string) T
	OnUpdate      func(I, expression.UpdateBuilder) expression.UpdateBuilder
}

func PartitionKey(tenantId string, entity string) string {
	return fmt.Sprintf("%s:%s", tenantId, entity)
}

func ItemKey(pks string, sks string) (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(pks)
	if err != nil {
		return nil, err
	}
	sk, err := attributevalue.Marshal(sks)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"PK": pk, "SK": sk}, nil
}

func (tr *TableRepository[T, I]) resource() string {
	return strings.ToLower(tr.Entity)
}

func (tr *TableRepository[T, I]) List(tenantId string, params data.QueryParams) (data.QueryResults[T], error) {
	keyEx := expression.Key("PK").Equal(expression.Value(PartitionKey(tenantId, tr.Entity)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	startKey, err := tr.PageMarshaler.Unmarshal(tenantId, params.NextToken)
	if err != nil {
		return data.QueryResults[T]{}, exceptions.InvalidInput(fmt.Sprintf("invalid page token: %s", err))
	}
	output, err := tr.DynamoDB.Query(context.TODO(), &dynamodb.QueryInput{
		TableName:                 aws.String(tr.TableName),
		Limit:                     params.GetLimit(),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	var items []T
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return data.QueryResults[T]{}, err
	}
	nextToken, err := tr.PageMarshaler.Marshal(tenantId, output.LastEvaluatedKey)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	return data.QueryResults[T]{
		Items:     items,
		NextToken: nextToken,
	}, nil
}

func (tr *TableRepository[T, I]) Create(tenantId string, input I) (T, error) {
	gid, _ := uuid.NewUUID()
	now := time.Now()
	shim := tr.OnCreate(input, now, PartitionKey(tenantId, tr.Entity), gid.String())
	item, err := attributevalue.MarshalMap(shim)
	if err != nil {
		return shim, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())).
		Build()
	if err != nil {
		return shim, err
	}
	_, err = tr.DynamoDB.PutItem(context.TODO(), &dynamodb.PutItemInput{
		Item:                     item,
		TableName:                aws.String(tr.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if _, ok := err.(*types.ConditionalCheckFailedException); ok {
			return shim, exceptions.Conflict(tr.resource(), gid.String())
		}
		return shim, err
	}
	return shim, nil
}

func (tr *TableRepository[T, I]) Update(tenantId string, itemId string, input I) (T, error) {
	pk := PartitionKey(tenantId, tr.Entity)
	shim := tr.Shim(pk, itemId)
	key, err := ItemKey(pk, itemId)
	if err != nil {
		return shim, err
	}
	update := expression.Set(expression.Name("updateTime"), expression.Value(time.Now()))
	update = tr.OnUpdate(input, update)
	condition := expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())
	expr, err := expression.NewBuilder().WithCondition(condition).WithUpdate(update).Build()
	if err != nil {
		return shim, err
	}
	response, err := tr.DynamoDB.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tr.TableName),
		Key:                       key,
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if _, ok := err.(*types.ConditionalCheckFailedException); ok {
			return shim, exceptions.NotFound(tr.resource(), itemId)
		}
		return shim, err
	}
	err = attributevalue.UnmarshalMap(response.Attributes, &shim)
	return shim, err
}

func (tr *TableRepository[T, I]) Get(tenantId string, itemId string) (T, error) {
	pk := PartitionKey(tenantId, tr.Entity)
	shim := tr.Shim(pk, itemId)
	key, err := ItemKey(pk, itemId)
	if err != nil {
		return shim, err
	}
	response, err := tr.DynamoDB.GetItem(context.TODO(), &dynamodb.GetItemInput{
		TableName: aws.String(tr.TableName),
		Key:       key,
	})
	if err != nil {
		return shim, err
	}
	if response.Item == nil {
		return shim, exceptions.NotFound(tr.resource(), itemId)
	}
	err = attributevalue.UnmarshalMap(response.Item, &shim)
	return shim, err
}

func (tr *TableRepository[T, I]) Delete(tenantId string, itemId string) error {
	key, err := ItemKey(PartitionKey(tenantId, tr.Entity), itemId)
	if err != nil {
		return err
	}
	_, err = tr.DynamoDB.DeleteItem(context.TODO(), &dynamodb.DeleteItemInput{
		Key:       key,
		TableName: aws.String(tr.TableName),
	})
	return err
}
