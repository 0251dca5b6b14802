package records

import (
	"context"
	"fmt"
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

// DynamoDB caps BatchWriteItem and TransactWriteItems at 25 items.
const batchSize = 25

type RecordDynamoDBService struct {
	DynamoDB      dynamodb.Client
	TableName     string
	PageMarshaler token.PageMarshaler
}

func NewRecordService(tableName string, client dynamodb.Client, marshaler token.PageMarshaler) data.RecordRepository {
	return &RecordDynamoDBService{
		DynamoDB:      client,
		TableName:     tableName,
		PageMarshaler: marshaler,
	}
}

func (rs *RecordDynamoDBService) repo(listType data.ListType) *services.TableRepository[data.ListRecordDTO, data.ListRecordInputDTO] {
	return &services.TableRepository[data.ListRecordDTO, data.ListRecordInputDTO]{
		DynamoDB:      rs.DynamoDB,
		TableName:     rs.TableName,
		PageMarshaler: rs.PageMarshaler,
		Entity:        listType.Entity(),
		Shim: func(pk, sk string) data.ListRecordDTO {
			return data.ListRecordDTO{PK: pk, SK: sk}
		},
		OnCreate: func(input data.ListRecordInputDTO, createTime time.Time, pk, sk string) data.ListRecordDTO {
			record := data.ListRecordDTO{
				PK:          pk,
				SK:          sk,
				CreateTime:  createTime,
				UpdateTime:  createTime,
				Supplier:    input.Supplier,
				Temperature: input.Temperature,
				Unit:        input.Unit,
				Quantity:    input.Quantity,
				Notes:       input.Notes,
			}
			if input.Name != nil {
				record.Name = *input.Name
			}
			if input.Done != nil && *input.Done {
				record.Done = true
				record.DoneTime = aws.Time(createTime)
			}
			return record
		},
		OnUpdate: func(input data.ListRecordInputDTO, update expression.UpdateBuilder) expression.UpdateBuilder {
			if input.Name != nil {
				update = update.Set(expression.Name("name"), expression.Value(input.Name))
			}
			if input.Supplier != nil {
				update = update.Set(expression.Name("supplier"), expression.Value(input.Supplier))
			}
			if input.Temperature != nil {
				update = update.Set(expression.Name("temperature"), expression.Value(input.Temperature))
			}
			if input.Unit != nil {
				update = update.Set(expression.Name("unit"), expression.Value(input.Unit))
			}
			if input.Quantity != nil {
				update = update.Set(expression.Name("quantity"), expression.Value(input.Quantity))
			}
			if input.Notes != nil {
				update = update.Set(expression.Name("notes"), expression.Value(input.Notes))
			}
			if input.Done != nil {
				update = update.Set(expression.Name("done"), expression.Value(input.Done))
				if *input.Done {
					doneTime := input.DoneTime
					if doneTime == nil {
						doneTime = aws.Time(time.Now())
					}
					update = update.Set(expression.Name("doneTime"), expression.Value(doneTime))
				} else {
					update = update.Remove(expression.Name("doneTime"))
				}
			}
			return update
		},
	}
}

func (rs *RecordDynamoDBService) List(tenantId string, listType data.ListType, params data.QueryParams) (data.QueryResults[data.ListRecordDTO], error) {
	return rs.repo(listType).List(tenantId, params)
}

func (rs *RecordDynamoDBService) Get(tenantId string, listType data.ListType, recordId string) (data.ListRecordDTO, error) {
	return rs.repo(listType).Get(tenantId, recordId)
}

func (rs *RecordDynamoDBService) Create(tenantId string, listType data.ListType, input data.ListRecordInputDTO) (data.ListRecordDTO, error) {
	return rs.repo(listType).Create(tenantId, input)
}

func (rs *RecordDynamoDBService) Update(tenantId string, listType data.ListType, recordId string, input data.ListRecordInputDTO) (data.ListRecordDTO, error) {
	return rs.repo(listType).Update(tenantId, recordId, input)
}

func (rs *RecordDynamoDBService) Delete(tenantId string, listType data.ListType, recordId string) error {
	return rs.repo(listType).Delete(tenantId, recordId)
}

func (rs *RecordDynamoDBService) query(ctx context.Context, tenantId string, listType data.ListType, filter *expression.ConditionBuilder) ([]data.ListRecordDTO, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(services.PartitionKey(tenantId, listType.Entity())))
	builder := expression.NewBuilder().WithKeyCondition(keyEx)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, err
	}
	var records []data.ListRecordDTO
	var startKey map[string]types.AttributeValue
	for {
		output, err := rs.DynamoDB.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(rs.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []data.ListRecordDTO
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(output.LastEvaluatedKey) == 0 {
			return records, nil
		}
		startKey = output.LastEvaluatedKey
	}
}

// ListAll drains every record of a list. The reset job purges whole
// lists, so there is no pagination cap here.
func (rs *RecordDynamoDBService) ListAll(ctx context.Context, tenantId string, listType data.ListType) ([]data.ListRecordDTO, error) {
	return rs.query(ctx, tenantId, listType, nil)
}

func (rs *RecordDynamoDBService) ListCompleted(ctx context.Context, tenantId string, listType data.ListType) ([]data.ListRecordDTO, error) {
	filter := expression.Name("done").Equal(expression.Value(true))
	return rs.query(ctx, tenantId, listType, &filter)
}

type batchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type transactWriter interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// deleteBatch issues delete requests in chunks of 25, redriving
// unprocessed keys once per chunk. Keys still unprocessed after the
// redrive fail the call; a short count with a nil error would let a
// throttled purge pass for a complete one.
func deleteBatch(ctx context.Context, client batchWriter, tableName string, writes []types.WriteRequest) (int, error) {
	deleted := 0
	for start := 0; start < len(writes); start += batchSize {
		end := start + batchSize
		if end > len(writes) {
			end = len(writes)
		}
		pending := writes[start:end]
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > 1 {
				return deleted, fmt.Errorf("%d delete requests unprocessed after retry", len(pending))
			}
			output, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{tableName: pending},
			})
			if err != nil {
				return deleted, err
			}
			unprocessed := output.UnprocessedItems[tableName]
			deleted += len(pending) - len(unprocessed)
			pending = unprocessed
		}
	}
	return deleted, nil
}

// patchBatch applies the transact items in chunks of 25; each chunk
// lands atomically or errors as a whole.
func patchBatch(ctx context.Context, client transactWriter, items []types.TransactWriteItem) (int, error) {
	patched := 0
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		if _, err := client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[start:end],
		}); err != nil {
			return patched, err
		}
		patched += end - start
	}
	return patched, nil
}

// BatchDelete removes the identified records, returning the number of
// confirmed deletes. An empty id set is a no-op.
func (rs *RecordDynamoDBService) BatchDelete(ctx context.Context, tenantId string, listType data.ListType, recordIds []string) (int, error) {
	pk := services.PartitionKey(tenantId, listType.Entity())
	writes := make([]types.WriteRequest, 0, len(recordIds))
	for _, recordId := range recordIds {
		key, err := services.ItemKey(pk, recordId)
		if err != nil {
			return 0, err
		}
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}
	return deleteBatch(ctx, &rs.DynamoDB, rs.TableName, writes)
}

// BatchResetFlags clears done and doneTime on the identified records,
// 25 at a time through TransactWriteItems so each chunk lands atomically
// at the store's batch granularity. Returns the number of records
// patched. An empty id set is a no-op.
func (rs *RecordDynamoDBService) BatchResetFlags(ctx context.Context, tenantId string, listType data.ListType, recordIds []string) (int, error) {
	pk := services.PartitionKey(tenantId, listType.Entity())
	update := expression.
		Set(expression.Name("done"), expression.Value(false)).
		Set(expression.Name("updateTime"), expression.Value(time.Now())).
		Remove(expression.Name("doneTime"))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return 0, err
	}
	items := make([]types.TransactWriteItem, 0, len(recordIds))
	for _, recordId := range recordIds {
		key, err := services.ItemKey(pk, recordId)
		if err != nil {
			return 0, err
		}
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:                 aws.String(rs.TableName),
				Key:                       key,
				UpdateExpression:          expr.Update(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
			},
		})
	}
	return patchBatch(ctx, &rs.DynamoDB, items)
}
