package names

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/dynamodb/services"
)

// NameListDynamoDBService stores each tenant's scalar name lists
// (suppliers, fridges) as one document per kind: PK "<tenant>:Names",
// SK the kind. Put overwrites the whole document.
type NameListDynamoDBService struct {
	DynamoDB  dynamodb.Client
	TableName string
}

func NewNameListService(tableName string, client dynamodb.Client) data.NameListRepository {
	return &NameListDynamoDBService{
		DynamoDB:  client,
		TableName: tableName,
	}
}

func (ns *NameListDynamoDBService) GetNames(tenantId string, kind data.NameListKind) (data.NameListDTO, error) {
	pk := services.PartitionKey(tenantId, "Names")
	shim := data.NameListDTO{PK: pk, SK: string(kind), Names: []string{}}
	key, err := services.ItemKey(pk, string(kind))
	if err != nil {
		return shim, err
	}
	response, err := ns.DynamoDB.GetItem(context.TODO(), &dynamodb.GetItemInput{
		TableName: aws.String(ns.TableName),
		Key:       key,
	})
	if err != nil {
		return shim, err
	}
	if response.Item == nil {
		// Missing documents read as empty lists; screens render a blank
		// picker instead of an error.
		return shim, nil
	}
	err = attributevalue.UnmarshalMap(response.Item, &shim)
	if shim.Names == nil {
		shim.Names = []string{}
	}
	return shim, err
}

func (ns *NameListDynamoDBService) PutNames(tenantId string, kind data.NameListKind, nameList []string) (data.NameListDTO, error) {
	now := time.Now()
	document := data.NameListDTO{
		PK:         services.PartitionKey(tenantId, "Names"),
		SK:         string(kind),
		Names:      nameList,
		CreateTime: now,
		UpdateTime: now,
	}
	item, err := attributevalue.MarshalMap(document)
	if err != nil {
		return document, err
	}
	_, err = ns.DynamoDB.PutItem(context.TODO(), &dynamodb.PutItemInput{
		TableName: aws.String(ns.TableName),
		Item:      item,
	})
	return document, err
}
