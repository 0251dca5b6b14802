package data

import (
	"context"
	"time"
)

// ListType names one of the tracked operational lists of a restaurant.
type ListType string

const (
	ListOrders      ListType = "orders"
	ListPrep        ListType = "preplist"
	ListFridgeLog   ListType = "fridgelog"
	ListDeliveryLog ListType = "deliverylog"
	ListChecklist   ListType = "checklist"
)

func AllListTypes() []ListType {
	return []ListType{ListOrders, ListPrep, ListFridgeLog, ListDeliveryLog, ListChecklist}
}

func (lt ListType) Valid() bool {
	switch lt {
	case ListOrders, ListPrep, ListFridgeLog, ListDeliveryLog, ListChecklist:
		return true
	}
	return false
}

// Entity is the collection name embedded in the partition key.
func (lt ListType) Entity() string {
	switch lt {
	case ListOrders:
		return "Orders"
	case ListPrep:
		return "PrepList"
	case ListFridgeLog:
		return "FridgeLog"
	case ListDeliveryLog:
		return "DeliveryLog"
	case ListChecklist:
		return "Checklist"
	}
	return string(lt)
}

// ListRecordDTO is one entry of any tracked list. CreateTime is
// authoritative and set by the store on insert. DoneTime is present iff
// Done is true; writes maintain that invariant, reads tolerate records
// that violate it.
type ListRecordDTO struct {
	PK          string     `dynamodbav:"PK"`
	SK          string     `dynamodbav:"SK"`
	Name        string     `dynamodbav:"name"`
	Done        bool       `dynamodbav:"done"`
	DoneTime    *time.Time `dynamodbav:"doneTime,omitempty"`
	Supplier    *string    `dynamodbav:"supplier,omitempty"`
	Temperature *float64   `dynamodbav:"temperature,omitempty"`
	Unit        *string    `dynamodbav:"unit,omitempty"`
	Quantity    *string    `dynamodbav:"quantity,omitempty"`
	Notes       *string    `dynamodbav:"notes,omitempty"`
	CreateTime  time.Time  `dynamodbav:"createTime"`
	UpdateTime  time.Time  `dynamodbav:"updateTime"`
}

type ListRecordInputDTO struct {
	Name        *string    `dynamodbav:"name"`
	Done        *bool      `dynamodbav:"done"`
	DoneTime    *time.Time `dynamodbav:"doneTime"`
	Supplier    *string    `dynamodbav:"supplier"`
	Temperature *float64   `dynamodbav:"temperature"`
	Unit        *string    `dynamodbav:"unit"`
	Quantity    *string    `dynamodbav:"quantity"`
	Notes       *string    `dynamodbav:"notes"`
}

// RecordRepository is the record-store collaborator the reset subsystem
// runs against. The CRUD half serves the mobile screens; the context-aware
// half serves the reset job and the lazy client sweep. Batch operations
// tolerate an empty id set as a no-op.
type RecordRepository interface {
	List(tenantId string, listType ListType, params QueryParams) (QueryResults[ListRecordDTO], error)
	Get(tenantId string, listType ListType, recordId string) (ListRecordDTO, error)
	Create(tenantId string, listType ListType, input ListRecordInputDTO) (ListRecordDTO, error)
	Update(tenantId string, listType ListType, recordId string, input ListRecordInputDTO) (ListRecordDTO, error)
	Delete(tenantId string, listType ListType, recordId string) error

	ListAll(ctx context.Context, tenantId string, listType ListType) ([]ListRecordDTO, error)
	ListCompleted(ctx context.Context, tenantId string, listType ListType) ([]ListRecordDTO, error)
	BatchDelete(ctx context.Context, tenantId string, listType ListType, recordIds []string) (int, error)
	BatchResetFlags(ctx context.Context, tenantId string, listType ListType, recordIds []string) (int, error)
}
