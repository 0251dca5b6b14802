package lists

import (
	"time"

	"github.com/lineops/lineops/internal/data"
)

type ListRecord struct {
	Id          string     `json:"recordId"`
	Name        string     `json:"name"`
	Done        bool       `json:"done"`
	DoneTime    *time.Time `json:"doneTime,omitempty"`
	Supplier    *string    `json:"supplier,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	Quantity    *string    `json:"quantity,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreateTime  time.Time  `json:"createTime"`
	UpdateTime  time.Time  `json:"updateTime"`
}

func NewListRecord(record data.ListRecordDTO) ListRecord {
	return ListRecord{
		Id:          record.SK,
		Name:        record.Name,
		Done:        record.Done,
		DoneTime:    record.DoneTime,
		Supplier:    record.Supplier,
		Temperature: record.Temperature,
		Unit:        record.Unit,
		Quantity:    record.Quantity,
		Notes:       record.Notes,
		CreateTime:  record.CreateTime,
		UpdateTime:  record.UpdateTime,
	}
}

type ListRecordInput struct {
	Name        *string    `json:"name,omitempty"`
	Done        *bool      `json:"done,omitempty"`
	DoneTime    *time.Time `json:"doneTime,omitempty"`
	Supplier    *string    `json:"supplier,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	Quantity    *string    `json:"quantity,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (li *ListRecordInput) ToData() data.ListRecordInputDTO {
	return data.ListRecordInputDTO{
		Name:        li.Name,
		Done:        li.Done,
		DoneTime:    li.DoneTime,
		Supplier:    li.Supplier,
		Temperature: li.Temperature,
		Unit:        li.Unit,
		Quantity:    li.Quantity,
		Notes:       li.Notes,
	}
}
