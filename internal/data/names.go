package data

import "time"

// NameListKind selects one of the small scalar documents a tenant keeps
// (lists of supplier names, fridge names).
type NameListKind string

const (
	NamesSuppliers NameListKind = "suppliers"
	NamesFridges   NameListKind = "fridges"
)

func (k NameListKind) Valid() bool {
	return k == NamesSuppliers || k == NamesFridges
}

type NameListDTO struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	Names      []string  `dynamodbav:"names"`
	CreateTime time.Time `dynamodbav:"createTime"`
	UpdateTime time.Time `dynamodbav:"updateTime"`
}

// NameListRepository is the single-document get/set surface for the
// scalar name lists. Get on a missing document returns an empty list
// rather than an error.
type NameListRepository interface {
	GetNames(tenantId string, kind NameListKind) (NameListDTO, error)
	PutNames(tenantId string, kind NameListKind, names []string) (NameListDTO, error)
}
