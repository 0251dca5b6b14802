package data

type QueryParams struct {
	Limit     int    `json:"limit"`
	NextToken []byte `json:"nextToken"`
}

func (q *QueryParams) GetLimit() *int32 {
	limit := int32(q.Limit)
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return &limit
}

type QueryResults[T interface{}] struct {
	Items     []T    `json:"items"`
	NextToken []byte `json:"nextToken"`
}

type NextToken map[string]map[string]string

// Repository is the CRUD contract every tenant-scoped collection shares.
// Implementations are network-backed; any call can fail transiently.
type Repository[T interface{}, I interface{}] interface {
	List(tenantId string, params QueryParams) (QueryResults[T], error)
	Get(tenantId string, itemId string) (T, error)
	Create(tenantId string, input I) (T, error)
	Update(tenantId string, itemId string, input I) (T, error)
	Delete(tenantId string, itemId string) error
}
