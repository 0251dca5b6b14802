package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/exceptions"
)

func listKey(tenantId string, listType data.ListType) string {
	return fmt.Sprintf("%s/%s", tenantId, listType)
}

// MemoryRecordStore is the in-memory record-store stand-in the reset
// tests run against. Failure injection keys are "<op>:<tenant>/<list>",
// with ops "query", "batch-delete", "batch-update".
type MemoryRecordStore struct {
	mu       sync.Mutex
	records  map[string][]data.ListRecordDTO
	FailWith map[string]error
	Clock    func() time.Time
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		records:  make(map[string][]data.ListRecordDTO),
		FailWith: make(map[string]error),
		Clock:    time.Now,
	}
}

func (ms *MemoryRecordStore) fail(op string, tenantId string, listType data.ListType) error {
	return ms.FailWith[fmt.Sprintf("%s:%s", op, listKey(tenantId, listType))]
}

// Seed inserts a record directly, bypassing Create, so tests control
// every field including timestamps.
func (ms *MemoryRecordStore) Seed(tenantId string, listType data.ListType, record data.ListRecordDTO) data.ListRecordDTO {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if record.SK == "" {
		record.SK = uuid.NewString()
	}
	record.PK = listKey(tenantId, listType)
	key := listKey(tenantId, listType)
	ms.records[key] = append(ms.records[key], record)
	return record
}

func (ms *MemoryRecordStore) List(tenantId string, listType data.ListType, params data.QueryParams) (data.QueryResults[data.ListRecordDTO], error) {
	all, err := ms.ListAll(context.TODO(), tenantId, listType)
	if err != nil {
		return data.QueryResults[data.ListRecordDTO]{}, err
	}
	return data.QueryResults[data.ListRecordDTO]{Items: all}, nil
}

func (ms *MemoryRecordStore) Get(tenantId string, listType data.ListType, recordId string) (data.ListRecordDTO, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, record := range ms.records[listKey(tenantId, listType)] {
		if record.SK == recordId {
			return record, nil
		}
	}
	return data.ListRecordDTO{}, exceptions.NotFound(string(listType), recordId)
}

func (ms *MemoryRecordStore) Create(tenantId string, listType data.ListType, input data.ListRecordInputDTO) (data.ListRecordDTO, error) {
	now := ms.Clock()
	record := data.ListRecordDTO{
		SK:          uuid.NewString(),
		CreateTime:  now,
		UpdateTime:  now,
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
		doneTime := now
		record.DoneTime = &doneTime
	}
	return ms.Seed(tenantId, listType, record), nil
}

func (ms *MemoryRecordStore) Update(tenantId string, listType data.ListType, recordId string, input data.ListRecordInputDTO) (data.ListRecordDTO, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	key := listKey(tenantId, listType)
	for i, record := range ms.records[key] {
		if record.SK != recordId {
			continue
		}
		if input.Name != nil {
			record.Name = *input.Name
		}
		if input.Supplier != nil {
			record.Supplier = input.Supplier
		}
		if input.Temperature != nil {
			record.Temperature = input.Temperature
		}
		if input.Done != nil {
			record.Done = *input.Done
			if *input.Done {
				doneTime := ms.Clock()
				if input.DoneTime != nil {
					doneTime = *input.DoneTime
				}
				record.DoneTime = &doneTime
			} else {
				record.DoneTime = nil
			}
		}
		record.UpdateTime = ms.Clock()
		ms.records[key][i] = record
		return record, nil
	}
	return data.ListRecordDTO{}, exceptions.NotFound(string(listType), recordId)
}

func (ms *MemoryRecordStore) Delete(tenantId string, listType data.ListType, recordId string) error {
	return ms.remove(tenantId, listType, map[string]bool{recordId: true})
}

func (ms *MemoryRecordStore) ListAll(ctx context.Context, tenantId string, listType data.ListType) ([]data.ListRecordDTO, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.fail("query", tenantId, listType); err != nil {
		return nil, err
	}
	stored := ms.records[listKey(tenantId, listType)]
	view := make([]data.ListRecordDTO, len(stored))
	copy(view, stored)
	return view, nil
}

func (ms *MemoryRecordStore) ListCompleted(ctx context.Context, tenantId string, listType data.ListType) ([]data.ListRecordDTO, error) {
	all, err := ms.ListAll(ctx, tenantId, listType)
	if err != nil {
		return nil, err
	}
	var completed []data.ListRecordDTO
	for _, record := range all {
		if record.Done {
			completed = append(completed, record)
		}
	}
	return completed, nil
}

func (ms *MemoryRecordStore) BatchDelete(ctx context.Context, tenantId string, listType data.ListType, recordIds []string) (int, error) {
	ms.mu.Lock()
	if err := ms.fail("batch-delete", tenantId, listType); err != nil {
		ms.mu.Unlock()
		return 0, err
	}
	ms.mu.Unlock()
	doomed := make(map[string]bool, len(recordIds))
	for _, recordId := range recordIds {
		doomed[recordId] = true
	}
	if err := ms.remove(tenantId, listType, doomed); err != nil {
		return 0, err
	}
	return len(recordIds), nil
}

func (ms *MemoryRecordStore) BatchResetFlags(ctx context.Context, tenantId string, listType data.ListType, recordIds []string) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.fail("batch-update", tenantId, listType); err != nil {
		return 0, err
	}
	targeted := make(map[string]bool, len(recordIds))
	for _, recordId := range recordIds {
		targeted[recordId] = true
	}
	key := listKey(tenantId, listType)
	patched := 0
	for i, record := range ms.records[key] {
		if targeted[record.SK] {
			record.Done = false
			record.DoneTime = nil
			record.UpdateTime = ms.Clock()
			ms.records[key][i] = record
			patched++
		}
	}
	return patched, nil
}

func (ms *MemoryRecordStore) remove(tenantId string, listType data.ListType, doomed map[string]bool) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	key := listKey(tenantId, listType)
	var kept []data.ListRecordDTO
	for _, record := range ms.records[key] {
		if !doomed[record.SK] {
			kept = append(kept, record)
		}
	}
	ms.records[key] = kept
	return nil
}

// MemoryNameListStore backs the name-list routes in tests.
type MemoryNameListStore struct {
	mu        sync.Mutex
	documents map[string]data.NameListDTO
}

func NewMemoryNameListStore() *MemoryNameListStore {
	return &MemoryNameListStore{
		documents: make(map[string]data.NameListDTO),
	}
}

func (ns *MemoryNameListStore) GetNames(tenantId string, kind data.NameListKind) (data.NameListDTO, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	document, ok := ns.documents[tenantId+"/"+string(kind)]
	if !ok {
		return data.NameListDTO{SK: string(kind), Names: []string{}}, nil
	}
	return document, nil
}

func (ns *MemoryNameListStore) PutNames(tenantId string, kind data.NameListKind, names []string) (data.NameListDTO, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	now := time.Now()
	document := data.NameListDTO{
		PK:         tenantId + ":Names",
		SK:         string(kind),
		Names:      names,
		CreateTime: now,
		UpdateTime: now,
	}
	ns.documents[tenantId+"/"+string(kind)] = document
	return document, nil
}

// MemoryTenantStore backs tenant enumeration in tests.
type MemoryTenantStore struct {
	mu          sync.Mutex
	tenants     []data.TenantDTO
	ListAllFail error
}

func NewMemoryTenantStore(tenantIds ...string) *MemoryTenantStore {
	store := &MemoryTenantStore{}
	for _, tenantId := range tenantIds {
		store.tenants = append(store.tenants, data.TenantDTO{
			PK:   "global:Tenant",
			SK:   tenantId,
			Name: tenantId,
		})
	}
	return store
}

func (ts *MemoryTenantStore) ListAll(ctx context.Context) ([]data.TenantDTO, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.ListAllFail != nil {
		return nil, ts.ListAllFail
	}
	view := make([]data.TenantDTO, len(ts.tenants))
	copy(view, ts.tenants)
	return view, nil
}

func (ts *MemoryTenantStore) List(tenantId string, params data.QueryParams) (data.QueryResults[data.TenantDTO], error) {
	all, err := ts.ListAll(context.TODO())
	if err != nil {
		return data.QueryResults[data.TenantDTO]{}, err
	}
	return data.QueryResults[data.TenantDTO]{Items: all}, nil
}

func (ts *MemoryTenantStore) Get(tenantId string, itemId string) (data.TenantDTO, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, tenant := range ts.tenants {
		if tenant.SK == itemId {
			return tenant, nil
		}
	}
	return data.TenantDTO{}, exceptions.NotFound("tenant", itemId)
}

func (ts *MemoryTenantStore) Create(tenantId string, input data.TenantInputDTO) (data.TenantDTO, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	tenant := data.TenantDTO{
		PK:         "global:Tenant",
		SK:         uuid.NewString(),
		TimeZone:   input.TimeZone,
		CreateTime: time.Now(),
		UpdateTime: time.Now(),
	}
	if input.Name != nil {
		tenant.Name = *input.Name
	}
	ts.tenants = append(ts.tenants, tenant)
	return tenant, nil
}

func (ts *MemoryTenantStore) Update(tenantId string, itemId string, input data.TenantInputDTO) (data.TenantDTO, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i, tenant := range ts.tenants {
		if tenant.SK != itemId {
			continue
		}
		if input.Name != nil {
			tenant.Name = *input.Name
		}
		if input.TimeZone != nil {
			tenant.TimeZone = input.TimeZone
		}
		tenant.UpdateTime = time.Now()
		ts.tenants[i] = tenant
		return tenant, nil
	}
	return data.TenantDTO{}, exceptions.NotFound("tenant", itemId)
}

func (ts *MemoryTenantStore) Delete(tenantId string, itemId string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var kept []data.TenantDTO
	for _, tenant := range ts.tenants {
		if tenant.SK != itemId {
			kept = append(kept, tenant)
		}
	}
	ts.tenants = kept
	return nil
}
