package marker

import "sync"

// Store persists the per-tenant date of the last unconditional checklist
// reset. The marker is device-local: two devices each keep their own and
// may each trigger one reset per business day, which is harmless because
// clearing an already-clear flag is a no-op.
type Store interface {
	// LastReset returns the ISO date (YYYY-MM-DD) of the last reset for
	// the tenant, or "" when no reset has been recorded.
	LastReset(tenantId string) (string, error)
	SetLastReset(tenantId string, isoDate string) error
}

// MemoryStore keeps markers in process memory. Used by tests and by
// clients without a writable data directory.
type MemoryStore struct {
	mu    sync.Mutex
	dates map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dates: make(map[string]string),
	}
}

func (ms *MemoryStore) LastReset(tenantId string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.dates[tenantId], nil
}

func (ms *MemoryStore) SetLastReset(tenantId string, isoDate string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.dates[tenantId] = isoDate
	return nil
}
