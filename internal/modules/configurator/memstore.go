package configurator

import (
	"context"
	"sync"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

// MemoryOrderStore keeps order state per session in process.
type MemoryOrderStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryOrder
}

type memoryOrder struct {
	snapshot *domain.OrderSnapshot
	intents  []domain.UploadIntent
	designs  domain.LabelDesigns
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{sessions: map[string]*memoryOrder{}}
}

func (m *MemoryOrderStore) entry(sessionID string) *memoryOrder {
	e, ok := m.sessions[sessionID]
	if !ok {
		e = &memoryOrder{}
		m.sessions[sessionID] = e
	}
	return e
}

func (m *MemoryOrderStore) SetFromSelections(ctx context.Context, sessionID string, snap domain.OrderSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(sessionID).snapshot = &snap
	return nil
}

func (m *MemoryOrderStore) SetFromUploadDesign(ctx context.Context, sessionID string, intent domain.UploadIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(sessionID)
	e.intents = append(e.intents, intent)
	switch side, _ := domain.ParseDesignSide(intent.DesignSide); side {
	case domain.SideFront:
		e.designs.Front = intent.DesignExport
	case domain.SideBack:
		e.designs.Back = intent.DesignExport
	}
	return nil
}

func (m *MemoryOrderStore) LabelDesigns(ctx context.Context, sessionID string) (domain.LabelDesigns, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[sessionID]; ok {
		return e.designs, nil
	}
	return domain.LabelDesigns{}, nil
}

// Snapshot returns the last published snapshot, if any.
func (m *MemoryOrderStore) Snapshot(sessionID string) (domain.OrderSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok || e.snapshot == nil {
		return domain.OrderSnapshot{}, false
	}
	return *e.snapshot, true
}

// Intents returns every upload intent recorded for the session, oldest first.
func (m *MemoryOrderStore) Intents(sessionID string) []domain.UploadIntent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	return append([]domain.UploadIntent(nil), e.intents...)
}

// Forget drops everything kept for the session.
func (m *MemoryOrderStore) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
