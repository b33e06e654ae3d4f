package sessions

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]models.DeviceSession
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]models.DeviceSession)}
}

func (m *MemoryRepository) Save(_ context.Context, s models.DeviceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.DeviceSN] = s
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, deviceSN string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, deviceSN)
	return nil
}

func (m *MemoryRepository) List(context.Context) ([]models.DeviceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DeviceSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceSN < out[j].DeviceSN })
	return out, nil
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
