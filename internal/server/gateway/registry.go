package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

// Session is the live link between a device and the gateway serving it.
type Session = models.DeviceSession

// SessionStore persists sessions across restarts.
type SessionStore interface {
	Save(ctx context.Context, s models.DeviceSession) error
	Delete(ctx context.Context, deviceSN string) error
	List(ctx context.Context) ([]models.DeviceSession, error)
}

// SessionRegistry tracks which devices currently have a gateway session.
// Changes are written to the store before they become visible.
type SessionRegistry struct {
	store SessionStore

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionRegistry(store SessionStore) *SessionRegistry {
	return &SessionRegistry{store: store, sessions: make(map[string]Session)}
}

// Load replaces the in-memory view with what the store holds.
func (r *SessionRegistry) Load(ctx context.Context) error {
	list, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	sessions := make(map[string]Session, len(list))
	for _, s := range list {
		sessions[s.DeviceSN] = s
	}

	r.mu.Lock()
	r.sessions = sessions
	r.mu.Unlock()
	return nil
}

// Connect records (or replaces) the session of deviceSN.
func (r *SessionRegistry) Connect(ctx context.Context, deviceSN, gatewaySN string, at time.Time) error {
	s := Session{DeviceSN: deviceSN, GatewaySN: gatewaySN, Since: at}
	if err := r.store.Save(ctx, s); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[deviceSN] = s
	return nil
}

func (r *SessionRegistry) Disconnect(ctx context.Context, deviceSN string) error {
	if err := r.store.Delete(ctx, deviceSN); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, deviceSN)
	return nil
}

func (r *SessionRegistry) Lookup(deviceSN string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[deviceSN]
	return s, ok
}

func (r *SessionRegistry) Online(deviceSN string) bool {
	_, ok := r.Lookup(deviceSN)
	return ok
}
