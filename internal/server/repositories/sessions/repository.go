// Package sessions persists which devices have a gateway session, so the
// registry survives a restart.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

// Repository stores one session per device. Save replaces an existing one.
type Repository interface {
	Save(ctx context.Context, s models.DeviceSession) error
	Delete(ctx context.Context, deviceSN string) error
	List(ctx context.Context) ([]models.DeviceSession, error)
}
