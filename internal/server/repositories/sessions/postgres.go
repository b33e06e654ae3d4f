package sessions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, s models.DeviceSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_sessions (device_sn, gateway_sn, since) VALUES ($1, $2, $3)
		ON CONFLICT (device_sn) DO UPDATE SET gateway_sn = EXCLUDED.gateway_sn, since = EXCLUDED.since`,
		s.DeviceSN, s.GatewaySN, s.Since)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, deviceSN string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM device_sessions WHERE device_sn = $1`, deviceSN); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.DeviceSession, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT device_sn, gateway_sn, since FROM device_sessions ORDER BY device_sn`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.DeviceSession
	for rows.Next() {
		var s models.DeviceSession
		if err := rows.Scan(&s.DeviceSN, &s.GatewaySN, &s.Since); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
