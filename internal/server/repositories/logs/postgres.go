package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"github.com/dmitrijs2005/devlogs/internal/dbx"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	activeStatusSQL = `status IN ('PENDING', 'UPLOADING')`

	fileColumns = `file_id, domain, boot_index, start_time, end_time, status, progress,
		object_key, size, cancel_requested, fail_reason, updated_at`

	uniqueViolation = "23505"
)

// PostgresRepository implements Repository over PostgreSQL (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// placeholders renders "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(parts, ", ")
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner, prefix ...any) (*models.FileEntry, error) {
	var (
		f          models.FileEntry
		start, end sql.NullTime
		status     string
	)
	dest := append(prefix, &f.FileID, &f.Domain, &f.BootIndex, &start, &end, &status, &f.Progress,
		&f.ObjectKey, &f.Size, &f.CancelRequested, &f.FailReason, &f.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	f.StartTime = start.Time
	f.EndTime = end.Time
	f.Status = models.FileStatus(status)
	return &f, nil
}

// Save inserts the request and its files in one transaction. A per-device
// advisory lock serialises concurrent saves for the same device so the
// overlap check and the insert cannot interleave.
func (r *PostgresRepository) Save(ctx context.Context, req *models.UploadRequest) error {
	domains := req.Domains()

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, req.DeviceSN); err != nil {
			return fmt.Errorf("device lock error: %w", err)
		}

		args := []any{req.DeviceSN}
		for _, d := range domains {
			args = append(args, d)
		}
		query := `SELECT DISTINCT domain FROM log_files
			WHERE device_sn = $1 AND ` + activeStatusSQL + ` AND domain IN (` + placeholders(2, len(domains)) + `)`
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to check active domains: %w", err)
		}
		var busy []string
		for rows.Next() {
			var d string
			if err := rows.Scan(&d); err != nil {
				rows.Close()
				return err
			}
			busy = append(busy, d)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(busy) > 0 {
			return fmt.Errorf("%w: device %s already uploading %s", common.ErrConflict, req.DeviceSN, strings.Join(busy, ","))
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO log_requests (id, workspace_id, device_sn, requested_by, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			req.ID, req.WorkspaceID, req.DeviceSN, req.RequestedBy, req.Description, req.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: request %s exists", common.ErrConflict, req.ID)
			}
			return fmt.Errorf("db error: %w", err)
		}

		for i, f := range req.Files {
			_, err = tx.ExecContext(ctx, `INSERT INTO log_files (request_id, file_id, position, device_sn, domain, boot_index,
				start_time, end_time, status, progress, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				req.ID, f.FileID, i, req.DeviceSN, f.Domain, f.BootIndex,
				nullTime(f.StartTime), nullTime(f.EndTime), string(f.Status), f.Progress, f.UpdatedAt)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: duplicate file %s", common.ErrConflict, f.FileID)
				}
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

// FindPaged returns one page of the device's requests, newest first unless
// params.Ascending is set.
func (r *PostgresRepository) FindPaged(ctx context.Context, deviceSN string, params models.QueryParams) (*models.Page[*models.UploadRequest], error) {
	params = params.Normalize()

	where := []string{"r.device_sn = $1"}
	args := []any{deviceSN}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if !params.BeginTime.IsZero() {
		add("r.created_at >= ?", params.BeginTime)
	}
	if !params.EndTime.IsZero() {
		add("r.created_at <= ?", params.EndTime)
	}
	if params.Keyword != "" {
		add(`r.description ILIKE ? ESCAPE '\'`, "%"+escapeLike(params.Keyword)+"%")
	}
	if params.Status != "" {
		add("EXISTS (SELECT 1 FROM log_files f WHERE f.request_id = r.id AND f.status = ?)", string(params.Status))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_requests r WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	order := "DESC"
	if params.Ascending {
		order = "ASC"
	}
	n := len(args)
	query := `SELECT r.id, r.workspace_id, r.device_sn, r.requested_by, r.description, r.created_at
		FROM log_requests r WHERE ` + cond + `
		ORDER BY r.created_at ` + order + `, r.id
		LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("failed to select requests: %w", err)
	}
	defer rows.Close()

	page := &models.Page[*models.UploadRequest]{Page: params.Page, PageSize: params.PageSize, Total: total}
	byID := map[string]*models.UploadRequest{}
	for rows.Next() {
		var item models.UploadRequest
		if err := rows.Scan(&item.ID, &item.WorkspaceID, &item.DeviceSN, &item.RequestedBy, &item.Description, &item.CreatedAt); err != nil {
			return nil, err
		}
		page.Items = append(page.Items, &item)
		byID[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadFiles(ctx, byID); err != nil {
		return nil, err
	}
	return page, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepository) loadFiles(ctx context.Context, byID map[string]*models.UploadRequest) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]any, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	query := `SELECT request_id, ` + fileColumns + ` FROM log_files
		WHERE request_id IN (` + placeholders(1, len(ids)) + `) ORDER BY request_id, position`
	rows, err := r.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var requestID string
		f, err := scanFile(rows, &requestID)
		if err != nil {
			return err
		}
		req := byID[requestID]
		if req == nil {
			continue
		}
		req.Files = append(req.Files, f)
		if f.UpdatedAt.After(req.UpdatedAt) {
			req.UpdatedAt = f.UpdatedAt
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) FindByID(ctx context.Context, requestID string) (*models.UploadRequest, error) {
	var item models.UploadRequest
	err := r.db.QueryRowContext(ctx, `SELECT id, workspace_id, device_sn, requested_by, description, created_at
		FROM log_requests WHERE id = $1`, requestID).
		Scan(&item.ID, &item.WorkspaceID, &item.DeviceSN, &item.RequestedBy, &item.Description, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %s: %w", requestID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select request: %w", err)
	}
	if err := r.loadFiles(ctx, map[string]*models.UploadRequest{item.ID: &item}); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) FindFile(ctx context.Context, requestID, fileID string) (*models.FileEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM log_files WHERE request_id = $1 AND file_id = $2`, requestID, fileID)
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s/%s: %w", requestID, fileID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) FindFileByDevice(ctx context.Context, deviceSN, fileID string) (string, *models.FileEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT request_id, `+fileColumns+` FROM log_files
		WHERE device_sn = $1 AND file_id = $2
		ORDER BY (`+activeStatusSQL+`) DESC, updated_at DESC
		LIMIT 1`, deviceSN, fileID)
	var requestID string
	f, err := scanFile(row, &requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("file %s of device %s: %w", fileID, deviceSN, common.ErrNotFound)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to select file: %w", err)
	}
	return requestID, f, nil
}

func (r *PostgresRepository) SetCancelRequested(ctx context.Context, requestID string, fileIDs []string, requested bool) error {
	if len(fileIDs) == 0 {
		return nil
	}
	args := []any{requestID, requested}
	for _, id := range fileIDs {
		args = append(args, id)
	}
	query := `UPDATE log_files SET cancel_requested = $2, updated_at = now()
		WHERE request_id = $1 AND ` + activeStatusSQL + ` AND file_id IN (` + placeholders(3, len(fileIDs)) + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set cancel requested: %w", err)
	}
	return nil
}

// UpdateFileStatus performs the conditional transition in a single UPDATE.
// When no row matches, a follow-up read tells a missing file apart from a
// lost race.
func (r *PostgresRepository) UpdateFileStatus(ctx context.Context, requestID, fileID string, status models.FileStatus, change models.FileChange) (*models.FileEntry, error) {
	sources := models.SourcesOf(status)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: nothing moves to %s", common.ErrInvalidTransition, status)
	}
	if status == models.StatusCompleted && change.ObjectKey == "" {
		return nil, fmt.Errorf("%w: %s completed without object key", common.ErrValidation, fileID)
	}

	var set string
	args := []any{requestID, fileID, string(status)}
	switch status {
	case models.StatusUploading:
		set = "progress = GREATEST(progress, $4)"
		args = append(args, change.Progress)
	case models.StatusCompleted:
		set = "progress = 100, object_key = $4, size = $5"
		args = append(args, change.ObjectKey, change.Size)
	case models.StatusFailed:
		set = "fail_reason = $4"
		args = append(args, change.FailReason)
	default:
		set = "cancel_requested = FALSE"
	}
	from := len(args) + 1
	for _, s := range sources {
		args = append(args, string(s))
	}

	query := `UPDATE log_files SET status = $3, ` + set + `, updated_at = now()
		WHERE request_id = $1 AND file_id = $2 AND status IN (` + placeholders(from, len(sources)) + `)
		RETURNING ` + fileColumns
	f, err := scanFile(r.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update file status: %w", err)
	}

	current, err := r.FindFile(ctx, requestID, fileID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s is %s, cannot become %s", common.ErrInvalidTransition, fileID, current.Status, status)
}

// Delete removes a request whose files are all terminal.
func (r *PostgresRepository) Delete(ctx context.Context, requestID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM log_requests r WHERE r.id = $1
		AND NOT EXISTS (SELECT 1 FROM log_files f WHERE f.request_id = r.id AND f.`+activeStatusSQL+`)`, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM log_requests WHERE id = $1)`, requestID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to select request: %w", err)
	}
	if !exists {
		return fmt.Errorf("request %s: %w", requestID, common.ErrNotFound)
	}
	return fmt.Errorf("%w: request %s still has active files", common.ErrConflict, requestID)
}
