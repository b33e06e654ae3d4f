package logs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

// MemoryRepository is an in-process Repository. Values handed in and out
// are copies, so callers never share state with the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*models.UploadRequest
	byDevice map[string][]string

	now func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		requests: make(map[string]*models.UploadRequest),
		byDevice: make(map[string][]string),
		now:      time.Now,
	}
}

func cloneFile(f *models.FileEntry) *models.FileEntry {
	c := *f
	return &c
}

func cloneRequest(r *models.UploadRequest) *models.UploadRequest {
	c := *r
	c.Files = make([]*models.FileEntry, len(r.Files))
	for i, f := range r.Files {
		c.Files[i] = cloneFile(f)
		if f.UpdatedAt.After(c.UpdatedAt) {
			c.UpdatedAt = f.UpdatedAt
		}
	}
	return &c
}

func (m *MemoryRepository) Save(_ context.Context, req *models.UploadRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[req.ID]; ok {
		return fmt.Errorf("%w: request %s exists", common.ErrConflict, req.ID)
	}
	seen := make(map[string]struct{}, len(req.Files))
	for _, f := range req.Files {
		if _, ok := seen[f.FileID]; ok {
			return fmt.Errorf("%w: duplicate file %s", common.ErrConflict, f.FileID)
		}
		seen[f.FileID] = struct{}{}
	}

	wanted := make(map[string]struct{})
	for _, d := range req.Domains() {
		wanted[d] = struct{}{}
	}
	var busy []string
	for _, id := range m.byDevice[req.DeviceSN] {
		for _, f := range m.requests[id].Files {
			if _, ok := wanted[f.Domain]; ok && !f.Status.Terminal() {
				busy = append(busy, f.Domain)
				delete(wanted, f.Domain)
			}
		}
	}
	if len(busy) > 0 {
		return fmt.Errorf("%w: device %s already uploading %s", common.ErrConflict, req.DeviceSN, strings.Join(busy, ","))
	}

	m.requests[req.ID] = cloneRequest(req)
	m.byDevice[req.DeviceSN] = append(m.byDevice[req.DeviceSN], req.ID)
	return nil
}

func (m *MemoryRepository) matches(r *models.UploadRequest, p models.QueryParams) bool {
	if !p.BeginTime.IsZero() && r.CreatedAt.Before(p.BeginTime) {
		return false
	}
	if !p.EndTime.IsZero() && r.CreatedAt.After(p.EndTime) {
		return false
	}
	if p.Keyword != "" && !strings.Contains(strings.ToLower(r.Description), strings.ToLower(p.Keyword)) {
		return false
	}
	if p.Status != "" {
		for _, f := range r.Files {
			if f.Status == p.Status {
				return true
			}
		}
		return false
	}
	return true
}

func (m *MemoryRepository) FindPaged(_ context.Context, deviceSN string, params models.QueryParams) (*models.Page[*models.UploadRequest], error) {
	params = params.Normalize()

	m.mu.RLock()
	var all []*models.UploadRequest
	for _, id := range m.byDevice[deviceSN] {
		if r := m.requests[id]; m.matches(r, params) {
			all = append(all, cloneRequest(r))
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if params.Ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	page := &models.Page[*models.UploadRequest]{Page: params.Page, PageSize: params.PageSize, Total: len(all)}
	if off := params.Offset(); off < len(all) {
		end := min(off+params.PageSize, len(all))
		page.Items = all[off:end]
	}
	return page, nil
}

func (m *MemoryRepository) FindByID(_ context.Context, requestID string) (*models.UploadRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestID, common.ErrNotFound)
	}
	return cloneRequest(r), nil
}

func (m *MemoryRepository) FindFile(_ context.Context, requestID, fileID string) (*models.FileEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f := m.file(requestID, fileID)
	if f == nil {
		return nil, fmt.Errorf("file %s/%s: %w", requestID, fileID, common.ErrNotFound)
	}
	return cloneFile(f), nil
}

func (m *MemoryRepository) file(requestID, fileID string) *models.FileEntry {
	r, ok := m.requests[requestID]
	if !ok {
		return nil
	}
	return r.File(fileID)
}

func (m *MemoryRepository) FindFileByDevice(_ context.Context, deviceSN, fileID string) (string, *models.FileEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		bestReq string
		best    *models.FileEntry
	)
	for _, id := range m.byDevice[deviceSN] {
		f := m.requests[id].File(fileID)
		if f == nil {
			continue
		}
		if best == nil || better(f, best) {
			bestReq, best = id, f
		}
	}
	if best == nil {
		return "", nil, fmt.Errorf("file %s of device %s: %w", fileID, deviceSN, common.ErrNotFound)
	}
	return bestReq, cloneFile(best), nil
}

// better orders candidate files: active first, then most recently updated.
func better(a, b *models.FileEntry) bool {
	if a.Status.Terminal() != b.Status.Terminal() {
		return !a.Status.Terminal()
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

func (m *MemoryRepository) SetCancelRequested(_ context.Context, requestID string, fileIDs []string, requested bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, id := range fileIDs {
		if f := m.file(requestID, id); f != nil && !f.Status.Terminal() {
			f.CancelRequested = requested
			f.UpdatedAt = now
		}
	}
	return nil
}

func (m *MemoryRepository) UpdateFileStatus(_ context.Context, requestID, fileID string, status models.FileStatus, change models.FileChange) (*models.FileEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.file(requestID, fileID)
	if f == nil {
		return nil, fmt.Errorf("file %s/%s: %w", requestID, fileID, common.ErrNotFound)
	}
	if !models.CanTransition(f.Status, status) {
		return nil, fmt.Errorf("%w: %s is %s, cannot become %s", common.ErrInvalidTransition, fileID, f.Status, status)
	}
	if status == models.StatusCompleted && change.ObjectKey == "" {
		return nil, fmt.Errorf("%w: %s completed without object key", common.ErrValidation, fileID)
	}

	f.Status = status
	switch status {
	case models.StatusUploading:
		f.Progress = max(f.Progress, change.Progress)
	case models.StatusCompleted:
		f.Progress = 100
		f.ObjectKey = change.ObjectKey
		f.Size = change.Size
	case models.StatusFailed:
		f.FailReason = change.FailReason
	case models.StatusCancelled:
		f.CancelRequested = false
	}
	f.UpdatedAt = m.now()
	return cloneFile(f), nil
}

func (m *MemoryRepository) Delete(_ context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s: %w", requestID, common.ErrNotFound)
	}
	if r.Active() {
		return fmt.Errorf("%w: request %s still has active files", common.ErrConflict, requestID)
	}

	delete(m.requests, requestID)
	ids := m.byDevice[r.DeviceSN]
	for i, id := range ids {
		if id == requestID {
			m.byDevice[r.DeviceSN] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
