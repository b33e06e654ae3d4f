package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"github.com/dmitrijs2005/devlogs/internal/logging"
	sc "github.com/dmitrijs2005/devlogs/internal/server/config"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/logs"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// missingObjectKey is the fail reason recorded when a device reports a
// completion it cannot back with an uploaded object.
const missingObjectKey = "completed without object key"

// Gateway is the command side of the device gateway.
type Gateway interface {
	SendStart(ctx context.Context, deviceSN, requestID string, files []*models.FileEntry) error
	SendUpdate(ctx context.Context, deviceSN, requestID string, targets []models.FileTarget) error
	QueryDomains(ctx context.Context, deviceSN string, domains []string) ([]models.DomainDescriptor, error)
}

// Locator resolves an object key to a time-limited download address.
type Locator interface {
	Resolve(ctx context.Context, objectKey string) (string, error)
}

// LogService drives log uploads through their lifecycle. Stored state is
// the only source of truth: every status change goes through the store's
// compare-and-set, so callbacks and client calls may run concurrently.
type LogService struct {
	store           logs.Repository
	gateway         Gateway
	locator         Locator
	log             logging.Logger
	realtimeTimeout time.Duration

	now   func() time.Time
	newID func() string
}

func NewLogService(db *sql.DB, rm repomanager.RepositoryManager, gw Gateway, locator Locator, cfg *sc.Config, log logging.Logger) *LogService {
	return &LogService{
		store:           rm.Logs(db),
		gateway:         gw,
		locator:         locator,
		log:             log.With("module", "logs"),
		realtimeTimeout: cfg.RealtimeQueryTimeout,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

// ListUploaded returns one page of the device's upload history.
func (s *LogService) ListUploaded(ctx context.Context, deviceSN string, params models.QueryParams) (*models.Page[*models.UploadRequest], error) {
	if deviceSN == "" {
		return nil, validationError("device serial is required")
	}
	if params.Status != "" && !params.Status.Valid() {
		return nil, validationError("unknown status %q", params.Status)
	}
	if !params.BeginTime.IsZero() && !params.EndTime.IsZero() && params.BeginTime.After(params.EndTime) {
		return nil, validationError("begin time is after end time")
	}
	return s.store.FindPaged(ctx, deviceSN, params.Normalize())
}

// ListRealtimeDomains asks the live device which log files it holds for
// domains. It never waits longer than the configured realtime timeout.
func (s *LogService) ListRealtimeDomains(ctx context.Context, deviceSN string, domains []string) ([]models.DomainDescriptor, error) {
	if deviceSN == "" {
		return nil, validationError("device serial is required")
	}
	if len(domains) == 0 {
		return nil, validationError("at least one domain is required")
	}

	if s.realtimeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.realtimeTimeout)
		defer cancel()
	}

	out, err := s.gateway.QueryDomains(ctx, deviceSN, domains)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: listing domains of %s", common.ErrTimeout, deviceSN)
		}
		return nil, err
	}
	return out, nil
}

func validateSelection(sel models.FileSelection) error {
	if len(sel.Files) == 0 {
		return validationError("file selection is empty")
	}
	seen := make(map[string]struct{}, len(sel.Files))
	for i, f := range sel.Files {
		if f.FileID == "" || f.Domain == "" {
			return validationError("file %d: file id and domain are required", i)
		}
		if _, ok := seen[f.FileID]; ok {
			return validationError("duplicate file id %q", f.FileID)
		}
		if !f.StartTime.IsZero() && !f.EndTime.IsZero() && f.StartTime.After(f.EndTime) {
			return validationError("file %q: start time is after end time", f.FileID)
		}
		seen[f.FileID] = struct{}{}
	}
	return nil
}

// StartUpload records a new request with every file PENDING and sends it to
// the device. If the send fails, the files are moved to FAILED before the
// error is returned, so nothing stays PENDING without a dispatch behind it.
func (s *LogService) StartUpload(ctx context.Context, requestedBy, deviceSN string, sel models.FileSelection) (*models.UploadRequest, error) {
	if deviceSN == "" {
		return nil, validationError("device serial is required")
	}
	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := &models.UploadRequest{
		ID:          s.newID(),
		WorkspaceID: sel.WorkspaceID,
		DeviceSN:    deviceSN,
		RequestedBy: requestedBy,
		Description: sel.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, f := range sel.Files {
		req.Files = append(req.Files, &models.FileEntry{
			FileID:    f.FileID,
			Domain:    f.Domain,
			BootIndex: f.BootIndex,
			StartTime: f.StartTime,
			EndTime:   f.EndTime,
			Status:    models.StatusPending,
			UpdatedAt: now,
		})
	}

	if err := s.store.Save(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "upload requested", "request_id", req.ID, "device_sn", deviceSN, "domains", req.Domains(), "requested_by", requestedBy)

	if err := s.gateway.SendStart(ctx, deviceSN, req.ID, req.Files); err != nil {
		s.failPending(context.WithoutCancel(ctx), req, err)
		return nil, fmt.Errorf("dispatch upload %s: %w", req.ID, err)
	}

	stored, err := s.store.FindByID(ctx, req.ID)
	if err != nil {
		return req, nil
	}
	return stored, nil
}

func (s *LogService) failPending(ctx context.Context, req *models.UploadRequest, cause error) {
	reason := "dispatch failed: " + cause.Error()
	for _, f := range req.Files {
		_, err := s.store.UpdateFileStatus(ctx, req.ID, f.FileID, models.StatusFailed, models.FileChange{FailReason: reason})
		if err != nil && !errors.Is(err, common.ErrInvalidTransition) {
			s.log.Error(ctx, "failed to mark file failed", "request_id", req.ID, "file_id", f.FileID, "error", err)
		}
	}
	s.log.Warn(ctx, "upload dispatch failed", "request_id", req.ID, "device_sn", req.DeviceSN, "error", cause)
}

// resolveTargets expands an update into the ordered, de-duplicated list of
// files it cancels.
func resolveTargets(req *models.UploadRequest, upd models.UpdateRequest) ([]string, error) {
	var ids []string
	seen := map[string]struct{}{}
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, t := range upd.Targets {
		if t.Action != models.TargetCancel {
			return nil, validationError("unsupported action %q", t.Action)
		}
		if req.File(t.FileID) == nil {
			return nil, fmt.Errorf("file %s in request %s: %w", t.FileID, req.ID, common.ErrNotFound)
		}
		add(t.FileID)
	}
	for _, d := range upd.Domains {
		matched := false
		for _, f := range req.Files {
			if f.Domain == d {
				add(f.FileID)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("domain %s in request %s: %w", d, req.ID, common.ErrNotFound)
		}
	}

	if len(ids) == 0 {
		return nil, validationError("no files targeted")
	}
	return ids, nil
}

// ApplyUpdate cancels files of a request. Intent is recorded first; a file
// becomes CANCELLED only after the gateway acknowledges, and only if the
// device has not finished it in the meantime. Such files are reported as
// skipped.
func (s *LogService) ApplyUpdate(ctx context.Context, deviceSN string, upd models.UpdateRequest) (*models.UpdateAck, error) {
	req, err := s.store.FindByID(ctx, upd.RequestID)
	if err != nil {
		return nil, err
	}
	if req.DeviceSN != deviceSN {
		return nil, fmt.Errorf("request %s on device %s: %w", upd.RequestID, deviceSN, common.ErrNotFound)
	}

	ids, err := resolveTargets(req, upd)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if f := req.File(id); f.Status.Terminal() {
			return nil, fmt.Errorf("%w: file %s is already %s", common.ErrInvalidTransition, id, f.Status)
		}
	}

	if err := s.store.SetCancelRequested(ctx, req.ID, ids, true); err != nil {
		return nil, err
	}

	targets := make([]models.FileTarget, len(ids))
	for i, id := range ids {
		targets[i] = models.FileTarget{FileID: id, Action: models.TargetCancel}
	}
	if err := s.gateway.SendUpdate(ctx, deviceSN, req.ID, targets); err != nil {
		// the device keeps uploading, so the recorded intent no longer holds
		if cerr := s.store.SetCancelRequested(context.WithoutCancel(ctx), req.ID, ids, false); cerr != nil {
			s.log.Error(ctx, "failed to clear cancel intent", "request_id", req.ID, "error", cerr)
		}
		return nil, fmt.Errorf("dispatch cancel %s: %w", req.ID, err)
	}

	ack := &models.UpdateAck{RequestID: req.ID}
	for _, id := range ids {
		_, err := s.store.UpdateFileStatus(ctx, req.ID, id, models.StatusCancelled, models.FileChange{})
		switch {
		case err == nil:
			ack.Cancelled = append(ack.Cancelled, id)
		case errors.Is(err, common.ErrInvalidTransition):
			ack.Skipped = append(ack.Skipped, id)
		default:
			return nil, err
		}
	}
	s.log.Info(ctx, "upload cancelled", "request_id", req.ID, "device_sn", deviceSN, "cancelled", ack.Cancelled, "skipped", ack.Skipped)
	return ack, nil
}

// DeleteHistory removes a finished request.
func (s *LogService) DeleteHistory(ctx context.Context, deviceSN, requestID string) error {
	req, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.DeviceSN != deviceSN {
		return fmt.Errorf("request %s on device %s: %w", requestID, deviceSN, common.ErrNotFound)
	}
	if req.Active() {
		return fmt.Errorf("%w: request %s is still in progress", common.ErrConflict, requestID)
	}
	return s.store.Delete(ctx, requestID)
}

// ResolveDownloadURL returns a download address for a completed file.
func (s *LogService) ResolveDownloadURL(ctx context.Context, requestID, fileID string) (string, error) {
	f, err := s.store.FindFile(ctx, requestID, fileID)
	if err != nil {
		return "", err
	}
	if f.Status != models.StatusCompleted {
		return "", fmt.Errorf("file %s is %s: %w", fileID, f.Status, common.ErrNotFound)
	}

	url, err := s.locator.Resolve(ctx, f.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrResolutionFailed, err)
	}
	return url, nil
}

// OnDeviceEvent applies a device report to the matching file. Stale,
// duplicate and unknown reports are expected and return nil; only a store
// failure is reported, so the caller can redeliver the event.
func (s *LogService) OnDeviceEvent(ctx context.Context, deviceSN, fileID string, ev models.DeviceEvent) error {
	target, ok := ev.TargetStatus()
	if !ok {
		s.log.Warn(ctx, "unknown device event", "device_sn", deviceSN, "file_id", fileID, "kind", ev.Kind)
		return nil
	}

	requestID, f, err := s.store.FindFileByDevice(ctx, deviceSN, fileID)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "event for unknown file discarded", "device_sn", deviceSN, "file_id", fileID, "kind", ev.Kind)
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up file %s on %s: %w", fileID, deviceSN, err)
	}
	if f.Status.Terminal() {
		s.log.Debug(ctx, "event for finished file ignored", "request_id", requestID, "file_id", fileID, "status", f.Status, "kind", ev.Kind)
		return nil
	}

	change := models.FileChange{
		Progress:   min(max(ev.Progress, 0), 100),
		ObjectKey:  ev.ObjectKey,
		Size:       ev.Size,
		FailReason: ev.Reason,
	}
	if target == models.StatusCompleted && ev.ObjectKey == "" {
		s.log.Warn(ctx, "completion without object key", "request_id", requestID, "file_id", fileID)
		target = models.StatusFailed
		change = models.FileChange{FailReason: missingObjectKey}
	}

	updated, err := s.store.UpdateFileStatus(ctx, requestID, fileID, target, change)
	switch {
	case errors.Is(err, common.ErrInvalidTransition):
		s.log.Debug(ctx, "lost race to another update", "request_id", requestID, "file_id", fileID, "kind", ev.Kind)
	case err != nil:
		return fmt.Errorf("apply %s event to %s/%s: %w", ev.Kind, requestID, fileID, err)
	case updated.Status.Terminal():
		s.log.Info(ctx, "file upload finished", "request_id", requestID, "file_id", fileID, "status", updated.Status)
	}
	return nil
}
