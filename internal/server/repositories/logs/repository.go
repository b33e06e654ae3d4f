// Package logs is the log record store: the persistent catalog of upload
// requests and the per-file status they carry.
package logs

import (
	"context"

	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

// Repository is the storage contract the upload service relies on.
//
// UpdateFileStatus is a compare-and-set on a single file: the write only
// happens if the file's current status is an allowed source of status.
// It returns common.ErrInvalidTransition when a concurrent writer got there
// first and common.ErrNotFound when the file does not exist.
//
// A COMPLETED file always carries an object key; completing without one
// fails with common.ErrValidation.
//
// Save returns common.ErrConflict when the device already has an active
// file in any of the request's domains. Delete returns common.ErrConflict
// while any file of the request is still active.
type Repository interface {
	Save(ctx context.Context, req *models.UploadRequest) error
	FindPaged(ctx context.Context, deviceSN string, params models.QueryParams) (*models.Page[*models.UploadRequest], error)
	FindByID(ctx context.Context, requestID string) (*models.UploadRequest, error)
	FindFile(ctx context.Context, requestID, fileID string) (*models.FileEntry, error)
	// FindFileByDevice resolves a device callback to a file. An active
	// entry wins over terminal ones; otherwise the most recently updated.
	FindFileByDevice(ctx context.Context, deviceSN, fileID string) (string, *models.FileEntry, error)
	// SetCancelRequested flags or unflags active files of a request.
	SetCancelRequested(ctx context.Context, requestID string, fileIDs []string, requested bool) error
	UpdateFileStatus(ctx context.Context, requestID, fileID string, status models.FileStatus, change models.FileChange) (*models.FileEntry, error)
	Delete(ctx context.Context, requestID string) error
}
