// Package models defines the server-side data model of log uploads.
package models

import "time"

// UploadRequest is one log-upload negotiation with one device.
type UploadRequest struct {
	ID          string
	WorkspaceID string
	DeviceSN    string
	// RequestedBy is the identity of the user who initiated the upload.
	RequestedBy string
	// Description is free text supplied at creation ("logs information").
	Description string
	Files       []*FileEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FileEntry is one physical log file within a request.
type FileEntry struct {
	FileID    string
	Domain    string
	BootIndex int
	StartTime time.Time
	EndTime   time.Time

	Status FileStatus
	// Progress is a percentage, non-decreasing while UPLOADING.
	Progress int
	// ObjectKey is the object-storage key, set only once COMPLETED.
	ObjectKey string
	Size      int64
	// CancelRequested records a cancellation sent to the gateway but not yet acknowledged.
	CancelRequested bool
	FailReason      string
	UpdatedAt       time.Time
}

// File returns the entry with the given id, or nil.
func (r *UploadRequest) File(fileID string) *FileEntry {
	for _, f := range r.Files {
		if f.FileID == fileID {
			return f
		}
	}
	return nil
}

// Active reports whether any file is still in flight.
func (r *UploadRequest) Active() bool {
	for _, f := range r.Files {
		if !f.Status.Terminal() {
			return true
		}
	}
	return false
}

// Status aggregates file states into a request-level status.
func (r *UploadRequest) Status() FileStatus {
	if len(r.Files) == 0 {
		return StatusPending
	}
	completed, failed := 0, 0
	for _, f := range r.Files {
		switch f.Status {
		case StatusPending, StatusUploading:
			return StatusUploading
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}
	switch {
	case completed == len(r.Files):
		return StatusCompleted
	case failed > 0:
		return StatusFailed
	default:
		return StatusCancelled
	}
}

// Domains returns the distinct domains of the request in file order.
func (r *UploadRequest) Domains() []string {
	seen := make(map[string]struct{}, len(r.Files))
	var out []string
	for _, f := range r.Files {
		if _, ok := seen[f.Domain]; ok {
			continue
		}
		seen[f.Domain] = struct{}{}
		out = append(out, f.Domain)
	}
	return out
}

// FileSpec selects one log file to upload.
type FileSpec struct {
	FileID    string
	Domain    string
	BootIndex int
	StartTime time.Time
	EndTime   time.Time
}

// FileSelection is the body of a start-upload call.
type FileSelection struct {
	WorkspaceID string
	Description string
	Files       []FileSpec
}

// FileChange carries the fields written together with a status transition.
type FileChange struct {
	Progress   int
	ObjectKey  string
	Size       int64
	FailReason string
}
