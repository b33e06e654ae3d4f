package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to FileStatus
		want     bool
	}{
		{StatusPending, StatusUploading, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusUploading, StatusUploading, true},
		{StatusUploading, StatusCompleted, true},
		{StatusUploading, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusFailed, StatusUploading, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for s := range transitions {
		if !s.Terminal() {
			continue
		}
		for to := range transitions {
			assert.Falsef(t, CanTransition(s, to), "%s must not move to %s", s, to)
		}
	}
}

func TestSourcesOf(t *testing.T) {
	if d := cmp.Diff([]FileStatus{StatusPending, StatusUploading}, SourcesOf(StatusCancelled)); d != "" {
		t.Fatalf("SourcesOf(CANCELLED) mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]FileStatus{StatusPending, StatusUploading}, SourcesOf(StatusUploading)); d != "" {
		t.Fatalf("SourcesOf(UPLOADING) mismatch (-want +got):\n%s", d)
	}
	assert.Empty(t, SourcesOf(StatusPending))
}

func TestUploadRequest_Status(t *testing.T) {
	mk := func(ss ...FileStatus) *UploadRequest {
		r := &UploadRequest{}
		for _, s := range ss {
			r.Files = append(r.Files, &FileEntry{Status: s})
		}
		return r
	}
	assert.Equal(t, StatusUploading, mk(StatusCompleted, StatusPending).Status())
	assert.Equal(t, StatusCompleted, mk(StatusCompleted, StatusCompleted).Status())
	assert.Equal(t, StatusFailed, mk(StatusCompleted, StatusFailed, StatusCancelled).Status())
	assert.Equal(t, StatusCancelled, mk(StatusCompleted, StatusCancelled).Status())
	assert.True(t, mk(StatusFailed, StatusUploading).Active())
	assert.False(t, mk(StatusFailed, StatusCancelled).Active())
}

func TestUploadRequest_DomainsAndFile(t *testing.T) {
	r := &UploadRequest{Files: []*FileEntry{
		{FileID: "f1", Domain: "flight"},
		{FileID: "f2", Domain: "camera"},
		{FileID: "f3", Domain: "flight"},
	}}
	assert.Equal(t, []string{"flight", "camera"}, r.Domains())
	assert.Equal(t, "camera", r.File("f2").Domain)
	assert.Nil(t, r.File("nope"))
}

func TestQueryParams_Normalize(t *testing.T) {
	q := QueryParams{Page: 0, PageSize: 0}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, 0, q.Offset())

	q = QueryParams{Page: 3, PageSize: 500}.Normalize()
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, 200, q.Offset())
}

func TestDeviceEvent_TargetStatus(t *testing.T) {
	s, ok := DeviceEvent{Kind: EventCompleted}.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)

	_, ok = DeviceEvent{Kind: "BOGUS"}.TargetStatus()
	assert.False(t, ok)
}
