package logs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T) *MemoryRepository {
	t.Helper()
	m := NewMemoryRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var tick int64
	m.now = func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second)
	}
	return m
}

func pending(id, domain string) *models.FileEntry {
	return &models.FileEntry{FileID: id, Domain: domain, Status: models.StatusPending}
}

func request(id, sn string, created time.Time, files ...*models.FileEntry) *models.UploadRequest {
	return &models.UploadRequest{ID: id, DeviceSN: sn, CreatedAt: created, Files: files}
}

func TestMemory_SaveConflictOnActiveDomain(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	now := time.Now()

	require.NoError(t, m.Save(ctx, request("r1", "SN001", now, pending("f1", "flight"))))

	err := m.Save(ctx, request("r2", "SN001", now, pending("f2", "camera"), pending("f3", "flight")))
	assert.ErrorIs(t, err, common.ErrConflict)

	// other device and other domain are independent
	require.NoError(t, m.Save(ctx, request("r3", "SN002", now, pending("f1", "flight"))))
	require.NoError(t, m.Save(ctx, request("r4", "SN001", now, pending("f4", "camera"))))

	// once terminal, the domain is free again
	_, err = m.UpdateFileStatus(ctx, "r1", "f1", models.StatusFailed, models.FileChange{FailReason: "x"})
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, request("r5", "SN001", now, pending("f5", "flight"))))
}

func TestMemory_SaveDuplicateFileID(t *testing.T) {
	m := newMemory(t)
	err := m.Save(context.Background(), request("r1", "SN001", time.Now(), pending("f1", "a"), pending("f1", "b")))
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestMemory_ConcurrentSaveOneWins(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)

	var wg sync.WaitGroup
	var ok, conflicts int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := m.Save(ctx, request(fmt.Sprintf("r%d", i), "SN001", time.Now(), pending("f", "flight")))
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, common.ErrConflict):
				atomic.AddInt32(&conflicts, 1)
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 31, conflicts)
}

func TestMemory_UpdateFileStatus(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	require.NoError(t, m.Save(ctx, request("r1", "SN001", time.Now(), pending("f1", "flight"))))

	f, err := m.UpdateFileStatus(ctx, "r1", "f1", models.StatusUploading, models.FileChange{Progress: 60})
	require.NoError(t, err)
	assert.Equal(t, 60, f.Progress)

	// progress never goes backwards
	f, err = m.UpdateFileStatus(ctx, "r1", "f1", models.StatusUploading, models.FileChange{Progress: 30})
	require.NoError(t, err)
	assert.Equal(t, 60, f.Progress)

	f, err = m.UpdateFileStatus(ctx, "r1", "f1", models.StatusCompleted, models.FileChange{ObjectKey: "k", Size: 9})
	require.NoError(t, err)
	assert.Equal(t, 100, f.Progress)
	assert.Equal(t, "k", f.ObjectKey)

	_, err = m.UpdateFileStatus(ctx, "r1", "f1", models.StatusCancelled, models.FileChange{})
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	_, err = m.UpdateFileStatus(ctx, "r1", "nope", models.StatusCancelled, models.FileChange{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_ConcurrentTerminalTransitionsOneWins(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	require.NoError(t, m.Save(ctx, request("r1", "SN001", time.Now(), pending("f1", "flight"))))

	targets := []models.FileStatus{models.StatusCompleted, models.StatusFailed, models.StatusCancelled}
	var wg sync.WaitGroup
	var winners int32
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(s models.FileStatus) {
			defer wg.Done()
			if _, err := m.UpdateFileStatus(ctx, "r1", "f1", s, models.FileChange{ObjectKey: "k"}); err == nil {
				atomic.AddInt32(&winners, 1)
			}
		}(targets[i%len(targets)])
	}
	wg.Wait()
	assert.EqualValues(t, 1, winners)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	req := request("r1", "SN001", time.Now(), pending("f1", "flight"))
	require.NoError(t, m.Save(ctx, req))

	req.Files[0].Status = models.StatusCompleted
	got, err := m.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Files[0].Status)

	got.Files[0].Progress = 99
	f, err := m.FindFile(ctx, "r1", "f1")
	require.NoError(t, err)
	assert.Zero(t, f.Progress)
}

func TestMemory_FindPaged(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		r := request(fmt.Sprintf("r%02d", i), "SN001", base.Add(time.Duration(i)*time.Hour),
			&models.FileEntry{FileID: "f", Domain: fmt.Sprintf("d%d", i), Status: models.StatusCompleted})
		if i%5 == 0 {
			r.Description = "Crash report"
		}
		require.NoError(t, m.Save(ctx, r))
	}
	require.NoError(t, m.Save(ctx, request("other", "SN002", base)))

	page, err := m.FindPaged(ctx, "SN001", models.QueryParams{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "r04", page.Items[0].ID)

	page, err = m.FindPaged(ctx, "SN001", models.QueryParams{Keyword: "crash", Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, "r00", page.Items[0].ID)

	page, err = m.FindPaged(ctx, "SN001", models.QueryParams{
		BeginTime: base.Add(10 * time.Hour), EndTime: base.Add(12 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = m.FindPaged(ctx, "SN001", models.QueryParams{Status: models.StatusFailed})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)

	page, err = m.FindPaged(ctx, "SN001", models.QueryParams{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestMemory_FindFileByDevicePrefersActive(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	now := time.Now()

	require.NoError(t, m.Save(ctx, request("old", "SN001", now, pending("f1", "flight"))))
	_, err := m.UpdateFileStatus(ctx, "old", "f1", models.StatusCompleted, models.FileChange{ObjectKey: "k"})
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, request("new", "SN001", now, pending("f1", "flight"))))

	reqID, f, err := m.FindFileByDevice(ctx, "SN001", "f1")
	require.NoError(t, err)
	assert.Equal(t, "new", reqID)
	assert.Equal(t, models.StatusPending, f.Status)

	_, _, err = m.FindFileByDevice(ctx, "SN009", "f1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_SetCancelRequested(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	require.NoError(t, m.Save(ctx, request("r1", "SN001", time.Now(), pending("f1", "a"), pending("f2", "b"))))

	require.NoError(t, m.SetCancelRequested(ctx, "r1", []string{"f1", "f2"}, true))
	require.NoError(t, m.SetCancelRequested(ctx, "r1", []string{"f2"}, false))
	req, err := m.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, req.Files[0].CancelRequested)
	assert.False(t, req.Files[1].CancelRequested)

	f, err := m.UpdateFileStatus(ctx, "r1", "f1", models.StatusCancelled, models.FileChange{})
	require.NoError(t, err)
	assert.False(t, f.CancelRequested)
}

func TestMemory_CompletedRequiresObjectKey(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	require.NoError(t, m.Save(ctx, request("r1", "SN001", time.Now(), pending("f1", "a"))))

	_, err := m.UpdateFileStatus(ctx, "r1", "f1", models.StatusCompleted, models.FileChange{Size: 10})
	assert.ErrorIs(t, err, common.ErrValidation)

	f, err := m.FindFile(ctx, "r1", "f1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, f.Status)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	require.NoError(t, m.Save(ctx, request("r1", "SN001", time.Now(), pending("f1", "a"))))

	assert.ErrorIs(t, m.Delete(ctx, "r1"), common.ErrConflict)
	assert.ErrorIs(t, m.Delete(ctx, "nope"), common.ErrNotFound)

	_, err := m.UpdateFileStatus(ctx, "r1", "f1", models.StatusCancelled, models.FileChange{})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "r1"))

	_, err = m.FindByID(ctx, "r1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	page, err := m.FindPaged(ctx, "SN001", models.QueryParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
