package sync

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"guild-sync/core/directory"
	"guild-sync/core/reconcile"
	"guild-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSyncer struct {
	result  *reconcile.Result
	release chan struct{}
	started chan struct{}
	sweeps  atomic.Int32
}

func (f *fakeSyncer) SyncUser(_ context.Context, _ string, _ directory.User) *reconcile.Result {
	return f.result
}

func (f *fakeSyncer) Sweep(_ context.Context, guildID string, progress func(reconcile.Progress)) *reconcile.SweepReport {
	f.sweeps.Add(1)
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if progress != nil {
		progress(reconcile.Progress{Done: 1, Total: 1})
	}
	report := testReport()
	report.GuildID = guildID
	return report
}

func setupTestApp(t *testing.T, syncer Syncer, archiver *Archiver) *fiber.App {
	t.Helper()
	app := fiber.New()
	svc := NewService(syncer, archiver, zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func TestHandleSyncMember(t *testing.T) {
	result := reconcile.NewResult()
	result.Add(reconcile.Outcome{Step: reconcile.StepRoles, Action: reconcile.ActionGrantRoles, Err: directory.ErrPermissionDenied, Message: "could not grant roles"})
	app := setupTestApp(t, &fakeSyncer{result: result}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/123/members/456", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{"could not grant roles"}, body["errors"])
}

func TestHandleSyncMember_InvalidID(t *testing.T) {
	app := setupTestApp(t, &fakeSyncer{}, nil)

	tests := []string{"/sync/abc/members/456", "/sync/123/members/xyz"}
	for _, path := range tests {
		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, path)
	}
}

func TestHandleSweep(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", "reports/123/20260102T100000.000Z.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	app := setupTestApp(t, &fakeSyncer{}, NewArchiver(client, "bucket", 0, nil))

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/123", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "reports/123/20260102T100000.000Z.json", resp.Header.Get("X-Report-Key"))

	var report reconcile.SweepReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "123", report.GuildID)
	assert.Equal(t, 2, report.Synced)
}

func TestHandleReports_Disabled(t *testing.T) {
	app := setupTestApp(t, &fakeSyncer{}, nil)

	for _, path := range []string{"/sync/123/reports", "/sync/123/reports/a.json"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	}
}

func TestHandleListReports(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectChannel(
		minio.ObjectInfo{Key: "reports/123/a.json"},
	))
	app := setupTestApp(t, &fakeSyncer{}, NewArchiver(client, "bucket", 0, nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/123/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []any{"reports/123/a.json"}, body["reports"])
}

func TestHandleGetReport(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "reports/123/a.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(`{"guild_id":"123","total":4}`)), nil)
	client.On("GetObject", mock.Anything, "bucket", "reports/123/b.json", mock.Anything).
		Return(io.NopCloser(errReader{err: minio.ErrorResponse{Code: "NoSuchKey"}}), nil)
	app := setupTestApp(t, &fakeSyncer{}, NewArchiver(client, "bucket", 0, nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/123/reports/a.json", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/123/reports/b.json", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestService_SweepSharedPerGuild(t *testing.T) {
	syncer := &fakeSyncer{release: make(chan struct{}), started: make(chan struct{})}
	svc := NewService(syncer, nil, nil)

	var (
		wg   gosync.WaitGroup
		runs [2]SweepRun
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runs[0] = svc.Sweep(context.Background(), "123", nil)
	}()
	<-syncer.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		runs[1] = svc.Sweep(context.Background(), "123", nil)
	}()
	time.Sleep(50 * time.Millisecond)
	close(syncer.release)
	wg.Wait()

	assert.Equal(t, int32(1), syncer.sweeps.Load())
	assert.Same(t, runs[0].Report, runs[1].Report)
	assert.True(t, runs[0].Shared && runs[1].Shared)
}

func TestService_SweepWithEngine(t *testing.T) {
	dir := directory.NewMemory()
	dir.AddMember(directory.Member{GuildID: "123", User: directory.User{ID: "7", Username: "bot", Bot: true}})
	engine := reconcile.NewEngine(reconcile.Config{}, testDonorConfig(), emptyPolicy{}, dir, nil, nil)

	var updates []reconcile.Progress
	run := NewService(engine, nil, nil).Sweep(context.Background(), "123", func(p reconcile.Progress) {
		updates = append(updates, p)
	})

	assert.True(t, run.Report.Success)
	assert.Equal(t, 1, run.Report.Skipped)
	assert.Len(t, updates, 1)
	assert.Empty(t, run.ArchiveKey)
}
