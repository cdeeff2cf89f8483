package sync

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"guild-sync/core/reconcile"
	"guild-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testReport() *reconcile.SweepReport {
	started := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	return &reconcile.SweepReport{
		GuildID:    "123",
		Success:    true,
		Total:      2,
		Synced:     2,
		Members:    []reconcile.MemberOutcome{},
		Errors:     []string{},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func objectChannel(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/123/20260102T100000.000Z.json", ReportKey(testReport()))
}

func TestArchiver_Store(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", "reports/123/20260102T100000.000Z.json", mock.Anything, mock.AnythingOfType("int64"), mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
		return opts.ContentType == "application/json"
	})).Return(minio.UploadInfo{}, nil)

	archiver := NewArchiver(client, "bucket", 0, nil)
	key, err := archiver.Store(context.Background(), testReport())

	require.NoError(t, err)
	assert.Equal(t, "reports/123/20260102T100000.000Z.json", key)
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiver_StoreFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	_, err := NewArchiver(client, "bucket", 5, nil).Store(context.Background(), testReport())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestArchiver_StorePrunes(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, "bucket", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
		return opts.Prefix == "reports/123/" && opts.Recursive
	})).Return(objectChannel(
		minio.ObjectInfo{Key: "reports/123/20260102T100000.000Z.json"},
		minio.ObjectInfo{Key: "reports/123/20251230T100000.000Z.json"},
		minio.ObjectInfo{Key: "reports/123/20251231T100000.000Z.json"},
	))

	var removed []string
	client.On("RemoveObjects", mock.Anything, "bucket", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for obj := range args.Get(2).(<-chan minio.ObjectInfo) {
				removed = append(removed, obj.Key)
			}
		}).
		Return(nil)

	_, err := NewArchiver(client, "bucket", 2, nil).Store(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/123/20251230T100000.000Z.json"}, removed)
}

func TestArchiver_List(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectChannel(
		minio.ObjectInfo{Key: "reports/123/b.json"},
		minio.ObjectInfo{Key: "reports/123/readme.txt"},
		minio.ObjectInfo{Key: "reports/123/a.json"},
	))

	keys, err := NewArchiver(client, "bucket", 0, nil).List(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/123/a.json", "reports/123/b.json"}, keys)
}

func TestArchiver_ListError(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectChannel(
		minio.ObjectInfo{Err: assert.AnError},
	))

	_, err := NewArchiver(client, "bucket", 0, nil).List(context.Background(), "123")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestArchiver_Load(t *testing.T) {
	body := `{"guild_id":"123","success":false,"total":1,"failed":1,"errors":["could not ban user (x)"]}`

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "reports/123/r.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)

	report, err := NewArchiver(client, "bucket", 0, nil).Load(context.Background(), "123", "r.json")
	require.NoError(t, err)
	assert.Equal(t, "123", report.GuildID)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"could not ban user (x)"}, report.Errors)
}

func TestArchiver_LoadNotFound(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "reports/123/missing.json", mock.Anything).
		Return(io.NopCloser(errReader{err: minio.ErrorResponse{Code: "NoSuchKey"}}), nil)

	archiver := NewArchiver(client, "bucket", 0, nil)

	_, err := archiver.Load(context.Background(), "123", "missing.json")
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = archiver.Load(context.Background(), "123", "../456/r.json")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestArchiver_PruneErrors(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectChannel(
		minio.ObjectInfo{Key: "reports/123/a.json"},
		minio.ObjectInfo{Key: "reports/123/b.json"},
	))

	errs := make(chan minio.RemoveObjectError, 1)
	errs <- minio.RemoveObjectError{ObjectName: "reports/123/a.json", Err: assert.AnError}
	close(errs)
	client.On("RemoveObjects", mock.Anything, "bucket", mock.Anything, mock.Anything).
		Return((<-chan minio.RemoveObjectError)(errs))

	removed, err := NewArchiver(client, "bucket", 0, nil).Prune(context.Background(), "123", 1)
	assert.Error(t, err)
	assert.Zero(t, removed)
}
