package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"guild-sync/core/reconcile"
	"guild-sync/core/storage"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// reportPrefix is the object prefix of every archived sweep report.
const reportPrefix = "reports"

// keyTimeFormat sorts lexically in time order.
const keyTimeFormat = "20060102T150405.000Z"

// ErrReportNotFound is returned when an archived report does not exist.
var ErrReportNotFound = errors.New("report not found")

// Archiver stores sweep reports as JSON objects in the report bucket.
type Archiver struct {
	client    storage.Client
	bucket    string
	retention int
	logger    *zap.Logger
}

// NewArchiver creates a report archiver. retention caps the number of reports
// kept per community; zero keeps all of them.
func NewArchiver(client storage.Client, bucket string, retention int, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, bucket: bucket, retention: retention, logger: logger}
}

// ReportKey returns the object key of a report.
func ReportKey(report *reconcile.SweepReport) string {
	return fmt.Sprintf("%s/%s/%s.json", reportPrefix, report.GuildID, report.StartedAt.UTC().Format(keyTimeFormat))
}

// Store uploads a report and prunes the oldest reports of the community beyond
// the retention. A failing prune is logged, not returned.
func (a *Archiver) Store(ctx context.Context, report *reconcile.SweepReport) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := ReportKey(report)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	if a.retention > 0 {
		if removed, err := a.Prune(ctx, report.GuildID, a.retention); err != nil {
			a.logger.Warn("Failed to prune reports", zap.String("guild_id", report.GuildID), zap.Error(err))
		} else if removed > 0 {
			a.logger.Debug("Pruned reports", zap.String("guild_id", report.GuildID), zap.Int("removed", removed))
		}
	}

	return key, nil
}

// List returns the report keys of a community, oldest first.
func (a *Archiver) List(ctx context.Context, guildID string) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    fmt.Sprintf("%s/%s/", reportPrefix, guildID),
		Recursive: true,
	}

	keys := []string{}
	for obj := range a.client.ListObjects(ctx, a.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports of %s: %w", guildID, obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Load downloads one report of a community by file name.
func (a *Archiver) Load(ctx context.Context, guildID, name string) (*reconcile.SweepReport, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%q: %w", name, ErrReportNotFound)
	}
	key := fmt.Sprintf("%s/%s/%s", reportPrefix, guildID, name)

	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", key, err)
	}
	defer obj.Close()

	// Object reads are lazy; a missing key surfaces on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", key, ErrReportNotFound)
		}
		return nil, fmt.Errorf("failed to read report %s: %w", key, err)
	}

	var report reconcile.SweepReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return &report, nil
}

// Prune deletes the oldest reports of a community so that at most keep remain.
func (a *Archiver) Prune(ctx context.Context, guildID string, keep int) (int, error) {
	keys, err := a.List(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}
	stale := keys[:len(keys)-keep]

	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, key := range stale {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed []string
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", rerr.ObjectName, rerr.Err))
		}
	}
	if len(failed) > 0 {
		return len(stale) - len(failed), fmt.Errorf("batch delete had %d errors: %v", len(failed), failed)
	}
	return len(stale), nil
}
