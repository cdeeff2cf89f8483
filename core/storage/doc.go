// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface so the sweep
// report archive can run against AWS S3, a self-hosted MinIO instance or the
// testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket at startup.
//   - PutObject: stores a sweep report.
//   - GetObject: reads a stored report back.
//   - ListObjects: lists reports under a guild prefix.
//   - RemoveObjects: prunes old reports in one batch.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage)
package storage
