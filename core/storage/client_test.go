package storage_test

import (
	"context"
	"testing"

	"guild-sync/core/storage"
	"guild-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "reports",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	cfg := storage.Config{Bucket: "reports", Region: "eu-central-1"}

	t.Run("Exists", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "reports").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(context.Background(), client, cfg))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "reports").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "reports", minio.MakeBucketOptions{Region: "eu-central-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(context.Background(), client, cfg))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := &mocks.Client{}
		client.On("BucketExists", mock.Anything, "reports").Return(false, assert.AnError)

		err := storage.EnsureBucket(context.Background(), client, cfg)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
