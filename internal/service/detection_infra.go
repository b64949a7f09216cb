package service

import (
	"CircuitEye/internal/pkg/minio"
	"CircuitEye/internal/pkg/redis"
	"context"
	"io"
	"time"
)

type minioAssetStore struct{}

func NewMinioAssetStore() AssetStore {
	return &minioAssetStore{}
}

func (s *minioAssetStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	return minio.UploadFile(ctx, objectName, reader, size, contentType)
}

func (s *minioAssetStore) PublicURL(objectName string) string {
	return minio.GetPublicURL(objectName)
}

func (s *minioAssetStore) Remove(ctx context.Context, objectNames []string) {
	minio.DeleteFiles(ctx, objectNames)
}

type redisQuotaLocker struct{}

func NewRedisQuotaLocker() QuotaLocker {
	return &redisQuotaLocker{}
}

func (s *redisQuotaLocker) Acquire(ctx context.Context, key, value string, expiration time.Duration, retryTimes int) (bool, error) {
	return redis.TryLock(ctx, key, value, expiration, retryTimes)
}

func (s *redisQuotaLocker) Release(ctx context.Context, key, value string) {
	redis.UnLock(ctx, key, value)
}
