package minio

import (
	"CircuitEye/internal/api/config"
	"context"
	"fmt"
	"io"
	log "log/slog"

	"github.com/minio/minio-go/v7"
)

// UploadFile 上传文件到MinIO，返回对象名作为删除标识
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	uploadInfo, err := Client.PutObject(ctx, UploadBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return uploadInfo.Key, nil
}

// DeleteFile 删除MinIO中的文件
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return fmt.Errorf("minio client is not initialized")
	}

	err := Client.RemoveObject(ctx, UploadBucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// DeleteFiles 批量删除，用于补偿回滚。尽力而为，单个失败只记日志不中断
func DeleteFiles(ctx context.Context, objectNames []string) {
	for _, name := range objectNames {
		if name == "" {
			continue
		}
		if err := DeleteFile(ctx, name); err != nil {
			log.WarnContext(ctx, "补偿删除对象失败", "object", name, "err", err)
		}
	}
}

// GetPublicURL 获取文件的公共访问URL
func GetPublicURL(objectName string) string {
	cfg := config.Cfg.MinIO

	protocol := "http"
	if cfg.ExternalUseSSL {
		protocol = "https"
	}

	return fmt.Sprintf("%s://%s/%s/%s", protocol, cfg.ExternalEndpoint, UploadBucket, objectName)
}
