// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"doc-annotator-go/internal/config"
	"doc-annotator-go/internal/model"
	"doc-annotator-go/pkg/log"
)

// Archiver 将被覆盖或删除的文档内容归档到 MinIO。
type Archiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewArchiver(ctx context.Context, cfg config.MinIOConfig) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		log.Infof("存储桶 '%s' 创建成功", cfg.BucketName)
	}
	return &Archiver{client: client, bucket: cfg.BucketName}, nil
}

// Archive 以 documents/<id>/v<version>-<时间戳>.txt 的形式保存文档内容。
func (a *Archiver) Archive(ctx context.Context, doc model.Document) error {
	name := ObjectName(doc, time.Now())
	_, err := a.client.PutObject(ctx, a.bucket, name, strings.NewReader(doc.Content), int64(len(doc.Content)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
		UserMetadata: map[string]string{
			"document-id": fmt.Sprint(doc.ID),
			"version":     fmt.Sprint(doc.Version),
		},
	})
	if err != nil {
		return fmt.Errorf("归档文档 %d 失败: %w", doc.ID, err)
	}
	log.Infof("文档 %d 的版本 %d 已归档到 %s/%s", doc.ID, doc.Version, a.bucket, name)
	return nil
}

// ObjectName 返回文档某个版本的归档对象名。
func ObjectName(doc model.Document, at time.Time) string {
	return fmt.Sprintf("documents/%d/v%d-%d.txt", doc.ID, doc.Version, at.UnixMilli())
}

