package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCSStore Google Cloud Storage 存储
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewGCSStore 创建 GCS 存储；credFile 为空时使用默认凭据
// baseURL 为空时使用 storage.googleapis.com 公网地址
func NewGCSStore(ctx context.Context, bucket, credFile, baseURL string, logger *zap.Logger) (*GCSStore, error) {
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 GCS 客户端失败: %w", err)
	}

	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		baseURL = "https://storage.googleapis.com/" + bucket
	}

	logger.Info("GCS 存储已初始化", zap.String("bucket", bucket))

	return &GCSStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

func (s *GCSStore) Save(ctx context.Context, r io.Reader, subdir, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := objectKey(subdir, filename)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("写入 GCS 失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("关闭 GCS 写入器失败: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete 删除对象，对象不存在视为成功
func (s *GCSStore) Delete(ctx context.Context, fileURL string) error {
	key, err := keyFromURL(s.baseURL, fileURL)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("删除 GCS 对象失败: %w", err)
	}
	return nil
}

// Close 关闭 GCS 客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
