package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TruongPersonal/HUSC-ResearchHub/config"
)

var ErrInvalidFileURL = errors.New("文件地址不属于当前存储")

// Store 文档存储接口
// Save 返回可公开访问的文件地址，Delete 以同一地址删除对象
type Store interface {
	Save(ctx context.Context, r io.Reader, subdir, filename string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// New 按配置创建存储驱动
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredFile, cfg.PublicBaseURL, logger)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
}

// objectKey 生成对象键 subdir/<uuid><ext>，原文件名只保留扩展名
func objectKey(subdir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	subdir = strings.Trim(path.Clean("/"+subdir), "/")
	if subdir == "" {
		return name
	}
	return subdir + "/" + name
}

// keyFromURL 将公开地址还原为对象键
func keyFromURL(baseURL, fileURL string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", ErrInvalidFileURL
	}
	key := strings.TrimPrefix(fileURL, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", ErrInvalidFileURL
	}
	return key, nil
}
