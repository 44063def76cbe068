// Package cdn 组合 s3 后端，仅特化 URL 构造：配置了 CDN 源站时，
// 所有本应返回原生对象 URL 的位置改为返回 {cdnOrigin}/{key}；
// 未配置时退回原生 URL 形式. 预签名 URL 不改写（改写会破坏签名）.
package cdn

import (
	"context"
	"io"
	"strings"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	s3backend "github.com/yimu/filedepot/pkg/internal/storage/backend/s3"
)

// Backend 带 CDN 域名改写的对象存储后端.
type Backend struct {
	*s3backend.Backend

	origin string
}

var _ backend.Backend = (*Backend)(nil)

// New 创建 CDN 后端.
func New(ctx context.Context, cfg *configs.CDNS3BackendConfig) (*Backend, error) {
	base, err := s3backend.New(ctx, &cfg.S3BackendConfig)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Backend: base,
		origin:  strings.TrimRight(cfg.CDNOrigin, "/"),
	}, nil
}

// Kind 返回后端类型标签.
func (b *Backend) Kind() configs.BackendKind {
	return configs.BackendCDNS3
}

// rewriteURL 把对象键映射为 CDN URL；无源站配置时返回原生形式.
func (b *Backend) rewriteURL(key, nativeURL string) string {
	if b.origin == "" {
		return nativeURL
	}

	return b.origin + "/" + strings.TrimLeft(key, "/")
}

// rewriteResult 改写结果中的公共 URL；私有对象（URL 为空）保持为空.
func (b *Backend) rewriteResult(res *backend.StorageResult) *backend.StorageResult {
	if res != nil && res.URL != "" {
		res.URL = b.rewriteURL(res.Key, res.URL)
	}

	return res
}

// Upload 委托 s3 后端上传并改写返回 URL.
func (b *Backend) Upload(ctx context.Context, name string, r io.Reader, size int64, opts backend.UploadOptions) (*backend.StorageResult, error) {
	res, err := b.Backend.Upload(ctx, name, r, size, opts)
	if err != nil {
		return nil, err
	}

	return b.rewriteResult(res), nil
}

// UploadMultiple 逐条委托上传并改写返回 URL.
func (b *Backend) UploadMultiple(ctx context.Context, items []backend.UploadItem) []backend.UploadOutcome {
	outcomes := b.Backend.UploadMultiple(ctx, items)
	for i := range outcomes {
		outcomes[i].Result = b.rewriteResult(outcomes[i].Result)
	}

	return outcomes
}

// Copy 委托服务端拷贝并改写返回 URL.
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	res, err := b.Backend.Copy(ctx, srcKey, dstKey)
	if err != nil {
		return nil, err
	}

	return b.rewriteResult(res), nil
}

// Move 委托复制删除并改写返回 URL，沿用 s3 后端的残留源语义.
func (b *Backend) Move(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	res, err := b.Backend.Move(ctx, srcKey, dstKey)
	if err != nil {
		return nil, err
	}

	return b.rewriteResult(res), nil
}
