// Package local 在配置的根目录下实现存储后端契约.
// 逻辑名直接映射为根目录下的相对路径；元数据来自文件系统 stat.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	nlog "github.com/yimu/filedepot/pkg/log"
)

// Backend 本地磁盘后端.
type Backend struct {
	root    string
	baseURL string
}

var _ backend.Backend = (*Backend)(nil)

// New 创建本地磁盘后端. createIfMissing 时在首次使用前创建根目录.
func New(cfg *configs.LocalBackendConfig) (*Backend, error) {
	root, err := filepath.Abs(cfg.UploadPath)
	if err != nil {
		return nil, fmt.Errorf("resolve upload path: %w", err)
	}

	if cfg.CreateIfMissing {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create upload root %s: %w", root, err)
		}
	} else if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("upload root %s: %w", root, err)
	}

	return &Backend{
		root:    root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Kind 返回后端类型标签.
func (b *Backend) Kind() configs.BackendKind {
	return configs.BackendLocal
}

// Root 返回根目录绝对路径.
func (b *Backend) Root() string {
	return b.root
}

// sanitizeKey 将逻辑键规整为根目录内的相对斜杠路径. 反斜杠按路径分隔符
// 处理，".." 被收拢，结果不再引用根目录之外.
func sanitizeKey(key string) string {
	return strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
}

// resolve 将逻辑键解析为根目录内的绝对路径，拒绝逃出根目录的键.
func (b *Backend) resolve(key string) (string, error) {
	full := filepath.Join(b.root, filepath.FromSlash(sanitizeKey(key)))

	if full != b.root && !strings.HasPrefix(full, b.root+string(os.PathSeparator)) {
		return "", errs.NewValidation("key", fmt.Sprintf("path %q escapes storage root", key))
	}

	return full, nil
}

// ResolveKey 将逻辑键解析为根目录内的绝对路径，供组合后端复用.
func (b *Backend) ResolveKey(key string) (string, error) {
	return b.resolve(key)
}

// publicURL 拼接静态公共 URL；未配置 baseURL 时为空.
func (b *Backend) publicURL(key string) string {
	if b.baseURL == "" {
		return ""
	}

	return b.baseURL + "/" + sanitizeKey(key)
}

// Upload 写入文件. 先写临时文件再重命名，失败时不留下可见的部分写入.
func (b *Backend) Upload(ctx context.Context, name string, r io.Reader, size int64, opts backend.UploadOptions) (*backend.StorageResult, error) {
	full, err := b.resolve(name)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, errs.NewBackendOp(string(b.Kind()), "upload", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return nil, errs.NewBackendOp(string(b.Kind()), "upload", err)
	}

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), full)
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return nil, errs.NewBackendOp(string(b.Kind()), "upload", err)
	}

	return &backend.StorageResult{
		Path:        full,
		Key:         sanitizeKey(name),
		URL:         b.publicURL(name),
		Size:        written,
		ContentType: opts.ContentType,
	}, nil
}

// UploadMultiple 按输入顺序逐条上传，条目之间相互独立.
func (b *Backend) UploadMultiple(ctx context.Context, items []backend.UploadItem) []backend.UploadOutcome {
	outcomes := make([]backend.UploadOutcome, len(items))
	for i, item := range items {
		res, err := b.Upload(ctx, item.Name, item.Reader, item.Size, item.Opts)
		outcomes[i] = backend.UploadOutcome{Result: res, Err: err}
	}

	return outcomes
}

// Delete 删除文件. 不存在的对象返回 Success=false 与说明信息.
func (b *Backend) Delete(ctx context.Context, key string) (backend.DeleteResult, error) {
	full, err := b.resolve(key)
	if err != nil {
		return backend.DeleteResult{Key: key}, err
	}

	switch err := os.Remove(full); {
	case err == nil:
		return backend.DeleteResult{Key: key, Success: true}, nil
	case errors.Is(err, fs.ErrNotExist):
		return backend.DeleteResult{Key: key, Success: false, Message: "object does not exist"}, nil
	default:
		return backend.DeleteResult{Key: key}, errs.NewBackendOp(string(b.Kind()), "delete", err)
	}
}

// DeleteMultiple 逐条删除，每个输入键对应一条结果.
func (b *Backend) DeleteMultiple(ctx context.Context, keys []string) ([]backend.DeleteResult, error) {
	results := make([]backend.DeleteResult, 0, len(keys))

	for _, key := range keys {
		res, err := b.Delete(ctx, key)
		if err != nil {
			res = backend.DeleteResult{Key: key, Success: false, Message: err.Error()}
		}

		results = append(results, res)
	}

	return results, nil
}

// Fetch 打开文件读取；不存在返回 NotFoundError.
func (b *Backend) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewNotFound("object", key)
		}

		return nil, errs.NewBackendOp(string(b.Kind()), "fetch", err)
	}

	return f, nil
}

// Exists 检查文件是否存在，对象缺失不报错.
func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	full, err := b.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, errs.NewBackendOp(string(b.Kind()), "exists", err)
	}

	return true, nil
}

// SignedURL 本地磁盘没有限时访问控制，退化为静态公共 URL；
// 需要私有访问的调用方应自行加一层访问检查.
func (b *Backend) SignedURL(ctx context.Context, key string, opts backend.SignOptions) (string, error) {
	return b.publicURL(key), nil
}

// Metadata 返回文件系统 stat 字段.
func (b *Backend) Metadata(ctx context.Context, key string) (*backend.ObjectMetadata, error) {
	full, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewNotFound("object", key)
		}

		return nil, errs.NewBackendOp(string(b.Kind()), "metadata", err)
	}

	return &backend.ObjectMetadata{
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime(),
		IsDir:        info.IsDir(),
		Extra: map[string]string{
			"mode": info.Mode().String(),
		},
	}, nil
}

// Copy 复制文件，源保持不变.
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	src, err := b.Fetch(ctx, srcKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	return b.Upload(ctx, dstKey, src, -1, backend.UploadOptions{})
}

// Move 复制后删除源. 删源失败仅记录日志，目标作为权威结果.
func (b *Backend) Move(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	res, err := b.Copy(ctx, srcKey, dstKey)
	if err != nil {
		return nil, err
	}

	if del, derr := b.Delete(ctx, srcKey); derr != nil {
		nlog.Logger().Warn().Err(derr).Str("src", srcKey).Str("dst", dstKey).
			Msg("source left behind after move: copy succeeded but source delete failed")
	} else if !del.Success {
		nlog.Logger().Debug().Str("src", srcKey).Str("dst", dstKey).
			Msg("move source already absent")
	}

	return res, nil
}

// Close 本地后端无需释放资源.
func (b *Backend) Close() error {
	return nil
}
