// Package permfs 在本地磁盘后端之上叠加 POSIX 权限与属主控制，并提供符号链接操作.
// 组合而非继承：持有 local.Backend 并只在写入后动作与类型标签上有差异.
package permfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/local"
	nlog "github.com/yimu/filedepot/pkg/log"
)

// Backend 带权限控制的本地磁盘后端.
type Backend struct {
	*local.Backend

	mode  fs.FileMode
	owner *configs.OwnerConfig
}

var _ backend.Backend = (*Backend)(nil)

// New 创建 permfs 后端.
func New(cfg *configs.PermFSBackendConfig) (*Backend, error) {
	base, err := local.New(&cfg.LocalBackendConfig)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Backend: base,
		mode:    cfg.Mode(),
		owner:   cfg.Owner,
	}, nil
}

// Kind 返回后端类型标签.
func (b *Backend) Kind() configs.BackendKind {
	return configs.BackendPermFS
}

// applyPerms 对写入结果应用权限位和属主. 写入本身已成功并作为权威结果，
// 权限应用失败只记录日志不向上传播（调用进程通常无 chown 特权）.
func (b *Backend) applyPerms(path string) {
	if err := os.Chmod(path, b.mode); err != nil {
		nlog.Logger().Warn().Err(err).Str("path", path).Msg("chmod after write failed")
	}

	if b.owner != nil {
		if err := os.Chown(path, b.owner.UID, b.owner.GID); err != nil {
			nlog.Logger().Warn().Err(err).Str("path", path).
				Int("uid", b.owner.UID).Int("gid", b.owner.GID).Msg("chown after write failed")
		}
	}
}

// Upload 委托本地后端写入，成功后应用权限.
func (b *Backend) Upload(ctx context.Context, name string, r io.Reader, size int64, opts backend.UploadOptions) (*backend.StorageResult, error) {
	res, err := b.Backend.Upload(ctx, name, r, size, opts)
	if err != nil {
		return nil, err
	}

	b.applyPerms(res.Path)

	return res, nil
}

// UploadMultiple 按输入顺序逐条上传并应用权限.
func (b *Backend) UploadMultiple(ctx context.Context, items []backend.UploadItem) []backend.UploadOutcome {
	outcomes := make([]backend.UploadOutcome, len(items))
	for i, item := range items {
		res, err := b.Upload(ctx, item.Name, item.Reader, item.Size, item.Opts)
		outcomes[i] = backend.UploadOutcome{Result: res, Err: err}
	}

	return outcomes
}

// Copy 委托本地后端复制，成功后应用权限.
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	res, err := b.Backend.Copy(ctx, srcKey, dstKey)
	if err != nil {
		return nil, err
	}

	b.applyPerms(res.Path)

	return res, nil
}

// Move 复制（带权限应用）后删除源，沿用本地后端的残留源语义.
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

// 以下为该后端特有的符号链接扩展，超出通用后端契约，
// 只有显式使用 permfs 后端的调用方可达.

// CreateSymlink 在 linkKey 处创建指向 targetKey 的符号链接；
// 链接目标不存在时返回 NotFoundError. 两个键都走根目录内的路径解析，
// 不会链接到存储根之外.
func (b *Backend) CreateSymlink(ctx context.Context, targetKey, linkKey string) error {
	target, err := b.ResolveKey(targetKey)
	if err != nil {
		return err
	}

	link, err := b.ResolveKey(linkKey)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.NewNotFound("object", targetKey)
		}

		return errs.NewBackendOp(string(b.Kind()), "symlink", err)
	}

	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return errs.NewBackendOp(string(b.Kind()), "symlink", err)
	}

	if err := os.Symlink(target, link); err != nil {
		return errs.NewBackendOp(string(b.Kind()), "symlink", err)
	}

	return nil
}

// IsSymlink 检查键处是否是符号链接.
func (b *Backend) IsSymlink(ctx context.Context, key string) (bool, error) {
	full, err := b.ResolveKey(key)
	if err != nil {
		return false, err
	}

	info, err := os.Lstat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, errs.NewBackendOp(string(b.Kind()), "lstat", err)
	}

	return info.Mode()&os.ModeSymlink != 0, nil
}

// ResolveSymlink 解析符号链接的最终目标路径.
func (b *Backend) ResolveSymlink(ctx context.Context, key string) (string, error) {
	full, err := b.ResolveKey(key)
	if err != nil {
		return "", err
	}

	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errs.NewNotFound("object", key)
		}

		return "", errs.NewBackendOp(string(b.Kind()), "readlink", err)
	}

	return target, nil
}
