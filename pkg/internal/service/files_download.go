package service

import (
	"context"
	"io"
	"time"

	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/types"
)

// GetFile 按 ID 返回文件记录视图.
func (fs *FileService) GetFile(ctx context.Context, fileID string) (*types.FileInfo, error) {
	record, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	info := fileInfo(record)

	return &info, nil
}

// OpenFile 打开文件内容流. 调用方负责 Close.
func (fs *FileService) OpenFile(ctx context.Context, fileID string) (io.ReadCloser, *types.FileInfo, error) {
	record, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, nil, err
	}

	b, err := fs.resolveBackend(record.StorageKind)
	if err != nil {
		return nil, nil, err
	}

	rc, err := b.Fetch(ctx, record.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	info := fileInfo(record)

	return rc, &info, nil
}

// SignedURL 为文件签发限时访问 URL. 本地后端无签名概念时退回公共 URL，
// 此时 ExpiresIn 为 0.
func (fs *FileService) SignedURL(ctx context.Context, fileID string, req *types.SignedURLRequest) (*types.SignedURLResponse, error) {
	record, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	b, err := fs.resolveBackend(record.StorageKind)
	if err != nil {
		return nil, err
	}

	expiry := DefaultSignedURLTimeout
	if req != nil && req.ExpirySeconds > 0 {
		expiry = time.Duration(req.ExpirySeconds) * time.Second
	}

	opts := backend.SignOptions{ExpiresIn: expiry}
	if req != nil {
		opts.ContentType = req.ResponseContentType
		opts.ContentDisposition = req.ResponseContentDisposition
	}

	u, err := b.SignedURL(ctx, record.StorageKey, opts)
	if err != nil {
		return nil, err
	}

	expiresIn := int(expiry.Seconds())
	if u == record.URL {
		// 静态公共 URL 没有过期语义
		expiresIn = 0
	}

	return &types.SignedURLResponse{
		FileID:    record.ID,
		URL:       u,
		ExpiresIn: expiresIn,
	}, nil
}

// BackendMetadata 查询后端观测到的对象属性（大小、类型、修改时间等）.
func (fs *FileService) BackendMetadata(ctx context.Context, fileID string) (*backend.ObjectMetadata, error) {
	record, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	b, err := fs.resolveBackend(record.StorageKind)
	if err != nil {
		return nil, err
	}

	return b.Metadata(ctx, record.StorageKey)
}
