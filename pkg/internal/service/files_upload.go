package service

import (
	"context"
	"io"

	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/types"
)

// UploadFile 上传单个文件：校验目标文件夹 → 后端写入 → 元数据落库 → 重算文件夹统计.
// 任一前置步骤失败都不会留下记录；后端写入成功但落库失败时尽力回滚已写对象.
func (fs *FileService) UploadFile(ctx context.Context, uploader, originalName string,
	r io.Reader, size int64, meta *types.UploadFileMetadata) (*types.UploadFileResponse, error) {
	if meta == nil {
		meta = &types.UploadFileMetadata{}
	}

	// 文件夹校验先于任何 I/O
	var folderID *string

	if meta.FolderID != "" {
		folder, err := fs.lookupFolder(ctx, meta.FolderID)
		if err != nil {
			return nil, err
		}

		folderID = &folder.ID
	}

	b, err := fs.resolveBackend(meta.Backend)
	if err != nil {
		return nil, err
	}

	// 使用提供的文件名或原始文件名
	actualFileName := originalName
	if meta.FileName != "" {
		actualFileName = meta.FileName
	}

	storageName := buildStorageName(actualFileName)

	cr := newChecksumReader(r)

	opts := backend.UploadOptions{ContentType: meta.ContentType}
	if meta.IsPublic {
		public := true
		opts.Public = &public
	}

	res, err := b.Upload(ctx, storageName, cr, size, opts)
	if err != nil {
		return &types.UploadFileResponse{
			FileName: actualFileName,
			Success:  false,
			Error:    err.Error(),
		}, err
	}

	record, err := fs.persistUpload(ctx, b, res, uploader, actualFileName, originalName, cr.Sum(), folderID, meta)
	if err != nil {
		return nil, err
	}

	fs.recalcFolderStats(ctx, folderID)
	fs.publishFileStored(record, "upload-single")

	resp := fs.buildUploadResponse(record, res)

	return &resp, nil
}

// UploadBatch 批量上传：逐条尽力而为，单条失败不影响其它条目，
// 结果与输入条目顺序一一对应.
func (fs *FileService) UploadBatch(ctx context.Context, uploader string,
	items []types.UploadBatchItem) (*types.UploadBatchFilesResponse, error) {
	results := make([]types.UploadFileResponse, 0, len(items))
	successful := 0
	failed := 0

	for _, item := range items {
		resp, err := fs.UploadFile(ctx, uploader, item.FileName, item.Reader, item.Size, item.Meta)
		if err != nil {
			if resp == nil {
				resp = &types.UploadFileResponse{FileName: item.FileName, Success: false, Error: err.Error()}
			}

			results = append(results, *resp)
			failed++

			continue
		}

		results = append(results, *resp)
		successful++
	}

	return &types.UploadBatchFilesResponse{
		Results:    results,
		Total:      len(items),
		Successful: successful,
		Failed:     failed,
	}, nil
}

// persistUpload 将后端写入结果落为 File 记录. 落库失败时回滚已写对象，
// 保证"无记录即无对象"的方向一致性.
func (fs *FileService) persistUpload(ctx context.Context, b backend.Backend, res *backend.StorageResult,
	uploader, name, originalName, checksum string, folderID *string, meta *types.UploadFileMetadata) (*model.File, error) {
	record := &model.File{
		ID:           newRecordID(),
		Name:         name,
		OriginalName: originalName,
		PhysicalPath: res.Path,
		StorageKey:   res.Key,
		URL:          res.URL,
		Size:         res.Size,
		ContentType:  res.ContentType,
		Extension:    extensionOf(originalName),
		StorageKind:  string(b.Kind()),
		Bucket:       res.Bucket,
		FolderID:     folderID,
		UploadedBy:   uploader,
		Description:  meta.Description,
		Category:     meta.Category,
		Public:       meta.IsPublic,
		Checksum:     checksum,
		ETag:         res.ETag,
	}

	if meta.ContentType != "" {
		record.ContentType = meta.ContentType
	}

	_ = record.SetTags(meta.Tags)

	if err := fs.dbClient.GetDB().WithContext(ctx).Create(record).Error; err != nil {
		// 对象已写入而记录缺失会变成孤儿，尽力删掉
		_, _ = b.Delete(ctx, res.Key)

		return nil, err
	}

	return record, nil
}

// buildUploadResponse 构建上传响应.
func (fs *FileService) buildUploadResponse(record *model.File, res *backend.StorageResult) types.UploadFileResponse {
	return types.UploadFileResponse{
		FileID:      record.ID,
		StorageKey:  record.StorageKey,
		BackendKind: record.StorageKind,
		Bucket:      record.Bucket,
		FileName:    record.Name,
		Size:        record.Size,
		Checksum:    record.Checksum,
		ETag:        res.ETag,
		ContentType: record.ContentType,
		URL:         record.URL,
		Tags:        record.Tags(),
		Success:     true,
	}
}
