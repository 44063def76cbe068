package service

import (
	"context"

	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/types"
	nlog "github.com/yimu/filedepot/pkg/log"
)

// UpdateMetadata 更新单个文件的可变元数据（名称、标签、描述等）.
// 不触碰后端对象，只改记录.
func (fs *FileService) UpdateMetadata(ctx context.Context, fileID string, req *types.MetaUpdateRequest) (*types.FileInfo, error) {
	record, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if req.FileName != "" {
		updates["name"] = req.FileName
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if req.ContentType != "" {
		updates["content_type"] = req.ContentType
	}

	if req.Category != "" {
		updates["category"] = req.Category
	}

	if req.IsPublic != nil {
		updates["public"] = *req.IsPublic
	}

	if req.Tags != nil {
		tmp := model.File{}
		if err := tmp.SetTags(req.Tags); err != nil {
			return nil, err
		}

		updates["tags_json"] = tmp.TagsJSON
	}

	if req.Metadata != nil {
		tmp := model.File{}
		if err := tmp.SetMetadata(req.Metadata); err != nil {
			return nil, err
		}

		updates["metadata_json"] = tmp.MetadataJSON
	}

	if len(updates) > 0 {
		if err := fs.dbClient.GetDB().WithContext(ctx).
			Model(&model.File{}).Where("id = ?", fileID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	record, err = fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	info := fileInfo(record)

	return &info, nil
}

// UpdateBatchMetadata 批量更新元数据，逐条尽力而为.
func (fs *FileService) UpdateBatchMetadata(ctx context.Context,
	req *types.UpdateFilesMetadataRequest) (*types.UpdateFilesMetadataResponse, error) {
	results := make([]types.UpdateFileMetadataResult, 0, len(req.Items))
	total := len(req.Items)
	success := 0
	failed := 0

	for _, item := range req.Items {
		result := types.UpdateFileMetadataResult{FileID: item.FileID, Success: false}

		_, err := fs.UpdateMetadata(ctx, item.FileID, &types.MetaUpdateRequest{
			FileName:    item.FileName,
			Tags:        item.Tags,
			Description: item.Description,
			ContentType: item.ContentType,
			Category:    item.Category,
			IsPublic:    item.IsPublic,
			Metadata:    item.Metadata,
		})
		if err != nil {
			result.Error = err.Error()
			failed++
		} else {
			result.Success = true
			success++
		}

		results = append(results, result)
	}

	return &types.UpdateFilesMetadataResponse{
		Results: results,
		Total:   total,
		Success: success,
		Failed:  failed,
	}, nil
}

// CopyFile 复制文件为一条新记录：后端复制对象 + 新建记录.
// 跨后端复制走读源写目标；目标文件夹缺省沿用源.
func (fs *FileService) CopyFile(ctx context.Context, fileID string, req *types.CopyFileRequest) (*types.CopyFileResponse, error) {
	src, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	// 目标文件夹校验先行
	folderID := src.FolderID

	if req.TargetFolderID != "" {
		folder, err := fs.lookupFolder(ctx, req.TargetFolderID)
		if err != nil {
			return nil, err
		}

		folderID = &folder.ID
	}

	srcBackend, err := fs.resolveBackend(src.StorageKind)
	if err != nil {
		return nil, err
	}

	dstBackend := srcBackend
	if req.TargetBackend != "" && req.TargetBackend != src.StorageKind {
		dstBackend, err = fs.resolveBackend(req.TargetBackend)
		if err != nil {
			return nil, err
		}
	}

	newName := src.Name
	if req.NewName != "" {
		newName = req.NewName
	}

	dstKey := buildStorageName(newName)

	res, err := fs.transferObject(ctx, srcBackend, dstBackend, src, dstKey, false)
	if err != nil {
		return nil, err
	}

	record := &model.File{
		ID:           newRecordID(),
		Name:         newName,
		OriginalName: src.OriginalName,
		PhysicalPath: res.Path,
		StorageKey:   res.Key,
		URL:          res.URL,
		Size:         src.Size,
		ContentType:  src.ContentType,
		Extension:    src.Extension,
		StorageKind:  string(dstBackend.Kind()),
		Bucket:       res.Bucket,
		FolderID:     folderID,
		UploadedBy:   src.UploadedBy,
		MetadataJSON: src.MetadataJSON,
		Description:  src.Description,
		TagsJSON:     src.TagsJSON,
		Public:       src.Public,
		Checksum:     src.Checksum,
		ETag:         res.ETag,
	}

	if err := fs.dbClient.GetDB().WithContext(ctx).Create(record).Error; err != nil {
		_, _ = dstBackend.Delete(ctx, res.Key)

		return nil, err
	}

	fs.recalcFolderStats(ctx, folderID)
	fs.publishFileStored(record, "copy")

	return &types.CopyFileResponse{
		SourceID: src.ID,
		File:     fileInfo(record),
		Success:  true,
	}, nil
}

// MoveFile 移动文件. 仅改目录归属时不触碰后端；
// 跨后端或重命名存储键时走复制加删源，删源失败只告警，目标为权威.
func (fs *FileService) MoveFile(ctx context.Context, fileID string, req *types.MoveFileRequest) (*types.MoveFileResponse, error) {
	record, err := fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	prevKey := record.StorageKey
	prevFolder := ""

	if record.FolderID != nil {
		prevFolder = *record.FolderID
	}

	// 目标文件夹校验
	folderID := record.FolderID

	if req.TargetFolderID != "" {
		folder, err := fs.lookupFolder(ctx, req.TargetFolderID)
		if err != nil {
			return nil, err
		}

		folderID = &folder.ID
	}

	updates := map[string]any{"folder_id": folderID}
	sourceRemoved := true

	crossBackend := req.TargetBackend != "" && req.TargetBackend != record.StorageKind
	if crossBackend {
		srcBackend, err := fs.resolveBackend(record.StorageKind)
		if err != nil {
			return nil, err
		}

		dstBackend, err := fs.resolveBackend(req.TargetBackend)
		if err != nil {
			return nil, err
		}

		dstKey := buildStorageName(record.Name)

		res, err := fs.transferObject(ctx, srcBackend, dstBackend, record, dstKey, false)
		if err != nil {
			return nil, err
		}

		// 记录指向新对象后再删源；删不掉的源对象是可回收的泄漏
		if _, err := srcBackend.Delete(ctx, record.StorageKey); err != nil {
			nlog.Logger().Warn().Err(err).
				Str("file_id", record.ID).Str("key", record.StorageKey).
				Msg("source left behind after move")

			sourceRemoved = false
		}

		updates["physical_path"] = res.Path
		updates["storage_key"] = res.Key
		updates["storage_kind"] = string(dstBackend.Kind())
		updates["bucket"] = res.Bucket
		updates["url"] = res.URL
		updates["etag"] = res.ETag
	}

	if req.NewName != "" {
		updates["name"] = req.NewName
	}

	if err := fs.dbClient.GetDB().WithContext(ctx).
		Model(&model.File{}).Where("id = ?", fileID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	record, err = fs.lookupFile(ctx, fileID, false)
	if err != nil {
		return nil, err
	}

	// 新旧文件夹都要重算
	if prevFolder != "" {
		fs.recalcFolderStats(ctx, &prevFolder)
	}

	fs.recalcFolderStats(ctx, folderID)
	fs.publishFileMoved(record, prevKey, prevFolder, sourceRemoved)

	return &types.MoveFileResponse{
		File:          fileInfo(record),
		SourceRemoved: sourceRemoved,
		Success:       true,
	}, nil
}

// DeleteFiles 删除文件（支持单个/批量）. Hard 为 true 时先删后端对象再删记录，
// 后端删除失败则记录保留；否则软删进回收站.
func (fs *FileService) DeleteFiles(ctx context.Context, deletedBy string, req *types.DeleteFilesRequest) (*types.DeleteFilesResponse, error) {
	results := make([]types.DeleteFileResult, 0, len(req.FileIDs))
	total := len(req.FileIDs)
	success := 0
	failed := 0

	for _, fileID := range req.FileIDs {
		result := types.DeleteFileResult{FileID: fileID, Success: false}

		var err error
		if req.Hard {
			err = fs.hardDeleteFile(ctx, fileID, deletedBy)
		} else {
			err = fs.softDeleteFile(ctx, fileID, deletedBy)
		}

		if err != nil {
			result.Error = err.Error()
			failed++
		} else {
			result.Success = true
			success++
		}

		results = append(results, result)
	}

	return &types.DeleteFilesResponse{
		Results: results,
		Total:   total,
		Success: success,
		Failed:  failed,
	}, nil
}

// softDeleteFile 软删除：打删除标记进回收站，后端对象原样保留.
func (fs *FileService) softDeleteFile(ctx context.Context, fileID, deletedBy string) error {
	record, err := fs.lookupFile(ctx, fileID, true)
	if err != nil {
		return err
	}

	if record.DeletedAt.Valid {
		return &errs.AlreadyDeletedError{Resource: "file", ID: fileID}
	}

	dbx := fs.dbClient.GetDB().WithContext(ctx)

	if err := dbx.Model(&model.File{}).Where("id = ?", fileID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}

	if err := dbx.Delete(&model.File{}, "id = ?", fileID).Error; err != nil {
		return err
	}

	fs.recalcFolderStats(ctx, record.FolderID)
	fs.publishFileDeleted(record, false, deletedBy)

	return nil
}

// hardDeleteFile 物理删除：先删后端对象，成功后才删记录.
// 顺序保证不会出现"记录没了、对象还在"的不可见泄漏.
func (fs *FileService) hardDeleteFile(ctx context.Context, fileID, deletedBy string) error {
	record, err := fs.lookupFile(ctx, fileID, true)
	if err != nil {
		return err
	}

	b, err := fs.resolveBackend(record.StorageKind)
	if err != nil {
		return err
	}

	if _, err := b.Delete(ctx, record.StorageKey); err != nil {
		return err
	}

	if err := fs.dbClient.GetDB().WithContext(ctx).Unscoped().
		Delete(&model.File{}, "id = ?", fileID).Error; err != nil {
		return err
	}

	fs.recalcFolderStats(ctx, record.FolderID)
	fs.publishFileDeleted(record, true, deletedBy)

	return nil
}
