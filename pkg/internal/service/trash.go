package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/types"
	nlog "github.com/yimu/filedepot/pkg/log"
	"github.com/yimu/filedepot/pkg/queue"
)

// TrashService 回收站：软删除记录的列举、恢复与彻底清除.
type TrashService struct{ *FileService }

func NewTrashService(c context.Context) *TrashService { return &TrashService{NewFileService(c)} }

// List 分页列出回收站中的文件与目录（按删除时间倒序）.
func (s *TrashService) List(ctx context.Context, page, pageSize int) (*types.TrashListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var total int64
	if err := dbx.Model(&model.File{}).Unscoped().
		Where("deleted_at IS NOT NULL").Count(&total).Error; err != nil {
		return nil, err
	}

	var fileRows []model.File
	if err := dbx.Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&fileRows).Error; err != nil {
		return nil, err
	}

	// 目录只列直接被删的根（父目录未删或为 NULL），级联删掉的后代不单独展示
	var folderRows []model.Folder
	if err := dbx.Unscoped().
		Where("folders.deleted_at IS NOT NULL").
		Where("parent_id IS NULL OR parent_id NOT IN (SELECT id FROM folders WHERE deleted_at IS NOT NULL)").
		Order("folders.deleted_at DESC").
		Find(&folderRows).Error; err != nil {
		return nil, err
	}

	files := make([]types.FileInfo, 0, len(fileRows))
	for i := range fileRows {
		files = append(files, fileInfo(&fileRows[i]))
	}

	folders := make([]types.FolderInfo, 0, len(folderRows))
	for i := range folderRows {
		folders = append(folders, folderInfo(&folderRows[i]))
	}

	return &types.TrashListResponse{
		Total:   total,
		Page:    page,
		Size:    pageSize,
		Files:   files,
		Folders: folders,
	}, nil
}

// RestoreFiles 批量恢复文件：清除软删标记并重算所在目录统计.
func (s *TrashService) RestoreFiles(ctx context.Context, fileIDs []string) (*types.TrashActionResponse, error) {
	resp := &types.TrashActionResponse{Results: make([]types.TrashItemResult, 0, len(fileIDs))}

	for _, id := range fileIDs {
		if err := s.restoreFile(ctx, id); err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, types.TrashItemResult{ID: id, Error: err.Error()})

			continue
		}

		resp.Affected++
		resp.Results = append(resp.Results, types.TrashItemResult{ID: id, Success: true})
	}

	return resp, nil
}

func (s *TrashService) restoreFile(ctx context.Context, fileID string) error {
	record, err := s.lookupFile(ctx, fileID, true)
	if err != nil {
		return err
	}

	if !record.DeletedAt.Valid {
		return &errs.ConflictError{Reason: fmt.Sprintf("file %q is not in trash", fileID)}
	}

	if err := s.dbClient.GetDB().WithContext(ctx).
		Model(&model.File{}).Unscoped().Where("id = ?", fileID).
		Updates(map[string]any{"deleted_at": nil, "deleted_by": ""}).Error; err != nil {
		return err
	}

	s.recalcFolderStats(ctx, record.FolderID)
	s.publishFileRestored(record)

	return nil
}

// PurgeFiles 批量彻底删除：先删后端对象，成功才删记录.
func (s *TrashService) PurgeFiles(ctx context.Context, purgedBy string, fileIDs []string) (*types.TrashActionResponse, error) {
	resp := &types.TrashActionResponse{Results: make([]types.TrashItemResult, 0, len(fileIDs))}

	for _, id := range fileIDs {
		if err := s.hardDeleteFile(ctx, id, purgedBy); err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, types.TrashItemResult{ID: id, Error: err.Error()})

			continue
		}

		resp.Affected++
		resp.Results = append(resp.Results, types.TrashItemResult{ID: id, Success: true})
	}

	return resp, nil
}

// Empty 清空回收站：彻底删除全部软删文件与目录.
func (s *TrashService) Empty(ctx context.Context, purgedBy string) (*types.TrashActionResponse, error) {
	resp, _, _, err := s.purgeBefore(ctx, purgedBy, time.Now().UTC().Add(time.Second))

	return resp, err
}

// AutoClean 清除删除时间早于 before 的软删记录. 由调度任务周期触发，
// 也可通过管理接口手工调用.
func (s *TrashService) AutoClean(ctx context.Context, before time.Time) (*types.TrashActionResponse, error) {
	started := time.Now().UTC()

	resp, purgedFiles, purgedFolders, err := s.purgeBefore(ctx, "auto-clean", before)
	if err != nil {
		return nil, err
	}

	s.publishTrashCleaned(resp, purgedFiles, purgedFolders, started)

	return resp, nil
}

// purgeBefore 物理清除 before 之前软删的文件与目录.
// 文件逐个走后端删除；目录在其子树文件清干净后硬删记录.
func (s *TrashService) purgeBefore(ctx context.Context, purgedBy string, before time.Time) (*types.TrashActionResponse, int, int, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var fileIDs []string
	if err := dbx.Model(&model.File{}).Unscoped().
		Select("id").
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Scan(&fileIDs).Error; err != nil {
		return nil, 0, 0, err
	}

	resp := &types.TrashActionResponse{}

	for _, id := range fileIDs {
		if err := s.hardDeleteFile(ctx, id, purgedBy); err != nil {
			nlog.Logger().Warn().Err(err).Str("file_id", id).Msg("回收站清理：文件清除失败，留待下次")

			resp.Failed++

			continue
		}

		resp.Affected++
	}

	// 深度降序保证先删叶子再删祖先
	var folders []struct {
		ID    string
		Depth int
	}

	if err := dbx.Raw(
		"SELECT f.id AS id, MAX(fc.depth) AS depth FROM folders f "+
			"JOIN folders_closure fc ON fc.descendant_id = f.id "+
			"WHERE f.deleted_at IS NOT NULL AND f.deleted_at < ? "+
			"GROUP BY f.id ORDER BY depth DESC",
		before,
	).Scan(&folders).Error; err != nil {
		return nil, 0, 0, err
	}

	purgedFolders := 0

	for _, f := range folders {
		// 仍挂着文件记录（如上面清除失败的）的目录不能删
		var remaining int64
		if err := dbx.Model(&model.File{}).Unscoped().
			Where("folder_id = ?", f.ID).Count(&remaining).Error; err != nil {
			return nil, 0, 0, err
		}

		if remaining > 0 {
			resp.Failed++

			continue
		}

		if err := dbx.Unscoped().Delete(&model.Folder{}, "id = ?", f.ID).Error; err != nil {
			nlog.Logger().Warn().Err(err).Str("folder_id", f.ID).Msg("回收站清理：目录清除失败")

			resp.Failed++

			continue
		}

		purgedFolders++
	}

	purgedFiles := resp.Affected

	resp.Affected += purgedFolders
	resp.Message = fmt.Sprintf("purged %d files and %d folders", purgedFiles, purgedFolders)

	return resp, purgedFiles, purgedFolders, nil
}

func (s *TrashService) publishTrashCleaned(resp *types.TrashActionResponse, purgedFiles, purgedFolders int, started time.Time) {
	cfg := configs.GetConfig()
	if s.mqClient == nil || !cfg.Events.Enabled {
		return
	}

	payload := queue.TrashCleanedPayload{
		RetentionDays: cfg.Trash.RetentionDays,
		PurgedFiles:   purgedFiles,
		PurgedFolders: purgedFolders,
		Failed:        resp.Failed,
		StartedAt:     started,
		Duration:      time.Since(started),
	}
	if err := queue.PublishTrashCleaned(s.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Msg("发布 trash.cleaned 事件失败")
	}
}
