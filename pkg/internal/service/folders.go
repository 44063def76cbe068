package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/types"
	nlog "github.com/yimu/filedepot/pkg/log"
	"github.com/yimu/filedepot/pkg/queue"
)

// FolderService 维护目录树：物化路径 + 闭包表双写.
// 闭包表含自反对（depth 0），祖先/后代/子树查询都不用递归.
type FolderService struct{ *FileService }

func NewFolderService(c context.Context) *FolderService { return &FolderService{NewFileService(c)} }

// Create 创建目录. 指定父目录时先校验其存在，路径由父路径拼接得出.
func (s *FolderService) Create(ctx context.Context, creator string, req *types.CreateFolderRequest) (*types.CreateFolderResponse, error) {
	if req.Name == "" {
		return nil, errs.NewValidation("name", "folder name is required")
	}

	var (
		parentID *string
		path     = "/" + req.Name
	)

	if req.ParentID != "" {
		parent, err := s.lookupFolder(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}

		parentID = &parent.ID
		path = parent.Path + "/" + req.Name
	}

	folder := &model.Folder{
		ID:          newRecordID(),
		Name:        req.Name,
		Description: req.Description,
		Path:        path,
		ParentID:    parentID,
		Public:      true,
		CreatedBy:   creator,
	}

	err := s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(folder).Error; err != nil {
			return err
		}

		// 自反对
		if err := tx.Create(&model.FolderClosure{
			AncestorID: folder.ID, DescendantID: folder.ID, Depth: 0,
		}).Error; err != nil {
			return err
		}

		// 继承父目录的全部祖先对，层距各加一
		if parentID != nil {
			if err := tx.Exec(
				"INSERT INTO folders_closure (ancestor_id, descendant_id, depth) "+
					"SELECT ancestor_id, ?, depth + 1 FROM folders_closure WHERE descendant_id = ?",
				folder.ID, *parentID,
			).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishFolderCreated(folder)

	return &types.CreateFolderResponse{
		Folder:  folderInfo(folder),
		Success: true,
	}, nil
}

// Rename 重命名目录并重算自身与全部后代的物化路径.
func (s *FolderService) Rename(ctx context.Context, folderID string, req *types.RenameFolderRequest) (*types.RenameFolderResponse, error) {
	if req.NewName == "" {
		return nil, errs.NewValidation("new_name", "folder name is required")
	}

	folder, err := s.lookupFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	oldName := folder.Name
	oldPath := folder.Path
	newPath := parentPrefix(folder) + "/" + req.NewName

	err = s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Folder{}).Where("id = ?", folderID).
			Updates(map[string]any{"name": req.NewName, "path": newPath}).Error; err != nil {
			return err
		}

		return s.rewriteDescendantPaths(tx, folderID, oldPath, newPath)
	})
	if err != nil {
		return nil, err
	}

	return &types.RenameFolderResponse{
		FolderID: folderID,
		OldName:  oldName,
		NewName:  req.NewName,
		Path:     newPath,
		Success:  true,
	}, nil
}

// Move 把目录挂到新父节点. 目标是自身或后代时返回 ConflictError（会成环）；
// 闭包表先断开子树与旧祖先的连线，再按新祖先重建.
func (s *FolderService) Move(ctx context.Context, folderID string, req *types.MoveFolderRequest) (*types.MoveFolderResponse, error) {
	folder, err := s.lookupFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	oldPath := folder.Path

	var (
		newParentID *string
		parentPath  string
	)

	if req.NewParentID != "" {
		if req.NewParentID == folderID {
			return nil, &errs.ConflictError{Reason: "cannot move a folder into itself"}
		}

		parent, err := s.lookupFolder(ctx, req.NewParentID)
		if err != nil {
			return nil, err
		}

		// 后代集合校验：目标落在子树内则移动成环
		descendants, err := s.descendantIDs(ctx, folderID)
		if err != nil {
			return nil, err
		}

		for _, d := range descendants {
			if d == parent.ID {
				return nil, &errs.ConflictError{Reason: "cannot move a folder into its own descendant"}
			}
		}

		newParentID = &parent.ID
		parentPath = parent.Path
	}

	newPath := parentPath + "/" + folder.Name

	var movedDescendants int

	err = s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Folder{}).Where("id = ?", folderID).
			Updates(map[string]any{"parent_id": newParentID, "path": newPath}).Error; err != nil {
			return err
		}

		// 断开子树与旧祖先（子树内部的连线保留）
		if err := tx.Exec(
			"DELETE FROM folders_closure WHERE descendant_id IN "+
				"(SELECT descendant_id FROM (SELECT descendant_id FROM folders_closure WHERE ancestor_id = ?) sub) "+
				"AND ancestor_id NOT IN "+
				"(SELECT descendant_id FROM (SELECT descendant_id FROM folders_closure WHERE ancestor_id = ?) sub2)",
			folderID, folderID,
		).Error; err != nil {
			return err
		}

		// 新祖先 × 子树 的笛卡尔连线
		if newParentID != nil {
			if err := tx.Exec(
				"INSERT INTO folders_closure (ancestor_id, descendant_id, depth) "+
					"SELECT sup.ancestor_id, sub.descendant_id, sup.depth + sub.depth + 1 "+
					"FROM folders_closure sup, folders_closure sub "+
					"WHERE sup.descendant_id = ? AND sub.ancestor_id = ?",
				*newParentID, folderID,
			).Error; err != nil {
				return err
			}
		}

		n, err := s.rewriteDescendantPathsCount(tx, folderID, oldPath, newPath)
		if err != nil {
			return err
		}

		movedDescendants = n

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishFolderMoved(folder, oldPath, newPath)

	return &types.MoveFolderResponse{
		FolderID:         folderID,
		OldPath:          oldPath,
		NewPath:          newPath,
		MovedDescendants: movedDescendants,
		Success:          true,
	}, nil
}

// Delete 删除目录. 默认整棵子树（目录与文件）软删进回收站；
// Hard 为 true 时物理删除目录本身，目录非空则返回冲突；
// Force 为 true 时自底向上物理删除整棵子树，文件的后端对象按各自的后端类型删除.
func (s *FolderService) Delete(ctx context.Context, deletedBy string, folderID string, req *types.DeleteFolderRequest) (*types.DeleteFolderResponse, error) {
	folder, err := s.lookupFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if req != nil && req.Force {
		return s.forceDelete(ctx, deletedBy, folder)
	}

	if req != nil && req.Hard {
		return s.hardDeleteEmpty(ctx, folder)
	}

	return s.softDeleteCascade(ctx, deletedBy, folder)
}

// hardDeleteEmpty 物理删除空目录. 目录下还有文件（含已软删的）或子目录
// （含已软删的）时返回冲突，不做任何删除.
func (s *FolderService) hardDeleteEmpty(ctx context.Context, folder *model.Folder) (*types.DeleteFolderResponse, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var fileCount int64
	if err := dbx.Unscoped().Model(&model.File{}).
		Where("folder_id = ?", folder.ID).Count(&fileCount).Error; err != nil {
		return nil, err
	}

	var childCount int64
	if err := dbx.Unscoped().Model(&model.Folder{}).
		Where("parent_id = ?", folder.ID).Count(&childCount).Error; err != nil {
		return nil, err
	}

	if fileCount > 0 || childCount > 0 {
		return nil, &errs.ConflictError{Reason: "folder is not empty"}
	}

	// 闭包行由外键级联清理
	if err := dbx.Unscoped().Delete(&model.Folder{}, "id = ?", folder.ID).Error; err != nil {
		return nil, err
	}

	s.publishFolderDeleted(folder, true, 0, 0)

	return &types.DeleteFolderResponse{
		FolderID:       folder.ID,
		Name:           folder.Name,
		Path:           folder.Path,
		DeletedFolders: 1,
		Success:        true,
	}, nil
}

// softDeleteCascade 软删除整棵子树：先批量软删文件，再批量软删目录.
func (s *FolderService) softDeleteCascade(ctx context.Context, deletedBy string, folder *model.Folder) (*types.DeleteFolderResponse, error) {
	subtree, err := s.descendantIDs(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	var deletedFiles int64

	err = s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.File{}).Where("folder_id IN ?", subtree).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}

		res := tx.Where("folder_id IN ?", subtree).Delete(&model.File{})
		if res.Error != nil {
			return res.Error
		}

		deletedFiles = res.RowsAffected

		if err := tx.Model(&model.Folder{}).Where("id IN ?", subtree).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}

		return tx.Where("id IN ?", subtree).Delete(&model.Folder{}).Error
	})
	if err != nil {
		return nil, err
	}

	s.publishFolderDeleted(folder, false, len(subtree)-1, int(deletedFiles))

	return &types.DeleteFolderResponse{
		FolderID:       folder.ID,
		Name:           folder.Name,
		Path:           folder.Path,
		DeletedFolders: len(subtree),
		DeletedFiles:   int(deletedFiles),
		Success:        true,
	}, nil
}

// forceDelete 物理删除整棵子树. 自底向上：先按深度降序处理每个目录的直属文件
// （先删后端对象，成功才删记录），对象删不掉的文件保留记录并计入失败数.
func (s *FolderService) forceDelete(ctx context.Context, deletedBy string, folder *model.Folder) (*types.DeleteFolderResponse, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	// 深度降序即自底向上的显式栈
	var order []struct {
		DescendantID string
		Depth        int
	}

	if err := dbx.Model(&model.FolderClosure{}).
		Select("descendant_id, depth").
		Where("ancestor_id = ?", folder.ID).
		Order("depth DESC").
		Scan(&order).Error; err != nil {
		return nil, err
	}

	deletedFolders := 0
	deletedFiles := 0
	failedObjects := 0

	for _, node := range order {
		// 目录的直属文件（含已软删的）
		var files []model.File
		if err := dbx.Unscoped().Where("folder_id = ?", node.DescendantID).
			Find(&files).Error; err != nil {
			return nil, err
		}

		blocked := false

		for i := range files {
			if err := s.hardDeleteFile(ctx, files[i].ID, deletedBy); err != nil {
				nlog.Logger().Warn().Err(err).
					Str("file_id", files[i].ID).
					Msg("硬删除文件失败，保留其所在目录")

				failedObjects++
				blocked = true

				continue
			}

			deletedFiles++
		}

		if blocked {
			continue
		}

		// 目录行硬删；闭包行由外键级联清理
		if err := dbx.Unscoped().Delete(&model.Folder{}, "id = ?", node.DescendantID).Error; err != nil {
			return nil, err
		}

		deletedFolders++
	}

	s.publishFolderDeleted(folder, true, deletedFolders-1, deletedFiles)

	return &types.DeleteFolderResponse{
		FolderID:       folder.ID,
		Name:           folder.Name,
		Path:           folder.Path,
		DeletedFolders: deletedFolders,
		DeletedFiles:   deletedFiles,
		FailedObjects:  failedObjects,
		Success:        failedObjects == 0,
	}, nil
}

// Restore 从回收站恢复目录及其子树（目录与文件的软删标记一并清除）.
func (s *FolderService) Restore(ctx context.Context, folderID string) (*types.TrashActionResponse, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var folder model.Folder
	if err := dbx.Unscoped().First(&folder, "id = ?", folderID).Error; err != nil {
		return nil, errs.NewNotFound("folder", folderID)
	}

	if !folder.DeletedAt.Valid {
		return nil, &errs.ConflictError{Reason: "folder is not in trash"}
	}

	var subtree []string
	if err := dbx.Model(&model.FolderClosure{}).
		Select("descendant_id").Where("ancestor_id = ?", folderID).
		Scan(&subtree).Error; err != nil {
		return nil, err
	}

	var affected int64

	err := dbx.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Folder{}).Unscoped().Where("id IN ?", subtree).
			Updates(map[string]any{"deleted_at": nil, "deleted_by": ""})
		if res.Error != nil {
			return res.Error
		}

		affected = res.RowsAffected

		return tx.Model(&model.File{}).Unscoped().
			Where("folder_id IN ? AND deleted_at IS NOT NULL", subtree).
			Updates(map[string]any{"deleted_at": nil, "deleted_by": ""}).Error
	})
	if err != nil {
		return nil, err
	}

	return &types.TrashActionResponse{Affected: int(affected)}, nil
}

// Children 列出直接子目录.
func (s *FolderService) Children(ctx context.Context, folderID string) (*types.ListFoldersResponse, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx).Model(&model.Folder{})

	if folderID == "" {
		dbx = dbx.Where("parent_id IS NULL")
	} else {
		if _, err := s.lookupFolder(ctx, folderID); err != nil {
			return nil, err
		}

		dbx = dbx.Where("parent_id = ?", folderID)
	}

	var rows []model.Folder
	if err := dbx.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	folders := make([]types.FolderInfo, 0, len(rows))
	for i := range rows {
		folders = append(folders, folderInfo(&rows[i]))
	}

	return &types.ListFoldersResponse{ParentID: folderID, Folders: folders, Total: len(folders)}, nil
}

// Ancestors 返回从根到父目录的祖先链，按深度从远到近.
func (s *FolderService) Ancestors(ctx context.Context, folderID string) ([]types.FolderInfo, error) {
	if _, err := s.lookupFolder(ctx, folderID); err != nil {
		return nil, err
	}

	var rows []model.Folder
	if err := s.dbClient.GetDB().WithContext(ctx).
		Joins("JOIN folders_closure fc ON fc.ancestor_id = folders.id").
		Where("fc.descendant_id = ? AND fc.depth > 0", folderID).
		Order("fc.depth DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]types.FolderInfo, 0, len(rows))
	for i := range rows {
		out = append(out, folderInfo(&rows[i]))
	}

	return out, nil
}

// Tree 返回以 folderID 为根的目录树；folderID 为空时返回整棵森林.
func (s *FolderService) Tree(ctx context.Context, folderID string) ([]types.FolderTreeNode, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx).Model(&model.Folder{})

	var rows []model.Folder

	if folderID == "" {
		if err := dbx.Order("path").Find(&rows).Error; err != nil {
			return nil, err
		}
	} else {
		if _, err := s.lookupFolder(ctx, folderID); err != nil {
			return nil, err
		}

		if err := dbx.
			Joins("JOIN folders_closure fc ON fc.descendant_id = folders.id").
			Where("fc.ancestor_id = ?", folderID).
			Order("folders.path").
			Find(&rows).Error; err != nil {
			return nil, err
		}
	}

	return buildTree(rows, folderID), nil
}

// GetStats 实时统计：绕开缓存聚合直接扫表，用于按需校准.
func (s *FolderService) GetStats(ctx context.Context, folderID string) (*types.FolderStatsResponse, error) {
	folder, err := s.lookupFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var agg struct {
		Cnt int64
		Sum int64
	}

	if err := dbx.Model(&model.File{}).
		Select("COUNT(*) as cnt, COALESCE(SUM(size),0) as sum").
		Where("folder_id = ?", folderID).
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	var subtreeFolders int64
	if err := dbx.Model(&model.FolderClosure{}).
		Where("ancestor_id = ? AND depth > 0", folderID).
		Count(&subtreeFolders).Error; err != nil {
		return nil, err
	}

	return &types.FolderStatsResponse{
		FolderID:        folderID,
		Path:            folder.Path,
		CachedFileCount: folder.FileCount,
		CachedTotalSize: folder.TotalSize,
		LiveFileCount:   agg.Cnt,
		LiveTotalSize:   agg.Sum,
		SubtreeFolders:  subtreeFolders,
	}, nil
}

// ---------------- 内部辅助 ----------------

// descendantIDs 返回子树全部目录 ID（含自身）.
func (s *FolderService) descendantIDs(ctx context.Context, folderID string) ([]string, error) {
	var ids []string
	if err := s.dbClient.GetDB().WithContext(ctx).
		Model(&model.FolderClosure{}).
		Select("descendant_id").
		Where("ancestor_id = ?", folderID).
		Scan(&ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

// rewriteDescendantPaths 重写后代的物化路径（路径是祖先名的函数）.
func (s *FolderService) rewriteDescendantPaths(tx *gorm.DB, folderID, oldPrefix, newPrefix string) error {
	_, err := s.rewriteDescendantPathsCount(tx, folderID, oldPrefix, newPrefix)

	return err
}

// rewriteDescendantPathsCount 同上并返回改写的后代数量.
// 逐行在 Go 侧拼接，避免各方言字符串函数差异.
func (s *FolderService) rewriteDescendantPathsCount(tx *gorm.DB, folderID, oldPrefix, newPrefix string) (int, error) {
	var rows []model.Folder
	if err := tx.
		Joins("JOIN folders_closure fc ON fc.descendant_id = folders.id").
		Where("fc.ancestor_id = ? AND fc.depth > 0", folderID).
		Find(&rows).Error; err != nil {
		return 0, err
	}

	for i := range rows {
		newPath := newPrefix + rows[i].Path[len(oldPrefix):]

		if err := tx.Model(&model.Folder{}).Where("id = ?", rows[i].ID).
			Update("path", newPath).Error; err != nil {
			return 0, err
		}
	}

	return len(rows), nil
}

// parentPrefix 返回去掉最后一段后的路径前缀；根级目录为空串.
func parentPrefix(f *model.Folder) string {
	if len(f.Path) <= len(f.Name)+1 {
		return ""
	}

	return f.Path[:len(f.Path)-len(f.Name)-1]
}

// folderInfo 将目录记录转换为对外视图.
func folderInfo(m *model.Folder) types.FolderInfo {
	info := types.FolderInfo{
		FolderID:    m.ID,
		Name:        m.Name,
		Path:        m.Path,
		Description: m.Description,
		FileCount:   m.FileCount,
		TotalSize:   m.TotalSize,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if m.ParentID != nil {
		info.ParentID = *m.ParentID
	}

	if m.DeletedAt.Valid {
		info.DeletedAt = m.DeletedAt.Time.UTC().Format(time.RFC3339)
	}

	return info
}

// buildTree 把平铺结果组装为嵌套树.
func buildTree(rows []model.Folder, rootID string) []types.FolderTreeNode {
	nodes := make(map[string]*types.FolderTreeNode, len(rows))
	order := make([]string, 0, len(rows))

	for i := range rows {
		n := types.FolderTreeNode{FolderInfo: folderInfo(&rows[i])}
		nodes[rows[i].ID] = &n
		order = append(order, rows[i].ID)
	}

	var roots []string

	for _, id := range order {
		n := nodes[id]
		if n.ParentID != "" && id != rootID {
			if parent, ok := nodes[n.ParentID]; ok {
				parent.Children = append(parent.Children, *n)

				continue
			}
		}

		roots = append(roots, id)
	}

	// 自底向上组装后 map 中的根节点已携带完整子树
	out := make([]types.FolderTreeNode, 0, len(roots))
	for _, id := range roots {
		out = append(out, *nodes[id])
	}

	return out
}

// ---------------- 事件发布 ----------------

func (s *FolderService) publishFolderCreated(m *model.Folder) {
	cfg := configs.GetConfig().Events
	if s.mqClient == nil || !cfg.Enabled || !cfg.Folder.Created {
		return
	}

	payload := queue.FolderCreatedPayload{Folder: folderRef(m)}
	if err := queue.PublishFolderCreated(s.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("folder_id", m.ID).Msg("发布 folder.created 事件失败")
	}
}

func (s *FolderService) publishFolderMoved(m *model.Folder, prevPath, newPath string) {
	cfg := configs.GetConfig().Events
	if s.mqClient == nil || !cfg.Enabled || !cfg.Folder.Moved {
		return
	}

	ref := folderRef(m)
	ref.Path = newPath

	payload := queue.FolderMovedPayload{Folder: ref, PrevPath: prevPath}
	if err := queue.PublishFolderMoved(s.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("folder_id", m.ID).Msg("发布 folder.moved 事件失败")
	}
}

func (s *FolderService) publishFolderDeleted(m *model.Folder, hard bool, descendants, files int) {
	cfg := configs.GetConfig().Events
	if s.mqClient == nil || !cfg.Enabled || !cfg.Folder.Deleted {
		return
	}

	payload := queue.FolderDeletedPayload{
		Folder:      folderRef(m),
		Hard:        hard,
		Descendants: descendants,
		Files:       files,
	}
	if err := queue.PublishFolderDeleted(s.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("folder_id", m.ID).Msg("发布 folder.deleted 事件失败")
	}
}

// folderRef 构造事件负载的目录引用.
func folderRef(m *model.Folder) queue.FolderRef {
	ref := queue.FolderRef{FolderID: m.ID, Name: m.Name, Path: m.Path}
	if m.ParentID != nil {
		ref.ParentID = *m.ParentID
	}

	return ref
}
