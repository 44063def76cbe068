package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/types"
)

// listSortColumn 白名单化排序字段，其它输入落回 created_at.
func listSortColumn(sortBy string) string {
	switch sortBy {
	case "size", "name":
		return sortBy
	default:
		return "created_at"
	}
}

// normalizePage 规整分页参数.
func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}

	if size <= 0 || size > maxPageSize {
		size = 50
	}

	return page, size
}

// ListFiles 按过滤条件分页列出活跃文件.
func (fs *FileService) ListFiles(ctx context.Context, req *types.ListFilesRequest) (*types.ListFilesResponse, error) {
	page, size := normalizePage(req.Page, req.PageSize)

	dbx := fs.dbClient.GetDB().WithContext(ctx).Model(&model.File{})

	if req.FolderID != "" {
		dbx = dbx.Where("folder_id = ?", req.FolderID)
	}

	if req.Backend != "" {
		dbx = dbx.Where("storage_kind = ?", req.Backend)
	}

	if req.ContentType != "" {
		dbx = dbx.Where("content_type = ?", req.ContentType)
	}

	if req.Kind != "" {
		dbx = applyKindFilter(dbx, req.Kind)
	}

	var total int64
	if err := dbx.Count(&total).Error; err != nil {
		return nil, err
	}

	order := listSortColumn(req.SortBy) + " " + sortDirection(req.SortOrder)

	var rows []model.File
	if err := dbx.Order(order).Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, err
	}

	files := make([]types.FileInfo, 0, len(rows))
	for i := range rows {
		files = append(files, fileInfo(&rows[i]))
	}

	return &types.ListFilesResponse{Total: total, Page: page, Size: size, Files: files}, nil
}

// SearchFiles 高级搜索：关键字在名称、描述、标签 JSON 中 LIKE 匹配，
// 可选目录子树范围、大小与时间窗口过滤.
func (fs *FileService) SearchFiles(ctx context.Context, req *types.SearchFilesRequest) (*types.SearchFilesResponse, error) {
	page, size := normalizePage(req.Page, req.PageSize)

	dbx := fs.dbClient.GetDB().WithContext(ctx).Model(&model.File{})

	if req.Keyword != "" {
		kw := "%" + strings.ReplaceAll(req.Keyword, "%", "\\%") + "%"
		dbx = dbx.Where("name LIKE ? OR description LIKE ? OR tags_json LIKE ?", kw, kw, kw)
	}

	if req.FolderID != "" {
		// 闭包表展开目录子树，单次子查询覆盖任意深度
		dbx = dbx.Where("folder_id IN (?)",
			fs.dbClient.GetDB().Model(&model.FolderClosure{}).
				Select("descendant_id").Where("ancestor_id = ?", req.FolderID))
	}

	if req.Category != "" {
		dbx = dbx.Where("category = ?", req.Category)
	}

	if req.ContentType != "" {
		dbx = dbx.Where("content_type = ?", req.ContentType)
	}

	if req.Backend != "" {
		dbx = dbx.Where("storage_kind = ?", req.Backend)
	}

	if req.MinSize > 0 {
		dbx = dbx.Where("size >= ?", req.MinSize)
	}

	if req.MaxSize > 0 {
		dbx = dbx.Where("size <= ?", req.MaxSize)
	}

	if !req.Start.IsZero() {
		dbx = dbx.Where("created_at >= ?", req.Start)
	}

	if !req.End.IsZero() {
		dbx = dbx.Where("created_at <= ?", req.End)
	}

	var total int64
	if err := dbx.Count(&total).Error; err != nil {
		return nil, err
	}

	order := listSortColumn(req.SortBy) + " " + sortDirection(req.SortOrder)

	var rows []model.File
	if err := dbx.Order(order).Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, err
	}

	files := make([]types.FileInfo, 0, len(rows))
	for i := range rows {
		files = append(files, fileInfo(&rows[i]))
	}

	return &types.SearchFilesResponse{Total: total, Page: page, Size: size, Files: files}, nil
}

// applyKindFilter 把归类标签翻译回 content_type 前缀条件.
func applyKindFilter(dbx *gorm.DB, kind string) *gorm.DB {
	switch kind {
	case "text", "image", "audio", "video":
		return dbx.Where("content_type LIKE ?", kind+"/%")
	case "other":
		return dbx.Where("content_type NOT LIKE 'text/%' AND content_type NOT LIKE 'image/%' AND content_type NOT LIKE 'audio/%' AND content_type NOT LIKE 'video/%'")
	default:
		return dbx
	}
}

// sortDirection 规整排序方向.
func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}

	return "DESC"
}
