// Package types 定义应用程序中使用的各种数据类型和结构体. 主要为 Request 和 Response 结构体.
package types

import "time"

// FileInfo 文件记录的对外视图.
type FileInfo struct {
	FileID      string            `json:"file_id"`
	Name        string            `json:"name"`
	StorageKey  string            `json:"storage_key"`
	BackendKind string            `json:"backend_kind"`
	Bucket      string            `json:"bucket,omitempty"`
	FolderID    string            `json:"folder_id,omitempty"`
	FolderPath  string            `json:"folder_path,omitempty"`
	Size        int64             `json:"size"`
	Checksum    string            `json:"checksum,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Kind        string            `json:"kind,omitempty"` // 按 MIME 一级类型归类：text/image/audio/video/other
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	IsPublic    bool              `json:"is_public,omitempty"`
	URL         string            `json:"url,omitempty"` // 公共访问 URL，仅公开文件
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   string            `json:"created_at,omitempty"` // RFC3339
	UpdatedAt   string            `json:"updated_at,omitempty"`
	DeletedAt   string            `json:"deleted_at,omitempty"` // 仅回收站视图
	DeletedBy   string            `json:"deleted_by,omitempty"`
}

// ListFilesRequest 文件列表请求（query 绑定）.
// Page 从 1 开始；FolderID 为空表示不按目录过滤.
type ListFilesRequest struct {
	FolderID    string `form:"folder_id"    json:"folder_id,omitempty"`
	Backend     string `form:"backend"      json:"backend,omitempty"`
	Kind        string `form:"kind"         json:"kind,omitempty"`
	ContentType string `form:"content_type" json:"content_type,omitempty"`
	Page        int    `form:"page"         json:"page,omitempty"`
	PageSize    int    `form:"page_size"    json:"page_size,omitempty"`
	SortBy      string `form:"sort_by"      json:"sort_by,omitempty"`    // created_at|size|name
	SortOrder   string `form:"sort_order"   json:"sort_order,omitempty"` // asc|desc
}

// ListFilesResponse 文件列表响应.
type ListFilesResponse struct {
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Files []FileInfo `json:"files"`
}

// SearchFilesRequest 高级搜索请求（POST）.
// 若未指定时间范围，则不限制；Page 从 1 开始.
type SearchFilesRequest struct {
	// 关键字将在文件名、描述、标签值中进行 LIKE 匹配
	Keyword string `json:"keyword,omitempty"`
	// 目录范围过滤：限定该目录及其整个子树
	FolderID string `json:"folder_id,omitempty"`
	// 分类过滤
	Category string `json:"category,omitempty"`
	// 内容类型（MIME）过滤
	ContentType string `json:"content_type,omitempty"`
	// 存储后端过滤
	Backend string `json:"backend,omitempty"`
	// 最小/最大大小（字节）
	MinSize int64 `json:"min_size,omitempty"`
	MaxSize int64 `json:"max_size,omitempty"`
	// 时间范围（记录 created_at）
	Start time.Time `json:"start_time,omitzero"`
	End   time.Time `json:"end_time,omitzero"`
	// 分页
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
	// 排序字段：created_at|size|name，默认 created_at desc
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"` // asc|desc
}

// SearchFilesResponse 高级搜索响应.
type SearchFilesResponse struct {
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Files []FileInfo `json:"files"`
}
