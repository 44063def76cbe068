package types

// FolderInfo 目录节点的对外视图.
type FolderInfo struct {
	FolderID    string `json:"folder_id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	ParentID    string `json:"parent_id,omitempty"`
	Description string `json:"description,omitempty"`
	FileCount   int64  `json:"file_count"`
	TotalSize   int64  `json:"total_size"`
	CreatedAt   string `json:"created_at,omitempty"` // RFC3339
	UpdatedAt   string `json:"updated_at,omitempty"`
	DeletedAt   string `json:"deleted_at,omitempty"` // 仅回收站视图
}

// FolderTreeNode 目录树节点，Children 递归嵌套.
type FolderTreeNode struct {
	FolderInfo
	Children []FolderTreeNode `json:"children,omitempty"`
}

// CreateFolderRequest 创建目录请求.
type CreateFolderRequest struct {
	Name        string `binding:"required"           json:"name"` // 目录名称
	ParentID    string `json:"parent_id,omitempty"`               // 父目录 ID，空为根目录
	Description string `json:"description,omitempty"`             // 目录描述
}

// CreateFolderResponse 创建目录响应.
type CreateFolderResponse struct {
	Folder  FolderInfo `json:"folder"`
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
}

// RenameFolderRequest 重命名目录请求.
type RenameFolderRequest struct {
	NewName string `binding:"required" json:"new_name"` // 新目录名称
}

// RenameFolderResponse 重命名目录响应.
type RenameFolderResponse struct {
	FolderID string `json:"folder_id"`
	OldName  string `json:"old_name"`
	NewName  string `json:"new_name"`
	Path     string `json:"path"` // 重命名后的完整路径
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// MoveFolderRequest 移动目录请求.
// NewParentID 为空表示挂到根；目标不能是自身或自身的后代.
type MoveFolderRequest struct {
	NewParentID string `json:"new_parent_id,omitempty"`
}

// MoveFolderResponse 移动目录响应.
type MoveFolderResponse struct {
	FolderID string `json:"folder_id"`
	OldPath  string `json:"old_path"`
	NewPath  string `json:"new_path"`
	// MovedDescendants 随之重算路径的后代目录数量
	MovedDescendants int    `json:"moved_descendants,omitempty"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
}

// DeleteFolderRequest 删除目录请求.
type DeleteFolderRequest struct {
	// Hard 为 true 时物理删除目录本身，目录非空（含回收站中的文件或子目录）则冲突
	Hard bool `json:"hard,omitempty"`
	// Force 为 true 时物理删除整棵子树（含后端对象），无视非空冲突
	Force bool `json:"force,omitempty"`
}

// DeleteFolderResponse 删除目录响应.
type DeleteFolderResponse struct {
	FolderID       string `json:"folder_id"`
	Name           string `json:"name"`
	Path           string `json:"path"`
	DeletedFolders int    `json:"deleted_folders"`          // 含自身
	DeletedFiles   int    `json:"deleted_files,omitempty"`  // 级联删除的文件数量
	FailedObjects  int    `json:"failed_objects,omitempty"` // 后端对象删除失败数（仅 Force）
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// ListFoldersResponse 子目录列表响应.
type ListFoldersResponse struct {
	ParentID string       `json:"parent_id,omitempty"`
	Folders  []FolderInfo `json:"folders"`
	Total    int          `json:"total"`
}

// FolderStatsResponse 目录统计响应.
// Cached 为记录上缓存的聚合值，Live 为对直属文件的实时统计.
type FolderStatsResponse struct {
	FolderID        string `json:"folder_id"`
	Path            string `json:"path"`
	CachedFileCount int64  `json:"cached_file_count"`
	CachedTotalSize int64  `json:"cached_total_size"`
	LiveFileCount   int64  `json:"live_file_count"`
	LiveTotalSize   int64  `json:"live_total_size"`
	// SubtreeFolders 子树内目录数量（不含自身）
	SubtreeFolders int64 `json:"subtree_folders"`
}
