package types

// DeleteFilesRequest 批量删除文件请求.
type DeleteFilesRequest struct {
	FileIDs []string `binding:"required" json:"file_ids"` // 要删除的文件 ID 列表
	// Hard 为 true 时直接物理删除（先删后端对象，再删记录），否则进回收站
	Hard bool `json:"hard,omitempty"`
}

// DeleteFilesResponse 批量删除文件响应.
type DeleteFilesResponse struct {
	Results []DeleteFileResult `json:"results"`
	Total   int                `json:"total"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
}

// DeleteFileResult 删除单个文件结果.
type DeleteFileResult struct {
	FileID  string `json:"file_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// MetaUpdateRequest 单文件元数据更新请求（文件 ID 来自路由 path 参数）.
type MetaUpdateRequest struct {
	FileName    string            `json:"file_name,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Description string            `json:"description,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Category    string            `json:"category,omitempty"`
	IsPublic    *bool             `json:"is_public,omitempty"` // 使用指针以区分未设置和false
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UpdateFilesMetadataRequest 批量更新文件元数据请求.
type UpdateFilesMetadataRequest struct {
	Items []UpdateFileMetadataItem `binding:"required" json:"items"`
}

// UpdateFileMetadataItem 更新单个文件的元数据.
type UpdateFileMetadataItem struct {
	FileID      string            `binding:"required" json:"file_id"`
	FileName    string            `json:"file_name,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Description string            `json:"description,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Category    string            `json:"category,omitempty"`
	IsPublic    *bool             `json:"is_public,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UpdateFilesMetadataResponse 批量更新文件元数据响应.
type UpdateFilesMetadataResponse struct {
	Results []UpdateFileMetadataResult `json:"results"`
	Total   int                        `json:"total"`
	Success int                        `json:"success"`
	Failed  int                        `json:"failed"`
}

// UpdateFileMetadataResult 更新单个文件元数据结果.
type UpdateFileMetadataResult struct {
	FileID  string `json:"file_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CopyFileRequest 复制单个文件请求（源文件 ID 来自路由）.
type CopyFileRequest struct {
	// TargetFolderID 目标目录，空表示保持源目录
	TargetFolderID string `json:"target_folder_id,omitempty"`
	// TargetBackend 目标存储后端类型，空表示与源相同
	TargetBackend string `json:"target_backend,omitempty"`
	// NewName 新文件名，空表示沿用源文件名
	NewName string `json:"new_name,omitempty"`
}

// CopyFileResponse 复制单个文件响应.
type CopyFileResponse struct {
	SourceID string   `json:"source_id"`
	File     FileInfo `json:"file"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
}

// MoveFileRequest 移动单个文件请求（文件 ID 来自路由）.
// 目录移动只改记录归属；跨后端移动为复制加删源.
type MoveFileRequest struct {
	TargetFolderID string `json:"target_folder_id,omitempty"`
	TargetBackend  string `json:"target_backend,omitempty"`
	NewName        string `json:"new_name,omitempty"`
}

// MoveFileResponse 移动单个文件响应.
type MoveFileResponse struct {
	File FileInfo `json:"file"`
	// SourceRemoved 跨后端移动时源对象是否删除成功；失败仅告警，目标为准
	SourceRemoved bool   `json:"source_removed"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}
