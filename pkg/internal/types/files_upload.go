package types

import "io"

// UploadBatchItem 批量上传的单个条目. 结果按条目顺序返回.
type UploadBatchItem struct {
	FileName string
	Reader   io.Reader
	Size     int64
	Meta     *UploadFileMetadata
}

// UploadFileMetadata 上传文件元数据（multipart 表单字段）.
type UploadFileMetadata struct {
	FileName    string   `form:"file_name"    json:"file_name,omitempty"`    // 可选：覆盖原始文件名
	FolderID    string   `form:"folder_id"    json:"folder_id,omitempty"`    // 可选：目标目录，空为根
	Backend     string   `form:"backend"      json:"backend,omitempty"`      // 可选：存储后端类型，空用默认
	ContentType string   `form:"content_type" json:"content_type,omitempty"` // 可选：内容类型
	Tags        []string `form:"tags"         json:"tags,omitempty"`         // 可选：标签
	Description string   `form:"description"  json:"description,omitempty"`  // 可选：描述
	Category    string   `form:"category"     json:"category,omitempty"`     // 可选：分类
	IsPublic    bool     `form:"is_public"    json:"is_public,omitempty"`    // 可选：是否公开
}

// UploadFileResponse 单个文件上传响应.
type UploadFileResponse struct {
	FileID      string   `json:"file_id,omitempty"`
	StorageKey  string   `json:"storage_key,omitempty"`
	BackendKind string   `json:"backend_kind,omitempty"`
	Bucket      string   `json:"bucket,omitempty"`
	FileName    string   `json:"file_name,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Checksum    string   `json:"checksum,omitempty"`
	ETag        string   `json:"etag,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	URL         string   `json:"url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
}

// UploadBatchFilesResponse 批量文件上传响应.
type UploadBatchFilesResponse struct {
	Results    []UploadFileResponse `json:"results"`
	Total      int                  `json:"total"`
	Successful int                  `json:"successful"`
	Failed     int                  `json:"failed"`
}
