package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 文件领域 --------------------------

// FileRef 标识一条文件记录及其在存储后端的位置.
type FileRef struct {
	FileID      string   `json:"file_id"`
	Name        string   `json:"name,omitempty"`
	StorageKey  string   `json:"storage_key"`
	BackendKind string   `json:"backend_kind"`
	Bucket      string   `json:"bucket,omitempty"`
	FolderID    string   `json:"folder_id,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Checksum    string   `json:"checksum,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// FileStoredPayload 文件已写入存储后端并完成元数据落库.
type FileStoredPayload struct {
	File FileRef `json:"file"`
	// Source 业务上下文，如触发来源（接口/批量任务）.
	Source string `json:"source,omitempty"`
}

// FileUpdatedPayload 文件元数据被更新.
type FileUpdatedPayload struct {
	File FileRef `json:"file"`
	// Fields 本次变更的字段名列表.
	Fields []string `json:"fields,omitempty"`
}

// FileDeletedPayload 文件被删除.
type FileDeletedPayload struct {
	File FileRef `json:"file"`
	// Hard 为 true 表示存储后端对象已被移除，记录不可恢复.
	Hard bool `json:"hard,omitempty"`
	// DeletedBy 删除操作的发起者标识.
	DeletedBy string `json:"deleted_by,omitempty"`
}

// FileRestoredPayload 文件从回收站恢复.
type FileRestoredPayload struct {
	File FileRef `json:"file"`
}

// FileMovedPayload 文件存储键或所属目录变更.
type FileMovedPayload struct {
	File          FileRef `json:"file"`
	PrevKey       string  `json:"prev_key,omitempty"`
	PrevFolderID  string  `json:"prev_folder_id,omitempty"`
	SourceRemoved bool    `json:"source_removed"` // 源对象是否删除成功
}

// FileCopiedPayload 文件被复制为新记录.
type FileCopiedPayload struct {
	File       FileRef `json:"file"`
	SourceID   string  `json:"source_id"`
	SourceKey  string  `json:"source_key,omitempty"`
	TargetKind string  `json:"target_kind,omitempty"` // 跨后端复制时的目标后端
}

// FileAccessedPayload 文件被下载或签发访问链接.
type FileAccessedPayload struct {
	File   FileRef `json:"file"`
	Method string  `json:"method,omitempty"` // download / signed_url
}

// -------------------------- 目录领域 --------------------------

// FolderRef 标识目录树中的一个节点.
type FolderRef struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name,omitempty"`
	Path     string `json:"path,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// FolderCreatedPayload 目录创建完成.
type FolderCreatedPayload struct {
	Folder FolderRef `json:"folder"`
}

// FolderMovedPayload 目录挂载到新父节点.
type FolderMovedPayload struct {
	Folder       FolderRef `json:"folder"`
	PrevParentID string    `json:"prev_parent_id,omitempty"`
	PrevPath     string    `json:"prev_path,omitempty"`
}

// FolderDeletedPayload 目录及其子树被删除.
type FolderDeletedPayload struct {
	Folder FolderRef `json:"folder"`
	// Hard 为 true 表示子树内文件的后端对象已被移除.
	Hard bool `json:"hard,omitempty"`
	// Descendants 被级联删除的子目录数量（不含自身）.
	Descendants int `json:"descendants,omitempty"`
	// Files 被级联删除的文件数量.
	Files int `json:"files,omitempty"`
}

// FolderRestoredPayload 目录从回收站恢复.
type FolderRestoredPayload struct {
	Folder FolderRef `json:"folder"`
	// Restored 连同恢复的子目录与文件数量.
	RestoredFolders int `json:"restored_folders,omitempty"`
	RestoredFiles   int `json:"restored_files,omitempty"`
}

// -------------------------- 回收站与后端运维 --------------------------

// TrashCleanedPayload 回收站到期清理任务执行完成.
type TrashCleanedPayload struct {
	// RetentionDays 本次清理采用的保留天数.
	RetentionDays int `json:"retention_days"`
	// PurgedFiles 被物理删除的文件数.
	PurgedFiles int `json:"purged_files"`
	// PurgedFolders 被物理删除的目录数.
	PurgedFolders int `json:"purged_folders"`
	// Failed 删除失败（留待下次重试）的条目数.
	Failed int `json:"failed,omitempty"`
	// StartedAt 任务开始时间（UTC）.
	StartedAt time.Time `json:"started_at"`
	// Duration 任务耗时.
	Duration time.Duration `json:"duration,omitempty"`
}

// BackendUnavailablePayload 后端健康检查失败告警.
type BackendUnavailablePayload struct {
	BackendKind string `json:"backend_kind"`
	Error       string `json:"error,omitempty"`
	CheckedAt   string `json:"checked_at,omitempty"` // RFC3339
}
