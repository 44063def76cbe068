// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：fd.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：file(文件记录)、folder(目录树)、trash(回收站)、backend(存储后端)
// 动作：存储相关(stored/deleted/restored/moved/copied)、目录相关(created/moved/deleted/restored)
// 状态：仅在异步流程需要时追加(requested/failed)

const (
	// 文件领域.
	TopicFileStored   = "fd.file.stored"   // 文件已写入存储后端且元数据落库
	TopicFileUpdated  = "fd.file.updated"  // 文件元数据（名称/标签/自定义字段）被更新
	TopicFileDeleted  = "fd.file.deleted"  // 文件被删除（软删进回收站或硬删）
	TopicFileRestored = "fd.file.restored" // 文件从回收站恢复
	TopicFileMoved    = "fd.file.moved"    // 文件存储键或所属目录变更
	TopicFileCopied   = "fd.file.copied"   // 文件被复制为新记录
	TopicFileAccessed = "fd.file.accessed" // 文件被下载或签发访问链接（用于热点统计）

	// 目录领域.
	TopicFolderCreated  = "fd.folder.created"  // 目录创建完成（闭包表已写入）
	TopicFolderMoved    = "fd.folder.moved"    // 目录挂载到新父节点，子树路径已重算
	TopicFolderDeleted  = "fd.folder.deleted"  // 目录及其子树被删除
	TopicFolderRestored = "fd.folder.restored" // 目录从回收站恢复

	// 回收站领域.
	TopicTrashCleaned = "fd.trash.cleaned" // 回收站到期清理任务执行完成

	// 存储后端领域.
	TopicBackendUnavailable = "fd.backend.unavailable" // 后端健康检查失败告警
)

// 主题分组，用于批量操作或权限控制.
var (
	// 文件相关主题集合.
	FileTopics = []string{
		TopicFileStored, TopicFileUpdated, TopicFileDeleted,
		TopicFileRestored, TopicFileMoved, TopicFileCopied,
		TopicFileAccessed,
	}

	// 目录相关主题集合.
	FolderTopics = []string{
		TopicFolderCreated, TopicFolderMoved,
		TopicFolderDeleted, TopicFolderRestored,
	}

	// 回收站与后端运维主题集合.
	MaintenanceTopics = []string{
		TopicTrashCleaned, TopicBackendUnavailable,
	}
)
