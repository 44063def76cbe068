package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishFileStored 发布 fd.file.stored 事件。
// 用于文件写入存储后端且元数据落库后，通知下游流程（索引、统计等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishFileStored(pub message.Publisher, payload FileStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileStored, msg)
}

// ParseFileStored 将 Watermill 消息解析为强类型 Envelope（FileStoredPayload）。
func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](msg)
}

// PublishFileDeleted 发布 fd.file.deleted 事件。
func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileDeleted, msg)
}

// PublishFileRestored 发布 fd.file.restored 事件。
func PublishFileRestored(pub message.Publisher, payload FileRestoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileRestored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileRestored, msg)
}

// PublishFileMoved 发布 fd.file.moved 事件。
func PublishFileMoved(pub message.Publisher, payload FileMovedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileMoved, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileMoved, msg)
}

// PublishFolderCreated 发布 fd.folder.created 事件。
func PublishFolderCreated(pub message.Publisher, payload FolderCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFolderCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFolderCreated, msg)
}

// PublishFolderMoved 发布 fd.folder.moved 事件。
func PublishFolderMoved(pub message.Publisher, payload FolderMovedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFolderMoved, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFolderMoved, msg)
}

// PublishFolderDeleted 发布 fd.folder.deleted 事件。
func PublishFolderDeleted(pub message.Publisher, payload FolderDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFolderDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFolderDeleted, msg)
}

// PublishTrashCleaned 发布 fd.trash.cleaned 事件。
func PublishTrashCleaned(pub message.Publisher, payload TrashCleanedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicTrashCleaned, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicTrashCleaned, msg)
}
