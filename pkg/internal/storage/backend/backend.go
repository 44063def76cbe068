// Package backend 定义存储后端的统一能力契约：上传、删除、读取、签名 URL、
// 复制与移动. 逻辑文件到物理字节的映射由具体后端实现（本地磁盘、对象存储等），
// 元数据（文件记录、文件夹层级）由数据库层单独管理.
package backend

import (
	"context"
	"io"
	"time"

	"github.com/yimu/filedepot/pkg/configs"
)

// DefaultSignExpiry 签名 URL 默认有效期.
const DefaultSignExpiry = time.Hour

// StorageResult 一次物理写入的结果.
type StorageResult struct {
	// Path 后端内的物理路径或对象键
	Path string `json:"path"`
	// Key 与 Path 不同时的存储键（对象存储的 key）
	Key string `json:"key,omitempty"`
	// Bucket 对象存储的桶；文件系统后端为空
	Bucket string `json:"bucket,omitempty"`
	// URL 公共访问 URL；私有对象为空，取用需走 SignedURL
	URL         string `json:"url,omitempty"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag,omitempty"`
}

// DeleteResult 单个对象的删除结果. 删除不存在的对象返回 Success=false 与说明信息，
// 而不是错误：对调用方来说删除是幂等安全的.
type DeleteResult struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UploadItem 批量上传的一个条目.
type UploadItem struct {
	Name   string
	Reader io.Reader
	Size   int64
	Opts   UploadOptions
}

// UploadOutcome 批量上传的单条结果，与输入顺序一一对应.
// 单条失败不回滚其它条目.
type UploadOutcome struct {
	Result *StorageResult
	Err    error
}

// UploadOptions 上传可选项.
type UploadOptions struct {
	ContentType string
	// Public 覆盖后端默认访问控制；nil 使用后端配置
	Public   *bool
	Metadata map[string]string
}

// SignOptions 签名 URL 可选项.
type SignOptions struct {
	// ExpiresIn 有效期；零值使用 DefaultSignExpiry
	ExpiresIn          time.Duration
	ContentType        string
	ContentDisposition string
}

// Expiry 返回实际生效的有效期.
func (o SignOptions) Expiry() time.Duration {
	if o.ExpiresIn <= 0 {
		return DefaultSignExpiry
	}

	return o.ExpiresIn
}

// ObjectMetadata 后端观测到的对象属性.
type ObjectMetadata struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag,omitempty"`
	IsDir        bool              `json:"is_dir,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Backend 存储后端能力契约. 实现必须可并发使用.
type Backend interface {
	// Kind 返回后端类型标签.
	Kind() configs.BackendKind

	// Upload 写入一个对象；任何缺失的中间目录/前缀结构由实现创建.
	// I/O 失败返回 BackendOperationError，调用方不应假定部分写入可见.
	Upload(ctx context.Context, name string, r io.Reader, size int64, opts UploadOptions) (*StorageResult, error)

	// UploadMultiple 按输入顺序逐条上传，返回与输入一一对应的结果；
	// 条目之间无跨项回滚.
	UploadMultiple(ctx context.Context, items []UploadItem) []UploadOutcome

	// Delete 删除一个对象；对象不存在返回 Success=false 而非错误.
	Delete(ctx context.Context, key string) (DeleteResult, error)

	// DeleteMultiple 批量删除，每个输入键对应一条结果；
	// 支持原生批量删除的后端应使用之.
	DeleteMultiple(ctx context.Context, keys []string) ([]DeleteResult, error)

	// Fetch 读取对象内容；不存在返回 NotFoundError. 调用方负责 Close.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists 检查对象是否存在；对象缺失不会返回错误.
	Exists(ctx context.Context, key string) (bool, error)

	// SignedURL 返回限时访问 URL. 无原生签名概念的后端退回（可能为空的）
	// 公共 URL，而不是错误：签名是尽力而为的能力，不是保证.
	SignedURL(ctx context.Context, key string, opts SignOptions) (string, error)

	// Metadata 返回后端观测到的对象属性.
	Metadata(ctx context.Context, key string) (*ObjectMetadata, error)

	// Copy 复制对象，源保持不变.
	Copy(ctx context.Context, srcKey, dstKey string) (*StorageResult, error)

	// Move 复制后删除源. 复制成功而删源失败时，目标对象仍作为权威结果返回，
	// 残留的源对象是可恢复的泄漏而非移动失败（记录 warn 日志）.
	Move(ctx context.Context, srcKey, dstKey string) (*StorageResult, error)

	// Close 释放后端持有的资源.
	Close() error
}
