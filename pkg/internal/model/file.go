// Package model 定义持久化实体：文件记录、文件夹与文件夹闭包关系.
package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/bytedance/sonic"
)

// File 物理对象的引用记录.
type File struct {
	// ID 创建时分配的不透明唯一标识（ULID），不可变
	ID string `gorm:"primaryKey;size:26" json:"id"`
	// Name 逻辑名（存储名）
	Name string `gorm:"size:512;index:idx_files_name" json:"name"`
	// OriginalName 客户端提交的原始文件名
	OriginalName string `gorm:"size:512" json:"original_name"`
	// PhysicalPath 后端内的物理路径（本地后端为绝对路径），仅作诊断展示
	PhysicalPath string `gorm:"size:1024" json:"physical_path"`
	// URL 公共访问 URL；私有对象为空
	URL  string `gorm:"size:2048"                                 json:"url,omitempty"`
	Size int64  `gorm:"index"                                     json:"size"`
	// ContentType MIME 类型
	ContentType string `gorm:"size:255;index:idx_files_ctype_deleted"    json:"content_type"`
	Extension   string `gorm:"size:32"                                   json:"extension,omitempty"`
	// StorageKind 后端类型标签
	StorageKind string `gorm:"size:32;index:idx_files_kind_deleted"      json:"storage_kind"`
	// Bucket 对象存储的桶；文件系统后端为空
	Bucket string `gorm:"size:255" json:"bucket,omitempty"`
	// StorageKey 后端存储键，所有对象操作以此寻址
	StorageKey string `gorm:"size:1024" json:"storage_key,omitempty"`
	// FolderID 所属文件夹；NULL 表示根级. 文件夹硬删后置空.
	FolderID *string `gorm:"size:26;index" json:"folder_id,omitempty"`
	Folder   *Folder `gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL" json:"-"`
	// UploadedBy 上传者标识
	UploadedBy string `gorm:"size:255" json:"uploaded_by,omitempty"`
	// MetadataJSON 任意键值元数据，JSON 字符串存储
	MetadataJSON string `gorm:"type:text" json:"-"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	// TagsJSON 有序标签集，JSON 字符串存储，便于模糊搜索
	TagsJSON string `gorm:"type:text" json:"-"`
	// Category 业务分类，供统计聚合
	Category string `gorm:"size:128" json:"category,omitempty"`
	// Public 公开/私有标志，默认公开
	Public bool `gorm:"default:true" json:"public"`
	// Checksum 内容完整性校验值（xxhash64 十六进制）
	Checksum string `gorm:"size:64" json:"checksum,omitempty"`
	ETag     string `gorm:"size:64" json:"etag,omitempty"`

	CreatedAt time.Time      `gorm:"index:idx_files_created" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_files_kind_deleted;index:idx_files_ctype_deleted" json:"deleted_at,omitempty"`
	// DeletedBy 软删除操作者标识
	DeletedBy string `gorm:"size:255" json:"deleted_by,omitempty"`
}

// Metadata 解析元数据 JSON；空值返回 nil.
func (f *File) Metadata() map[string]string {
	if f.MetadataJSON == "" {
		return nil
	}

	var m map[string]string
	if err := sonic.UnmarshalString(f.MetadataJSON, &m); err != nil {
		return nil
	}

	return m
}

// SetMetadata 序列化元数据到 JSON 字符串.
func (f *File) SetMetadata(m map[string]string) error {
	if len(m) == 0 {
		f.MetadataJSON = ""

		return nil
	}

	s, err := sonic.MarshalString(m)
	if err != nil {
		return err
	}

	f.MetadataJSON = s

	return nil
}

// Tags 解析标签 JSON；空值返回 nil.
func (f *File) Tags() []string {
	if f.TagsJSON == "" {
		return nil
	}

	var tags []string
	if err := sonic.UnmarshalString(f.TagsJSON, &tags); err != nil {
		return nil
	}

	return tags
}

// SetTags 序列化有序标签集到 JSON 字符串.
func (f *File) SetTags(tags []string) error {
	if len(tags) == 0 {
		f.TagsJSON = ""

		return nil
	}

	s, err := sonic.MarshalString(tags)
	if err != nil {
		return err
	}

	f.TagsJSON = s

	return nil
}
