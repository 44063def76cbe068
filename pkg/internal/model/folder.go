package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/bytedance/sonic"
)

// Folder 层级节点.
type Folder struct {
	ID          string `gorm:"primaryKey;size:26" json:"id"`
	Name        string `gorm:"size:255;index:idx_folders_name_deleted" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	// Path 物化路径：根级为 /name，嵌套为 /ancestor1/.../name
	Path string `gorm:"size:2048" json:"path"`
	// ParentID 父节点；NULL 表示根级. 外键级联删除.
	ParentID *string `gorm:"size:26;index:idx_folders_parent_deleted" json:"parent_id,omitempty"`
	Parent   *Folder `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Public   bool    `gorm:"default:true" json:"public"`
	// FileCount 非删除文件数的缓存聚合，文件变更后重算
	FileCount int64 `gorm:"default:0" json:"file_count"`
	// TotalSize 非删除文件字节数的缓存聚合
	TotalSize    int64  `gorm:"default:0" json:"total_size"`
	MetadataJSON string `gorm:"type:text" json:"-"`
	CreatedBy    string `gorm:"size:255" json:"created_by,omitempty"`
	DeletedBy    string `gorm:"size:255" json:"deleted_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_folders_name_deleted;index:idx_folders_parent_deleted" json:"deleted_at,omitempty"`

	// Children 派生字段，不落库
	Children []*Folder `gorm:"-" json:"children,omitempty"`
}

// Metadata 解析元数据 JSON；空值返回 nil.
func (f *Folder) Metadata() map[string]string {
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
func (f *Folder) SetMetadata(m map[string]string) error {
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

// FolderClosure 祖先/后代闭包关系对，含自反自对（ancestor==descendant）.
// 读取时祖先/后代/子节点查询无需递归；代价是每次创建/移动/删除要维护闭包集.
type FolderClosure struct {
	AncestorID   string  `gorm:"primaryKey;size:26;index" json:"ancestor_id"`
	DescendantID string  `gorm:"primaryKey;size:26;index" json:"descendant_id"`
	Ancestor     *Folder `gorm:"foreignKey:AncestorID;constraint:OnDelete:CASCADE"   json:"-"`
	Descendant   *Folder `gorm:"foreignKey:DescendantID;constraint:OnDelete:CASCADE" json:"-"`
	// Depth 祖先到后代的层距，自对为 0，直接子节点为 1
	Depth int `gorm:"not null" json:"depth"`
}

// TableName 固定闭包表名.
func (FolderClosure) TableName() string {
	return "folders_closure"
}
