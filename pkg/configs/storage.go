// Package configs 管理应用程序配置，此文件定义各存储后端的配置记录.
// 每种后端只有在其配置段出现时才会被实例化；缺省情况下仅启用本地磁盘后端.
//
// Example:
//
//	config := configs.GetConfig()
//	if config.Storage.S3 != nil {
//		// S3 后端已配置
//	}
package configs

import (
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// BackendKind 存储后端类型标签.
type BackendKind string

const (
	// BackendLocal 本地磁盘后端.
	BackendLocal BackendKind = "local"
	// BackendPermFS 带权限控制的本地磁盘后端.
	BackendPermFS BackendKind = "permfs"
	// BackendS3 S3 兼容对象存储后端.
	BackendS3 BackendKind = "s3"
	// BackendCDNS3 带 CDN 域名改写的对象存储后端.
	BackendCDNS3 BackendKind = "cdn_s3"
)

const (
	DefaultStorageUploadPath = "data/uploads" // 默认本地上传目录
	DefaultStorageFileMode   = 0o644          // 默认写入后的文件权限位
	DefaultS3Endpoint        = "localhost:9000"
	DefaultS3AccessKeyID     = "minioadmin"
	DefaultS3SecretAccessKey = "minioadmin"
	DefaultS3Region          = "us-east-1"
	DefaultS3Bucket          = "filedepot"
)

// ACL 访问控制属性.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// StorageConfig 各存储后端的配置集合. 指针为 nil 表示该后端未配置、不实例化.
type StorageConfig struct {
	// Default 未显式指定后端时使用的后端类型；为空表示使用最先注册的后端
	Default BackendKind          `mapstructure:"default" rule:"omitempty,oneof=local permfs s3 cdn_s3"`
	Local   *LocalBackendConfig  `mapstructure:"local"`
	PermFS  *PermFSBackendConfig `mapstructure:"permfs"`
	S3      *S3BackendConfig     `mapstructure:"s3"`
	CDNS3   *CDNS3BackendConfig  `mapstructure:"cdn_s3"`
}

// LocalBackendConfig 本地磁盘后端配置.
type LocalBackendConfig struct {
	UploadPath      string `mapstructure:"upload_path"       rule:"required"`
	BaseURL         string `mapstructure:"base_url"          rule:"omitempty,url"`
	CreateIfMissing bool   `mapstructure:"create_if_missing"`
}

// OwnerConfig 写入后应用的属主.
type OwnerConfig struct {
	UID int `mapstructure:"uid" rule:"min=0"`
	GID int `mapstructure:"gid" rule:"min=0"`
}

// PermFSBackendConfig 带权限控制的本地磁盘后端配置.
type PermFSBackendConfig struct {
	LocalBackendConfig `mapstructure:",squash"`
	// FileMode 写入后应用的权限位，八进制，如 0644
	FileMode uint32 `mapstructure:"file_mode" rule:"max=4095"`
	// Owner 写入后应用的属主；为 nil 表示不改属主
	Owner *OwnerConfig `mapstructure:"owner"`
}

// Mode 返回配置的权限位，未设置时使用默认值.
func (c *PermFSBackendConfig) Mode() fs.FileMode {
	if c.FileMode == 0 {
		return DefaultStorageFileMode
	}

	return fs.FileMode(c.FileMode)
}

// S3BackendConfig S3 兼容对象存储后端配置.
type S3BackendConfig struct {
	Region          string `mapstructure:"region"            rule:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"     rule:"required"`
	SecretAccessKey string `mapstructure:"secret_access_key" rule:"required"`
	Bucket          string `mapstructure:"bucket"            rule:"required"`
	// AccessControl 上传对象的访问控制属性，默认 private
	AccessControl ACL `mapstructure:"access_control" rule:"omitempty,oneof=private public-read"`
	// EndpointOverride 覆盖默认端点（MinIO、自建网关等）；为空使用 AWS 形式端点
	EndpointOverride string `mapstructure:"endpoint_override"`
	UseSSL           bool   `mapstructure:"use_ssl"`
}

// Endpoint 返回实际使用的端点.
func (c *S3BackendConfig) Endpoint() string {
	if c.EndpointOverride != "" {
		return c.EndpointOverride
	}

	return fmt.Sprintf("s3.%s.amazonaws.com", c.Region)
}

// EndpointURL 返回带 scheme 的端点 URL.
func (c *S3BackendConfig) EndpointURL() string {
	scheme := "http"
	if c.UseSSL || c.EndpointOverride == "" {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint())
}

// EffectiveACL 返回实际生效的访问控制属性.
func (c *S3BackendConfig) EffectiveACL() ACL {
	if c.AccessControl == "" {
		return ACLPrivate
	}

	return c.AccessControl
}

// CDNS3BackendConfig 带 CDN 域名改写的对象存储后端配置.
type CDNS3BackendConfig struct {
	S3BackendConfig `mapstructure:",squash"`
	// CDNOrigin CDN 源站地址，如 https://cdn.example.com；为空退回原生 URL 形式
	CDNOrigin string `mapstructure:"cdn_origin" rule:"omitempty,url"`
}

// setDefaults 设置存储后端配置的默认值.
// 只为 local 段设默认值：其余后端缺段即不实例化.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.default", "")
	v.SetDefault("storage.local.upload_path", DefaultStorageUploadPath)
	v.SetDefault("storage.local.base_url", "")
	v.SetDefault("storage.local.create_if_missing", true)
}
