// Package s3 对接 S3 兼容对象存储（桶/键模型）实现存储后端契约.
// 上传设置 content-type 与访问控制属性；复制走服务端拷贝，批量删除走原生多键删除.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	nlog "github.com/yimu/filedepot/pkg/log"
)

// uploadConcurrency UploadMultiple 的并发上限.
const uploadConcurrency = 4

// Backend S3 兼容对象存储后端.
type Backend struct {
	client *minio.Client
	cfg    *configs.S3BackendConfig
}

var _ backend.Backend = (*Backend)(nil)

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg *configs.S3BackendConfig) (*Backend, error) {
	endpoint := cfg.Endpoint()
	secure := cfg.UseSSL || cfg.EndpointOverride == ""

	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			secure = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("filedepot", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.Bucket).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", endpoint).Str("bucket", cfg.Bucket).Msg("object store connected")

	return &Backend{client: cli, cfg: cfg}, nil
}

// Kind 返回后端类型标签.
func (b *Backend) Kind() configs.BackendKind {
	return configs.BackendS3
}

// Config 返回后端配置.
func (b *Backend) Config() *configs.S3BackendConfig {
	return b.cfg
}

// NativeURL 构造对象的原生 URL 形式：有端点覆盖时为 path-style，
// 否则为 AWS virtual-host 形式.
func (b *Backend) NativeURL(key string) string {
	if b.cfg.EndpointOverride != "" {
		return fmt.Sprintf("%s/%s/%s", b.cfg.EndpointURL(), b.cfg.Bucket, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.cfg.Bucket, b.cfg.Region, key)
}

// publicURL 仅在访问控制为 public 时返回 URL；私有对象取用需走 SignedURL.
func (b *Backend) publicURL(key string) string {
	if b.cfg.EffectiveACL() != configs.ACLPublicRead {
		return ""
	}

	return b.NativeURL(key)
}

// isNotFound 判断 minio 错误是否为对象不存在.
func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)

	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == 404
}

// Upload 上传对象，设置 content-type 与访问控制属性（默认 private）.
func (b *Backend) Upload(ctx context.Context, name string, r io.Reader, size int64, opts backend.UploadOptions) (*backend.StorageResult, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	}

	acl := b.cfg.EffectiveACL()
	if opts.Public != nil {
		if *opts.Public {
			acl = configs.ACLPublicRead
		} else {
			acl = configs.ACLPrivate
		}
	}

	if putOpts.UserMetadata == nil {
		putOpts.UserMetadata = map[string]string{}
	}

	putOpts.UserMetadata["x-amz-acl"] = string(acl)

	info, err := b.client.PutObject(ctx, b.cfg.Bucket, name, r, size, putOpts)
	if err != nil {
		return nil, errs.NewBackendOp(string(b.Kind()), "upload", err)
	}

	var publicURL string
	if acl == configs.ACLPublicRead {
		publicURL = b.NativeURL(name)
	}

	return &backend.StorageResult{
		Path:        name,
		Key:         info.Key,
		Bucket:      info.Bucket,
		URL:         publicURL,
		Size:        info.Size,
		ContentType: opts.ContentType,
		ETag:        info.ETag,
	}, nil
}

// UploadMultiple 有界并发上传，结果与输入顺序一一对应，条目之间无跨项回滚.
func (b *Backend) UploadMultiple(ctx context.Context, items []backend.UploadItem) []backend.UploadOutcome {
	outcomes := make([]backend.UploadOutcome, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, item := range items {
		g.Go(func() error {
			res, err := b.Upload(gctx, item.Name, item.Reader, item.Size, item.Opts)
			outcomes[i] = backend.UploadOutcome{Result: res, Err: err}

			// 单条失败不中断批次
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

// Delete 删除对象. 对象不存在返回 Success=false 而非错误.
func (b *Backend) Delete(ctx context.Context, key string) (backend.DeleteResult, error) {
	exists, err := b.Exists(ctx, key)
	if err != nil {
		return backend.DeleteResult{Key: key}, err
	}

	if !exists {
		return backend.DeleteResult{Key: key, Success: false, Message: "object does not exist"}, nil
	}

	if err := b.client.RemoveObject(ctx, b.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return backend.DeleteResult{Key: key}, errs.NewBackendOp(string(b.Kind()), "delete", err)
	}

	return backend.DeleteResult{Key: key, Success: true}, nil
}

// DeleteMultiple 使用原生多键删除，仍然保证每个输入键对应一条结果.
func (b *Backend) DeleteMultiple(ctx context.Context, keys []string) ([]backend.DeleteResult, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}

	close(objectsCh)

	failed := make(map[string]string, len(keys))
	for rErr := range b.client.RemoveObjects(ctx, b.cfg.Bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil {
			failed[rErr.ObjectName] = rErr.Err.Error()
		}
	}

	results := make([]backend.DeleteResult, 0, len(keys))

	for _, key := range keys {
		if msg, ok := failed[key]; ok {
			results = append(results, backend.DeleteResult{Key: key, Success: false, Message: msg})
		} else {
			results = append(results, backend.DeleteResult{Key: key, Success: true})
		}
	}

	return results, nil
}

// Fetch 读取对象内容；不存在返回 NotFoundError.
func (b *Backend) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.NewBackendOp(string(b.Kind()), "fetch", err)
	}

	// GetObject 懒连接：显式 Stat 以便把缺失对象在这里暴露出来
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()

		if isNotFound(err) {
			return nil, errs.NewNotFound("object", key)
		}

		return nil, errs.NewBackendOp(string(b.Kind()), "fetch", err)
	}

	return obj, nil
}

// Exists "not found" 响应视为 false，其它错误原样上抛.
func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, errs.NewBackendOp(string(b.Kind()), "exists", err)
	}

	return true, nil
}

// SignedURL 生成预签名 GET URL.
func (b *Backend) SignedURL(ctx context.Context, key string, opts backend.SignOptions) (string, error) {
	params := url.Values{}
	if opts.ContentType != "" {
		params.Set("response-content-type", opts.ContentType)
	}

	if opts.ContentDisposition != "" {
		params.Set("response-content-disposition", opts.ContentDisposition)
	}

	u, err := b.client.PresignedGetObject(ctx, b.cfg.Bucket, key, opts.Expiry(), params)
	if err != nil {
		return "", errs.NewBackendOp(string(b.Kind()), "sign", err)
	}

	return u.String(), nil
}

// Metadata 返回对象存储观测到的属性.
func (b *Backend) Metadata(ctx context.Context, key string) (*backend.ObjectMetadata, error) {
	info, err := b.client.StatObject(ctx, b.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFound("object", key)
		}

		return nil, errs.NewBackendOp(string(b.Kind()), "metadata", err)
	}

	extra := make(map[string]string, len(info.UserMetadata)+2)
	for k, v := range info.UserMetadata {
		extra[k] = v
	}

	extra["storage-class"] = info.StorageClass
	extra["version-id"] = info.VersionID

	return &backend.ObjectMetadata{
		Key:          key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		Extra:        extra,
	}, nil
}

// Copy 服务端拷贝，不经过本地的字节往返.
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	src := minio.CopySrcOptions{Bucket: b.cfg.Bucket, Object: srcKey}
	dst := minio.CopyDestOptions{Bucket: b.cfg.Bucket, Object: dstKey}

	info, err := b.client.CopyObject(ctx, dst, src)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFound("object", srcKey)
		}

		return nil, errs.NewBackendOp(string(b.Kind()), "copy", err)
	}

	meta, err := b.Metadata(ctx, dstKey)
	if err != nil {
		return nil, err
	}

	return &backend.StorageResult{
		Path:        dstKey,
		Key:         info.Key,
		Bucket:      info.Bucket,
		URL:         b.publicURL(dstKey),
		Size:        meta.Size,
		ContentType: meta.ContentType,
		ETag:        info.ETag,
	}, nil
}

// Move 复制后删除源. 删源失败仅记录日志，目标作为权威结果.
func (b *Backend) Move(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	res, err := b.Copy(ctx, srcKey, dstKey)
	if err != nil {
		return nil, err
	}

	if del, derr := b.Delete(ctx, srcKey); derr != nil {
		nlog.Logger().Warn().Err(derr).Str("src", srcKey).Str("dst", dstKey).
			Msg("source left behind after move: copy succeeded but source delete failed")
	} else if !del.Success {
		nlog.Logger().Debug().Str("src", srcKey).Str("dst", dstKey).
			Msg("move source already absent")
	}

	return res, nil
}

// HealthCheck 通过列桶验证连接.
func (b *Backend) HealthCheck(ctx context.Context) error {
	_, err := b.client.ListBuckets(ctx)

	return err
}

// Close 关闭客户端连接（minio 客户端无需显式关闭，接口兼容）.
func (b *Backend) Close() error {
	return nil
}
