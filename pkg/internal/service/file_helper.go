package service

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/oklog/ulid"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/queue"
	nlog "github.com/yimu/filedepot/pkg/log"
)

const (
	// DefaultSliceCapacity 默认slice预分配容量.
	DefaultSliceCapacity = 100
	// DefaultSignedURLTimeout 默认签名 URL 有效期.
	DefaultSignedURLTimeout = 15 * time.Minute
	// maxPageSize 列表类接口单页上限.
	maxPageSize = 200
)

var ulidEntropy = ulid.Monotonic(crand.Reader, 0)

// newRecordID 生成按时间有序的记录 ID（ULID）.
func newRecordID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulidEntropy).String()
}

// buildStorageName 生成存储名：保留原始扩展名，主体用 uuid 去重，
// 前缀按年月分层避免单目录过大.
func buildStorageName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	datePath := time.Now().UTC().Format("2006/01")

	return fmt.Sprintf("%s/%s%s", datePath, uuid.NewString(), ext)
}

// extensionOf 取小写扩展名（不含点），无扩展名返回空.
func extensionOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// kindOf 按 MIME 一级类型归类，供统计与过滤使用.
func kindOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "text/"):
		return "text"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "other"
	}
}

// checksumReader 包装 reader 以边读边算 xxhash64.
type checksumReader struct {
	r io.Reader
	h *xxhash.Digest
}

func newChecksumReader(r io.Reader) *checksumReader {
	return &checksumReader{r: r, h: xxhash.New()}
}

func (c *checksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		_, _ = c.h.Write(p[:n])
	}

	return n, err
}

// Sum 返回十六进制摘要.
func (c *checksumReader) Sum() string {
	return fmt.Sprintf("%016x", c.h.Sum64())
}

// lookupFolder 校验目标文件夹存在且未删除.
func (fs *FileService) lookupFolder(ctx context.Context, folderID string) (*model.Folder, error) {
	var folder model.Folder
	if err := fs.dbClient.GetDB().WithContext(ctx).
		First(&folder, "id = ?", folderID).Error; err != nil {
		return nil, errs.NewNotFound("folder", folderID)
	}

	return &folder, nil
}

// lookupFile 按 ID 取文件记录；includeDeleted 为 true 时包含回收站记录.
func (fs *FileService) lookupFile(ctx context.Context, fileID string, includeDeleted bool) (*model.File, error) {
	dbx := fs.dbClient.GetDB().WithContext(ctx)
	if includeDeleted {
		dbx = dbx.Unscoped()
	}

	var file model.File
	if err := dbx.First(&file, "id = ?", fileID).Error; err != nil {
		return nil, errs.NewNotFound("file", fileID)
	}

	return &file, nil
}

// recalcFolderStats 重算文件夹的缓存聚合（非删除直属文件的数量与字节数）.
// 文件增删、软删/恢复、目录迁移后都需要调用；失败只记日志，聚合是缓存不是事实源.
func (fs *FileService) recalcFolderStats(ctx context.Context, folderID *string) {
	if folderID == nil || *folderID == "" {
		return
	}

	dbx := fs.dbClient.GetDB().WithContext(ctx)

	var agg struct {
		Cnt int64
		Sum int64
	}

	if err := dbx.Model(&model.File{}).
		Select("COUNT(*) as cnt, COALESCE(SUM(size),0) as sum").
		Where("folder_id = ?", *folderID).
		Scan(&agg).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("folder_id", *folderID).Msg("重算文件夹统计失败")

		return
	}

	if err := dbx.Model(&model.Folder{}).Where("id = ?", *folderID).
		Updates(map[string]any{"file_count": agg.Cnt, "total_size": agg.Sum}).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("folder_id", *folderID).Msg("写回文件夹统计失败")
	}
}

// transferObject 把源记录的对象搬到目标后端下的 dstKey.
// 同后端走原生 Copy；跨后端读源流写目标. move 参数仅影响日志措辞.
func (fs *FileService) transferObject(ctx context.Context, src, dst backend.Backend,
	record *model.File, dstKey string, move bool) (*backend.StorageResult, error) {
	if src.Kind() == dst.Kind() {
		return src.Copy(ctx, record.StorageKey, dstKey)
	}

	rc, err := src.Fetch(ctx, record.StorageKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	opts := backend.UploadOptions{ContentType: record.ContentType}
	if record.Public {
		public := true
		opts.Public = &public
	}

	res, err := dst.Upload(ctx, dstKey, rc, record.Size, opts)
	if err != nil {
		op := "copy"
		if move {
			op = "move"
		}

		return nil, errs.NewBackendOp(string(dst.Kind()), op, err)
	}

	return res, nil
}

// resolveBackend 按请求的类型标签解析后端，空标签用默认后端.
func (fs *FileService) resolveBackend(kind string) (backend.Backend, error) {
	return fs.backends.Resolve(configs.BackendKind(kind))
}

// fileInfo 将记录转换为对外视图.
func fileInfo(m *model.File) types.FileInfo {
	info := types.FileInfo{
		FileID:      m.ID,
		Name:        m.Name,
		StorageKey:  m.StorageKey,
		BackendKind: m.StorageKind,
		Bucket:      m.Bucket,
		Size:        m.Size,
		Checksum:    m.Checksum,
		ContentType: m.ContentType,
		Kind:        kindOf(m.ContentType),
		Description: m.Description,
		Category:    m.Category,
		IsPublic:    m.Public,
		URL:         m.URL,
		Tags:        m.Tags(),
		Metadata:    m.Metadata(),
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if m.FolderID != nil {
		info.FolderID = *m.FolderID
	}

	if m.DeletedAt.Valid {
		info.DeletedAt = m.DeletedAt.Time.UTC().Format(time.RFC3339)
		info.DeletedBy = m.DeletedBy
	}

	return info
}

// fileRef 构造事件负载的文件引用.
func fileRef(m *model.File) queue.FileRef {
	ref := queue.FileRef{
		FileID:      m.ID,
		Name:        m.Name,
		StorageKey:  m.StorageKey,
		BackendKind: m.StorageKind,
		Bucket:      m.Bucket,
		Size:        m.Size,
		Checksum:    m.Checksum,
		ContentType: m.ContentType,
		Tags:        m.Tags(),
	}

	if m.FolderID != nil {
		ref.FolderID = *m.FolderID
	}

	return ref
}

// ---------------- 事件发布（尽力而为，失败只记日志） ----------------

func (fs *FileService) publishFileStored(m *model.File, source string) {
	cfg := configs.GetConfig().Events
	if fs.mqClient == nil || !cfg.Enabled || !cfg.File.Stored {
		return
	}

	payload := queue.FileStoredPayload{File: fileRef(m), Source: source}
	if err := queue.PublishFileStored(fs.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", m.ID).Msg("发布 file.stored 事件失败")
	}
}

func (fs *FileService) publishFileDeleted(m *model.File, hard bool, deletedBy string) {
	cfg := configs.GetConfig().Events
	if fs.mqClient == nil || !cfg.Enabled || !cfg.File.Deleted {
		return
	}

	payload := queue.FileDeletedPayload{File: fileRef(m), Hard: hard, DeletedBy: deletedBy}
	if err := queue.PublishFileDeleted(fs.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", m.ID).Msg("发布 file.deleted 事件失败")
	}
}

func (fs *FileService) publishFileRestored(m *model.File) {
	cfg := configs.GetConfig().Events
	if fs.mqClient == nil || !cfg.Enabled || !cfg.File.Restored {
		return
	}

	payload := queue.FileRestoredPayload{File: fileRef(m)}
	if err := queue.PublishFileRestored(fs.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", m.ID).Msg("发布 file.restored 事件失败")
	}
}

func (fs *FileService) publishFileMoved(m *model.File, prevKey, prevFolder string, sourceRemoved bool) {
	cfg := configs.GetConfig().Events
	if fs.mqClient == nil || !cfg.Enabled || !cfg.File.Moved {
		return
	}

	payload := queue.FileMovedPayload{
		File:          fileRef(m),
		PrevKey:       prevKey,
		PrevFolderID:  prevFolder,
		SourceRemoved: sourceRemoved,
	}
	if err := queue.PublishFileMoved(fs.mqClient.Publisher(), payload, queue.WithProducer("filedepot")); err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", m.ID).Msg("发布 file.moved 事件失败")
	}
}
