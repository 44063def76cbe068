package handle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bytedance/sonic"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/log"
)

// MaxFileSize 单个文件大小上限.
const MaxFileSize = 100 * 1024 * 1024 // 100MB

// UploadSingleFile 上传单个文件（multipart 表单）.
// 表单字段 file 为文件体，其余元数据字段见 types.UploadFileMetadata.
func UploadSingleFile(c *gin.Context) {
	l := log.Logger()

	file, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("failed to get uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})

		return
	}

	if file.Size > MaxFileSize {
		l.Warn().Int64("file_size", file.Size).Msg("file size exceeds limit")
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 100MB limit"})

		return
	}

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	meta := &types.UploadFileMetadata{}
	if err := c.ShouldBind(meta); err != nil {
		l.Warn().Err(err).Msg("invalid upload metadata")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	// tags 既支持重复表单字段也支持单个逗号分隔值
	if len(meta.Tags) == 1 && strings.Contains(meta.Tags[0], ",") {
		meta.Tags = splitTags(meta.Tags[0])
	}

	src, err := file.Open()
	if err != nil {
		l.Error().Err(err).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})

		return
	}
	defer src.Close()

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.UploadFile(c.Request.Context(), user, file.Filename, src, file.Size, meta)
	if err != nil {
		l.Error().Err(err).Str("file_name", file.Filename).Msg("failed to upload file")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadBatchFiles 批量上传（multipart 表单）.
// files 为文件数组，metadata 为与之对应的 JSON 元数据数组（按文件名匹配）.
func UploadBatchFiles(c *gin.Context) {
	l := log.Logger()

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn().Err(err).Msg("failed to parse multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})

		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		l.Warn().Msg("no files provided in batch upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})

		return
	}

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	metadataMap := make(map[string]*types.UploadFileMetadata)

	if metadataStr := c.PostForm("metadata"); metadataStr != "" {
		var metadataList []types.UploadFileMetadata
		if unmarshalErr := sonic.UnmarshalString(metadataStr, &metadataList); unmarshalErr == nil {
			for i := range metadataList {
				if i < len(files) {
					metadataMap[files[i].Filename] = &metadataList[i]
				}
			}
		}
	}

	items := make([]types.UploadBatchItem, 0, len(files))

	for _, file := range files {
		src, openErr := file.Open()
		if openErr != nil {
			l.Error().Err(openErr).Str("filename", file.Filename).Msg("failed to open file")

			continue
		}
		defer src.Close()

		items = append(items, types.UploadBatchItem{
			FileName: file.Filename,
			Reader:   src,
			Size:     file.Size,
			Meta:     metadataMap[file.Filename],
		})
	}

	if len(items) == 0 {
		l.Warn().Msg("no valid files to upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid files"})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.UploadBatch(c.Request.Context(), user, items)
	if err != nil {
		l.Error().Err(err).Msg("failed to upload batch files")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// splitTags 拆分逗号分隔的标签值并去除空白项.
func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
