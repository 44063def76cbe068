package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/log"
)

// UpdateFileMetadata 更新单个文件的元数据.
func UpdateFileMetadata(c *gin.Context) {
	l := log.Logger()

	fileID := c.Param("id")

	var req types.MetaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid metadata update request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.UpdateMetadata(c.Request.Context(), fileID, &req)
	if err != nil {
		l.Warn().Err(err).Str("file_id", fileID).Msg("metadata update failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// UpdateBatchFileMetadata 批量更新文件元数据.
func UpdateBatchFileMetadata(c *gin.Context) {
	l := log.Logger()

	var req types.UpdateFilesMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid batch metadata request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no items provided"})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.UpdateBatchMetadata(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).Msg("batch metadata update failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CopyFile 复制文件，可同时指定目标目录、目标后端与新名称.
func CopyFile(c *gin.Context) {
	l := log.Logger()

	fileID := c.Param("id")

	var req types.CopyFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid copy request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.CopyFile(c.Request.Context(), fileID, &req)
	if err != nil {
		l.Error().Err(err).Str("file_id", fileID).Msg("copy failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// MoveFile 移动文件到新目录或新后端.
func MoveFile(c *gin.Context) {
	l := log.Logger()

	fileID := c.Param("id")

	var req types.MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid move request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.MoveFile(c.Request.Context(), fileID, &req)
	if err != nil {
		l.Error().Err(err).Str("file_id", fileID).Msg("move failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
