package handle

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/log"
)

// DownloadFile 通过服务端读流下载文件内容.
func DownloadFile(c *gin.Context) {
	l := log.Logger()

	fileID := c.Param("id")

	svc := service.NewFileService(c.Request.Context())

	rc, info, err := svc.OpenFile(c.Request.Context(), fileID)
	if err != nil {
		l.Warn().Err(err).Str("file_id", fileID).Msg("download failed")
		writeError(c, err)

		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", info.Name),
	}

	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, extraHeaders)
}

// GetSignedURL 为私有文件生成限时访问 URL；公开文件直接返回静态 URL.
func GetSignedURL(c *gin.Context) {
	l := log.Logger()

	fileID := c.Param("id")

	var req types.SignedURLRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid signed url request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.SignedURL(c.Request.Context(), fileID, &req)
	if err != nil {
		l.Warn().Err(err).Str("file_id", fileID).Msg("signed url failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
