package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/log"
)

// ListFiles 分页列出文件记录，支持目录、后端、类型过滤.
func ListFiles(c *gin.Context) {
	l := log.Logger()

	var req types.ListFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid list request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.ListFiles(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).Msg("list files failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// SearchFiles 高级搜索：关键字、目录子树、分类、大小与时间范围.
func SearchFiles(c *gin.Context) {
	l := log.Logger()

	var req types.SearchFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.SearchFiles(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).Msg("search files failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFile 获取单个文件的记录详情.
func GetFile(c *gin.Context) {
	fileID := c.Param("id")

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.GetFile(c.Request.Context(), fileID)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// GetObjectMetadata 探活后端对象并返回实时元数据.
func GetObjectMetadata(c *gin.Context) {
	fileID := c.Param("id")

	svc := service.NewFileService(c.Request.Context())

	meta, err := svc.BackendMetadata(c.Request.Context(), fileID)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, meta)
}

// DeleteFile 删除单个文件. query 参数 hard=true 时物理删除.
func DeleteFile(c *gin.Context) {
	l := log.Logger()

	user, err := checkUser(c)
	if user == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	req := &types.DeleteFilesRequest{
		FileIDs: []string{c.Param("id")},
		Hard:    c.Query("hard") == "true",
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.DeleteFiles(c.Request.Context(), user, req)
	if err != nil {
		l.Error().Err(err).Msg("delete file failed")
		writeError(c, err)

		return
	}

	if resp.Failed > 0 && len(resp.Results) == 1 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": resp.Results[0].Error})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteFiles 批量删除文件.
func DeleteFiles(c *gin.Context) {
	l := log.Logger()

	user, err := checkUser(c)
	if user == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	var req types.DeleteFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid delete request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if len(req.FileIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file ids provided"})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.DeleteFiles(c.Request.Context(), user, &req)
	if err != nil {
		l.Error().Err(err).Msg("batch delete failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
