package handle

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/log"
)

// ListTrash 分页列出回收站内容.
func ListTrash(c *gin.Context) {
	l := log.Logger()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), page, size)
	if err != nil {
		l.Error().Err(err).Msg("trash list failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// RestoreTrash 批量恢复回收站条目（文件与目录）.
func RestoreTrash(c *gin.Context) {
	l := log.Logger()

	var req types.TrashBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid restore request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if len(req.FileIDs) == 0 && len(req.FolderIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no ids provided"})

		return
	}

	trashSvc := service.NewTrashService(c.Request.Context())

	resp, err := trashSvc.RestoreFiles(c.Request.Context(), req.FileIDs)
	if err != nil {
		l.Error().Err(err).Msg("trash restore failed")
		writeError(c, err)

		return
	}

	folderSvc := service.NewFolderService(c.Request.Context())

	for _, id := range req.FolderIDs {
		r, restoreErr := folderSvc.Restore(c.Request.Context(), id)
		if restoreErr != nil {
			resp.Failed++
			resp.Results = append(resp.Results, types.TrashItemResult{ID: id, Error: restoreErr.Error()})

			continue
		}

		resp.Affected += r.Affected
		resp.Results = append(resp.Results, types.TrashItemResult{ID: id, Success: true})
	}

	c.JSON(http.StatusOK, resp)
}

// PurgeTrash 批量彻底删除回收站条目.
func PurgeTrash(c *gin.Context) {
	l := log.Logger()

	user, err := checkUser(c)
	if user == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	var req types.TrashBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid purge request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if len(req.FileIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file ids provided"})

		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.PurgeFiles(c.Request.Context(), user, req.FileIDs)
	if err != nil {
		l.Error().Err(err).Msg("trash purge failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// EmptyTrash 清空回收站.
func EmptyTrash(c *gin.Context) {
	l := log.Logger()

	user, err := checkUser(c)
	if user == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.Empty(c.Request.Context(), user)
	if err != nil {
		l.Error().Err(err).Msg("empty trash failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AutoCleanTrash 按保留期清理回收站；请求体可覆盖截止时间.
func AutoCleanTrash(c *gin.Context) {
	l := log.Logger()

	var req types.TrashAutoCleanRequest
	_ = c.ShouldBindJSON(&req)

	before, ok := req.ParseBefore()
	if !ok {
		days := configs.GetConfig().Trash.RetentionDays
		before = time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.AutoClean(c.Request.Context(), before)
	if err != nil {
		l.Error().Err(err).Msg("trash auto-clean failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
