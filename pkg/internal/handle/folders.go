package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
	"github.com/yimu/filedepot/pkg/log"
)

// CreateFolder 创建目录.
func CreateFolder(c *gin.Context) {
	l := log.Logger()

	user, err := checkUser(c)
	if user == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	var req types.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create folder request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Create(c.Request.Context(), user, &req)
	if err != nil {
		l.Error().Err(err).Str("name", req.Name).Msg("create folder failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// RenameFolder 重命名目录.
func RenameFolder(c *gin.Context) {
	l := log.Logger()

	folderID := c.Param("id")

	var req types.RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid rename request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Rename(c.Request.Context(), folderID, &req)
	if err != nil {
		l.Error().Err(err).Str("folder_id", folderID).Msg("rename folder failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// MoveFolder 移动目录到新的父节点.
func MoveFolder(c *gin.Context) {
	l := log.Logger()

	folderID := c.Param("id")

	var req types.MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid move folder request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Move(c.Request.Context(), folderID, &req)
	if err != nil {
		l.Error().Err(err).Str("folder_id", folderID).Msg("move folder failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteFolder 删除目录. query 参数 hard=true 时物理删除空目录，
// force=true 时物理删除整个子树.
func DeleteFolder(c *gin.Context) {
	l := log.Logger()

	user, err := checkUser(c)
	if user == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	folderID := c.Param("id")
	req := &types.DeleteFolderRequest{
		Hard:  c.Query("hard") == "true",
		Force: c.Query("force") == "true",
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Delete(c.Request.Context(), user, folderID, req)
	if err != nil {
		l.Error().Err(err).Str("folder_id", folderID).Msg("delete folder failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListFolders 列出直接子目录. query 参数 parent_id 为空时列根级目录.
func ListFolders(c *gin.Context) {
	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Children(c.Request.Context(), c.Query("parent_id"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// FolderTree 返回目录树. query 参数 root 限定子树根，空为整棵森林.
func FolderTree(c *gin.Context) {
	svc := service.NewFolderService(c.Request.Context())

	tree, err := svc.Tree(c.Request.Context(), c.Query("root"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

// FolderAncestors 返回目录的祖先链.
func FolderAncestors(c *gin.Context) {
	svc := service.NewFolderService(c.Request.Context())

	ancestors, err := svc.Ancestors(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"ancestors": ancestors})
}

// FolderStats 返回目录的实时与缓存统计.
func FolderStats(c *gin.Context) {
	svc := service.NewFolderService(c.Request.Context())

	stats, err := svc.GetStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, stats)
}

// RestoreFolder 从回收站恢复目录及其子树.
func RestoreFolder(c *gin.Context) {
	l := log.Logger()

	folderID := c.Param("id")

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Restore(c.Request.Context(), folderID)
	if err != nil {
		l.Error().Err(err).Str("folder_id", folderID).Msg("restore folder failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
