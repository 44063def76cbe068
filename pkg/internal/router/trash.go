package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站相关路由.
func RegisterTrashRoutes(g *gin.RouterGroup) {
	trashRoutes := g.Group("/trash")
	{
		trashRoutes.GET("", handle.ListTrash)
		trashRoutes.POST("/restore", handle.RestoreTrash)
		trashRoutes.DELETE("", handle.PurgeTrash)
		trashRoutes.DELETE("/empty", handle.EmptyTrash)
		trashRoutes.POST("/auto-clean", handle.AutoCleanTrash)
	}
}
