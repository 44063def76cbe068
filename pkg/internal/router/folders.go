package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/handle"
)

// RegisterFoldersRoutes 注册目录树相关路由.
func RegisterFoldersRoutes(g *gin.RouterGroup) {
	foldersRoutes := g.Group("/folders")
	{
		foldersRoutes.POST("", handle.CreateFolder)
		foldersRoutes.GET("", handle.ListFolders)
		foldersRoutes.GET("/tree", handle.FolderTree)

		singleGroup := foldersRoutes.Group("/:id")
		{
			singleGroup.PUT("/rename", handle.RenameFolder)
			singleGroup.PUT("/move", handle.MoveFolder)
			singleGroup.DELETE("", handle.DeleteFolder)
			singleGroup.GET("/ancestors", handle.FolderAncestors)
			singleGroup.GET("/stats", handle.FolderStats)
			singleGroup.POST("/restore", handle.RestoreFolder)
		}
	}
}
