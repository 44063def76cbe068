package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件操作相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		// 上传
		filesRoutes.POST("/upload", handle.UploadSingleFile)
		filesRoutes.POST("/upload/batch", handle.UploadBatchFiles)

		// 列表与搜索
		filesRoutes.GET("", handle.ListFiles)
		filesRoutes.POST("/search", handle.SearchFiles)

		// 批量操作
		filesRoutes.DELETE("", handle.DeleteFiles)
		filesRoutes.PUT("/meta", handle.UpdateBatchFileMetadata)

		// 单个文件操作
		singleGroup := filesRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetFile)
			singleGroup.DELETE("", handle.DeleteFile)
			singleGroup.GET("/download", handle.DownloadFile)
			singleGroup.GET("/url", handle.GetSignedURL)
			singleGroup.GET("/object", handle.GetObjectMetadata)
			singleGroup.PUT("/meta", handle.UpdateFileMetadata)
			singleGroup.POST("/copy", handle.CopyFile)
			singleGroup.POST("/move", handle.MoveFile)
		}
	}
}
