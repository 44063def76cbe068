// Package router 管理路由配置，用于设置HTTP服务的路由规则.
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 将全部业务路由注册到 /api/v1 路由组.
// statsMiddleware 为按需附加在统计路由上的中间件（如响应缓存）.
func RegisterAPIRoutes(e *gin.Engine, statsMiddleware ...gin.HandlerFunc) {
	api := e.Group("/api/v1")

	RegisterFilesRoutes(api)
	RegisterFoldersRoutes(api)
	RegisterTrashRoutes(api)
	RegisterStatsRoutes(api, statsMiddleware...)
	RegisterHealthCheckRoute(api)
	RegisterSchedulerRoutes(api)
}
