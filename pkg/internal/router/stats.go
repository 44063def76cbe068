package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/handle"
)

// RegisterStatsRoutes 注册统计相关路由. 可附加响应缓存等中间件.
func RegisterStatsRoutes(g *gin.RouterGroup, mws ...gin.HandlerFunc) {
	statsRoutes := g.Group("/stats", mws...)
	{
		statsRoutes.GET("/overview", handle.StatsOverview)
		statsRoutes.GET("/files", handle.StatsFilesSummary)
		statsRoutes.GET("/types", handle.StatsByType)
		statsRoutes.GET("/backends", handle.StatsByBackend)
		statsRoutes.GET("/trend", handle.StatsTrend)
	}
}
