package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/log"
)

const defaultTrendDays = 14

// doStats 统一统计处理：创建服务、错误处理与 JSON 输出.
func doStats(c *gin.Context, errLogMsg string, fn func(svc *service.StatsService) (any, error)) {
	svc := service.NewStatsService(c.Request.Context())

	data, err := fn(svc)
	if err != nil {
		log.Logger().Error().Err(err).Msg(errLogMsg)
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, data)
}

// StatsOverview 统计总览（带 KV 缓存）.
func StatsOverview(c *gin.Context) {
	doStats(c, "stats overview failed", func(svc *service.StatsService) (any, error) {
		return svc.Overview(c.Request.Context())
	})
}

// StatsFilesSummary 文件与目录总体计数.
func StatsFilesSummary(c *gin.Context) {
	doStats(c, "files summary failed", func(svc *service.StatsService) (any, error) {
		return svc.FilesSummary(c.Request.Context())
	})
}

// StatsByType 按 MIME 一级类型聚合.
func StatsByType(c *gin.Context) {
	doStats(c, "stats by type failed", func(svc *service.StatsService) (any, error) {
		items, err := svc.ByType(c.Request.Context())
		if err != nil {
			return nil, err
		}

		return gin.H{"by_type": items}, nil
	})
}

// StatsByBackend 按存储后端聚合.
func StatsByBackend(c *gin.Context) {
	doStats(c, "stats by backend failed", func(svc *service.StatsService) (any, error) {
		items, err := svc.ByBackend(c.Request.Context())
		if err != nil {
			return nil, err
		}

		return gin.H{"by_backend": items}, nil
	})
}

// StatsTrend 最近 N 天上传趋势. query 参数 days 默认 14.
func StatsTrend(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultTrendDays)))
	if err != nil || days <= 0 {
		days = defaultTrendDays
	}

	doStats(c, "stats trend failed", func(svc *service.StatsService) (any, error) {
		points, trendErr := svc.Trend(c.Request.Context(), days)
		if trendErr != nil {
			return nil, trendErr
		}

		return gin.H{"days": days, "trend": points}, nil
	})
}
