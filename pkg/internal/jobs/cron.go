// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yimu/filedepot/pkg/configs"
	ctxPkg "github.com/yimu/filedepot/pkg/context"
	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/storage"
	"github.com/yimu/filedepot/pkg/log"
	"github.com/yimu/filedepot/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按配置的 cron 清理回收站中超过保留期的记录（仅当开启自动清理）
//   - 每天 04:20 对账所有目录的缓存聚合
//   - 每 10 分钟刷新统计总览缓存
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	cfg := configs.GetConfig().Trash
	if cfg.AutoCleanEnabled {
		_ = sched.AddCron(JobTrashAutoClean, cfg.CleanCron, func(ctx context.Context) {
			runTrashAutoClean(ctx)
		}, baseCtx)
	}

	_ = sched.AddCron(JobFolderStatsRecalc, CronFolderStatsRecalc, func(ctx context.Context) {
		runFolderStatsRecalc(ctx, mgr)
	}, baseCtx)

	_ = sched.AddCron(JobStatsCacheRefresh, CronStatsCacheRefresh, func(ctx context.Context) {
		runStatsCacheRefresh(ctx)
	}, baseCtx)

	return nil
}

// runTrashAutoClean 清理保留期之外的软删记录.
func runTrashAutoClean(ctx context.Context) {
	l := log.Logger().With().Str("job", JobTrashAutoClean).Logger()

	days := configs.GetConfig().Trash.RetentionDays
	before := time.Now().UTC().AddDate(0, 0, -days)

	svc := service.NewTrashService(ctx)

	resp, err := svc.AutoClean(ctx, before)
	if err != nil {
		l.Error().Err(err).Msg("auto clean failed")

		return
	}

	if resp.Affected > 0 || resp.Failed > 0 {
		l.Info().
			Int("affected", resp.Affected).
			Int("failed", resp.Failed).
			Time("before", before).
			Msg("auto cleaned trash")
	}
}

// runFolderStatsRecalc 用直属文件的实时聚合覆写所有目录的缓存计数，
// 纠正告警路径上丢失的增量.
func runFolderStatsRecalc(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobFolderStatsRecalc).Logger()

	if mgr.GetDBClient() == nil || mgr.GetDBClient().GetDB() == nil {
		l.Error().Msg("db not initialized")

		return
	}

	dbx := mgr.GetDBClient().GetDB().WithContext(ctx)

	var folderIDs []string
	if err := dbx.Model(&model.Folder{}).Pluck("id", &folderIDs).Error; err != nil {
		l.Error().Err(err).Msg("list folders failed")

		return
	}

	fixed := 0

	for _, id := range folderIDs {
		var agg struct {
			Cnt int64
			Sum int64
		}

		if err := dbx.Model(&model.File{}).
			Select("COUNT(*) AS cnt, COALESCE(SUM(size),0) AS sum").
			Where("folder_id = ?", id).
			Scan(&agg).Error; err != nil {
			l.Warn().Err(err).Str("folder_id", id).Msg("aggregate failed")

			continue
		}

		res := dbx.Model(&model.Folder{}).
			Where("id = ? AND (file_count <> ? OR total_size <> ?)", id, agg.Cnt, agg.Sum).
			Updates(map[string]any{"file_count": agg.Cnt, "total_size": agg.Sum})
		if res.Error != nil {
			l.Warn().Err(res.Error).Str("folder_id", id).Msg("write back failed")

			continue
		}

		if res.RowsAffected > 0 {
			fixed++
		}
	}

	if fixed > 0 {
		l.Info().Int("fixed", fixed).Int("total", len(folderIDs)).Msg("folder stats reconciled")
	}
}

// runStatsCacheRefresh 预热统计总览缓存.
func runStatsCacheRefresh(ctx context.Context) {
	l := log.Logger().With().Str("job", JobStatsCacheRefresh).Logger()

	svc := service.NewStatsService(ctx)

	svc.InvalidateOverview(ctx)

	if _, err := svc.Overview(ctx); err != nil {
		l.Warn().Err(err).Msg("overview refresh failed")
	}
}
