package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobTrashAutoClean    = "trash.auto_clean"
	JobFolderStatsRecalc = "folder.stats_recalc"
	JobStatsCacheRefresh = "stats.cache_refresh"
)

// Cron 表达式常量.
const (
	CronFolderStatsRecalc = "20 4 * * *"
	CronStatsCacheRefresh = "*/10 * * * *"
)
