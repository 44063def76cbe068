package configs

import "github.com/spf13/viper"

const (
	// 默认回收站自动清理配置.
	DefaultTrashAutoCleanEnabled = false
	DefaultTrashRetentionDays    = 30
	DefaultTrashCleanCron        = "0 3 * * *" // 每天凌晨三点
)

// TrashConfig 回收站自动清理配置.
type TrashConfig struct {
	AutoCleanEnabled bool   `mapstructure:"auto_clean_enabled"`
	RetentionDays    int    `mapstructure:"retention_days"     rule:"min=1,max=3650"` // 软删除记录保留天数
	CleanCron        string `mapstructure:"clean_cron"`                               // 清理任务的 cron 表达式
}

func (c *TrashConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("trash.auto_clean_enabled", DefaultTrashAutoCleanEnabled)
	v.SetDefault("trash.retention_days", DefaultTrashRetentionDays)
	v.SetDefault("trash.clean_cron", DefaultTrashCleanCron)
}
