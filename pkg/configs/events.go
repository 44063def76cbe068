package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig   `mapstructure:"file"`
	Folder  FolderEventsConfig `mapstructure:"folder"`
}

// FileEventsConfig 针对文件记录领域的事件开关。
type FileEventsConfig struct {
	Stored   bool `mapstructure:"stored"`
	Deleted  bool `mapstructure:"deleted"`
	Restored bool `mapstructure:"restored"`
	Moved    bool `mapstructure:"moved"`
}

// FolderEventsConfig 针对文件夹层级领域的事件开关。
type FolderEventsConfig struct {
	Created bool `mapstructure:"created"`
	Moved   bool `mapstructure:"moved"`
	Deleted bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 文件领域的事件：默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.deleted", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.file.restored", false)
	v.SetDefault("events.file.moved", false)
	v.SetDefault("events.folder.created", false)
	v.SetDefault("events.folder.moved", false)
	v.SetDefault("events.folder.deleted", false)
}
