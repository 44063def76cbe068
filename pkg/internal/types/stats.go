package types

// StatsFilesSummary 文件总体统计.
type StatsFilesSummary struct {
	TotalFiles   int64 `json:"total_files"`
	ActiveFiles  int64 `json:"active_files"`
	TrashedFiles int64 `json:"trashed_files"`
	TotalSize    int64 `json:"total_size"`
	ActiveSize   int64 `json:"active_size"`
	TrashedSize  int64 `json:"trashed_size"`
	TotalFolders int64 `json:"total_folders"`
}

// StatsTypeItem 按类型聚合（以 MIME 一级类型或自定义分类为准）.
type StatsTypeItem struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
	Size  int64  `json:"size"`
}

// StatsBackendItem 按存储后端聚合（活跃文件）.
type StatsBackendItem struct {
	Backend string `json:"backend"`
	Count   int64  `json:"count"`
	Size    int64  `json:"size"`
}

// StatsSizeBucket 单个大小分桶.
type StatsSizeBucket struct {
	Name  string `json:"name"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
	Count int64  `json:"count"`
	Size  int64  `json:"size"`
}

// StatsTrendPoint 趋势点（按日）.
type StatsTrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
	Size  int64  `json:"size"`
}

// StatsOverviewResponse 统计总览响应.
type StatsOverviewResponse struct {
	Summary   StatsFilesSummary  `json:"summary"`
	ByType    []StatsTypeItem    `json:"by_type,omitempty"`
	ByBackend []StatsBackendItem `json:"by_backend,omitempty"`
	Buckets   []StatsSizeBucket  `json:"buckets,omitempty"`
	// Cached 表示结果来自 KV 缓存
	Cached bool `json:"cached,omitempty"`
}
