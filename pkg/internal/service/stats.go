package service

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/types"
	nlog "github.com/yimu/filedepot/pkg/log"
)

const (
	statsOverviewKey = "stats:overview"
	statsCacheTTL    = 5 * time.Minute
)

// sizeBuckets 大小分桶的固定边界. 最后一桶 Max 为 0 表示无上界.
var sizeBuckets = []types.StatsSizeBucket{
	{Name: "0-1MB", Min: 0, Max: 1 << 20},
	{Name: "1-10MB", Min: 1 << 20, Max: 10 << 20},
	{Name: "10-100MB", Min: 10 << 20, Max: 100 << 20},
	{Name: ">=100MB", Min: 100 << 20, Max: 0},
}

// StatsService 存储统计：总览、分类型/后端聚合与趋势.
type StatsService struct{ *FileService }

func NewStatsService(c context.Context) *StatsService { return &StatsService{NewFileService(c)} }

// Overview 统计总览. 结果按固定 TTL 缓存在 KV 中，KV 不可用时直接现算.
func (s *StatsService) Overview(ctx context.Context) (*types.StatsOverviewResponse, error) {
	if s.kvClient != nil {
		if raw, err := s.kvClient.Get(ctx, statsOverviewKey); err == nil && len(raw) > 0 {
			var cached types.StatsOverviewResponse
			if err := sonic.Unmarshal(raw, &cached); err == nil {
				cached.Cached = true

				return &cached, nil
			}
		}
	}

	summary, err := s.FilesSummary(ctx)
	if err != nil {
		return nil, err
	}

	byType, err := s.ByType(ctx)
	if err != nil {
		return nil, err
	}

	byBackend, err := s.ByBackend(ctx)
	if err != nil {
		return nil, err
	}

	buckets, err := s.SizeBuckets(ctx)
	if err != nil {
		return nil, err
	}

	resp := &types.StatsOverviewResponse{
		Summary:   *summary,
		ByType:    byType,
		ByBackend: byBackend,
		Buckets:   buckets,
	}

	if s.kvClient != nil {
		if raw, err := sonic.Marshal(resp); err == nil {
			if err := s.kvClient.Set(ctx, statsOverviewKey, raw, statsCacheTTL); err != nil {
				nlog.Logger().Warn().Err(err).Msg("统计总览写缓存失败")
			}
		}
	}

	return resp, nil
}

// InvalidateOverview 使总览缓存失效.
func (s *StatsService) InvalidateOverview(ctx context.Context) {
	if s.kvClient == nil {
		return
	}

	if err := s.kvClient.Delete(ctx, statsOverviewKey); err != nil {
		nlog.Logger().Warn().Err(err).Msg("统计总览缓存失效失败")
	}
}

// FilesSummary 文件与目录的总体计数. 单条聚合查询扫全表，活跃/回收站
// 的拆分用 CASE WHEN 表达以兼容各方言.
func (s *StatsService) FilesSummary(ctx context.Context) (*types.StatsFilesSummary, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	var row struct {
		TotalFiles   int64
		TrashedFiles int64
		TotalSize    int64
		TrashedSize  int64
	}

	if err := dbx.Model(&model.File{}).Unscoped().
		Select(
			"COUNT(*) AS total_files, " +
				"COALESCE(SUM(CASE WHEN deleted_at IS NOT NULL THEN 1 ELSE 0 END),0) AS trashed_files, " +
				"COALESCE(SUM(size),0) AS total_size, " +
				"COALESCE(SUM(CASE WHEN deleted_at IS NOT NULL THEN size ELSE 0 END),0) AS trashed_size",
		).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	var totalFolders int64
	if err := dbx.Model(&model.Folder{}).Count(&totalFolders).Error; err != nil {
		return nil, err
	}

	return &types.StatsFilesSummary{
		TotalFiles:   row.TotalFiles,
		ActiveFiles:  row.TotalFiles - row.TrashedFiles,
		TrashedFiles: row.TrashedFiles,
		TotalSize:    row.TotalSize,
		ActiveSize:   row.TotalSize - row.TrashedSize,
		TrashedSize:  row.TrashedSize,
		TotalFolders: totalFolders,
	}, nil
}

// ByType 按 MIME 一级类型聚合活跃文件. 先按完整 content_type 分组，
// 一级前缀在 Go 侧折叠，避免各方言字符串函数差异.
func (s *StatsService) ByType(ctx context.Context) ([]types.StatsTypeItem, error) {
	var rows []struct {
		ContentType string
		Cnt         int64
		Sum         int64
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Model(&model.File{}).
		Select("content_type, COUNT(*) AS cnt, COALESCE(SUM(size),0) AS sum").
		Group("content_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	folded := make(map[string]*types.StatsTypeItem)
	order := make([]string, 0, 8)

	for _, r := range rows {
		t := mimePrimary(r.ContentType)

		item, ok := folded[t]
		if !ok {
			item = &types.StatsTypeItem{Type: t}
			folded[t] = item
			order = append(order, t)
		}

		item.Count += r.Cnt
		item.Size += r.Sum
	}

	out := make([]types.StatsTypeItem, 0, len(order))
	for _, t := range order {
		out = append(out, *folded[t])
	}

	return out, nil
}

// ByBackend 按存储后端聚合活跃文件.
func (s *StatsService) ByBackend(ctx context.Context) ([]types.StatsBackendItem, error) {
	var rows []struct {
		StorageKind string
		Cnt         int64
		Sum         int64
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Model(&model.File{}).
		Select("storage_kind, COUNT(*) AS cnt, COALESCE(SUM(size),0) AS sum").
		Group("storage_kind").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]types.StatsBackendItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.StatsBackendItem{Backend: r.StorageKind, Count: r.Cnt, Size: r.Sum})
	}

	return out, nil
}

// SizeBuckets 活跃文件的大小分布.
func (s *StatsService) SizeBuckets(ctx context.Context) ([]types.StatsSizeBucket, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)

	out := make([]types.StatsSizeBucket, len(sizeBuckets))
	copy(out, sizeBuckets)

	for i := range out {
		q := dbx.Model(&model.File{}).Where("size >= ?", out[i].Min)
		if out[i].Max > 0 {
			q = q.Where("size < ?", out[i].Max)
		}

		var agg struct {
			Cnt int64
			Sum int64
		}

		if err := q.Select("COUNT(*) AS cnt, COALESCE(SUM(size),0) AS sum").
			Scan(&agg).Error; err != nil {
			return nil, err
		}

		out[i].Count = agg.Cnt
		out[i].Size = agg.Sum
	}

	return out, nil
}

// Trend 最近 days 天的上传趋势，按日补零.
func (s *StatsService) Trend(ctx context.Context, days int) ([]types.StatsTrendPoint, error) {
	if days <= 0 {
		days = 30
	}

	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))

	// 逐行取回再在 Go 侧按日折叠，日期截断函数各方言不一致
	var files []struct {
		CreatedAt time.Time
		Size      int64
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Model(&model.File{}).
		Select("created_at, size").
		Where("created_at >= ?", start).
		Scan(&files).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]*types.StatsTrendPoint, days)

	for _, f := range files {
		d := f.CreatedAt.UTC().Format("2006-01-02")

		p, ok := byDay[d]
		if !ok {
			p = &types.StatsTrendPoint{Date: d}
			byDay[d] = p
		}

		p.Count++
		p.Size += f.Size
	}

	out := make([]types.StatsTrendPoint, 0, days)

	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		if p, ok := byDay[d]; ok {
			out = append(out, *p)

			continue
		}

		out = append(out, types.StatsTrendPoint{Date: d})
	}

	return out, nil
}

// mimePrimary 取 MIME 一级类型；无法识别时归入 other.
func mimePrimary(contentType string) string {
	if i := strings.IndexByte(contentType, '/'); i > 0 {
		return contentType[:i]
	}

	if contentType != "" {
		return contentType
	}

	return "other"
}
