package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
)

func TestFilesSummarySplitsActiveAndTrashed(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	folders := service.NewFolderService(ctx)
	stats := service.NewStatsService(ctx)

	mustCreateFolder(t, ctx, folders, "docs", "")

	if _, err := fileSvc.UploadFile(ctx, "tester", "alive.txt", strings.NewReader("12345"), 5, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	up2, err := fileSvc.UploadFile(ctx, "tester", "trashed.txt", strings.NewReader("1234567890"), 10, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := fileSvc.DeleteFiles(ctx, "tester", &types.DeleteFilesRequest{FileIDs: []string{up2.FileID}}); err != nil {
		t.Fatalf("trash: %v", err)
	}

	summary, err := stats.FilesSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalFiles != 2 || summary.ActiveFiles != 1 || summary.TrashedFiles != 1 {
		t.Errorf("counts = total %d / active %d / trashed %d, want 2/1/1",
			summary.TotalFiles, summary.ActiveFiles, summary.TrashedFiles)
	}

	if summary.TotalSize != 15 || summary.ActiveSize != 5 || summary.TrashedSize != 10 {
		t.Errorf("sizes = total %d / active %d / trashed %d, want 15/5/10",
			summary.TotalSize, summary.ActiveSize, summary.TrashedSize)
	}

	if summary.TotalFolders != 1 {
		t.Errorf("folders = %d, want 1", summary.TotalFolders)
	}
}

func TestByTypeFoldsMimePrimary(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	stats := service.NewStatsService(ctx)

	fixtures := []struct {
		name  string
		ctype string
	}{
		{"a.txt", "text/plain"},
		{"b.html", "text/html"},
		{"c.png", "image/png"},
		{"d.bin", ""},
	}

	for _, f := range fixtures {
		if _, err := fileSvc.UploadFile(ctx, "tester", f.name, strings.NewReader("xx"), 2,
			&types.UploadFileMetadata{ContentType: f.ctype}); err != nil {
			t.Fatalf("upload %s: %v", f.name, err)
		}
	}

	items, err := stats.ByType(ctx)
	if err != nil {
		t.Fatalf("by type: %v", err)
	}

	got := map[string]int64{}
	for _, it := range items {
		got[it.Type] = it.Count
	}

	if got["text"] != 2 {
		t.Errorf("text count = %d, want 2 (folded from plain+html)", got["text"])
	}

	if got["image"] != 1 {
		t.Errorf("image count = %d, want 1", got["image"])
	}

	if got["other"] != 1 {
		t.Errorf("other count = %d, want 1 (empty content type)", got["other"])
	}
}

func TestByBackendGroupsStorageKind(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	stats := service.NewStatsService(ctx)

	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := fileSvc.UploadFile(ctx, "tester", name, strings.NewReader("xyz"), 3, nil); err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
	}

	items, err := stats.ByBackend(ctx)
	if err != nil {
		t.Fatalf("by backend: %v", err)
	}

	if len(items) != 1 || items[0].Backend != "local" {
		t.Fatalf("items = %+v, want single local entry", items)
	}

	if items[0].Count != 2 || items[0].Size != 6 {
		t.Errorf("local = %d files / %d bytes, want 2 / 6", items[0].Count, items[0].Size)
	}
}

func TestSizeBucketsBoundaries(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	stats := service.NewStatsService(ctx)

	// 2MB 落入 1-10MB 桶，小文件落入第一桶
	big := strings.Repeat("x", 2<<20)

	if _, err := fileSvc.UploadFile(ctx, "tester", "small.txt", strings.NewReader("tiny"), 4, nil); err != nil {
		t.Fatalf("upload small: %v", err)
	}

	if _, err := fileSvc.UploadFile(ctx, "tester", "big.bin", strings.NewReader(big), int64(len(big)), nil); err != nil {
		t.Fatalf("upload big: %v", err)
	}

	buckets, err := stats.SizeBuckets(ctx)
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}

	if len(buckets) != 4 {
		t.Fatalf("bucket count = %d, want 4", len(buckets))
	}

	if buckets[0].Count != 1 {
		t.Errorf("0-1MB count = %d, want 1", buckets[0].Count)
	}

	if buckets[1].Count != 1 || buckets[1].Size != int64(len(big)) {
		t.Errorf("1-10MB = %d files / %d bytes, want the 2MB upload", buckets[1].Count, buckets[1].Size)
	}

	if buckets[2].Count != 0 || buckets[3].Count != 0 {
		t.Errorf("upper buckets not empty: %+v", buckets[2:])
	}
}

func TestTrendBackfillsEmptyDays(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	stats := service.NewStatsService(ctx)

	if _, err := fileSvc.UploadFile(ctx, "tester", "today.txt", strings.NewReader("abc"), 3, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	const days = 7

	points, err := stats.Trend(ctx, days)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}

	if len(points) != days {
		t.Fatalf("points = %d, want %d (zero-filled)", len(points), days)
	}

	today := time.Now().UTC().Format("2006-01-02")
	last := points[len(points)-1]

	if last.Date != today {
		t.Errorf("last point date = %q, want today %q", last.Date, today)
	}

	if last.Count != 1 || last.Size != 3 {
		t.Errorf("today = %d uploads / %d bytes, want 1 / 3", last.Count, last.Size)
	}

	for _, p := range points[:len(points)-1] {
		if p.Count != 0 || p.Size != 0 {
			t.Errorf("day %s should be empty, got %d / %d", p.Date, p.Count, p.Size)
		}
	}
}

func TestOverviewWithoutCacheRecomputes(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	stats := service.NewStatsService(ctx)

	if _, err := fileSvc.UploadFile(ctx, "tester", "x.txt", strings.NewReader("1234"), 4, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// 测试环境没有 KV，总览走现算路径且不标记缓存命中
	resp, err := stats.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if resp.Cached {
		t.Error("overview marked cached without a KV store")
	}

	if resp.Summary.TotalFiles != 1 || resp.Summary.ActiveSize != 4 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	if len(resp.Buckets) != 4 {
		t.Errorf("buckets = %d, want 4", len(resp.Buckets))
	}

	// KV 缺席时失效操作是空操作，不得出错
	stats.InvalidateOverview(ctx)
}
