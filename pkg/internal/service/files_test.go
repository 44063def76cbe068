package service_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
)

func TestUploadDownloadRoundtrip(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)

	content := "hello roundtrip"

	up, err := svc.UploadFile(ctx, "tester", "greeting.txt",
		strings.NewReader(content), int64(len(content)), &types.UploadFileMetadata{
			ContentType: "text/plain",
			Tags:        []string{"demo", "greeting"},
			Description: "roundtrip fixture",
		})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !up.Success || up.FileID == "" {
		t.Fatalf("upload resp = %+v", up)
	}

	if up.Checksum == "" {
		t.Error("checksum not computed during upload")
	}

	if up.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", up.Size, len(content))
	}

	info, err := svc.GetFile(ctx, up.FileID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if info.Name != "greeting.txt" || info.ContentType != "text/plain" {
		t.Errorf("info = %+v", info)
	}

	if len(info.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", info.Tags)
	}

	if info.Kind != "text" {
		t.Errorf("kind = %q, want text", info.Kind)
	}

	rc, _, err := svc.OpenFile(ctx, up.FileID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != content {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestUploadRejectsMissingFolderBeforeIO(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)

	_, err := svc.UploadFile(ctx, "tester", "x.txt",
		strings.NewReader("x"), 1, &types.UploadFileMetadata{FolderID: "no-such-folder"})
	if !errs.IsNotFound(err) {
		t.Errorf("upload to missing folder: got %v, want NotFoundError", err)
	}

	var nce *errs.NotConfiguredError

	_, err = svc.UploadFile(ctx, "tester", "x.txt",
		strings.NewReader("x"), 1, &types.UploadFileMetadata{Backend: "s3"})
	if !errors.As(err, &nce) {
		t.Errorf("upload to unregistered backend: got %v, want NotConfiguredError", err)
	}
}

func TestUploadBatchKeepsInputOrder(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)

	items := []types.UploadBatchItem{
		{FileName: "a.txt", Reader: strings.NewReader("aa"), Size: 2},
		{FileName: "b.txt", Reader: strings.NewReader("bb"), Size: 2,
			Meta: &types.UploadFileMetadata{FolderID: "no-such-folder"}},
		{FileName: "c.txt", Reader: strings.NewReader("cc"), Size: 2},
	}

	resp, err := svc.UploadBatch(ctx, "tester", items)
	if err != nil {
		t.Fatalf("upload batch: %v", err)
	}

	if resp.Total != 3 || resp.Successful != 2 || resp.Failed != 1 {
		t.Errorf("batch counters = %d/%d/%d, want 3/2/1", resp.Total, resp.Successful, resp.Failed)
	}

	if len(resp.Results) != len(items) {
		t.Fatalf("results = %d entries, want %d", len(resp.Results), len(items))
	}

	for i, item := range items {
		if resp.Results[i].FileName != item.FileName {
			t.Errorf("results[%d].FileName = %q, want %q", i, resp.Results[i].FileName, item.FileName)
		}
	}

	if resp.Results[1].Success || resp.Results[1].Error == "" {
		t.Errorf("results[1] = %+v, want failure with error message", resp.Results[1])
	}

	if !resp.Results[0].Success || !resp.Results[2].Success {
		t.Errorf("surrounding items should succeed: %+v / %+v", resp.Results[0], resp.Results[2])
	}
}

func TestSoftDeleteThenRestore(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	up, err := svc.UploadFile(ctx, "tester", "doomed.txt", strings.NewReader("x"), 1, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	resp, err := svc.DeleteFiles(ctx, "tester", &types.DeleteFilesRequest{FileIDs: []string{up.FileID}})
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if resp.Success != 1 || resp.Failed != 0 {
		t.Fatalf("delete resp = %+v", resp)
	}

	if _, err := svc.GetFile(ctx, up.FileID); !errs.IsNotFound(err) {
		t.Errorf("soft-deleted file still visible: %v", err)
	}

	// 对象还在，只是记录进了回收站
	ok, err := testBackend(t, ctx).Exists(ctx, up.StorageKey)
	if err != nil || !ok {
		t.Errorf("backend object gone after soft delete: exists=%v err=%v", ok, err)
	}

	// 重复软删是冲突
	resp, err = svc.DeleteFiles(ctx, "tester", &types.DeleteFilesRequest{FileIDs: []string{up.FileID}})
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if resp.Failed != 1 {
		t.Errorf("double soft delete: resp = %+v, want 1 failed", resp)
	}

	restored, err := trash.RestoreFiles(ctx, []string{up.FileID})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.Affected != 1 {
		t.Errorf("restore resp = %+v", restored)
	}

	if _, err := svc.GetFile(ctx, up.FileID); err != nil {
		t.Errorf("restored file not visible: %v", err)
	}
}

func TestHardDeleteRemovesObject(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)

	up, err := svc.UploadFile(ctx, "tester", "gone.bin", strings.NewReader("zz"), 2, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	resp, err := svc.DeleteFiles(ctx, "tester", &types.DeleteFilesRequest{FileIDs: []string{up.FileID}, Hard: true})
	if err != nil {
		t.Fatalf("hard delete: %v", err)
	}

	if resp.Success != 1 {
		t.Fatalf("hard delete resp = %+v", resp)
	}

	ok, err := testBackend(t, ctx).Exists(ctx, up.StorageKey)
	if err != nil || ok {
		t.Errorf("backend object survived hard delete: exists=%v err=%v", ok, err)
	}

	if _, err := svc.GetFile(ctx, up.FileID); !errs.IsNotFound(err) {
		t.Errorf("record survived hard delete: %v", err)
	}
}

func TestUpdateMetadata(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)

	up, err := svc.UploadFile(ctx, "tester", "draft.txt", strings.NewReader("v1"), 2, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	private := false

	info, err := svc.UpdateMetadata(ctx, up.FileID, &types.MetaUpdateRequest{
		FileName:    "final.txt",
		Tags:        []string{"approved"},
		Description: "signed off",
		Category:    "contracts",
		IsPublic:    &private,
		Metadata:    map[string]string{"reviewer": "qa"},
	})
	if err != nil {
		t.Fatalf("update metadata: %v", err)
	}

	if info.Name != "final.txt" || info.Description != "signed off" || info.Category != "contracts" {
		t.Errorf("info = %+v", info)
	}

	if info.IsPublic {
		t.Error("IsPublic not flipped to false")
	}

	if len(info.Tags) != 1 || info.Tags[0] != "approved" {
		t.Errorf("tags = %v, want [approved]", info.Tags)
	}

	if info.Metadata["reviewer"] != "qa" {
		t.Errorf("metadata = %v", info.Metadata)
	}

	if _, err := svc.UpdateMetadata(ctx, "missing", &types.MetaUpdateRequest{}); !errs.IsNotFound(err) {
		t.Errorf("update of missing file: got %v, want NotFoundError", err)
	}
}

func TestCopyFileKeepsSource(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)

	up, err := svc.UploadFile(ctx, "tester", "orig.txt", strings.NewReader("payload"), 7, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	resp, err := svc.CopyFile(ctx, up.FileID, &types.CopyFileRequest{NewName: "copy.txt"})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	if resp.File.FileID == up.FileID {
		t.Error("copy reused the source record ID")
	}

	if resp.File.Name != "copy.txt" {
		t.Errorf("copy name = %q, want copy.txt", resp.File.Name)
	}

	if resp.File.StorageKey == up.StorageKey {
		t.Error("copy reused the source storage key")
	}

	b := testBackend(t, ctx)

	for _, key := range []string{up.StorageKey, resp.File.StorageKey} {
		ok, err := b.Exists(ctx, key)
		if err != nil || !ok {
			t.Errorf("object %q missing after copy: exists=%v err=%v", key, ok, err)
		}
	}

	if _, err := svc.GetFile(ctx, up.FileID); err != nil {
		t.Errorf("source record lost after copy: %v", err)
	}
}

func TestMoveFileBetweenFolders(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	folders := service.NewFolderService(ctx)

	src := mustCreateFolder(t, ctx, folders, "src", "")
	dst := mustCreateFolder(t, ctx, folders, "dst", "")

	up, err := svc.UploadFile(ctx, "tester", "mv.txt",
		strings.NewReader("123"), 3, &types.UploadFileMetadata{FolderID: src})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	resp, err := svc.MoveFile(ctx, up.FileID, &types.MoveFileRequest{TargetFolderID: dst})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if resp.File.FolderID != dst {
		t.Errorf("folder after move = %q, want %q", resp.File.FolderID, dst)
	}

	// 目录内移动不触碰后端对象
	if resp.File.StorageKey != up.StorageKey {
		t.Errorf("storage key changed on folder-only move: %q -> %q", up.StorageKey, resp.File.StorageKey)
	}

	srcStats, err := folders.GetStats(ctx, src)
	if err != nil {
		t.Fatalf("src stats: %v", err)
	}

	dstStats, err := folders.GetStats(ctx, dst)
	if err != nil {
		t.Fatalf("dst stats: %v", err)
	}

	if srcStats.CachedFileCount != 0 || dstStats.CachedFileCount != 1 {
		t.Errorf("cached counts after move = %d/%d, want 0/1", srcStats.CachedFileCount, dstStats.CachedFileCount)
	}
}

func TestListFilesFiltersAndPaging(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	folders := service.NewFolderService(ctx)

	docs := mustCreateFolder(t, ctx, folders, "docs", "")

	fixtures := []struct {
		name   string
		ctype  string
		folder string
	}{
		{"a.txt", "text/plain", docs},
		{"b.png", "image/png", docs},
		{"c.txt", "text/plain", ""},
	}

	for _, f := range fixtures {
		if _, err := svc.UploadFile(ctx, "tester", f.name, strings.NewReader("data"), 4,
			&types.UploadFileMetadata{ContentType: f.ctype, FolderID: f.folder}); err != nil {
			t.Fatalf("upload %s: %v", f.name, err)
		}
	}

	resp, err := svc.ListFiles(ctx, &types.ListFilesRequest{FolderID: docs})
	if err != nil {
		t.Fatalf("list by folder: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("folder filter total = %d, want 2", resp.Total)
	}

	resp, err = svc.ListFiles(ctx, &types.ListFilesRequest{Kind: "text"})
	if err != nil {
		t.Fatalf("list by kind: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("kind filter total = %d, want 2", resp.Total)
	}

	resp, err = svc.ListFiles(ctx, &types.ListFilesRequest{PageSize: 2, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}

	if resp.Total != 3 || len(resp.Files) != 2 {
		t.Fatalf("page 1 = %d of %d", len(resp.Files), resp.Total)
	}

	if resp.Files[0].Name != "a.txt" || resp.Files[1].Name != "b.png" {
		t.Errorf("sorted page = %q, %q", resp.Files[0].Name, resp.Files[1].Name)
	}
}

func TestSearchFilesSubtreeAndKeyword(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	folders := service.NewFolderService(ctx)

	docs := mustCreateFolder(t, ctx, folders, "docs", "")
	nested := mustCreateFolder(t, ctx, folders, "nested", docs)
	other := mustCreateFolder(t, ctx, folders, "other", "")

	uploads := []struct {
		name   string
		folder string
		desc   string
	}{
		{"invoice-jan.pdf", nested, "january invoice"},
		{"invoice-feb.pdf", docs, "february invoice"},
		{"notes.txt", other, "meeting notes"},
	}

	for _, u := range uploads {
		if _, err := svc.UploadFile(ctx, "tester", u.name, strings.NewReader("pdf"), 3,
			&types.UploadFileMetadata{FolderID: u.folder, Description: u.desc}); err != nil {
			t.Fatalf("upload %s: %v", u.name, err)
		}
	}

	// 子树过滤覆盖任意深度
	resp, err := svc.SearchFiles(ctx, &types.SearchFilesRequest{FolderID: docs})
	if err != nil {
		t.Fatalf("search subtree: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("subtree search total = %d, want 2", resp.Total)
	}

	resp, err = svc.SearchFiles(ctx, &types.SearchFilesRequest{Keyword: "invoice"})
	if err != nil {
		t.Fatalf("search keyword: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("keyword search total = %d, want 2", resp.Total)
	}

	resp, err = svc.SearchFiles(ctx, &types.SearchFilesRequest{Keyword: "meeting", FolderID: docs})
	if err != nil {
		t.Fatalf("search combined: %v", err)
	}

	if resp.Total != 0 {
		t.Errorf("combined search total = %d, want 0", resp.Total)
	}
}
