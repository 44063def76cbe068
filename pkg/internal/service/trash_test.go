package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	ctxPkg "github.com/yimu/filedepot/pkg/context"
	"github.com/yimu/filedepot/pkg/internal/model"
	"github.com/yimu/filedepot/pkg/internal/service"
	"github.com/yimu/filedepot/pkg/internal/types"
)

// uploadAndTrash 上传一个文件并软删进回收站，返回文件 ID 与存储键.
func uploadAndTrash(t *testing.T, ctx context.Context, svc *service.FileService, name string) (string, string) {
	t.Helper()

	up, err := svc.UploadFile(ctx, "tester", name, strings.NewReader("junk"), 4, nil)
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}

	resp, err := svc.DeleteFiles(ctx, "tester", &types.DeleteFilesRequest{FileIDs: []string{up.FileID}})
	if err != nil || resp.Success != 1 {
		t.Fatalf("trash %s: %+v, %v", name, resp, err)
	}

	return up.FileID, up.StorageKey
}

func TestTrashListShowsDeletedEntries(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	id1, _ := uploadAndTrash(t, ctx, fileSvc, "one.txt")
	id2, _ := uploadAndTrash(t, ctx, fileSvc, "two.txt")

	// 活跃文件不应出现在回收站
	if _, err := fileSvc.UploadFile(ctx, "tester", "alive.txt", strings.NewReader("x"), 1, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	list, err := trash.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if list.Total != 2 || len(list.Files) != 2 {
		t.Fatalf("trash list = %d total, %d files; want 2/2", list.Total, len(list.Files))
	}

	seen := map[string]bool{}
	for _, f := range list.Files {
		seen[f.FileID] = true

		if f.DeletedAt == "" {
			t.Errorf("trash entry %s missing deleted_at", f.FileID)
		}

		if f.DeletedBy != "tester" {
			t.Errorf("trash entry %s deleted_by = %q, want tester", f.FileID, f.DeletedBy)
		}
	}

	if !seen[id1] || !seen[id2] {
		t.Errorf("trash list missing expected entries: %v", seen)
	}
}

func TestTrashListsOnlyDeletionRoots(t *testing.T) {
	ctx := newTestContext(t)
	folders := service.NewFolderService(ctx)
	trash := service.NewTrashService(ctx)

	docs := mustCreateFolder(t, ctx, folders, "docs", "")
	mustCreateFolder(t, ctx, folders, "sub", docs)

	if _, err := folders.Delete(ctx, "tester", docs, &types.DeleteFolderRequest{}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := trash.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// 级联删除的后代不单独展示，只列被删的根
	if len(list.Folders) != 1 || list.Folders[0].FolderID != docs {
		t.Errorf("trash folders = %+v, want only the deleted root", list.Folders)
	}
}

func TestPurgeFilesDeletesObjects(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	id, key := uploadAndTrash(t, ctx, fileSvc, "purge.txt")

	resp, err := trash.PurgeFiles(ctx, "tester", []string{id, "no-such-id"})
	if err != nil {
		t.Fatalf("purge: %v", err)
	}

	if resp.Affected != 1 || resp.Failed != 1 {
		t.Errorf("purge resp = %+v, want 1 affected / 1 failed", resp)
	}

	ok, err := testBackend(t, ctx).Exists(ctx, key)
	if err != nil || ok {
		t.Errorf("object survived purge: exists=%v err=%v", ok, err)
	}

	list, err := trash.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if list.Total != 0 {
		t.Errorf("trash total after purge = %d, want 0", list.Total)
	}
}

func TestEmptyTrashPurgesFoldersBottomUp(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	folders := service.NewFolderService(ctx)
	trash := service.NewTrashService(ctx)

	docs := mustCreateFolder(t, ctx, folders, "docs", "")
	sub := mustCreateFolder(t, ctx, folders, "sub", docs)

	up, err := fileSvc.UploadFile(ctx, "tester", "in-sub.txt",
		strings.NewReader("abc"), 3, &types.UploadFileMetadata{FolderID: sub})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := folders.Delete(ctx, "tester", docs, &types.DeleteFolderRequest{}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	resp, err := trash.Empty(ctx, "tester")
	if err != nil {
		t.Fatalf("empty: %v", err)
	}

	// 一个文件加两个目录
	if resp.Affected != 3 || resp.Failed != 0 {
		t.Errorf("empty resp = %+v, want 3 affected", resp)
	}

	if !strings.Contains(resp.Message, "1 files") || !strings.Contains(resp.Message, "2 folders") {
		t.Errorf("message = %q", resp.Message)
	}

	ok, err := testBackend(t, ctx).Exists(ctx, up.StorageKey)
	if err != nil || ok {
		t.Errorf("object survived empty: exists=%v err=%v", ok, err)
	}

	// 记录彻底消失，连 Unscoped 也查不到
	dbx := ctxPkg.GetDBClient(ctx).GetDB()

	var folderCount int64
	if err := dbx.Model(&model.Folder{}).Unscoped().Count(&folderCount).Error; err != nil {
		t.Fatalf("count folders: %v", err)
	}

	if folderCount != 0 {
		t.Errorf("folder rows after empty = %d, want 0", folderCount)
	}

	var closureCount int64
	if err := dbx.Model(&model.FolderClosure{}).Count(&closureCount).Error; err != nil {
		t.Fatalf("count closure: %v", err)
	}

	if closureCount != 0 {
		t.Errorf("closure rows after empty = %d, want 0", closureCount)
	}
}

func TestAutoCleanHonorsCutoff(t *testing.T) {
	ctx := newTestContext(t)
	fileSvc := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	oldID, oldKey := uploadAndTrash(t, ctx, fileSvc, "old.txt")
	newID, _ := uploadAndTrash(t, ctx, fileSvc, "new.txt")

	// 把第一条的删除时间拨回 30 天前
	dbx := ctxPkg.GetDBClient(ctx).GetDB()
	if err := dbx.Model(&model.File{}).Unscoped().Where("id = ?", oldID).
		Update("deleted_at", time.Now().UTC().AddDate(0, 0, -30)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	resp, err := trash.AutoClean(ctx, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("auto clean: %v", err)
	}

	if resp.Affected != 1 || resp.Failed != 0 {
		t.Errorf("auto clean resp = %+v, want exactly the backdated entry", resp)
	}

	ok, err := testBackend(t, ctx).Exists(ctx, oldKey)
	if err != nil || ok {
		t.Errorf("old object survived auto clean: exists=%v err=%v", ok, err)
	}

	list, err := trash.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if list.Total != 1 || list.Files[0].FileID != newID {
		t.Errorf("trash after auto clean = %+v, want only the recent entry", list.Files)
	}
}
