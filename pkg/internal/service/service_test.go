package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"

	"github.com/yimu/filedepot/pkg/configs"
	ctxPkg "github.com/yimu/filedepot/pkg/context"
	"github.com/yimu/filedepot/pkg/internal/storage"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/local"
	dbc "github.com/yimu/filedepot/pkg/internal/storage/db"
)

// newTestContext 组装一套自洽的测试环境：临时 sqlite 库 + 本地后端注册表，
// 通过 context 注入，与生产路径走同一套服务构造函数.
func newTestContext(t *testing.T) context.Context {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "filedepot.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// 闭包表的级联清理依赖外键
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	client := &dbc.Client{DB: gdb}
	if err := client.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	lb, err := local.New(&configs.LocalBackendConfig{
		UploadPath:      t.TempDir(),
		CreateIfMissing: true,
	})
	if err != nil {
		t.Fatalf("create local backend: %v", err)
	}

	reg := backend.NewRegistry()
	reg.Register(lb.Kind(), lb)

	mgr := &storage.Manager{Backends: reg, DB: client}

	return ctxPkg.WithStorageManager(context.Background(), mgr)
}

// testBackend 取测试环境注册的本地后端.
func testBackend(t *testing.T, ctx context.Context) backend.Backend {
	t.Helper()

	b, err := ctxPkg.GetBackendRegistry(ctx).Default()
	if err != nil {
		t.Fatalf("default backend: %v", err)
	}

	return b
}
