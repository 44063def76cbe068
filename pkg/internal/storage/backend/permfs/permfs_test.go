package permfs_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/permfs"
)

func newTestBackend(t *testing.T, mode uint32) *permfs.Backend {
	t.Helper()

	b, err := permfs.New(&configs.PermFSBackendConfig{
		LocalBackendConfig: configs.LocalBackendConfig{
			UploadPath:      t.TempDir(),
			CreateIfMissing: true,
		},
		FileMode: mode,
	})
	if err != nil {
		t.Fatalf("create permfs backend: %v", err)
	}

	return b
}

func TestUploadAppliesFileMode(t *testing.T) {
	b := newTestBackend(t, 0o600)
	ctx := context.Background()

	res, err := b.Upload(ctx, "private/key.pem", strings.NewReader("secret"), 6, backend.UploadOptions{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got := info.Mode().Perm(); got != fs.FileMode(0o600) {
		t.Errorf("file mode = %o, want 0600", got)
	}
}

func TestZeroModeFallsBackToDefault(t *testing.T) {
	b := newTestBackend(t, 0)
	ctx := context.Background()

	res, err := b.Upload(ctx, "plain.txt", strings.NewReader("x"), 1, backend.UploadOptions{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got := info.Mode().Perm(); got != fs.FileMode(0o644) {
		t.Errorf("file mode = %o, want default 0644", got)
	}
}

func TestCopyAppliesFileMode(t *testing.T) {
	b := newTestBackend(t, 0o640)
	ctx := context.Background()

	if _, err := b.Upload(ctx, "src.txt", strings.NewReader("payload"), 7, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	res, err := b.Copy(ctx, "src.txt", "dst.txt")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got := info.Mode().Perm(); got != fs.FileMode(0o640) {
		t.Errorf("copied file mode = %o, want 0640", got)
	}
}

func TestSymlinkLifecycle(t *testing.T) {
	b := newTestBackend(t, 0o644)
	ctx := context.Background()

	if _, err := b.Upload(ctx, "data/current.txt", strings.NewReader("v1"), 2, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := b.CreateSymlink(ctx, "data/current.txt", "links/latest"); err != nil {
		t.Fatalf("create symlink: %v", err)
	}

	ok, err := b.IsSymlink(ctx, "links/latest")
	if err != nil || !ok {
		t.Fatalf("IsSymlink(link) = %v, %v; want true, nil", ok, err)
	}

	ok, err = b.IsSymlink(ctx, "data/current.txt")
	if err != nil || ok {
		t.Fatalf("IsSymlink(regular) = %v, %v; want false, nil", ok, err)
	}

	target, err := b.ResolveSymlink(ctx, "links/latest")
	if err != nil {
		t.Fatalf("resolve symlink: %v", err)
	}

	if !strings.HasSuffix(target, "current.txt") {
		t.Errorf("resolved target = %q, want path ending in current.txt", target)
	}
}

func TestCreateSymlinkMissingTarget(t *testing.T) {
	b := newTestBackend(t, 0o644)

	err := b.CreateSymlink(context.Background(), "no/such/target", "links/dangling")
	if !errs.IsNotFound(err) {
		t.Fatalf("create symlink to missing target: got %v, want NotFoundError", err)
	}
}

func TestSymlinkKeysStayInsideRoot(t *testing.T) {
	parent := t.TempDir()

	b, err := permfs.New(&configs.PermFSBackendConfig{
		LocalBackendConfig: configs.LocalBackendConfig{
			UploadPath:      filepath.Join(parent, "root"),
			CreateIfMissing: true,
		},
		FileMode: 0o644,
	})
	if err != nil {
		t.Fatalf("create permfs backend: %v", err)
	}

	ctx := context.Background()

	// 根目录旁放一个文件，穿越键不应该能链接到它
	outside := filepath.Join(parent, "secret.txt")
	if err := os.WriteFile(outside, []byte("top secret"), 0o644); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	if err := b.CreateSymlink(ctx, "../secret.txt", "link.txt"); !errs.IsNotFound(err) {
		t.Errorf("CreateSymlink(../secret.txt): got %v, want NotFoundError", err)
	}

	if _, err := b.ResolveSymlink(ctx, "../../etc/passwd"); !errs.IsNotFound(err) {
		t.Errorf("ResolveSymlink(../../etc/passwd): got %v, want NotFoundError", err)
	}

	// 穿越键被收拢回根目录内后指向真实存在的对象时才可建链
	if _, err := b.Upload(ctx, "inside.txt", strings.NewReader("ok"), 2, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := b.CreateSymlink(ctx, "../inside.txt", "links/in"); err != nil {
		t.Fatalf("CreateSymlink(sanitized inside key): %v", err)
	}

	target, err := b.ResolveSymlink(ctx, "links/in")
	if err != nil {
		t.Fatalf("resolve symlink: %v", err)
	}

	if !strings.HasPrefix(target, b.Root()+string(os.PathSeparator)) {
		t.Errorf("resolved target %q escapes root %q", target, b.Root())
	}
}

func TestIsSymlinkMissingKey(t *testing.T) {
	b := newTestBackend(t, 0o644)

	ok, err := b.IsSymlink(context.Background(), "nothing/here")
	if err != nil || ok {
		t.Fatalf("IsSymlink(missing) = %v, %v; want false, nil", ok, err)
	}

	if _, err := b.ResolveSymlink(context.Background(), "nothing/here"); !errs.IsNotFound(err) {
		t.Errorf("ResolveSymlink(missing): got %v, want NotFoundError", err)
	}
}

func TestKindLabel(t *testing.T) {
	b := newTestBackend(t, 0o644)

	if b.Kind() != configs.BackendPermFS {
		t.Errorf("kind = %q, want %q", b.Kind(), configs.BackendPermFS)
	}
}
