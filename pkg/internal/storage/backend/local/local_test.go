package local_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/local"
)

func newTestBackend(t *testing.T, baseURL string) *local.Backend {
	t.Helper()

	b, err := local.New(&configs.LocalBackendConfig{
		UploadPath:      t.TempDir(),
		BaseURL:         baseURL,
		CreateIfMissing: true,
	})
	if err != nil {
		t.Fatalf("create local backend: %v", err)
	}

	return b
}

func TestUploadFetchRoundtrip(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	content := []byte("hello filedepot")

	res, err := b.Upload(ctx, "docs/readme.txt", bytes.NewReader(content), int64(len(content)), backend.UploadOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if res.Key != "docs/readme.txt" {
		t.Errorf("key = %q, want %q", res.Key, "docs/readme.txt")
	}

	if res.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", res.Size, len(content))
	}

	if res.ContentType != "text/plain" {
		t.Errorf("content type = %q, want text/plain", res.ContentType)
	}

	rc, err := b.Fetch(ctx, "docs/readme.txt")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Errorf("fetched %q, want %q", got, content)
	}
}

func TestFetchMissingReturnsNotFound(t *testing.T) {
	b := newTestBackend(t, "")

	_, err := b.Fetch(context.Background(), "no/such/file")
	if !errs.IsNotFound(err) {
		t.Fatalf("fetch missing: got %v, want NotFoundError", err)
	}
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	b := newTestBackend(t, "")

	res, err := b.Delete(context.Background(), "ghost.bin")
	if err != nil {
		t.Fatalf("delete missing: unexpected error %v", err)
	}

	if res.Success {
		t.Error("delete missing: Success = true, want false")
	}

	if res.Message == "" {
		t.Error("delete missing: expected explanatory message")
	}
}

func TestDeleteThenExists(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	if _, err := b.Upload(ctx, "a.txt", strings.NewReader("x"), 1, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	ok, err := b.Exists(ctx, "a.txt")
	if err != nil || !ok {
		t.Fatalf("exists after upload = %v, %v; want true, nil", ok, err)
	}

	res, err := b.Delete(ctx, "a.txt")
	if err != nil || !res.Success {
		t.Fatalf("delete = %+v, %v; want Success=true, nil", res, err)
	}

	ok, err = b.Exists(ctx, "a.txt")
	if err != nil || ok {
		t.Fatalf("exists after delete = %v, %v; want false, nil", ok, err)
	}
}

func TestTraversalKeysStayInsideRoot(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	// .. 前缀在解析时被吸收，写入必须落在根目录内.
	for _, key := range []string{"../../etc/passwd", "..\\secret", "/abs/../../x"} {
		res, err := b.Upload(ctx, key, strings.NewReader("x"), 1, backend.UploadOptions{})
		if err != nil {
			t.Fatalf("upload %q: %v", key, err)
		}

		if !strings.HasPrefix(res.Path, b.Root()+string(filepath.Separator)) {
			t.Errorf("upload %q wrote outside root: %s", key, res.Path)
		}

		if strings.HasPrefix(res.Key, "..") || strings.HasPrefix(res.Key, "/") ||
			strings.Contains(res.Key, "\\") {
			t.Errorf("upload %q produced unsanitized key %q", key, res.Key)
		}

		// 返回的键必须能原样取回对象
		rc, err := b.Fetch(ctx, res.Key)
		if err != nil {
			t.Errorf("fetch by returned key %q: %v", res.Key, err)

			continue
		}

		_ = rc.Close()
	}
}

func TestCopyKeepsSource(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	if _, err := b.Upload(ctx, "src.txt", strings.NewReader("payload"), 7, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	res, err := b.Copy(ctx, "src.txt", "dst.txt")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	if res.Key != "dst.txt" {
		t.Errorf("copy result key = %q, want dst.txt", res.Key)
	}

	for _, key := range []string{"src.txt", "dst.txt"} {
		ok, err := b.Exists(ctx, key)
		if err != nil || !ok {
			t.Errorf("exists(%q) = %v, %v; want true, nil", key, ok, err)
		}
	}
}

func TestMoveRemovesSource(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	if _, err := b.Upload(ctx, "old/name.txt", strings.NewReader("payload"), 7, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	res, err := b.Move(ctx, "old/name.txt", "new/name.txt")
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if res.Key != "new/name.txt" {
		t.Errorf("move result key = %q, want new/name.txt", res.Key)
	}

	ok, err := b.Exists(ctx, "old/name.txt")
	if err != nil || ok {
		t.Errorf("source still exists after move: %v, %v", ok, err)
	}

	ok, err = b.Exists(ctx, "new/name.txt")
	if err != nil || !ok {
		t.Errorf("destination missing after move: %v, %v", ok, err)
	}
}

func TestMetadata(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	content := strings.Repeat("z", 128)
	if _, err := b.Upload(ctx, "meta.bin", strings.NewReader(content), int64(len(content)), backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	md, err := b.Metadata(ctx, "meta.bin")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}

	if md.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", md.Size, len(content))
	}

	if md.IsDir {
		t.Error("IsDir = true for a regular file")
	}

	if md.Extra["mode"] == "" {
		t.Error("expected file mode in Extra")
	}

	if _, err := b.Metadata(ctx, "missing.bin"); !errs.IsNotFound(err) {
		t.Errorf("metadata missing: got %v, want NotFoundError", err)
	}
}

func TestPublicURL(t *testing.T) {
	ctx := context.Background()

	withBase := newTestBackend(t, "https://static.example.com/files/")

	res, err := withBase.Upload(ctx, "pics/cat.png", strings.NewReader("img"), 3, backend.UploadOptions{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if want := "https://static.example.com/files/pics/cat.png"; res.URL != want {
		t.Errorf("url = %q, want %q", res.URL, want)
	}

	signed, err := withBase.SignedURL(ctx, "pics/cat.png", backend.SignOptions{})
	if err != nil || signed != res.URL {
		t.Errorf("signed url = %q, %v; want %q, nil", signed, err, res.URL)
	}

	noBase := newTestBackend(t, "")

	res, err = noBase.Upload(ctx, "pics/cat.png", strings.NewReader("img"), 3, backend.UploadOptions{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if res.URL != "" {
		t.Errorf("url without base = %q, want empty", res.URL)
	}
}

func TestUploadMultipleIndependentOutcomes(t *testing.T) {
	b := newTestBackend(t, "")

	items := []backend.UploadItem{
		{Name: "batch/one.txt", Reader: strings.NewReader("1"), Size: 1},
		{Name: "batch/broken.txt", Reader: iotest.ErrReader(errors.New("read failure")), Size: 1},
		{Name: "batch/three.txt", Reader: strings.NewReader("3"), Size: 1},
	}

	outcomes := b.UploadMultiple(context.Background(), items)
	if len(outcomes) != len(items) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(items))
	}

	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("valid items failed: %v, %v", outcomes[0].Err, outcomes[2].Err)
	}

	if outcomes[1].Err == nil {
		t.Error("broken reader: expected an error outcome")
	} else if !errs.IsBackendOp(outcomes[1].Err) {
		t.Errorf("broken reader: got %v, want BackendOperationError", outcomes[1].Err)
	}
}

func TestDeleteMultiple(t *testing.T) {
	b := newTestBackend(t, "")
	ctx := context.Background()

	if _, err := b.Upload(ctx, "keep/a.txt", strings.NewReader("a"), 1, backend.UploadOptions{}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	results, err := b.DeleteMultiple(ctx, []string{"keep/a.txt", "keep/missing.txt"})
	if err != nil {
		t.Fatalf("delete multiple: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if !results[0].Success {
		t.Errorf("existing object: Success = false, message %q", results[0].Message)
	}

	if results[1].Success {
		t.Error("missing object: Success = true, want false")
	}
}

func TestNewRequiresExistingRootWithoutCreate(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := local.New(&configs.LocalBackendConfig{UploadPath: missing}); err == nil {
		t.Fatal("expected error for missing root with CreateIfMissing=false")
	}
}

func BenchmarkLocalUploadFetch(b *testing.B) {
	be, err := local.New(&configs.LocalBackendConfig{
		UploadPath:      b.TempDir(),
		CreateIfMissing: true,
	})
	if err != nil {
		b.Fatalf("create local backend: %v", err)
	}

	ctx := context.Background()
	payload := bytes.Repeat([]byte("x"), 4*1024)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := "bench/obj-" + string(rune('a'+i%26)) + ".bin"

		if _, err := be.Upload(ctx, key, bytes.NewReader(payload), int64(len(payload)), backend.UploadOptions{}); err != nil {
			b.Fatalf("upload: %v", err)
		}

		rc, err := be.Fetch(ctx, key)
		if err != nil {
			b.Fatalf("fetch: %v", err)
		}

		if _, err := io.Copy(io.Discard, rc); err != nil {
			b.Fatalf("read: %v", err)
		}

		_ = rc.Close()
	}
}
