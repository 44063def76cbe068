package backend_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
)

// stubBackend 只实现注册表关心的行为：类型标签与 Close 计数.
type stubBackend struct {
	kind     configs.BackendKind
	closed   int
	closeErr error
}

func (s *stubBackend) Kind() configs.BackendKind { return s.kind }

func (s *stubBackend) Upload(ctx context.Context, name string, r io.Reader, size int64, opts backend.UploadOptions) (*backend.StorageResult, error) {
	return &backend.StorageResult{Key: name}, nil
}

func (s *stubBackend) UploadMultiple(ctx context.Context, items []backend.UploadItem) []backend.UploadOutcome {
	return make([]backend.UploadOutcome, len(items))
}

func (s *stubBackend) Delete(ctx context.Context, key string) (backend.DeleteResult, error) {
	return backend.DeleteResult{Key: key, Success: true}, nil
}

func (s *stubBackend) DeleteMultiple(ctx context.Context, keys []string) ([]backend.DeleteResult, error) {
	return make([]backend.DeleteResult, len(keys)), nil
}

func (s *stubBackend) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errs.NewNotFound("object", key)
}

func (s *stubBackend) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

func (s *stubBackend) SignedURL(ctx context.Context, key string, opts backend.SignOptions) (string, error) {
	return "", nil
}

func (s *stubBackend) Metadata(ctx context.Context, key string) (*backend.ObjectMetadata, error) {
	return nil, errs.NewNotFound("object", key)
}

func (s *stubBackend) Copy(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	return &backend.StorageResult{Key: dstKey}, nil
}

func (s *stubBackend) Move(ctx context.Context, srcKey, dstKey string) (*backend.StorageResult, error) {
	return &backend.StorageResult{Key: dstKey}, nil
}

func (s *stubBackend) Close() error {
	s.closed++
	return s.closeErr
}

func TestDefaultFollowsRegistrationOrder(t *testing.T) {
	r := backend.NewRegistry()

	if _, err := r.Default(); !errors.Is(err, errs.ErrNoBackends) {
		t.Fatalf("empty registry Default: got %v, want ErrNoBackends", err)
	}

	first := &stubBackend{kind: configs.BackendLocal}
	second := &stubBackend{kind: configs.BackendS3}

	r.Register(configs.BackendLocal, first)
	r.Register(configs.BackendS3, second)

	b, err := r.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}

	if b.Kind() != configs.BackendLocal {
		t.Errorf("default kind = %q, want first registered %q", b.Kind(), configs.BackendLocal)
	}
}

func TestSetDefaultOverridesOrder(t *testing.T) {
	r := backend.NewRegistry()
	r.Register(configs.BackendLocal, &stubBackend{kind: configs.BackendLocal})
	r.Register(configs.BackendS3, &stubBackend{kind: configs.BackendS3})

	if err := r.SetDefault(configs.BackendS3); err != nil {
		t.Fatalf("set default: %v", err)
	}

	b, err := r.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}

	if b.Kind() != configs.BackendS3 {
		t.Errorf("default kind = %q, want preferred %q", b.Kind(), configs.BackendS3)
	}

	var nce *errs.NotConfiguredError
	if err := r.SetDefault(configs.BackendCDNS3); !errors.As(err, &nce) {
		t.Errorf("set default to unregistered: got %v, want NotConfiguredError", err)
	}
}

func TestResolveEmptyKindUsesDefault(t *testing.T) {
	r := backend.NewRegistry()
	r.Register(configs.BackendPermFS, &stubBackend{kind: configs.BackendPermFS})

	b, err := r.Resolve("")
	if err != nil {
		t.Fatalf("resolve empty: %v", err)
	}

	if b.Kind() != configs.BackendPermFS {
		t.Errorf("resolved kind = %q, want %q", b.Kind(), configs.BackendPermFS)
	}

	var nce *errs.NotConfiguredError
	if _, err := r.Resolve(configs.BackendS3); !errors.As(err, &nce) {
		t.Errorf("resolve unregistered: got %v, want NotConfiguredError", err)
	}
}

func TestUnregisterClosesAndReorders(t *testing.T) {
	r := backend.NewRegistry()

	first := &stubBackend{kind: configs.BackendLocal}
	second := &stubBackend{kind: configs.BackendS3}

	r.Register(configs.BackendLocal, first)
	r.Register(configs.BackendS3, second)

	if err := r.Unregister(configs.BackendLocal); err != nil {
		t.Fatalf("unregister: %v", err)
	}

	if first.closed != 1 {
		t.Errorf("unregistered backend closed %d times, want 1", first.closed)
	}

	b, err := r.Default()
	if err != nil {
		t.Fatalf("default after unregister: %v", err)
	}

	if b.Kind() != configs.BackendS3 {
		t.Errorf("default after unregister = %q, want %q", b.Kind(), configs.BackendS3)
	}

	var nce *errs.NotConfiguredError
	if err := r.Unregister(configs.BackendLocal); !errors.As(err, &nce) {
		t.Errorf("double unregister: got %v, want NotConfiguredError", err)
	}
}

func TestKindsSnapshot(t *testing.T) {
	r := backend.NewRegistry()
	r.Register(configs.BackendS3, &stubBackend{kind: configs.BackendS3})
	r.Register(configs.BackendLocal, &stubBackend{kind: configs.BackendLocal})

	kinds := r.Kinds()
	want := []configs.BackendKind{configs.BackendS3, configs.BackendLocal}

	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}

	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %q, want %q", i, kinds[i], want[i])
		}
	}

	// 重复注册替换实例但不改变顺序.
	r.Register(configs.BackendS3, &stubBackend{kind: configs.BackendS3})

	if got := r.Kinds(); len(got) != 2 || got[0] != configs.BackendS3 {
		t.Errorf("kinds after re-register = %v, want %v", got, want)
	}
}

func TestCloseAllReturnsFirstError(t *testing.T) {
	r := backend.NewRegistry()

	broken := &stubBackend{kind: configs.BackendLocal, closeErr: errors.New("disk on fire")}
	healthy := &stubBackend{kind: configs.BackendS3}

	r.Register(configs.BackendLocal, broken)
	r.Register(configs.BackendS3, healthy)

	if err := r.Close(); err == nil {
		t.Error("close: expected the broken backend error to surface")
	}

	if broken.closed != 1 || healthy.closed != 1 {
		t.Errorf("closed counts = %d, %d; want 1, 1", broken.closed, healthy.closed)
	}

	if _, err := r.Default(); !errors.Is(err, errs.ErrNoBackends) {
		t.Errorf("registry after Close: got %v, want ErrNoBackends", err)
	}
}

func TestSignOptionsExpiryDefault(t *testing.T) {
	if got := (backend.SignOptions{}).Expiry(); got != backend.DefaultSignExpiry {
		t.Errorf("zero expiry = %v, want %v", got, backend.DefaultSignExpiry)
	}

	if got := (backend.SignOptions{ExpiresIn: -1}).Expiry(); got != backend.DefaultSignExpiry {
		t.Errorf("negative expiry = %v, want %v", got, backend.DefaultSignExpiry)
	}
}
