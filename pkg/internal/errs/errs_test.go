package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/yimu/filedepot/pkg/internal/errs"
)

func TestIsNotFoundThroughWrapping(t *testing.T) {
	base := errs.NewNotFound("file", "01J5XYZ")

	if !errs.IsNotFound(base) {
		t.Error("direct NotFoundError not detected")
	}

	wrapped := fmt.Errorf("load record: %w", base)
	if !errs.IsNotFound(wrapped) {
		t.Error("wrapped NotFoundError not detected")
	}

	if errs.IsNotFound(errors.New("file not found")) {
		t.Error("plain error misidentified as NotFoundError")
	}

	if errs.IsNotFound(nil) {
		t.Error("nil misidentified as NotFoundError")
	}
}

func TestBackendOpUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := errs.NewBackendOp("s3", "upload", cause)

	if !errs.IsBackendOp(err) {
		t.Error("BackendOperationError not detected")
	}

	if !errors.Is(err, cause) {
		t.Error("underlying cause lost through BackendOperationError")
	}

	wrapped := fmt.Errorf("store object: %w", err)
	if !errs.IsBackendOp(wrapped) {
		t.Error("wrapped BackendOperationError not detected")
	}

	var boe *errs.BackendOperationError
	if !errors.As(wrapped, &boe) {
		t.Fatal("errors.As failed on wrapped BackendOperationError")
	}

	if boe.Op != "upload" || boe.Kind != "s3" {
		t.Errorf("op/kind = %q/%q, want upload/s3", boe.Op, boe.Kind)
	}
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{errs.NewNotFound("folder", "42"), `folder "42" not found`},
		{&errs.AlreadyDeletedError{Resource: "file", ID: "7"}, `file "7" is already deleted`},
		{&errs.NotConfiguredError{Kind: "cdn_s3"}, `storage backend "cdn_s3" is not configured`},
		{errs.NewValidation("name", "must not be empty"), "validation failed on name: must not be empty"},
		{errs.NewValidation("", "empty request"), "validation failed: empty request"},
		{&errs.ConflictError{Reason: "folder is not empty"}, "conflict: folder is not empty"},
		{errs.NewBackendOp("local", "delete", errors.New("permission denied")), "backend local: delete failed: permission denied"},
	}

	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestCategoriesAreDistinct(t *testing.T) {
	validation := errs.NewValidation("key", "bad path")
	if errs.IsNotFound(validation) || errs.IsBackendOp(validation) {
		t.Error("ValidationError matched a foreign category")
	}

	notFound := errs.NewNotFound("object", "k")
	if errs.IsBackendOp(notFound) {
		t.Error("NotFoundError matched IsBackendOp")
	}
}
