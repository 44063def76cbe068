// Package errs 定义跨层共享的错误分类：调用方据此区分"重试无用"（校验、不存在）
// 与"重试可能有效"（后端 I/O、瞬时网络）两类失败.
package errs

import (
	"errors"
	"fmt"
)

// ErrNoBackends 注册表为空时返回.
var ErrNoBackends = errors.New("no storage backends available")

// NotFoundError 文件、文件夹或后端对象不存在.
type NotFoundError struct {
	Resource string // 资源种类，如 "file"、"folder"、"object"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// NewNotFound 构造 NotFoundError.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound 判断错误链中是否包含 NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// AlreadyDeletedError 对已软删除的记录再次执行软删除.
type AlreadyDeletedError struct {
	Resource string
	ID       string
}

func (e *AlreadyDeletedError) Error() string {
	return fmt.Sprintf("%s %q is already deleted", e.Resource, e.ID)
}

// NotConfiguredError 请求的后端类型从未注册.
type NotConfiguredError struct {
	Kind string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("storage backend %q is not configured", e.Kind)
}

// ValidationError 在任何 I/O 之前由参数校验产生.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}

	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidation 构造 ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError 非空文件夹的硬删除、产生环的移动等状态冲突.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// IsConflict 判断错误链中是否包含 ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// BackendOperationError 包装后端调用的 I/O 失败，携带操作名与底层原因.
type BackendOperationError struct {
	Op   string // 操作名，如 "upload"、"delete"
	Kind string // 后端类型标签
	Err  error
}

func (e *BackendOperationError) Error() string {
	return fmt.Sprintf("backend %s: %s failed: %v", e.Kind, e.Op, e.Err)
}

func (e *BackendOperationError) Unwrap() error {
	return e.Err
}

// NewBackendOp 构造 BackendOperationError.
func NewBackendOp(kind, op string, err error) error {
	return &BackendOperationError{Op: op, Kind: kind, Err: err}
}

// IsBackendOp 判断错误链中是否包含 BackendOperationError.
func IsBackendOp(err error) bool {
	var e *BackendOperationError
	return errors.As(err, &e)
}
