package backend

import (
	"fmt"
	"sync"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/errs"
)

// Registry 保存后端类型标签到已初始化后端实例的映射.
// 启动时从配置一次性构建；请求处理期间只读，
// 变更仅通过显式的 Register/Unregister 管理操作进行.
type Registry struct {
	mu       sync.RWMutex
	backends map[configs.BackendKind]Backend
	// order 记录注册顺序：Go map 不保序，而 Default 需要"最先注册"语义
	order []configs.BackendKind
	// preferred 配置指定的默认后端；为空时取最先注册的
	preferred configs.BackendKind
}

// NewRegistry 创建空注册表.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[configs.BackendKind]Backend)}
}

// Register 注册（或替换）一个后端实例.
func (r *Registry) Register(kind configs.BackendKind, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[kind]; !exists {
		r.order = append(r.order, kind)
	}

	r.backends[kind] = b
}

// SetDefault 指定默认后端类型；该类型必须已注册.
func (r *Registry) SetDefault(kind configs.BackendKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[kind]; !ok {
		return &errs.NotConfiguredError{Kind: string(kind)}
	}

	r.preferred = kind

	return nil
}

// Unregister 移除一个后端并释放其资源. 未注册的类型返回 NotConfiguredError.
func (r *Registry) Unregister(kind configs.BackendKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.backends[kind]
	if !ok {
		return &errs.NotConfiguredError{Kind: string(kind)}
	}

	delete(r.backends, kind)

	for i, k := range r.order {
		if k == kind {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	if err := b.Close(); err != nil {
		return fmt.Errorf("close backend %s: %w", kind, err)
	}

	return nil
}

// Get 按类型标签取后端；从未注册的类型返回 NotConfiguredError.
func (r *Registry) Get(kind configs.BackendKind) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[kind]
	if !ok {
		return nil, &errs.NotConfiguredError{Kind: string(kind)}
	}

	return b, nil
}

// Default 返回默认后端：优先取配置指定的类型，否则取最先注册的；
// 注册表为空返回 ErrNoBackends.
func (r *Registry) Default() (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.preferred != "" {
		if b, ok := r.backends[r.preferred]; ok {
			return b, nil
		}
	}

	if len(r.order) == 0 {
		return nil, errs.ErrNoBackends
	}

	return r.backends[r.order[0]], nil
}

// Resolve 按可选类型标签解析后端；空标签走 Default.
func (r *Registry) Resolve(kind configs.BackendKind) (Backend, error) {
	if kind == "" {
		return r.Default()
	}

	return r.Get(kind)
}

// Kinds 返回已注册的后端类型，按注册顺序.
func (r *Registry) Kinds() []configs.BackendKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]configs.BackendKind, len(r.order))
	copy(out, r.order)

	return out
}

// Close 关闭所有已注册后端，返回第一个错误.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error

	for kind, b := range r.backends {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close backend %s: %w", kind, err)
		}
	}

	r.backends = make(map[configs.BackendKind]Backend)
	r.order = nil

	return firstErr
}
