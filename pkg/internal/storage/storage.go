// Package storage 处理存储资源的聚合与生命周期，包括后端注册表、数据库、KV 与消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	reg := mgr.GetBackendRegistry()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/cdn"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/local"
	"github.com/yimu/filedepot/pkg/internal/storage/backend/permfs"
	s3b "github.com/yimu/filedepot/pkg/internal/storage/backend/s3"
	dbc "github.com/yimu/filedepot/pkg/internal/storage/db"
	kvc "github.com/yimu/filedepot/pkg/internal/storage/kv"
	mqc "github.com/yimu/filedepot/pkg/internal/storage/mq"
	nlog "github.com/yimu/filedepot/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	Backends *backend.Registry
	DB       *dbc.Client
	KV       *kvc.Client
	MQ       *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// 存储后端注册表
		if reg, e := NewRegistryFromConfig(ctx, &cfg.Storage); e != nil {
			err = e

			return
		} else {
			m.Backends = reg
		}

		// DB
		if dbi, e := dbc.New(ctx); e != nil {
			err = e

			return
		} else {
			m.DB = dbi
		}

		// KV 缓存非核心依赖，失败时降级为无缓存运行
		if kvi, e := kvc.NewKVClient(ctx); e != nil {
			nlog.Logger().Warn().Err(e).Msg("KV 初始化失败，统计缓存不可用")
		} else {
			m.KV = kvi
		}

		// MQ 仅在事件开关打开时初始化，失败同样只降级
		if cfg.Events.Enabled {
			if mqi, e := mqc.New(ctx); e != nil {
				nlog.Logger().Warn().Err(e).Msg("MQ 初始化失败，事件广播不可用")
			} else {
				m.MQ = mqi
			}
		}

		mgr = m

		nlog.Logger().Info().
			Strs("backends", kindsAsStrings(m.Backends.Kinds())).
			Msg("storage manager initialized")
	})

	return mgr, err
}

// NewRegistryFromConfig 按配置实例化存储后端并注册.
// 只实例化配置中出现的后端段，storage.default 指定缺省后端；
// 未指定时采用注册顺序中的第一个.
func NewRegistryFromConfig(ctx context.Context, cfg *configs.StorageConfig) (*backend.Registry, error) {
	reg := backend.NewRegistry()

	if cfg.Local != nil {
		b, err := local.New(cfg.Local)
		if err != nil {
			return nil, err
		}

		reg.Register(b.Kind(), b)
	}

	if cfg.PermFS != nil {
		b, err := permfs.New(cfg.PermFS)
		if err != nil {
			return nil, err
		}

		reg.Register(b.Kind(), b)
	}

	if cfg.S3 != nil {
		b, err := s3b.New(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}

		reg.Register(b.Kind(), b)
	}

	if cfg.CDNS3 != nil {
		b, err := cdn.New(ctx, cfg.CDNS3)
		if err != nil {
			return nil, err
		}

		reg.Register(b.Kind(), b)
	}

	if cfg.Default != "" {
		if err := reg.SetDefault(cfg.Default); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// GetBackendRegistry 获取存储后端注册表.
func (m *Manager) GetBackendRegistry() *backend.Registry {
	return m.Backends
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放所有存储资源.
func (m *Manager) Close() error {
	var err error

	if m.Backends != nil {
		if e := m.Backends.Close(); e != nil {
			err = e
		}
	}

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	return err
}

func kindsAsStrings(kinds []configs.BackendKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}

	return out
}
