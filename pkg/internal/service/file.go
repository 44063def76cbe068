package service

import (
	"context"

	ctxPkg "github.com/yimu/filedepot/pkg/context"
	"github.com/yimu/filedepot/pkg/internal/storage/backend"
	"github.com/yimu/filedepot/pkg/internal/storage/db"
	"github.com/yimu/filedepot/pkg/internal/storage/kv"
	"github.com/yimu/filedepot/pkg/internal/storage/mq"
	nlog "github.com/yimu/filedepot/pkg/log"
)

// FileService 负责文件记录相关业务逻辑（后端写入、元数据落库、事件广播），不处理 HTTP 细节.
type FileService struct {
	backends *backend.Registry
	dbClient *db.Client
	kvClient *kv.Client
	mqClient *mq.Client
}

// NewFileService 从 context 获取依赖实例.
// KV 与 MQ 为可选依赖，未初始化时对应能力降级（无缓存、不发事件）.
func NewFileService(c context.Context) *FileService {
	reg := ctxPkg.GetBackendRegistry(c)
	dbc := ctxPkg.GetDBClient(c)
	kvc := ctxPkg.GetKVClient(c)
	mqc := ctxPkg.GetMQClient(c)

	// 为了安全起见，应该直接 panic 而不是返回 nil，依赖此服务就不需要再检查
	if reg == nil || dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &FileService{
		backends: reg,
		dbClient: dbc,
		kvClient: kvc,
		mqClient: mqc,
	}
}
