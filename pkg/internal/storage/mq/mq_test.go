package mq_test

import (
	"testing"

	"github.com/yimu/filedepot/pkg/configs"
	"github.com/yimu/filedepot/pkg/internal/storage/mq"
)

// TestRegisteredMQTypes 校验 nats 与 redis 工厂在 init 时已注册.
func TestRegisteredMQTypes(t *testing.T) {
	types := mq.GetRegisteredMQTypes()

	seen := make(map[configs.MQType]bool, len(types))
	for _, mt := range types {
		seen[mt] = true
	}

	for _, want := range []configs.MQType{configs.MQTypeNATS, configs.MQTypeRedis} {
		if !seen[want] {
			t.Errorf("mq type %q not registered, got %v", want, types)
		}
	}
}
