// Package api 对外暴露路由注册入口，便于嵌入其它 gin 应用.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/router"
)

// RegisterGroup 将全部业务路由注册到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterAPIRoutes(e)

	return e
}
