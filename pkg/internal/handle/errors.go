package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yimu/filedepot/pkg/internal/errs"
)

// writeError 按错误分类映射 HTTP 状态：校验 400、不存在 404、状态冲突 409、
// 后端 I/O 502，其余 500.
func writeError(c *gin.Context, err error) {
	var (
		notFound   *errs.NotFoundError
		validation *errs.ValidationError
		conflict   *errs.ConflictError
		deleted    *errs.AlreadyDeletedError
		notConf    *errs.NotConfiguredError
		backendOp  *errs.BackendOperationError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validation), errors.As(err, &notConf):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &conflict), errors.As(err, &deleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &backendOp):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
