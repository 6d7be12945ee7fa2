package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jameshpark/meowkitty/utils"
	"go.uber.org/zap"
)

// Logger Zap日志中间件，skip 中的路径只记 Debug 级别（例如 /metrics 抓取）
func Logger(skip ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", time.Since(start)),
		}

		if _, ok := quiet[path]; ok {
			utils.Logger.Debug("request", fields...)
			return
		}
		utils.Logger.Info("request", fields...)
	}
}
