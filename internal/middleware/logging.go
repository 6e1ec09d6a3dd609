package middleware

import (
	"time"

	"gogwan-api/internal/config"
	"gogwan-api/internal/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestID 保证每个请求都有 X-Request-ID
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = "req_" + uuid.NewString()
				c.Request().Header.Set(echo.HeaderXRequestID, requestID)
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(c)
		}
	}
}

// RequestLogger 创建一个请求日志记录中间件
func RequestLogger(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Logging.EnableRequestLog {
				return next(c)
			}

			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				// 先让错误处理器写出响应，日志里才有真实状态码
				c.Error(err)
			}

			res := c.Response()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("route", c.Path()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_addr", c.RealIP()),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("user_agent", req.UserAgent()),
			}
			if res.Size > 0 {
				fields = append(fields, zap.Int64("response_size", res.Size))
			}

			switch {
			case res.Status >= 500:
				logger.Error("请求完成但服务器错误", fields...)
			case res.Status >= 400:
				logger.Warn("请求完成但客户端错误", fields...)
			default:
				logger.Info("请求完成", fields...)
			}

			return nil
		}
	}
}
