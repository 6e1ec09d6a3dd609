package middleware

import (
	"crypto/subtle"
	"strings"

	"gogwan-api/internal/errors"
	"gogwan-api/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminAuth 管理接口的 Bearer Token 认证
func AdminAuth(token string) echo.MiddlewareFunc {
	expected := []byte(token)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)

			given, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || given == "" {
				logger.Warn("无效的授权头",
					zap.String("method", c.Request().Method),
					zap.String("uri", c.Request().RequestURI),
					zap.String("remote_addr", c.RealIP()),
				)
				return errors.NewUnauthorizedError("인증 헤더가 올바르지 않습니다")
			}

			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(given), expected) != 1 {
				logger.Warn("无效的Token",
					zap.String("method", c.Request().Method),
					zap.String("uri", c.Request().RequestURI),
					zap.String("remote_addr", c.RealIP()),
					zap.String("token", maskToken(given)),
				)
				return errors.NewUnauthorizedError("유효하지 않은 토큰입니다")
			}

			return next(c)
		}
	}
}

// maskToken 只保留前 4 位
func maskToken(token string) string {
	if len(token) <= 4 {
		return "***"
	}
	return token[:4] + "..."
}
