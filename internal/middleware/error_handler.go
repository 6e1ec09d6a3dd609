package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"gogwan-api/internal/errors"
	"gogwan-api/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler 统一错误响应：{success:false, error:{code,message,request_id}}
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = c.Request().Header.Get(echo.HeaderXRequestID)
		}

		appErr := toAppError(err)
		status, response := appErr.HTTPResponse()
		if errMap, ok := response["error"].(map[string]any); ok {
			errMap["request_id"] = requestID
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.Int("error_code", int(appErr.Code)),
			zap.String("error_msg", appErr.Message),
			zap.String("request_id", requestID),
		}
		if appErr.Err != nil {
			fields = append(fields, zap.Error(appErr.Err))
		}
		if status >= http.StatusInternalServerError {
			logger.Error("请求错误", fields...)
		} else {
			logger.Warn("请求错误", fields...)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, response)
	}
}

// toAppError 应用错误原样返回，框架错误按状态码归类，其余视为内部错误
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}

	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		message := http.StatusText(echoErr.Code)
		if m, ok := echoErr.Message.(string); ok && m != "" {
			message = m
		}
		return &errors.AppError{
			Code:    codeForStatus(echoErr.Code),
			Message: message,
			Err:     echoErr.Internal,
			Status:  echoErr.Code,
		}
	}

	return errors.NewInternalError(fmt.Errorf("unhandled: %w", err))
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return errors.ErrBadRequest
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errors.ErrNotFound
	case http.StatusRequestTimeout, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return errors.ErrTimeout
	case http.StatusTooManyRequests:
		return errors.ErrTooManyRequests
	}
	return errors.ErrInternal
}
