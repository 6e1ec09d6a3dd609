package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"gogwan-api/internal/saju"
)

// ErrorCode 定义错误码
type ErrorCode int

const (
	// 系统错误码 (1000-1999)
	ErrInternal ErrorCode = 1000 + iota
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrTimeout
	ErrRequestFailed
	ErrTooManyRequests
)

const (
	// 业务错误码 (2000-2999)
	ErrInvalidInput ErrorCode = 2000 + iota
	ErrInvalidDate
	ErrInvalidHour
	ErrInvalidGender
	ErrImageGeneration
	ErrTextGeneration
	ErrEmptyImage
	ErrCalendarConversion
	ErrPostNotFound
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode // 错误码
	Message string    // 错误消息
	Err     error     // 原始错误
	Status  int       // HTTP状态码
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现errors.Unwrap接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPResponse 生成HTTP响应
func (e *AppError) HTTPResponse() (int, map[string]any) {
	return e.Status, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":    e.Code,
			"message": e.Message,
		},
	}
}

// As 取出错误链中的 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewInternalError 创建内部错误
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "서버 내부 오류가 발생했습니다",
		Err:     err,
		Status:  http.StatusInternalServerError,
	}
}

// NewBadRequestError 创建请求错误
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
		Status:  http.StatusBadRequest,
	}
}

// NewUnauthorizedError 创建未授权错误
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewTooManyRequestsError 创建限流错误
func NewTooManyRequestsError() *AppError {
	return &AppError{
		Code:    ErrTooManyRequests,
		Message: "요청이 너무 많습니다. 잠시 후 다시 시도해주세요",
		Status:  http.StatusTooManyRequests,
	}
}

// NewInvalidInputError 创建无效输入错误
func NewInvalidInputError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
		Err:     err,
		Status:  http.StatusBadRequest,
	}
}

// NewImageGenerationError 创建图片生成错误
func NewImageGenerationError(err error) *AppError {
	return &AppError{
		Code:    ErrImageGeneration,
		Message: "이미지 생성에 실패했습니다",
		Err:     err,
		Status:  http.StatusInternalServerError,
	}
}

// NewTextGenerationError 创建文本生成错误
func NewTextGenerationError(err error) *AppError {
	return &AppError{
		Code:    ErrTextGeneration,
		Message: "텍스트 생성에 실패했습니다",
		Err:     err,
		Status:  http.StatusInternalServerError,
	}
}

// NewEmptyImageError 创建图片为空错误
func NewEmptyImageError() *AppError {
	return &AppError{
		Code:    ErrEmptyImage,
		Message: "이미지 데이터가 필요합니다",
		Status:  http.StatusBadRequest,
	}
}

// NewRequestFailedError 创建请求失败错误
func NewRequestFailedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrRequestFailed,
		Message: fmt.Sprintf("외부 요청 실패: %s", message),
		Err:     err,
		Status:  http.StatusBadGateway,
	}
}

// NewPostNotFoundError 创建帖子不存在错误
func NewPostNotFoundError(id string) *AppError {
	return &AppError{
		Code:    ErrPostNotFound,
		Message: fmt.Sprintf("게시글을 찾을 수 없습니다: %s", id),
		Status:  http.StatusNotFound,
	}
}

// FromSaju 把四柱核心的哨兵错误映射为 AppError；其他错误按内部错误处理
func FromSaju(err error) *AppError {
	if appErr, ok := As(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, saju.ErrInvalidDate):
		return &AppError{Code: ErrInvalidDate, Message: "유효하지 않은 날짜입니다 (지원 범위: 1900-01-01 ~ 2100-12-31)", Err: err, Status: http.StatusBadRequest}
	case stderrors.Is(err, saju.ErrInvalidHour):
		return &AppError{Code: ErrInvalidHour, Message: "출생 시간은 0~23 사이여야 합니다", Err: err, Status: http.StatusBadRequest}
	case stderrors.Is(err, saju.ErrInvalidGender):
		return &AppError{Code: ErrInvalidGender, Message: "성별은 male 또는 female 이어야 합니다", Err: err, Status: http.StatusBadRequest}
	}
	return &AppError{Code: ErrCalendarConversion, Message: "달력 변환에 실패했습니다", Err: err, Status: http.StatusInternalServerError}
}
