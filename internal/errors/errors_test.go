package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"gogwan-api/internal/saju"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSaju(t *testing.T) {
	tests := []struct {
		err    error
		code   ErrorCode
		status int
	}{
		{fmt.Errorf("%w: 1990-02-30", saju.ErrInvalidDate), ErrInvalidDate, http.StatusBadRequest},
		{saju.ErrInvalidHour, ErrInvalidHour, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", saju.ErrInvalidGender), ErrInvalidGender, http.StatusBadRequest},
		{stderrors.New("lunar table missing"), ErrCalendarConversion, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		appErr := FromSaju(tt.err)
		assert.Equal(t, tt.code, appErr.Code, tt.err.Error())
		assert.Equal(t, tt.status, appErr.Status)
		assert.ErrorIs(t, appErr, tt.err)
	}
}

func TestFromSajuKeepsAppError(t *testing.T) {
	upstream := NewRequestFailedError("kasi", stderrors.New("timeout"))
	assert.Same(t, upstream, FromSaju(fmt.Errorf("convert: %w", upstream)))
}

func TestHTTPResponse(t *testing.T) {
	status, body := NewPostNotFoundError("p1").HTTPResponse()
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ErrPostNotFound, errBody["code"])
}

func TestAs(t *testing.T) {
	_, ok := As(stderrors.New("plain"))
	assert.False(t, ok)

	appErr, ok := As(fmt.Errorf("ctx: %w", NewEmptyImageError()))
	require.True(t, ok)
	assert.Equal(t, ErrEmptyImage, appErr.Code)
}
