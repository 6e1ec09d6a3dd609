package apiserver

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gogwan-api/internal/config"
	"gogwan-api/internal/errors"
	"gogwan-api/internal/forum"
	"gogwan-api/internal/gemini"
	"gogwan-api/internal/lunar"
	"gogwan-api/internal/service"
	"gogwan-api/internal/types"
	"gogwan-api/internal/utils"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImages struct{}

func (stubImages) GenerateImage(_ context.Context, req gemini.ImageRequest) (*gemini.Image, error) {
	return &gemini.Image{Data: []byte("img:" + req.AspectRatio), MIMEType: "image/png"}, nil
}

type stubText struct {
	text string
	err  error
}

func (s stubText) GenerateText(context.Context, string) (string, error) {
	return s.text, s.err
}

type testEnv struct {
	handler http.Handler
	cfg     *config.Config
}

func newTestEnv(t *testing.T, text stubText) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Security.AdminToken = "admin-token"
	cfg.Logging.EnableRequestLog = false

	store, err := forum.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := New(cfg, Services{
		Image:   service.NewImageService(stubImages{}),
		Fortune: service.NewFortuneService(lunar.NewEmbedded(), text, "stub", utils.NewTextCache(time.Hour, 8)),
		Press:   service.NewPressService(text),
		Forum:   service.NewForumService(store, cfg.Forum.PageSize),
		Models:  service.NewModelService(cfg),
		Ping:    store.Ping,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{handler: srv.Handler(), cfg: cfg}
}

func (env *testEnv) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, stubText{})

	rec := env.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"GOGWAN API Server","status":"running"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gogwan_http_requests_total")

	rec = env.do(http.MethodGet, "/api/models", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	models := decode[types.ModelsResponse](t, rec)
	require.Len(t, models.Data, 4)
	assert.Equal(t, "gemini-2.5-flash-image", models.Data[0].Model)
	assert.NotContains(t, rec.Body.String(), "admin-token")
}

func TestSajuEndpoint(t *testing.T) {
	env := newTestEnv(t, stubText{text: "풀이"})

	rec := env.do(http.MethodPost, "/api/saju",
		`{"birth_date":"1990-05-15","birth_hour":10,"gender":"male","interpret":true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[types.SajuResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "庚午", resp.Fortune.Pillars.Year.Hanja)
	assert.Equal(t, "辛巳", resp.Fortune.Pillars.Hour.Hanja)
	assert.Equal(t, "풀이", resp.Interpretation)
}

func TestSajuEndpointValidation(t *testing.T) {
	env := newTestEnv(t, stubText{})

	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{"missing hour", `{"birth_date":"1990-05-15","gender":"male"}`, errors.ErrInvalidInput},
		{"bad calendar", `{"birth_date":"1990-05-15","birth_hour":1,"gender":"male","calendar":"julian"}`, errors.ErrInvalidInput},
		{"hour out of range", `{"birth_date":"1990-05-15","birth_hour":25,"gender":"male"}`, errors.ErrInvalidHour},
		{"bad gender", `{"birth_date":"1990-05-15","birth_hour":1,"gender":"unknown"}`, errors.ErrInvalidGender},
		{"bad date", `{"birth_date":"1990-13-01","birth_hour":1,"gender":"female"}`, errors.ErrInvalidDate},
		{"malformed json", `{"birth_date":`, errors.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/saju", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[errorBody](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, int(tt.code), body.Error.Code)
		})
	}
}

func TestCalendarEndpoints(t *testing.T) {
	env := newTestEnv(t, stubText{})

	rec := env.do(http.MethodGet, "/api/calendar/lunar?date=1990-05-15", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[types.CalendarResponse](t, rec)
	assert.Equal(t, 4, resp.Lunar.Month)
	assert.Equal(t, 21, resp.Lunar.Day)

	rec = env.do(http.MethodGet, "/api/calendar/solar?date=2020-04-01&leap=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[types.CalendarResponse](t, rec)
	assert.Equal(t, "2020-05-23", resp.Solar.String())
	assert.True(t, resp.Lunar.Leap)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/calendar/lunar", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/calendar/solar?date=2020-04-01&leap=maybe", "", nil).Code)
}

func TestImageEndpoints(t *testing.T) {
	env := newTestEnv(t, stubText{})
	image := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	rec := env.do(http.MethodPost, "/api/create-id-photo", `{"image":"`+image+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[types.ImageResponse](t, rec)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img:3:4")), resp.ProcessedImage)

	rec = env.do(http.MethodPost, "/api/generate-banner", `{"title":"축제"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[types.ImageResponse](t, rec)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img:16:9")), resp.ProcessedImage)

	rec = env.do(http.MethodPost, "/api/style-transfer", `{"image":"`+image+`","style":"oil"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/convert-to-ghibli", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/generate-banner", `{"title":"x","aspect_ratio":"2:1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPressReleaseEndpoint(t *testing.T) {
	env := newTestEnv(t, stubText{text: "【제목】 보도자료"})
	rec := env.do(http.MethodPost, "/api/generate-press-release", `{"prompt":"청년 지원"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "【제목】 보도자료", decode[types.PressReleaseResponse](t, rec).Content)

	env = newTestEnv(t, stubText{err: stderrors.New("quota exceeded")})
	rec = env.do(http.MethodPost, "/api/generate-press-release", `{"prompt":"청년 지원"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, int(errors.ErrTextGeneration), decode[errorBody](t, rec).Error.Code)
	assert.NotContains(t, rec.Body.String(), "quota")
}

func TestForumEndpoints(t *testing.T) {
	env := newTestEnv(t, stubText{})

	rec := env.do(http.MethodPost, "/api/forum/posts", `{"title":"안녕","content":"첫 글","author":"민수"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[types.PostResponse](t, rec).Post
	require.NotNil(t, post)

	rec = env.do(http.MethodPost, "/api/forum/posts/"+post.ID+"/comments", `{"content":"반가워요","author":"지은"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/forum/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[types.PostResponse](t, rec).Post
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, 1, got.CommentCount)

	rec = env.do(http.MethodGet, "/api/forum/posts?page=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[types.PostListResponse](t, rec).Total)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/forum/posts?page=0", "", nil).Code)

	rec = env.do(http.MethodGet, "/api/forum/posts/"+post.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[types.CommentListResponse](t, rec).Comments, 1)

	// 删除需要管理员令牌
	rec = env.do(http.MethodDelete, "/api/admin/forum/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := http.Header{echo.HeaderAuthorization: {"Bearer admin-token"}}
	rec = env.do(http.MethodDelete, "/api/admin/forum/posts/"+post.ID, "", auth)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/forum/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int(errors.ErrPostNotFound), decode[errorBody](t, rec).Error.Code)
}

func TestForumCategoryAndPaging(t *testing.T) {
	env := newTestEnv(t, stubText{})

	rec := env.do(http.MethodPost, "/api/forum/posts", `{"title":"t","content":"c","author":"a","category":"saju"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(errors.ErrInvalidInput), decode[errorBody](t, rec).Error.Code)

	rec = env.do(http.MethodPost, "/api/forum/posts", `{"title":"t","content":"c","author":"a","category":"행사"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPost, "/api/forum/posts", `{"title":"t","content":"c","author":"a"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "일반", decode[types.PostResponse](t, rec).Post.Category)

	rec = env.do(http.MethodGet, "/api/forum/posts?category="+url.QueryEscape("행사"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[types.PostListResponse](t, rec).Total)

	rec = env.do(http.MethodGet, "/api/forum/posts?category=saju", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/forum/posts?page=4611686018427387904", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(errors.ErrInvalidInput), decode[errorBody](t, rec).Error.Code)
}

func TestBodyLimit(t *testing.T) {
	env := newTestEnv(t, stubText{})
	env.cfg.Security.MaxBodySize = "1K"

	srv := New(env.cfg, Services{Image: service.NewImageService(stubImages{})})
	body := `{"image":"` + strings.Repeat("A", 4096) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/convert-to-ghibli", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
