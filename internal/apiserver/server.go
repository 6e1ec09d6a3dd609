package apiserver

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"gogwan-api/internal/config"
	"gogwan-api/internal/errors"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/middleware"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Server HTTP 服务
type Server struct {
	cfg     *config.Config
	echo    *echo.Echo
	limiter *middleware.RateLimiter
}

// New 创建服务并注册路由
func New(cfg *config.Config, svcs Services) *Server {
	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	e.JSONSerializer = sonicSerializer{}
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler()

	s := &Server{cfg: cfg, echo: e}

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(cfg))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit(cfg.Security.MaxBodySize))
	if cfg.Security.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
			Timeout: cfg.Security.RequestTimeout,
		}))
	}
	if cfg.Security.RateLimitEnabled {
		s.limiter = middleware.NewRateLimiter(cfg.Security.RateLimitRPS)
		e.Use(s.limiter.Middleware())
	}

	RegisterRoutes(e, cfg, svcs)
	return s
}

// Handler 用于测试
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start 阻塞监听，正常关闭时返回 nil
func (s *Server) Start() error {
	logger.Info("启动服务器", zap.String("address", s.cfg.GetAddress()))
	if err := s.echo.Start(s.cfg.GetAddress()); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		defer s.limiter.Close()
	}
	return s.echo.Shutdown(ctx)
}

// sonicSerializer 用 sonic 替换 echo 默认的 encoding/json
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON 형식이 올바르지 않습니다").SetInternal(err)
	}
	return nil
}

// requestValidator 接入 validator/v10，字段名取 json tag
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewInvalidInputError("요청 값이 올바르지 않습니다", err)
	}
	fields := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fe.Field() + "(" + fe.Tag() + "=" + fe.Param() + ")"
		}
		return fe.Field() + "(" + fe.Tag() + ")"
	})
	return errors.NewInvalidInputError("요청 값이 올바르지 않습니다: "+strings.Join(fields, ", "), err)
}
