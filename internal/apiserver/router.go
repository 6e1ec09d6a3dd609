package apiserver

import (
	"context"
	"net/http"
	"strconv"

	"gogwan-api/internal/config"
	"gogwan-api/internal/errors"
	"gogwan-api/internal/middleware"
	"gogwan-api/internal/service"
	"gogwan-api/internal/types"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services 路由依赖的服务
type Services struct {
	Image   service.ImageService
	Fortune service.FortuneService
	Press   service.PressService
	Forum   service.ForumService
	Models  service.ModelService
	// Ping 健康检查，可为空
	Ping func(ctx context.Context) error
}

// RegisterRoutes 注册 Echo 路由
func RegisterRoutes(e *echo.Echo, cfg *config.Config, svcs Services) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "GOGWAN API Server",
			"status":  "running",
		})
	})
	e.GET("/healthz", createHealthHandler(svcs.Ping))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/models", createListModelsHandler(svcs.Models))

	// 图片
	api.POST("/create-id-photo", createIDPhotoHandler(svcs.Image))
	api.POST("/convert-to-ghibli", createGhibliHandler(svcs.Image))
	api.POST("/style-transfer", createStyleTransferHandler(svcs.Image))
	api.POST("/generate-banner", createBannerHandler(svcs.Image))

	// 四柱与历法
	api.POST("/saju", createSajuHandler(svcs.Fortune))
	api.GET("/calendar/lunar", createSolarToLunarHandler(svcs.Fortune))
	api.GET("/calendar/solar", createLunarToSolarHandler(svcs.Fortune))

	// 新闻稿
	api.POST("/generate-press-release", createPressReleaseHandler(svcs.Press))

	// 论坛
	api.GET("/forum/posts", createListPostsHandler(svcs.Forum))
	api.POST("/forum/posts", createCreatePostHandler(svcs.Forum))
	api.GET("/forum/posts/:id", createGetPostHandler(svcs.Forum))
	api.GET("/forum/posts/:id/comments", createListCommentsHandler(svcs.Forum))
	api.POST("/forum/posts/:id/comments", createCreateCommentHandler(svcs.Forum))

	admin := api.Group("/admin", middleware.AdminAuth(cfg.Security.AdminToken))
	admin.DELETE("/forum/posts/:id", createDeletePostHandler(svcs.Forum))
}

// bindRequest 解析并校验请求体
func bindRequest[T any](c echo.Context) (*T, error) {
	req := new(T)
	if err := c.Bind(req); err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		return nil, errors.NewBadRequestError("잘못된 요청 데이터입니다", err)
	}
	if err := c.Validate(req); err != nil {
		return nil, err
	}
	return req, nil
}

func createHealthHandler(ping func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping != nil {
			if err := ping(c.Request().Context()); err != nil {
				return &errors.AppError{
					Code:    errors.ErrInternal,
					Message: "unhealthy",
					Err:     err,
					Status:  http.StatusServiceUnavailable,
				}
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// createListModelsHandler 创建模型列表处理器
func createListModelsHandler(svc service.ModelService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, svc.GetModels())
	}
}

func createIDPhotoHandler(svc service.ImageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.IDPhotoRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.CreateIDPhoto(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createGhibliHandler(svc service.ImageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.GhibliRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.ConvertToGhibli(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createStyleTransferHandler(svc service.ImageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.StyleTransferRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.StyleTransfer(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createBannerHandler(svc service.ImageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.BannerRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.GenerateBanner(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createSajuHandler(svc service.FortuneService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.SajuRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.Compute(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createSolarToLunarHandler(svc service.FortuneService) echo.HandlerFunc {
	return func(c echo.Context) error {
		date := c.QueryParam("date")
		if date == "" {
			return errors.NewInvalidInputError("date 파라미터가 필요합니다 (YYYY-MM-DD)", nil)
		}
		resp, err := svc.SolarToLunar(c.Request().Context(), date)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createLunarToSolarHandler(svc service.FortuneService) echo.HandlerFunc {
	return func(c echo.Context) error {
		date := c.QueryParam("date")
		if date == "" {
			return errors.NewInvalidInputError("date 파라미터가 필요합니다 (YYYY-MM-DD)", nil)
		}
		leap := false
		if raw := c.QueryParam("leap"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return errors.NewInvalidInputError("leap 파라미터는 true/false 여야 합니다", err)
			}
			leap = v
		}
		resp, err := svc.LunarToSolar(c.Request().Context(), date, leap)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createPressReleaseHandler(svc service.PressService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.PressReleaseRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.Generate(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createListPostsHandler(svc service.ForumService) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := 1
		if raw := c.QueryParam("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p < 1 {
				return errors.NewInvalidInputError("page 파라미터는 1 이상의 정수여야 합니다", err)
			}
			page = p
		}
		resp, err := svc.ListPosts(c.Request().Context(), c.QueryParam("category"), page)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createGetPostHandler(svc service.ForumService) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp, err := svc.GetPost(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createCreatePostHandler(svc service.ForumService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.CreatePostRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.CreatePost(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

func createDeletePostHandler(svc service.ForumService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func createListCommentsHandler(svc service.ForumService) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp, err := svc.ListComments(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createCreateCommentHandler(svc service.ForumService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := bindRequest[types.CreateCommentRequest](c)
		if err != nil {
			return err
		}
		resp, err := svc.CreateComment(c.Request().Context(), c.Param("id"), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, resp)
	}
}
