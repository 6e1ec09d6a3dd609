package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gogwan-api/internal/apiserver"
	"gogwan-api/internal/config"
	"gogwan-api/internal/forum"
	"gogwan-api/internal/gemini"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/lunar"
	"gogwan-api/internal/openaicompat"
	"gogwan-api/internal/saju"
	"gogwan-api/internal/service"
	"gogwan-api/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		logger.Fatal("初始化失败", zap.Error(err))
	}

	if err := app.Run(ctx); err != nil {
		logger.Fatal("服务器异常退出", zap.Error(err))
	}
	logger.Info("服务器已关闭")
}

// App 应用实例
type App struct {
	config *config.Config
	server *apiserver.Server
	store  *forum.Store
}

// newApp 按配置组装依赖
func newApp(ctx context.Context, cfg *config.Config) (*App, error) {
	utils.InitHTTPClients(cfg)

	gem, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := forum.Open(ctx, cfg.Forum.DSN)
	if err != nil {
		return nil, err
	}

	converter := newConverter(cfg)
	interpreter := newInterpreter(cfg, gem)
	cache := utils.NewTextCache(cfg.Interpretation.CacheTTL, cfg.Interpretation.CacheSize)

	logger.Info("依赖已就绪",
		zap.String("calendar_provider", cfg.Calendar.Provider),
		zap.String("interpretation_provider", cfg.Interpretation.Provider),
		zap.String("text_model", cfg.Gemini.TextModel),
		zap.String("image_model", cfg.Gemini.ImageModel),
	)

	server := apiserver.New(cfg, apiserver.Services{
		Image:   service.NewImageService(gem),
		Fortune: service.NewFortuneService(converter, interpreter, cfg.Interpretation.Provider, cache),
		Press:   service.NewPressService(gem),
		Forum:   service.NewForumService(store, cfg.Forum.PageSize),
		Models:  service.NewModelService(cfg),
		Ping:    store.Ping,
	})

	return &App{config: cfg, server: server, store: store}, nil
}

func newConverter(cfg *config.Config) saju.CalendarConverter {
	if cfg.Calendar.Provider == config.ProviderKASI {
		return lunar.NewKASI(utils.RestyDefaultClient, cfg.Calendar.KASIBaseURL, cfg.Calendar.KASIServiceKey)
	}
	return lunar.NewEmbedded()
}

func newInterpreter(cfg *config.Config, gem *gemini.Client) service.TextGenerator {
	if cfg.Interpretation.Provider == config.ProviderOpenAI {
		return openaicompat.NewClient(cfg, "당신은 사주명리학에 정통한 한국어 해설가입니다. 따뜻하지만 객관적인 어조로 답하세요.")
	}
	return gem
}

// Run 启动服务，收到信号后优雅关闭
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("正在关闭服务器", zap.Duration("timeout", a.config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(shutdownCtx)
		if cerr := a.store.Close(); cerr != nil {
			logger.Error("关闭论坛数据库失败", zap.Error(cerr))
		}
		return err
	})

	return g.Wait()
}
