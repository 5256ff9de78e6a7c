package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/config"
	"github.com/zhouzirui/z-bazi/backend/internal/handler"
	"github.com/zhouzirui/z-bazi/backend/internal/service/ai"
	"github.com/zhouzirui/z-bazi/backend/internal/service/chart"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	ctx = logger.WithContext(ctx)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("failed to load .env file, continuing with system environment variables only")
	}

	var computer chart.Computer
	if cfg.Chart.Enabled() {
		computer = chart.NewHTTPComputer(cfg.Chart.ServiceURL, cfg.Chart.Timeout)
		logger.Info().Str("url", cfg.Chart.ServiceURL).Msg("chart service configured")
	} else {
		logger.Warn().Msg("CHART_SERVICE_URL 未配置，排盘结果将全部显示为 N/A")
	}

	var narrator pipeline.Narrator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize AI service, continuing without AI interpretation - 请检查 Ark 模型相关环境变量")
		} else {
			narrator = aiService
			logger.Info().Msg("AI service initialized successfully")
		}
	} else {
		logger.Info().Msg("Ark 凭证未配置，跳过 AI 解读初始化")
	}

	runner := pipeline.NewRunner(computer, narrator)
	router := handler.NewRouter(logger, runner, narrator != nil)

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("Z Bazi backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
