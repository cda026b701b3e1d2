// Package main запускает HTTP-сервер сервиса курьера-партнёра.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/delivery-partner/internal/config"
	"github.com/mmeshcher/delivery-partner/internal/dispatch"
	"github.com/mmeshcher/delivery-partner/internal/handler"
	"github.com/mmeshcher/delivery-partner/internal/metrics"
	"github.com/mmeshcher/delivery-partner/internal/middleware"
	"github.com/mmeshcher/delivery-partner/internal/order"
	"github.com/mmeshcher/delivery-partner/internal/seed"
	"github.com/mmeshcher/delivery-partner/internal/service"
	"github.com/mmeshcher/delivery-partner/internal/session"
)

const dispatchPollInterval = 2 * time.Second

func main() {
	logger, _ := zap.NewProduction()

	cfg, err := config.Parse()
	if err != nil {
		logger.Sugar().Fatalw("configuration error", "error", err.Error())
	}

	if leveled, err := cfg.NewLogger(); err == nil {
		logger = leveled
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	store := order.NewStore()
	m := metrics.New()
	svc := service.NewService(store, session.NewManager(), m, logger)

	if cfg.SeedFile != "" {
		payloads, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			sugar.Fatalw("seed file error", "path", cfg.SeedFile, "error", err.Error())
		}
		n, err := seed.Apply(svc, payloads)
		if err != nil {
			sugar.Warnw("some seed orders were skipped", "error", err.Error())
		}
		sugar.Infow("seed orders loaded", "path", cfg.SeedFile, "count", n)
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.CookieSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, m)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Опрос ленты диспетчерской, если её адрес задан
	if cfg.DispatchAddress != "" {
		feed := dispatch.NewClient(cfg.DispatchAddress)
		g.Go(func() error {
			svc.RunDispatchFeed(ctx, feed, dispatchPollInterval)
			return nil
		})
	}

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting partner server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
