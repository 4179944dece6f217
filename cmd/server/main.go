package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/robofleet/internal/fleet/handler"
	"github.com/xela07ax/robofleet/internal/fleet/server"
	"github.com/xela07ax/robofleet/internal/fleet/service"
	"github.com/xela07ax/robofleet/internal/generator"
	"github.com/xela07ax/robofleet/internal/infra"
	"github.com/xela07ax/robofleet/internal/infra/auth"
	"github.com/xela07ax/robofleet/internal/journal"
	"github.com/xela07ax/robofleet/internal/repository/postgres"
	"github.com/xela07ax/robofleet/internal/stream"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service terminated", zap.Error(err))
	}
}

func run(cfg *infra.Config, logger *zap.Logger) error {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// 2. Метрики
	promRegistry := prometheus.NewRegistry()
	metrics := infra.NewMetrics(promRegistry)

	// 3. Хранилище: пул соединений с ретраями на старте
	pool, err := postgres.NewPool(rootCtx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	defer pool.Close()

	robotRepo := postgres.NewRobotRepo(pool)
	taskRepo := postgres.NewTaskRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	eventRepo := postgres.NewEventRepo(pool)

	// 4. Redis для кросс-инстансного релея мутаций.
	// Без адреса работаем standalone: broadcast только локальным подписчикам.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	// 5. Криптография: RS256 ключи для выдачи и проверки токенов
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}
	validator := auth.NewBaseValidator(publicKey)

	// 6. Realtime-контур: хаб подписчиков, журнал мутаций, бродкастер
	hub := stream.NewHub(logger, metrics, cfg.Stream)
	recorder := journal.NewRecorder(eventRepo, logger, metrics, cfg.Stream)
	recorder.Start()
	defer recorder.Stop()

	broadcaster := stream.NewBroadcaster(hub, rdb, recorder, metrics, logger)
	if rdb != nil {
		go broadcaster.RunRelay(rootCtx)
	}

	// 7. Сервисный слой
	robotService := service.NewRobotService(robotRepo, broadcaster, logger)
	taskService := service.NewTaskService(taskRepo, robotRepo, broadcaster, logger)
	authService := service.NewAuthService(userRepo, privateKey, cfg.Auth, logger)

	// 8. HTTP-поверхность
	srv := server.NewFleetServer(
		cfg,
		logger,
		metrics,
		validator,
		handler.NewAuthHandler(authService),
		handler.NewRobotHandler(robotService),
		handler.NewTaskHandler(taskService),
		stream.NewWSHandler(hub, logger),
		promRegistry,
	)

	// 9. Фоновые генераторы синтетической нагрузки
	if cfg.Generator.Enabled {
		robotGen := generator.New(
			generator.NewRobotSource(robotService, userRepo),
			cfg.Generator.MinInterval, cfg.Generator.MaxInterval,
			logger, metrics,
		)
		taskGen := generator.New(
			generator.NewTaskSource(taskService, robotRepo),
			cfg.Generator.MinInterval, cfg.Generator.MaxInterval,
			logger, metrics,
		)
		go robotGen.Run(rootCtx)
		go taskGen.Run(rootCtx)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Fleet registry started", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 10. Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	// Останавливаем генераторы и релей, затем дожидаемся HTTP
	rootCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Fleet registry stopped")
	return nil
}
