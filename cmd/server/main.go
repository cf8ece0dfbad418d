package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Likheet/hermes-monitoring-sub002/api/handler"
	"github.com/Likheet/hermes-monitoring-sub002/internal/config"
	"github.com/Likheet/hermes-monitoring-sub002/internal/infrastructure/buffer"
	"github.com/Likheet/hermes-monitoring-sub002/internal/infrastructure/monitor"
	pgInfra "github.com/Likheet/hermes-monitoring-sub002/internal/infrastructure/postgres"
	redisInfra "github.com/Likheet/hermes-monitoring-sub002/internal/infrastructure/redis"
	"github.com/Likheet/hermes-monitoring-sub002/internal/middleware"
	"github.com/Likheet/hermes-monitoring-sub002/internal/router"
	"github.com/Likheet/hermes-monitoring-sub002/internal/services"
	"github.com/Likheet/hermes-monitoring-sub002/internal/services/lifecycle"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/logger"
	"github.com/Likheet/hermes-monitoring-sub002/repository/postgres"
	redisRepo "github.com/Likheet/hermes-monitoring-sub002/repository/redis"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
	authUC "github.com/Likheet/hermes-monitoring-sub002/usecase/auth"
	escalationUC "github.com/Likheet/hermes-monitoring-sub002/usecase/escalation"
	scheduleUC "github.com/Likheet/hermes-monitoring-sub002/usecase/schedule"
	taskUC "github.com/Likheet/hermes-monitoring-sub002/usecase/task"
	workerUC "github.com/Likheet/hermes-monitoring-sub002/usecase/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.Listen(context.Background())
	defer stop()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, buffer.Options{MaxSize: cfg.Buffer.MaxSize})
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	redisPing := monitor.PingerFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	mon := monitor.New(pool, redisPing, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	workerRepo := postgres.NewWorkerRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	eventRepo := postgres.NewTaskEventRepository(pool)
	escalationRepo := postgres.NewEscalationRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	publisher := redisRepo.NewEventPublisher(redisClient, cfg.Redis.EventChannel)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		services.Repositories{
			Workers:   workerRepo,
			Tasks:     taskRepo,
			Schedules: scheduleRepo,
			Events:    eventRepo,
		},
		zapLogger,
		services.ProcessorConfig{
			Interval:        cfg.Buffer.SyncInterval,
			BatchSize:       cfg.Buffer.BatchSize,
			MaxRetries:      cfg.Buffer.MaxRetry,
			Retention:       time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
			CleanupSchedule: cfg.Buffer.CleanupSchedule,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", bufferProcessor.Stop)

	bufferBridge := services.NewBufferBridge(bufferProcessor)
	clock := usecase.Clock(time.Now)
	recorder := usecase.NewEventRecorder(eventRepo, publisher, bufferBridge, zapLogger)

	authUseCase := authUC.New(workerRepo, sessionRepo, authUC.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		TokenTTL:   cfg.JWT.TTL,
		SessionTTL: cfg.Session.TTL,
	}, clock, zapLogger)
	workerUseCase := workerUC.New(workerRepo, bufferBridge, zapLogger)
	scheduleUseCase := scheduleUC.New(scheduleRepo, workerRepo, bufferBridge, cfg.Property.Location, clock, zapLogger)
	taskUseCase := taskUC.New(taskRepo, workerRepo, recorder, bufferBridge, clock, zapLogger)
	escalationUseCase := escalationUC.New(taskRepo, escalationRepo, recorder, clock, zapLogger)

	dispatcher := usecase.NewDispatcher()
	taskUseCase.RegisterActions(dispatcher)
	zapLogger.Info("task actions registered", zap.Strings("commands", dispatcher.Commands()))

	if cfg.Escalation.Enabled {
		scanner := services.NewEscalationScanner(escalationUseCase, mon, cfg.Escalation.ScanInterval, zapLogger)
		scanner.Start()
		manager.Register("escalation_scanner", scanner.Stop)
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth: apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, apiHandler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		}),
		Worker:     apiHandler.NewWorkerHandler(workerUseCase, ctxAdapter, zapLogger),
		Schedule:   apiHandler.NewScheduleHandler(scheduleUseCase, ctxAdapter, zapLogger),
		Task:       apiHandler.NewTaskHandler(taskUseCase, dispatcher, ctxAdapter, zapLogger),
		Escalation: apiHandler.NewEscalationHandler(escalationUseCase, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(middleware.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		CookieName: cfg.Session.CookieName,
	}, authUseCase, zapLogger)

	server := &fasthttp.Server{
		Handler:            router.New(handlers, authMiddleware, zapLogger),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
