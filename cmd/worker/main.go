package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/pdfpreview/internal/adapter/queue"
	"github.com/plastinin/pdfpreview/internal/adapter/render"
	"github.com/plastinin/pdfpreview/internal/adapter/repository"
	"github.com/plastinin/pdfpreview/internal/adapter/storage"
	"github.com/plastinin/pdfpreview/internal/config"
	"github.com/plastinin/pdfpreview/internal/usecase"
	"github.com/plastinin/pdfpreview/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Инициализируем логгер
	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Info("Starting pdfpreview worker",
		zap.String("render_engine", cfg.Render.Engine),
		zap.Duration("render_timeout", cfg.Render.Timeout),
	)

	// Контекст для инициализации
	ctx := context.Background()

	// Инициализируем PostgreSQL
	dbPool, err := repository.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	log.Info("Connected to PostgreSQL")

	// Инициализируем S3 Storage
	s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		log.Fatal("Failed to connect to S3", zap.Error(err))
	}
	log.Info("Connected to S3",
		zap.String("endpoint", cfg.S3.Endpoint),
		zap.String("bucket", cfg.S3.Bucket),
	)

	// Движок рендеринга загружается лениво при первой задаче
	engineFactory, err := render.FactoryFor(cfg.Render.Engine)
	if err != nil {
		log.Fatal("Unknown render engine", zap.String("engine", cfg.Render.Engine), zap.Error(err))
	}
	engineLoader := render.NewLoader(engineFactory, log)
	defer engineLoader.Close()
	converter := render.NewConverter(engineLoader, log)

	// Инициализируем репозитории
	conversionRepo := repository.NewConversionRepository(dbPool)

	// Инициализируем use cases
	processUC := usecase.NewProcessUseCase(conversionRepo, s3Storage, converter, log)
	retentionUC := usecase.NewRetentionUseCase(conversionRepo, s3Storage, cfg.Retention.Period, log)

	// Инициализируем consumer
	consumer := queue.NewTaskConsumer(cfg.Redis, cfg.Render, processUC, log)

	// Инициализируем планировщик очистки
	retentionScheduler := queue.NewRetentionScheduler(retentionUC, cfg.Retention.Interval, log)
	if err := retentionScheduler.Start(); err != nil {
		log.Fatal("Failed to start retention scheduler", zap.Error(err))
	}
	log.Info("Retention scheduler started",
		zap.Duration("period", cfg.Retention.Period),
		zap.Duration("interval", cfg.Retention.Interval),
	)

	// Запускаем consumer в горутине
	go func() {
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start consumer", zap.Error(err))
		}
	}()

	log.Info("Worker started, waiting for conversions...")

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")

	// Останавливаем consumer и планировщик
	consumer.Stop()
	retentionScheduler.Stop()

	log.Info("Worker stopped")
}
