package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/plastinin/pdfpreview/internal/config"
	"github.com/plastinin/pdfpreview/internal/usecase"
	"go.uber.org/zap"
)

// TaskConsumer обрабатывает задачи конвертации из очереди
type TaskConsumer struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	processUC     *usecase.ProcessUseCase
	renderTimeout time.Duration
	logger        *zap.Logger
}

// NewTaskConsumer создаёт новый экземпляр TaskConsumer
func NewTaskConsumer(
	cfg config.RedisConfig,
	renderCfg config.RenderConfig,
	processUC *usecase.ProcessUseCase,
	logger *zap.Logger,
) *TaskConsumer {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 2, // Рендеринг загружает CPU, больше воркеров не помогает
			Queues: map[string]int{
				"conversions": 10, // Приоритет очереди
				"default":     1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	consumer := &TaskConsumer{
		server:        server,
		mux:           asynq.NewServeMux(),
		processUC:     processUC,
		renderTimeout: renderCfg.Timeout,
		logger:        logger,
	}

	// Регистрируем обработчики
	consumer.mux.HandleFunc(TypeConversionProcess, consumer.handleConversionProcess)

	return consumer
}

// Start запускает обработку задач
func (c *TaskConsumer) Start() error {
	c.logger.Info("Starting task consumer")
	return c.server.Start(c.mux)
}

// Stop останавливает обработку задач
func (c *TaskConsumer) Stop() {
	c.logger.Info("Stopping task consumer")
	c.server.Stop()
	c.server.Shutdown()
}

// handleConversionProcess обрабатывает задачу конвертации PDF
func (c *TaskConsumer) handleConversionProcess(ctx context.Context, t *asynq.Task) error {
	var payload ConversionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.logger.Error("Failed to unmarshal payload",
			zap.Error(err),
			zap.ByteString("payload", t.Payload()),
		)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	conversionID, err := uuid.Parse(payload.ConversionID)
	if err != nil {
		c.logger.Error("Invalid conversion ID",
			zap.String("conversion_id", payload.ConversionID),
			zap.Error(err),
		)
		return fmt.Errorf("invalid conversion ID: %w", err)
	}

	c.logger.Info("Processing conversion task",
		zap.String("conversion_id", conversionID.String()),
	)

	// Конвейер конвертации сам таймаутов не имеет, внешний предел задаёт consumer
	ctx, cancel := context.WithTimeout(ctx, c.renderTimeout)
	defer cancel()

	if err := c.processUC.ProcessConversion(ctx, conversionID); err != nil {
		c.logger.Error("Failed to process conversion",
			zap.String("conversion_id", conversionID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// asynqLogger адаптер логгера для asynq
type asynqLogger struct {
	logger *zap.Logger
}

func newAsynqLogger(logger *zap.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.Named("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
