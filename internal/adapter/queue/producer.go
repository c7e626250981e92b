package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/plastinin/pdfpreview/internal/config"
)

// Типы задач
const (
	TypeConversionProcess = "conversion:process"
)

// ConversionPayload данные задачи на конвертацию
type ConversionPayload struct {
	ConversionID string `json:"conversion_id"`
}

// TaskProducer отправляет задачи в очередь
type TaskProducer struct {
	client *asynq.Client
}

// NewTaskProducer создаёт новый экземпляр TaskProducer
func NewTaskProducer(cfg config.RedisConfig) *TaskProducer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &TaskProducer{client: client}
}

// Enqueue добавляет задачу конвертации в очередь
func (p *TaskProducer) Enqueue(ctx context.Context, conversionID uuid.UUID) error {
	payload, err := json.Marshal(ConversionPayload{
		ConversionID: conversionID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Повторные доставки безопасны: задача в финальном статусе пропускается
	task := asynq.NewTask(TypeConversionProcess, payload,
		asynq.MaxRetry(3),
		asynq.Queue("conversions"),
	)

	_, err = p.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Close закрывает соединение
func (p *TaskProducer) Close() error {
	return p.client.Close()
}
