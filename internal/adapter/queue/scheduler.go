package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/plastinin/pdfpreview/internal/usecase"
)

// RetentionScheduler периодически удаляет устаревшие конвертации
type RetentionScheduler struct {
	cron        *cron.Cron
	retentionUC *usecase.RetentionUseCase
	interval    time.Duration
	logger      *zap.Logger
}

// NewRetentionScheduler создаёт планировщик очистки
func NewRetentionScheduler(retentionUC *usecase.RetentionUseCase, interval time.Duration, logger *zap.Logger) *RetentionScheduler {
	return &RetentionScheduler{
		cron:        cron.New(),
		retentionUC: retentionUC,
		interval:    interval,
		logger:      logger,
	}
}

// Start регистрирует задачу очистки и запускает планировщик
func (s *RetentionScheduler) Start() error {
	// Пропускаем запуск, если предыдущая очистка ещё идёт
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(s.runCleanup))

	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", s.interval), job); err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Retention scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущей очистки
func (s *RetentionScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Retention scheduler stopped")
}

// runCleanup одна итерация очистки
func (s *RetentionScheduler) runCleanup() {
	purged, err := s.retentionUC.PurgeExpired(context.Background())
	if err != nil {
		s.logger.Error("Cleanup run failed", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("Cleanup run finished", zap.Int("purged", purged))
	}
}
