package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plastinin/pdfpreview/internal/domain"
)

// purgeBatchSize максимум задач, удаляемых за один проход
const purgeBatchSize = 100

// RetentionUseCase удаление задач, переживших срок хранения
type RetentionUseCase struct {
	convRepo    ConversionRepository
	fileStorage FileStorage
	period      time.Duration
	logger      *zap.Logger
}

// NewRetentionUseCase создаёт новый экземпляр RetentionUseCase
func NewRetentionUseCase(
	convRepo ConversionRepository,
	fileStorage FileStorage,
	period time.Duration,
	logger *zap.Logger,
) *RetentionUseCase {
	return &RetentionUseCase{
		convRepo:    convRepo,
		fileStorage: fileStorage,
		period:      period,
		logger:      logger,
	}
}

// PurgeExpired удаляет задачи старше срока хранения вместе с их файлами.
// Возвращает число удалённых задач.
func (uc *RetentionUseCase) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-uc.period)

	expired, err := uc.convRepo.ListOlderThan(ctx, cutoff, purgeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired conversions: %w", err)
	}

	purged := 0
	for _, conversion := range expired {
		if err := uc.purgeConversion(ctx, conversion); err != nil {
			uc.logger.Warn("Failed to purge conversion",
				zap.String("conversion_id", conversion.ID.String()),
				zap.Error(err),
			)
			continue
		}
		purged++
	}

	if purged > 0 {
		uc.logger.Info("Expired conversions purged",
			zap.Int("purged", purged),
			zap.Time("cutoff", cutoff),
		)
	}

	return purged, nil
}

// purgeConversion удаляет файлы задачи и саму запись
func (uc *RetentionUseCase) purgeConversion(ctx context.Context, conversion *domain.Conversion) error {
	// Отсутствие объекта в хранилище не мешает удалению записи
	for _, fileKey := range []string{conversion.SourceKey, conversion.ImageKey, conversion.ThumbnailKey} {
		if fileKey == "" {
			continue
		}
		if err := uc.fileStorage.Delete(ctx, fileKey); err != nil {
			uc.logger.Warn("Failed to delete file from storage",
				zap.String("conversion_id", conversion.ID.String()),
				zap.String("file_key", fileKey),
				zap.Error(err),
			)
		}
	}

	return uc.convRepo.Delete(ctx, conversion.ID)
}
