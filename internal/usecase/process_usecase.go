package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/plastinin/pdfpreview/internal/domain"
	"go.uber.org/zap"
)

// ProcessUseCase бизнес-логика выполнения конвертации
type ProcessUseCase struct {
	convRepo    ConversionRepository
	fileStorage FileStorage
	renderer    PageRenderer
	logger      *zap.Logger
}

// NewProcessUseCase создаёт новый экземпляр ProcessUseCase
func NewProcessUseCase(
	convRepo ConversionRepository,
	fileStorage FileStorage,
	renderer PageRenderer,
	logger *zap.Logger,
) *ProcessUseCase {
	return &ProcessUseCase{
		convRepo:    convRepo,
		fileStorage: fileStorage,
		renderer:    renderer,
		logger:      logger,
	}
}

// ProcessConversion обрабатывает задачу конвертации из очереди
func (uc *ProcessUseCase) ProcessConversion(ctx context.Context, conversionID uuid.UUID) error {
	uc.logger.Info("Starting conversion processing",
		zap.String("conversion_id", conversionID.String()),
	)

	// Получаем задачу
	conversion, err := uc.convRepo.GetByID(ctx, conversionID)
	if err != nil {
		return fmt.Errorf("failed to get conversion: %w", err)
	}

	// Повторная доставка завершённой задачи безвредна
	if conversion.Status.IsFinal() {
		uc.logger.Warn("Conversion already in final status, skipping",
			zap.String("conversion_id", conversionID.String()),
			zap.String("status", conversion.Status.String()),
		)
		return nil
	}

	// Переводим в статус "processing"
	if err := conversion.MarkProcessing(); err != nil {
		return fmt.Errorf("failed to mark conversion as processing: %w", err)
	}
	if err := uc.convRepo.Update(ctx, conversion); err != nil {
		return fmt.Errorf("failed to update conversion status: %w", err)
	}

	// Скачиваем исходник из S3
	fileReader, err := uc.fileStorage.Download(ctx, conversion.SourceKey)
	if err != nil {
		uc.markConversionFailed(ctx, conversion, domain.NewStorageError(err).Error())
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer fileReader.Close()

	// Читаем содержимое файла
	data, err := io.ReadAll(fileReader)
	if err != nil {
		uc.markConversionFailed(ctx, conversion, domain.NewStorageError(err).Error())
		return fmt.Errorf("failed to read file: %w", err)
	}

	uc.logger.Debug("File downloaded from storage",
		zap.String("conversion_id", conversionID.String()),
		zap.Int("file_size", len(data)),
		zap.String("content_type", conversion.ContentType),
	)

	result, err := uc.ConvertStored(ctx, conversion, data)
	if err != nil {
		return err
	}
	if result.Failed() {
		return result.Err
	}

	uc.logger.Info("Conversion completed successfully",
		zap.String("conversion_id", conversionID.String()),
		zap.String("image_key", conversion.ImageKey),
		zap.Int("width", conversion.Width),
		zap.Int("height", conversion.Height),
	)

	return nil
}

// ConvertStored выполняет конвейер для уже сохранённого исходника.
// Сбой конвейера отражается в результате и статусе задачи, а не в ошибке вызова.
// Ошибка возвращается только при отказе инфраструктуры вокруг конвейера.
func (uc *ProcessUseCase) ConvertStored(ctx context.Context, conversion *domain.Conversion, data []byte) (domain.ConversionResult, error) {
	// Синхронный путь приходит сюда со свежесозданной задачей
	if conversion.Status == domain.ConversionStatusPending {
		if err := conversion.MarkProcessing(); err != nil {
			return domain.ConversionResult{}, fmt.Errorf("failed to mark conversion as processing: %w", err)
		}
		if err := uc.convRepo.Update(ctx, conversion); err != nil {
			return domain.ConversionResult{}, fmt.Errorf("failed to update conversion status: %w", err)
		}
	}

	rendered, err := uc.renderer.Convert(ctx, conversion.SourceName, data)
	if err != nil {
		convErr := asConversionError(err)
		uc.markConversionFailed(ctx, conversion, convErr.Error())
		return domain.ConversionResult{Err: convErr}, nil
	}

	// Сохраняем PNG под детерминированным ключом
	imageKey := resultKey(conversion.ID, rendered.Image.Name)
	if err := uc.fileStorage.Store(ctx, imageKey, rendered.Image.ContentType, bytes.NewReader(rendered.Image.Data), rendered.Image.Size()); err != nil {
		convErr := domain.NewStorageError(err)
		uc.markConversionFailed(ctx, conversion, convErr.Error())
		return domain.ConversionResult{Err: convErr}, nil
	}

	// Миниатюра не критична: задача успешна и без неё
	thumbnailKey := ""
	if rendered.Thumbnail != nil {
		thumbnailKey = resultKey(conversion.ID, rendered.Thumbnail.Name)
		if err := uc.fileStorage.Store(ctx, thumbnailKey, rendered.Thumbnail.ContentType, bytes.NewReader(rendered.Thumbnail.Data), rendered.Thumbnail.Size()); err != nil {
			uc.logger.Warn("Failed to store thumbnail",
				zap.String("conversion_id", conversion.ID.String()),
				zap.String("file_key", thumbnailKey),
				zap.Error(err),
			)
			thumbnailKey = ""
		}
	}

	// Временная ссылка на PNG входит в итог конвертации
	imageURL, err := uc.fileStorage.GetURL(ctx, imageKey)
	if err != nil {
		convErr := domain.NewStorageError(err)
		uc.markConversionFailed(ctx, conversion, convErr.Error())
		return domain.ConversionResult{Err: convErr}, nil
	}

	// Успешно завершаем задачу
	conversion.PageCount = rendered.PageCount
	if err := conversion.MarkCompleted(imageKey, rendered.Image.Name, thumbnailKey, rendered.Width, rendered.Height); err != nil {
		return domain.ConversionResult{}, fmt.Errorf("failed to mark conversion as completed: %w", err)
	}
	if err := uc.convRepo.Update(ctx, conversion); err != nil {
		return domain.ConversionResult{}, fmt.Errorf("failed to update conversion: %w", err)
	}

	return domain.ConversionResult{
		ImageURL: imageURL,
		File:     rendered.Image,
	}, nil
}

// markConversionFailed помечает задачу как неудачную с текстом ошибки для клиента
func (uc *ProcessUseCase) markConversionFailed(ctx context.Context, conversion *domain.Conversion, errMsg string) {
	uc.logger.Error("Conversion processing failed",
		zap.String("conversion_id", conversion.ID.String()),
		zap.String("error", errMsg),
	)

	if err := conversion.MarkFailed(errMsg); err != nil {
		uc.logger.Error("Failed to mark conversion as failed",
			zap.String("conversion_id", conversion.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := uc.convRepo.Update(ctx, conversion); err != nil {
		uc.logger.Error("Failed to update failed conversion",
			zap.String("conversion_id", conversion.ID.String()),
			zap.Error(err),
		)
	}
}

// asConversionError приводит ошибку конвейера к доменной с сохранением вида сбоя
func asConversionError(err error) *domain.ConversionError {
	var convErr *domain.ConversionError
	if errors.As(err, &convErr) {
		return convErr
	}
	return domain.NewRenderError(err)
}

// resultKey строит детерминированный ключ результата в хранилище
func resultKey(conversionID uuid.UUID, fileName string) string {
	return path.Join("results", conversionID.String(), fileName)
}
