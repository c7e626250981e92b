package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/plastinin/pdfpreview/internal/domain"
	"go.uber.org/zap"
)

// ConversionUseCase бизнес-логика работы с задачами конвертации
type ConversionUseCase struct {
	convRepo    ConversionRepository
	fileStorage FileStorage
	queue       ConversionQueue
	inspector   SourceInspector
	processor   *ProcessUseCase
	logger      *zap.Logger
}

// NewConversionUseCase создаёт новый экземпляр ConversionUseCase
func NewConversionUseCase(
	convRepo ConversionRepository,
	fileStorage FileStorage,
	queue ConversionQueue,
	inspector SourceInspector,
	processor *ProcessUseCase,
	logger *zap.Logger,
) *ConversionUseCase {
	return &ConversionUseCase{
		convRepo:    convRepo,
		fileStorage: fileStorage,
		queue:       queue,
		inspector:   inspector,
		processor:   processor,
		logger:      logger,
	}
}

// Create создаёт задачу конвертации и ставит её в очередь
func (uc *ConversionUseCase) Create(ctx context.Context, input CreateConversionInput) (*domain.Conversion, error) {
	data, contentType, err := uc.readSource(input)
	if err != nil {
		return nil, err
	}

	// Проверяем структуру PDF до постановки в очередь
	info, err := uc.inspector.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}

	conversion, err := uc.storeSource(ctx, input.FileName, data, contentType, info.PageCount)
	if err != nil {
		return nil, err
	}

	// Добавляем задачу в очередь
	if err := uc.queue.Enqueue(ctx, conversion.ID); err != nil {
		uc.logger.Error("Failed to enqueue conversion",
			zap.String("conversion_id", conversion.ID.String()),
			zap.Error(err),
		)
		// Не возвращаем ошибку — задача создана, можно retry позже
	}

	uc.logger.Info("Conversion created successfully",
		zap.String("conversion_id", conversion.ID.String()),
		zap.String("file_name", input.FileName),
		zap.Int("page_count", info.PageCount),
	)

	return conversion, nil
}

// Convert конвертирует исходник синхронно: задача регистрируется, итог возвращается сразу.
// Сбой конвейера не считается ошибкой вызова и отражается в результате.
func (uc *ConversionUseCase) Convert(ctx context.Context, input CreateConversionInput) (domain.ConversionResult, *domain.Conversion, error) {
	data, contentType, err := uc.readSource(input)
	if err != nil {
		return domain.ConversionResult{}, nil, err
	}

	conversion, err := uc.storeSource(ctx, input.FileName, data, contentType, 0)
	if err != nil {
		return domain.ConversionResult{}, nil, err
	}

	result, err := uc.processor.ConvertStored(ctx, conversion, data)
	if err != nil {
		return domain.ConversionResult{}, nil, err
	}

	uc.logger.Info("Synchronous conversion finished",
		zap.String("conversion_id", conversion.ID.String()),
		zap.Bool("failed", result.Failed()),
	)

	return result, conversion, nil
}

// GetByID возвращает задачу по ID
func (uc *ConversionUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversion, error) {
	conversion, err := uc.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return conversion, nil
}

// List возвращает список задач
func (uc *ConversionUseCase) List(ctx context.Context, filter domain.ConversionFilter, pagination domain.Pagination) (*domain.ConversionListResult, error) {
	return uc.convRepo.List(ctx, filter, pagination)
}

// Delete удаляет задачу вместе с исходником и результатами
func (uc *ConversionUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	// Получаем задачу
	conversion, err := uc.convRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Удаляем объекты из S3, отсутствие любого из них не мешает удалению
	for _, fileKey := range []string{conversion.SourceKey, conversion.ImageKey, conversion.ThumbnailKey} {
		if fileKey == "" {
			continue
		}
		if err := uc.fileStorage.Delete(ctx, fileKey); err != nil {
			uc.logger.Warn("Failed to delete file from storage",
				zap.String("conversion_id", id.String()),
				zap.String("file_key", fileKey),
				zap.Error(err),
			)
			// Продолжаем удаление задачи
		}
	}

	// Удаляем задачу из БД
	if err := uc.convRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversion: %w", err)
	}

	uc.logger.Info("Conversion deleted successfully",
		zap.String("conversion_id", id.String()),
	)

	return nil
}

// ImageURL возвращает временную ссылку на готовый PNG
func (uc *ConversionUseCase) ImageURL(ctx context.Context, conversion *domain.Conversion) (string, error) {
	if !conversion.HasImage() {
		return "", domain.ErrImageNotReady
	}
	return uc.fileStorage.GetURL(ctx, conversion.ImageKey)
}

// ThumbnailURL возвращает временную ссылку на миниатюру
func (uc *ConversionUseCase) ThumbnailURL(ctx context.Context, conversion *domain.Conversion) (string, error) {
	if !conversion.HasThumbnail() {
		return "", domain.ErrImageNotReady
	}
	return uc.fileStorage.GetURL(ctx, conversion.ThumbnailKey)
}

// OpenImage открывает готовый PNG для отдачи клиенту
func (uc *ConversionUseCase) OpenImage(ctx context.Context, id uuid.UUID) (*domain.Conversion, io.ReadCloser, error) {
	conversion, err := uc.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !conversion.HasImage() {
		return nil, nil, domain.ErrImageNotReady
	}

	reader, err := uc.fileStorage.Download(ctx, conversion.ImageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download image: %w", err)
	}
	return conversion, reader, nil
}

// OpenThumbnail открывает миниатюру для отдачи клиенту
func (uc *ConversionUseCase) OpenThumbnail(ctx context.Context, id uuid.UUID) (*domain.Conversion, io.ReadCloser, error) {
	conversion, err := uc.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !conversion.HasThumbnail() {
		return nil, nil, domain.ErrImageNotReady
	}

	reader, err := uc.fileStorage.Download(ctx, conversion.ThumbnailKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download thumbnail: %w", err)
	}
	return conversion, reader, nil
}

// readSource вычитывает исходник в память и валидирует его тип
func (uc *ConversionUseCase) readSource(input CreateConversionInput) ([]byte, string, error) {
	contentType := input.ContentType
	if contentType == "" {
		// Пытаемся определить по расширению
		ct, err := domain.ContentTypeFromFileName(input.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("validation error: %w", err)
		}
		contentType = ct
	}

	// Валидируем тип файла
	if err := domain.ValidateContentType(contentType); err != nil {
		return nil, "", fmt.Errorf("validation error: %w", err)
	}

	data, err := io.ReadAll(input.FileReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("validation error: %w", domain.ErrEmptyFile)
	}

	return data, contentType, nil
}

// storeSource загружает исходник в S3 и регистрирует задачу в БД
func (uc *ConversionUseCase) storeSource(ctx context.Context, fileName string, data []byte, contentType string, pageCount int) (*domain.Conversion, error) {
	// Загружаем файл в S3
	fileKey, err := uc.fileStorage.Upload(ctx, fileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		uc.logger.Error("Failed to upload file to storage",
			zap.String("file_name", fileName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	uc.logger.Debug("File uploaded to storage",
		zap.String("file_key", fileKey),
		zap.String("file_name", fileName),
	)

	// Создаём задачу
	conversion, err := domain.NewConversion(fileKey, fileName, contentType, int64(len(data)), pageCount)
	if err != nil {
		// Удаляем загруженный файл при ошибке
		_ = uc.fileStorage.Delete(ctx, fileKey)
		return nil, fmt.Errorf("failed to create conversion: %w", err)
	}

	// Сохраняем задачу в БД
	if err := uc.convRepo.Create(ctx, conversion); err != nil {
		// Удаляем загруженный файл при ошибке
		_ = uc.fileStorage.Delete(ctx, fileKey)
		uc.logger.Error("Failed to save conversion to database",
			zap.String("conversion_id", conversion.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save conversion: %w", err)
	}

	return conversion, nil
}
