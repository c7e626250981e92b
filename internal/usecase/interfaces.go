package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/plastinin/pdfpreview/internal/domain"
)

// ConversionRepository интерфейс для работы с хранилищем задач конвертации
type ConversionRepository interface {
	Create(ctx context.Context, conversion *domain.Conversion) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversion, error)
	Update(ctx context.Context, conversion *domain.Conversion) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.ConversionFilter, pagination domain.Pagination) (*domain.ConversionListResult, error)
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Conversion, error)
}

// FileStorage интерфейс для работы с файловым хранилищем (S3)
type FileStorage interface {
	Upload(ctx context.Context, fileName string, contentType string, reader io.Reader, size int64) (fileKey string, err error)
	Store(ctx context.Context, fileKey string, contentType string, reader io.Reader, size int64) error
	Download(ctx context.Context, fileKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, fileKey string) error
	GetURL(ctx context.Context, fileKey string) (string, error)
}

// PageRenderer интерфейс растеризации первой страницы PDF в PNG
type PageRenderer interface {
	Convert(ctx context.Context, sourceName string, data []byte) (*domain.RenderedPage, error)
}

// SourceInspector интерфейс предварительной проверки исходного PDF
type SourceInspector interface {
	Inspect(data []byte) (*domain.SourceInfo, error)
}

// ConversionQueue интерфейс для работы с очередью задач
type ConversionQueue interface {
	Enqueue(ctx context.Context, conversionID uuid.UUID) error
}
