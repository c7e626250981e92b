package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Ошибки домена
var (
	ErrConversionNotFound        = errors.New("conversion not found")
	ErrInvalidConversionStatus   = errors.New("invalid conversion status transition")
	ErrEmptySourceKey            = errors.New("source key cannot be empty")
	ErrEmptySourceName           = errors.New("source name cannot be empty")
	ErrEmptyFailureReason        = errors.New("failure reason cannot be empty")
	ErrIncompleteConversionImage = errors.New("completed conversion requires an image key")
	ErrImageNotReady             = errors.New("conversion image is not ready")
)

// Conversion представляет задачу конвертации первой страницы PDF в PNG
type Conversion struct {
	ID           uuid.UUID        `json:"id"`
	Status       ConversionStatus `json:"status"`
	SourceKey    string           `json:"source_key"`                // Ключ исходного PDF в S3
	SourceName   string           `json:"source_name"`               // Оригинальное имя файла
	ContentType  string           `json:"content_type"`              // MIME тип исходника
	SourceSize   int64            `json:"source_size"`               // Размер исходника в байтах
	PageCount    int              `json:"page_count"`                // Число страниц в исходном PDF
	ImageKey     string           `json:"image_key,omitempty"`       // Ключ PNG в S3
	ImageName    string           `json:"image_name,omitempty"`      // Имя выходного PNG
	ThumbnailKey string           `json:"thumbnail_key,omitempty"`   // Ключ миниатюры в S3
	Width        int              `json:"width,omitempty"`           // Ширина результата в пикселях
	Height       int              `json:"height,omitempty"`          // Высота результата в пикселях
	Error        string           `json:"error,omitempty"`           // Текст ошибки (если failed)
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// NewConversion создаёт новую задачу конвертации
func NewConversion(sourceKey, sourceName, contentType string, sourceSize int64, pageCount int) (*Conversion, error) {
	if sourceKey == "" {
		return nil, ErrEmptySourceKey
	}
	if sourceName == "" {
		return nil, ErrEmptySourceName
	}

	now := time.Now()

	return &Conversion{
		ID:          uuid.New(),
		Status:      ConversionStatusPending,
		SourceKey:   sourceKey,
		SourceName:  sourceName,
		ContentType: contentType,
		SourceSize:  sourceSize,
		PageCount:   pageCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkProcessing переводит задачу в статус "в обработке"
func (c *Conversion) MarkProcessing() error {
	if c.Status != ConversionStatusPending {
		return ErrInvalidConversionStatus
	}
	c.Status = ConversionStatusProcessing
	c.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted переводит задачу в статус "завершена" и сохраняет результат.
// Успешная задача всегда имеет ключ изображения и не имеет текста ошибки.
func (c *Conversion) MarkCompleted(imageKey, imageName, thumbnailKey string, width, height int) error {
	if c.Status != ConversionStatusProcessing {
		return ErrInvalidConversionStatus
	}
	if imageKey == "" {
		return ErrIncompleteConversionImage
	}
	now := time.Now()
	c.Status = ConversionStatusCompleted
	c.ImageKey = imageKey
	c.ImageName = imageName
	c.ThumbnailKey = thumbnailKey
	c.Width = width
	c.Height = height
	c.Error = ""
	c.UpdatedAt = now
	c.CompletedAt = &now
	return nil
}

// MarkFailed переводит задачу в статус "ошибка".
// Неуспешная задача всегда имеет непустой текст ошибки и не имеет изображения.
func (c *Conversion) MarkFailed(reason string) error {
	if c.Status != ConversionStatusProcessing && c.Status != ConversionStatusPending {
		return ErrInvalidConversionStatus
	}
	if reason == "" {
		return ErrEmptyFailureReason
	}
	now := time.Now()
	c.Status = ConversionStatusFailed
	c.ImageKey = ""
	c.ImageName = ""
	c.ThumbnailKey = ""
	c.Width = 0
	c.Height = 0
	c.Error = reason
	c.UpdatedAt = now
	c.CompletedAt = &now
	return nil
}

// HasImage сообщает, есть ли у задачи сохранённый результат
func (c *Conversion) HasImage() bool {
	return c.Status == ConversionStatusCompleted && c.ImageKey != ""
}

// HasThumbnail сообщает, есть ли у задачи сохранённая миниатюра
func (c *Conversion) HasThumbnail() bool {
	return c.Status == ConversionStatusCompleted && c.ThumbnailKey != ""
}
