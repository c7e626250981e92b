package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/plastinin/pdfpreview/internal/domain"
)

// Converter конвертирует первую страницу PDF в PNG с фиксированным масштабом
type Converter struct {
	loader *Loader
	logger *zap.Logger
	// Подменяется в тестах для проверки ветки сбоя кодирования
	encodePNG func(w io.Writer, img image.Image) error
}

// NewConverter создаёт конвертер поверх загрузчика движка
func NewConverter(loader *Loader, logger *zap.Logger) *Converter {
	return &Converter{
		loader:    loader,
		logger:    logger,
		encodePNG: encodePNG,
	}
}

// Convert выполняет конвейер: движок, документ, первая страница, PNG.
// Все сбои возвращаются как *domain.ConversionError с видом этапа.
func (c *Converter) Convert(ctx context.Context, sourceName string, data []byte) (*domain.RenderedPage, error) {
	if len(data) == 0 {
		return nil, domain.NewDecodeError(domain.ErrEmptyFile)
	}

	engine, err := c.loader.Engine(ctx)
	if err != nil {
		return nil, domain.NewLoadError(err)
	}

	doc, err := engine.OpenDocument(ctx, data)
	if err != nil {
		return nil, domain.NewDecodeError(err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			c.logger.Warn("failed to close document", zap.Error(err))
		}
	}()

	pageCount := doc.PageCount()
	if pageCount < 1 {
		return nil, domain.NewDecodeError(domain.ErrDocumentHasNoPages)
	}

	img, err := doc.RenderPage(ctx, 1, RenderScale)
	if err != nil {
		return nil, domain.NewRenderError(err)
	}

	var buf bytes.Buffer
	if err := c.encodePNG(&buf, img); err != nil {
		return nil, domain.NewEncodeError(err)
	}
	if buf.Len() == 0 {
		return nil, domain.NewEncodeError(errors.New("encoder produced no data"))
	}

	bounds := img.Bounds()
	out := &domain.RenderedPage{
		Image: &domain.File{
			Name:        domain.OutputFileName(sourceName),
			ContentType: domain.ContentTypePNG,
			Data:        buf.Bytes(),
		},
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		PageCount: pageCount,
	}

	// Миниатюра не критична: при сбое остаётся полноразмерный PNG
	thumb, err := c.thumbnail(img, sourceName)
	if err != nil {
		c.logger.Warn("failed to build thumbnail",
			zap.String("file_name", sourceName),
			zap.Error(err),
		)
	} else {
		out.Thumbnail = thumb
	}

	return out, nil
}

// thumbnail строит уменьшенную копию страницы с интерполяцией Ланцоша
func (c *Converter) thumbnail(img image.Image, sourceName string) (*domain.File, error) {
	fitted := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := c.encodePNG(&buf, fitted); err != nil {
		return nil, err
	}
	return &domain.File{
		Name:        domain.ThumbnailFileName(sourceName),
		ContentType: domain.ContentTypePNG,
		Data:        buf.Bytes(),
	}, nil
}

// encodePNG кодирует изображение в PNG без потерь
func encodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}
