package inspect

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/plastinin/pdfpreview/internal/domain"
)

// PDFInspector проверяет исходный PDF до постановки в очередь конвертации.
// Битые и пустые документы отсеиваются на загрузке, а не в worker.
type PDFInspector struct {
	conf *model.Configuration
}

// NewPDFInspector создаёт инспектор с конфигурацией pdfcpu по умолчанию
func NewPDFInspector() *PDFInspector {
	return &PDFInspector{
		conf: model.NewDefaultConfiguration(),
	}
}

// Inspect разбирает PDF и возвращает число страниц и размеры первой страницы
func (i *PDFInspector) Inspect(data []byte) (*domain.SourceInfo, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), i.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("failed to validate PDF: %w", err)
	}
	if pdfCtx.PageCount < 1 {
		return nil, domain.ErrDocumentHasNoPages
	}

	info := &domain.SourceInfo{PageCount: pdfCtx.PageCount}

	// Размеры страниц не критичны: без них остаётся только число страниц
	if dims, err := pdfCtx.PageDims(); err == nil && len(dims) > 0 {
		info.Width = dims[0].Width
		info.Height = dims[0].Height
	}

	return info, nil
}
