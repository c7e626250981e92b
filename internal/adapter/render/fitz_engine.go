package render

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Проверка реализации интерфейсов на этапе компиляции
var (
	_ Engine   = (*FitzEngine)(nil)
	_ Document = (*fitzDocument)(nil)
)

// FitzEngine движок рендеринга на основе MuPDF (CGo)
type FitzEngine struct{}

// NewFitzEngine создаёт движок MuPDF
func NewFitzEngine() (*FitzEngine, error) {
	return &FitzEngine{}, nil
}

func (e *FitzEngine) OpenDocument(_ context.Context, data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

func (e *FitzEngine) Close() error {
	return nil
}

// fitzDocument документ, открытый MuPDF
type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPage(_ context.Context, page int, scale float64) (image.Image, error) {
	// MuPDF нумерует страницы с нуля
	img, err := d.doc.ImageDPI(page-1, scaleToDPI(scale))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
