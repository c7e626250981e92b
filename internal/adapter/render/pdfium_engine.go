package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// Проверка реализации интерфейсов на этапе компиляции
var (
	_ Engine   = (*PdfiumEngine)(nil)
	_ Document = (*pdfiumDocument)(nil)
)

// PdfiumEngine движок рендеринга на основе PDFium поверх WebAssembly (без CGo).
// Пул с одним фоновым воркером создаётся при инициализации и живёт до Close.
type PdfiumEngine struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPdfiumEngine инициализирует пул PDFium и берёт из него воркер
func NewPdfiumEngine() (*PdfiumEngine, error) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init pdfium pool: %w", err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	return &PdfiumEngine{
		pool:     pool,
		instance: instance,
	}, nil
}

func (e *PdfiumEngine) OpenDocument(_ context.Context, data []byte) (Document, error) {
	doc, err := e.instance.OpenDocument(&requests.OpenDocument{
		File: &data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pageCount, err := e.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		_, _ = e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
			Document: doc.Document,
		})
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	return &pdfiumDocument{
		instance:  e.instance,
		document:  doc.Document,
		pageCount: pageCount.PageCount,
	}, nil
}

func (e *PdfiumEngine) Close() error {
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
	e.instance = nil
	return nil
}

// pdfiumDocument документ, открытый PDFium
type pdfiumDocument struct {
	instance  pdfium.Pdfium
	document  references.FPDF_DOCUMENT
	pageCount int
	// Освобождение буферов рендеринга откладывается до Close,
	// пока изображение ещё используется кодировщиком
	cleanups []func()
}

func (d *pdfiumDocument) PageCount() int {
	return d.pageCount
}

func (d *pdfiumDocument) RenderPage(_ context.Context, page int, scale float64) (image.Image, error) {
	pageRender, err := d.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: int(math.Round(scaleToDPI(scale))),
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: d.document,
				// PDFium нумерует страницы с нуля
				Index: page - 1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}

	d.cleanups = append(d.cleanups, pageRender.Cleanup)
	return pageRender.Result.Image, nil
}

func (d *pdfiumDocument) Close() error {
	for _, cleanup := range d.cleanups {
		cleanup()
	}
	d.cleanups = nil

	_, err := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: d.document,
	})
	if err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	return nil
}
