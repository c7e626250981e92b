package render

import (
	"context"
	"fmt"
	"image"
)

// Имена движков рендеринга для конфигурации
const (
	EnginePdfium = "pdfium"
	EngineFitz   = "fitz"
)

// Фиксированные параметры растеризации
const (
	// RenderScale масштаб первой страницы относительно её исходных размеров.
	// Рост масштаба увеличивает память и время пропорционально квадрату.
	RenderScale = 4.0
	// baseDPI внутреннее разрешение PDF в точках на дюйм
	baseDPI = 72.0
	// ThumbnailSize максимальный размер стороны миниатюры в пикселях
	ThumbnailSize = 512
)

// Engine минимальный интерфейс движка рендеринга PDF.
// Конкретная библиотека скрыта за ним и взаимозаменяема.
type Engine interface {
	// OpenDocument разбирает PDF из байтов в памяти
	OpenDocument(ctx context.Context, data []byte) (Document, error)
	// Close освобождает ресурсы движка
	Close() error
}

// Document открытый PDF документ
type Document interface {
	// PageCount возвращает число страниц документа
	PageCount() int
	// RenderPage растеризует страницу (нумерация с 1) с заданным масштабом
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)
	// Close освобождает ресурсы документа
	Close() error
}

// FactoryFor возвращает фабрику движка по имени из конфигурации
func FactoryFor(name string) (EngineFactory, error) {
	switch name {
	case EnginePdfium:
		return func() (Engine, error) { return NewPdfiumEngine() }, nil
	case EngineFitz:
		return func() (Engine, error) { return NewFitzEngine() }, nil
	default:
		return nil, fmt.Errorf("unknown render engine %q", name)
	}
}

// scaleToDPI переводит масштаб в DPI для движков с DPI-ориентированным API
func scaleToDPI(scale float64) float64 {
	return baseDPI * scale
}
