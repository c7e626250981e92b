package domain

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file is empty")
	ErrInvalidPDF          = errors.New("invalid PDF document")
	ErrDocumentHasNoPages  = errors.New("PDF has no pages")
)

// MIME типы, с которыми работает сервис
const (
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"
)

// File сконвертированный файл в памяти
type File struct {
	Name        string // Имя файла с расширением
	ContentType string // MIME тип содержимого
	Data        []byte // Байты файла
}

// SourceInfo сведения об исходном PDF документе
type SourceInfo struct {
	PageCount int     // Число страниц
	Width     float64 // Ширина первой страницы в пунктах
	Height    float64 // Высота первой страницы в пунктах
}

// Size возвращает размер файла в байтах
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// OutputFileName возвращает имя выходного PNG для исходного имени файла.
// Последнее расширение заменяется на .png, имя без расширения получает .png.
func OutputFileName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// ThumbnailFileName возвращает имя миниатюры для исходного имени файла
func ThumbnailFileName(name string) string {
	return "thumb_" + OutputFileName(name)
}

// ValidateContentType проверяет, что тип файла поддерживается сервисом
func ValidateContentType(contentType string) error {
	if normalizeContentType(contentType) != ContentTypePDF {
		return ErrUnsupportedFileType
	}
	return nil
}

// ContentTypeFromFileName определяет MIME тип по имени файла
func ContentTypeFromFileName(fileName string) (string, error) {
	if strings.ToLower(filepath.Ext(fileName)) != ".pdf" {
		return "", ErrUnsupportedFileType
	}
	return ContentTypePDF, nil
}

// IsPDF проверяет, является ли файл PDF
func IsPDF(contentType string) bool {
	return normalizeContentType(contentType) == ContentTypePDF
}

// normalizeContentType убирает параметры типа charset и приводит к нижнему регистру
func normalizeContentType(contentType string) string {
	ct := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(ct))
}
