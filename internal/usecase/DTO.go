package usecase

import (
	"io"
)

// CreateConversionInput входные данные для создания задачи конвертации.
// Используется и асинхронным, и синхронным путями.
type CreateConversionInput struct {
	FileName    string    // Имя файла
	ContentType string    // MIME тип
	FileSize    int64     // Размер файла
	FileReader  io.Reader // Содержимое файла
}
