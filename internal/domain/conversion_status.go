package domain

// ConversionStatus представляет статус задачи конвертации
type ConversionStatus string

const (
	ConversionStatusPending    ConversionStatus = "pending"    // Задача создана, ожидает обработки
	ConversionStatusProcessing ConversionStatus = "processing" // Задача в обработке
	ConversionStatusCompleted  ConversionStatus = "completed"  // PNG получен и сохранён
	ConversionStatusFailed     ConversionStatus = "failed"     // Конвертация завершилась с ошибкой
)

// IsValid проверяет валидность статуса
func (s ConversionStatus) IsValid() bool {
	switch s {
	case ConversionStatusPending, ConversionStatusProcessing, ConversionStatusCompleted, ConversionStatusFailed:
		return true
	}
	return false
}

// IsFinal проверяет, является ли статус финальным
func (s ConversionStatus) IsFinal() bool {
	return s == ConversionStatusCompleted || s == ConversionStatusFailed
}

func (s ConversionStatus) String() string {
	return string(s)
}
