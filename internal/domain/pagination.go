package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination параметры пагинации
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination создаёт параметры пагинации с валидацией
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

// Offset возвращает смещение для SQL запроса
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit возвращает лимит для SQL запроса
func (p Pagination) Limit() int {
	return p.PageSize
}

// ConversionFilter фильтры для списка задач конвертации
type ConversionFilter struct {
	Status *ConversionStatus `json:"status,omitempty"`
}

// ConversionListResult результат запроса списка задач конвертации
type ConversionListResult struct {
	Conversions []*Conversion `json:"conversions"`
	Total       int           `json:"total"`
	Pagination  Pagination    `json:"pagination"`
}
