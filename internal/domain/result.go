package domain

// ErrorKind вид сбоя конвертации
type ErrorKind string

const (
	ErrorKindLoad    ErrorKind = "load"    // Движок рендеринга не инициализировался
	ErrorKindDecode  ErrorKind = "decode"  // Байты не являются валидным PDF или нет первой страницы
	ErrorKindRender  ErrorKind = "render"  // Движок упал при растеризации страницы
	ErrorKindEncode  ErrorKind = "encode"  // Кодирование PNG не дало данных
	ErrorKindStorage ErrorKind = "storage" // Хранилище не отдало исходник или не приняло результат
)

// Тексты ошибок, которые видят клиенты
const (
	encodeFailureText  = "Failed to create image blob"
	convertFailurePref = "Failed to convert PDF: "
)

// ConversionError ошибка конвертации с сохранением вида сбоя.
// Error возвращает плоский текст для клиента, вид и причина остаются доступными.
type ConversionError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Kind == ErrorKindEncode {
		return encodeFailureText
	}
	if e.Cause == nil {
		return convertFailurePref + "unknown error"
	}
	return convertFailurePref + e.Cause.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// NewLoadError ошибка инициализации движка рендеринга
func NewLoadError(cause error) *ConversionError {
	return &ConversionError{Kind: ErrorKindLoad, Cause: cause}
}

// NewDecodeError ошибка разбора PDF
func NewDecodeError(cause error) *ConversionError {
	return &ConversionError{Kind: ErrorKindDecode, Cause: cause}
}

// NewRenderError ошибка растеризации страницы
func NewRenderError(cause error) *ConversionError {
	return &ConversionError{Kind: ErrorKindRender, Cause: cause}
}

// NewEncodeError ошибка кодирования PNG
func NewEncodeError(cause error) *ConversionError {
	return &ConversionError{Kind: ErrorKindEncode, Cause: cause}
}

// NewStorageError ошибка обмена с файловым хранилищем
func NewStorageError(cause error) *ConversionError {
	return &ConversionError{Kind: ErrorKindStorage, Cause: cause}
}

// RenderedPage растеризованная первая страница документа
type RenderedPage struct {
	Image     *File // Полноразмерный PNG первой страницы
	Thumbnail *File // Миниатюра, nil если построить не удалось
	Width     int   // Ширина PNG в пикселях
	Height    int   // Высота PNG в пикселях
	PageCount int   // Число страниц исходного документа
}

// ConversionResult итог конвертации первой страницы PDF.
// После завершения заполнено ровно одно из двух: File при успехе, Err при сбое.
type ConversionResult struct {
	ImageURL string           `json:"image_url"`
	File     *File            `json:"file,omitempty"`
	Err      *ConversionError `json:"-"`
}

// Failed сообщает, завершилась ли конвертация ошибкой
func (r ConversionResult) Failed() bool {
	return r.Err != nil
}

// ErrorText возвращает текст ошибки для клиента, пустую строку при успехе
func (r ConversionResult) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
