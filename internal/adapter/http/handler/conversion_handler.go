package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/plastinin/pdfpreview/internal/adapter/http/dto"
	"github.com/plastinin/pdfpreview/internal/domain"
	"github.com/plastinin/pdfpreview/internal/usecase"
	"go.uber.org/zap"
)

// ConversionHandler обработчик HTTP запросов для задач конвертации
type ConversionHandler struct {
	conversionUC  *usecase.ConversionUseCase
	maxUploadSize int64
	logger        *zap.Logger
}

// NewConversionHandler создаёт новый ConversionHandler
func NewConversionHandler(conversionUC *usecase.ConversionUseCase, maxUploadSize int64, logger *zap.Logger) *ConversionHandler {
	return &ConversionHandler{
		conversionUC:  conversionUC,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Convert конвертирует PDF синхронно, итог приходит в теле ответа
// POST /api/v1/convert
// Content-Type: multipart/form-data
// - file: исходный PDF
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	input, file, ok := h.uploadInput(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, conversion, err := h.conversionUC.Convert(r.Context(), input)
	if err != nil {
		h.logger.Error("Failed to convert file", zap.Error(err))

		if errors.Is(err, domain.ErrUnsupportedFileType) {
			h.respondError(w, http.StatusBadRequest, "invalid_file_type", "Unsupported file type. Supported: PDF")
			return
		}
		if errors.Is(err, domain.ErrEmptyFile) {
			h.respondError(w, http.StatusBadRequest, "empty_file", "File is empty")
			return
		}

		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to convert file")
		return
	}

	// Сбой конвейера не является ошибкой HTTP: итог в теле ответа
	h.respondJSON(w, http.StatusOK, dto.ConvertResultFromDomain(result, conversion.ID.String()))
}

// Create создаёт задачу конвертации для фоновой обработки
// POST /api/v1/conversions
// Content-Type: multipart/form-data
// - file: исходный PDF
func (h *ConversionHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, file, ok := h.uploadInput(w, r)
	if !ok {
		return
	}
	defer file.Close()

	conversion, err := h.conversionUC.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create conversion", zap.Error(err))

		if errors.Is(err, domain.ErrUnsupportedFileType) {
			h.respondError(w, http.StatusBadRequest, "invalid_file_type", "Unsupported file type. Supported: PDF")
			return
		}
		if errors.Is(err, domain.ErrEmptyFile) {
			h.respondError(w, http.StatusBadRequest, "empty_file", "File is empty")
			return
		}
		if errors.Is(err, domain.ErrInvalidPDF) {
			h.respondError(w, http.StatusBadRequest, "invalid_pdf", "File is not a valid PDF document")
			return
		}

		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create conversion")
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.ConversionFromDomain(conversion))
}

// GetByID возвращает задачу по ID вместе с временными ссылками на результаты
// GET /api/v1/conversions/{id}
func (h *ConversionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_id", "Invalid conversion ID format")
		return
	}

	conversion, err := h.conversionUC.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrConversionNotFound) {
			h.respondError(w, http.StatusNotFound, "not_found", "Conversion not found")
			return
		}
		h.logger.Error("Failed to get conversion", zap.String("conversion_id", idStr), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to get conversion")
		return
	}

	resp := dto.ConversionFromDomain(conversion)
	h.attachURLs(r, conversion, resp)

	h.respondJSON(w, http.StatusOK, resp)
}

// List возвращает список задач конвертации
// GET /api/v1/conversions?page=1&page_size=20&status=pending
func (h *ConversionHandler) List(w http.ResponseWriter, r *http.Request) {
	// Парсим параметры пагинации
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	pagination := domain.NewPagination(page, pageSize)

	// Парсим фильтры
	filter := domain.ConversionFilter{}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.ConversionStatus(statusStr)
		if status.IsValid() {
			filter.Status = &status
		}
	}

	result, err := h.conversionUC.List(r.Context(), filter, pagination)
	if err != nil {
		h.logger.Error("Failed to list conversions", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to list conversions")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.ConversionListFromDomain(result))
}

// Delete удаляет задачу вместе с её файлами
// DELETE /api/v1/conversions/{id}
func (h *ConversionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_id", "Invalid conversion ID format")
		return
	}

	err = h.conversionUC.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrConversionNotFound) {
			h.respondError(w, http.StatusNotFound, "not_found", "Conversion not found")
			return
		}
		h.logger.Error("Failed to delete conversion", zap.String("conversion_id", idStr), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to delete conversion")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Image отдаёт готовый PNG
// GET /api/v1/conversions/{id}/image
func (h *ConversionHandler) Image(w http.ResponseWriter, r *http.Request) {
	h.streamFile(w, r, h.conversionUC.OpenImage, func(conversion *domain.Conversion) string {
		return conversion.ImageName
	})
}

// Thumbnail отдаёт миниатюру
// GET /api/v1/conversions/{id}/thumbnail
func (h *ConversionHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.streamFile(w, r, h.conversionUC.OpenThumbnail, func(conversion *domain.Conversion) string {
		return domain.ThumbnailFileName(conversion.SourceName)
	})
}

// streamFile отдаёт файл задачи из хранилища
func (h *ConversionHandler) streamFile(
	w http.ResponseWriter,
	r *http.Request,
	open func(ctx context.Context, id uuid.UUID) (*domain.Conversion, io.ReadCloser, error),
	fileName func(conversion *domain.Conversion) string,
) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_id", "Invalid conversion ID format")
		return
	}

	conversion, reader, err := open(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConversionNotFound):
			h.respondError(w, http.StatusNotFound, "not_found", "Conversion not found")
		case errors.Is(err, domain.ErrImageNotReady):
			h.respondError(w, http.StatusConflict, "not_ready", "Conversion result is not ready")
		default:
			h.logger.Error("Failed to open conversion file", zap.String("conversion_id", idStr), zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to open conversion file")
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", domain.ContentTypePNG)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fileName(conversion)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("Failed to stream conversion file",
			zap.String("conversion_id", idStr),
			zap.Error(err),
		)
	}
}

// uploadInput разбирает multipart форму и возвращает входные данные конвертации.
// При ошибке пишет ответ сам и возвращает ok=false.
func (h *ConversionHandler) uploadInput(w http.ResponseWriter, r *http.Request) (usecase.CreateConversionInput, multipart.File, bool) {
	// Ограничиваем размер загрузки
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	// Парсим multipart форму
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.logger.Warn("Failed to parse multipart form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form data")
		return usecase.CreateConversionInput{}, nil, false
	}

	// Получаем файл
	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn("Failed to get file from form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "file_required", "File is required")
		return usecase.CreateConversionInput{}, nil, false
	}

	// Определяем content type
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		// Пытаемся определить по расширению
		ct, err := domain.ContentTypeFromFileName(header.Filename)
		if err != nil {
			file.Close()
			h.respondError(w, http.StatusBadRequest, "invalid_file_type", "Unsupported file type. Supported: PDF")
			return usecase.CreateConversionInput{}, nil, false
		}
		contentType = ct
	}

	// Валидируем тип файла
	if err := domain.ValidateContentType(contentType); err != nil {
		file.Close()
		h.respondError(w, http.StatusBadRequest, "invalid_file_type", "Unsupported file type. Supported: PDF")
		return usecase.CreateConversionInput{}, nil, false
	}

	input := usecase.CreateConversionInput{
		FileName:    header.Filename,
		ContentType: contentType,
		FileSize:    header.Size,
		FileReader:  file,
	}
	return input, file, true
}

// respondJSON отправляет JSON ответ
func (h *ConversionHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError отправляет ответ с ошибкой
func (h *ConversionHandler) respondError(w http.ResponseWriter, status int, errCode string, message string) {
	h.respondJSON(w, status, dto.NewErrorResponse(errCode, message))
}

// attachURLs добавляет в ответ временные ссылки на результаты
func (h *ConversionHandler) attachURLs(r *http.Request, conversion *domain.Conversion, resp *dto.ConversionResponse) {
	if conversion.HasImage() {
		url, err := h.conversionUC.ImageURL(r.Context(), conversion)
		if err != nil {
			h.logger.Warn("Failed to presign image URL",
				zap.String("conversion_id", conversion.ID.String()),
				zap.Error(err),
			)
		} else {
			resp.ImageURL = url
		}
	}

	if conversion.HasThumbnail() {
		url, err := h.conversionUC.ThumbnailURL(r.Context(), conversion)
		if err != nil {
			h.logger.Warn("Failed to presign thumbnail URL",
				zap.String("conversion_id", conversion.ID.String()),
				zap.Error(err),
			)
		} else {
			resp.ThumbnailURL = url
		}
	}
}
