package dto

import (
	"time"

	"github.com/plastinin/pdfpreview/internal/domain"
)

// ConversionResponse ответ с информацией о задаче конвертации
type ConversionResponse struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	SourceName   string     `json:"source_name"`
	ContentType  string     `json:"content_type"`
	SourceSize   int64      `json:"source_size"`
	PageCount    int        `json:"page_count,omitempty"`
	ImageName    string     `json:"image_name,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Width        int        `json:"width,omitempty"`
	Height       int        `json:"height,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ConversionFromDomain конвертирует доменную модель в DTO.
// Временные ссылки на результаты заполняет обработчик.
func ConversionFromDomain(conversion *domain.Conversion) *ConversionResponse {
	return &ConversionResponse{
		ID:          conversion.ID.String(),
		Status:      conversion.Status.String(),
		SourceName:  conversion.SourceName,
		ContentType: conversion.ContentType,
		SourceSize:  conversion.SourceSize,
		PageCount:   conversion.PageCount,
		ImageName:   conversion.ImageName,
		Width:       conversion.Width,
		Height:      conversion.Height,
		Error:       conversion.Error,
		CreatedAt:   conversion.CreatedAt,
		UpdatedAt:   conversion.UpdatedAt,
		CompletedAt: conversion.CompletedAt,
	}
}

// ConversionListResponse ответ со списком задач конвертации
type ConversionListResponse struct {
	Conversions []*ConversionResponse `json:"conversions"`
	Total       int                   `json:"total"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	TotalPages  int                   `json:"total_pages"`
}

// ConversionListFromDomain конвертирует результат списка в DTO
func ConversionListFromDomain(result *domain.ConversionListResult) *ConversionListResponse {
	conversions := make([]*ConversionResponse, len(result.Conversions))
	for i, conversion := range result.Conversions {
		conversions[i] = ConversionFromDomain(conversion)
	}

	totalPages := result.Total / result.Pagination.PageSize
	if result.Total%result.Pagination.PageSize > 0 {
		totalPages++
	}

	return &ConversionListResponse{
		Conversions: conversions,
		Total:       result.Total,
		Page:        result.Pagination.Page,
		PageSize:    result.Pagination.PageSize,
		TotalPages:  totalPages,
	}
}

// FileResponse метаданные результата конвертации
type FileResponse struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ConvertResponse итог синхронной конвертации.
// При успехе заполнены image_url и file, при сбое только error.
type ConvertResponse struct {
	ConversionID string        `json:"conversion_id"`
	ImageURL     string        `json:"image_url"`
	File         *FileResponse `json:"file,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// ConvertResultFromDomain конвертирует итог конвертации в DTO
func ConvertResultFromDomain(result domain.ConversionResult, conversionID string) *ConvertResponse {
	resp := &ConvertResponse{
		ConversionID: conversionID,
		ImageURL:     result.ImageURL,
		Error:        result.ErrorText(),
	}
	if result.File != nil {
		resp.File = &FileResponse{
			Name:        result.File.Name,
			ContentType: result.File.ContentType,
			Size:        result.File.Size(),
		}
	}
	return resp
}
