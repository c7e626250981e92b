package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversion(t *testing.T) {
	conversion, err := NewConversion("uploads/2025/abc.pdf", "report.pdf", ContentTypePDF, 1024, 3)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, conversion.ID)
	assert.Equal(t, ConversionStatusPending, conversion.Status)
	assert.Equal(t, "uploads/2025/abc.pdf", conversion.SourceKey)
	assert.Equal(t, "report.pdf", conversion.SourceName)
	assert.Equal(t, ContentTypePDF, conversion.ContentType)
	assert.Equal(t, int64(1024), conversion.SourceSize)
	assert.Equal(t, 3, conversion.PageCount)
	assert.False(t, conversion.CreatedAt.IsZero())
	assert.False(t, conversion.UpdatedAt.IsZero())
	assert.Nil(t, conversion.CompletedAt)
}

func TestNewConversionValidation(t *testing.T) {
	_, err := NewConversion("", "report.pdf", ContentTypePDF, 1024, 1)
	assert.ErrorIs(t, err, ErrEmptySourceKey)

	_, err = NewConversion("uploads/abc.pdf", "", ContentTypePDF, 1024, 1)
	assert.ErrorIs(t, err, ErrEmptySourceName)
}

func TestMarkProcessing(t *testing.T) {
	conversion := newTestConversion(t)

	require.NoError(t, conversion.MarkProcessing())
	assert.Equal(t, ConversionStatusProcessing, conversion.Status)

	// Повторный переход из processing невозможен
	assert.ErrorIs(t, conversion.MarkProcessing(), ErrInvalidConversionStatus)
}

func TestMarkCompleted(t *testing.T) {
	conversion := newTestConversion(t)
	require.NoError(t, conversion.MarkProcessing())

	err := conversion.MarkCompleted("results/id/report.png", "report.png", "results/id/thumb_report.png", 2448, 3168)
	require.NoError(t, err)

	assert.Equal(t, ConversionStatusCompleted, conversion.Status)
	assert.Equal(t, "results/id/report.png", conversion.ImageKey)
	assert.Equal(t, "report.png", conversion.ImageName)
	assert.Equal(t, "results/id/thumb_report.png", conversion.ThumbnailKey)
	assert.Equal(t, 2448, conversion.Width)
	assert.Equal(t, 3168, conversion.Height)
	assert.Empty(t, conversion.Error)
	require.NotNil(t, conversion.CompletedAt)
	assert.True(t, conversion.HasImage())
	assert.True(t, conversion.HasThumbnail())
}

func TestMarkCompletedValidation(t *testing.T) {
	// Из pending завершить нельзя
	conversion := newTestConversion(t)
	err := conversion.MarkCompleted("results/id/report.png", "report.png", "", 100, 100)
	assert.ErrorIs(t, err, ErrInvalidConversionStatus)

	// Успех без ключа изображения невозможен
	conversion = newTestConversion(t)
	require.NoError(t, conversion.MarkProcessing())
	err = conversion.MarkCompleted("", "report.png", "", 100, 100)
	assert.ErrorIs(t, err, ErrIncompleteConversionImage)
}

func TestMarkFailed(t *testing.T) {
	conversion := newTestConversion(t)
	require.NoError(t, conversion.MarkProcessing())

	err := conversion.MarkFailed("Failed to convert PDF: Invalid PDF structure")
	require.NoError(t, err)

	assert.Equal(t, ConversionStatusFailed, conversion.Status)
	assert.Equal(t, "Failed to convert PDF: Invalid PDF structure", conversion.Error)
	require.NotNil(t, conversion.CompletedAt)
	assert.False(t, conversion.HasImage())
}

func TestMarkFailedFromPending(t *testing.T) {
	conversion := newTestConversion(t)
	assert.NoError(t, conversion.MarkFailed("Failed to convert PDF: source is gone"))
	assert.Equal(t, ConversionStatusFailed, conversion.Status)
}

func TestMarkFailedClearsImage(t *testing.T) {
	conversion := newTestConversion(t)
	require.NoError(t, conversion.MarkProcessing())
	require.NoError(t, conversion.MarkCompleted("results/id/report.png", "report.png", "results/id/thumb_report.png", 100, 200))

	// Финальный статус менять нельзя
	assert.ErrorIs(t, conversion.MarkFailed("late failure"), ErrInvalidConversionStatus)

	// Из processing поля результата зачищаются
	conversion = newTestConversion(t)
	require.NoError(t, conversion.MarkProcessing())
	conversion.ImageKey = "results/id/report.png"
	conversion.ImageName = "report.png"
	conversion.ThumbnailKey = "results/id/thumb_report.png"
	conversion.Width = 100
	conversion.Height = 200

	require.NoError(t, conversion.MarkFailed("Failed to create image blob"))
	assert.Empty(t, conversion.ImageKey)
	assert.Empty(t, conversion.ImageName)
	assert.Empty(t, conversion.ThumbnailKey)
	assert.Zero(t, conversion.Width)
	assert.Zero(t, conversion.Height)
}

func TestMarkFailedRequiresReason(t *testing.T) {
	conversion := newTestConversion(t)
	require.NoError(t, conversion.MarkProcessing())
	assert.ErrorIs(t, conversion.MarkFailed(""), ErrEmptyFailureReason)
}

func TestConversionStatus(t *testing.T) {
	tests := []struct {
		status  ConversionStatus
		isValid bool
		isFinal bool
	}{
		{status: ConversionStatusPending, isValid: true, isFinal: false},
		{status: ConversionStatusProcessing, isValid: true, isFinal: false},
		{status: ConversionStatusCompleted, isValid: true, isFinal: true},
		{status: ConversionStatusFailed, isValid: true, isFinal: true},
		{status: ConversionStatus("archived"), isValid: false, isFinal: false},
		{status: ConversionStatus(""), isValid: false, isFinal: false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
			assert.Equal(t, tt.isFinal, tt.status.IsFinal())
		})
	}
}

func newTestConversion(t *testing.T) *Conversion {
	t.Helper()
	conversion, err := NewConversion("uploads/2025/abc.pdf", "report.pdf", ContentTypePDF, 1024, 1)
	require.NoError(t, err)
	return conversion
}
