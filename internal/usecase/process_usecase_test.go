package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plastinin/pdfpreview/internal/domain"
)

func newProcessFixture() (*fakeRepo, *fakeStorage, *fakeRenderer, *ProcessUseCase) {
	repo := newFakeRepo()
	storage := newFakeStorage()
	renderer := &fakeRenderer{}
	uc := NewProcessUseCase(repo, storage, renderer, zap.NewNop())
	return repo, storage, renderer, uc
}

// seedPendingConversion загружает исходник в хранилище и регистрирует задачу
func seedPendingConversion(t *testing.T, repo *fakeRepo, storage *fakeStorage, name string, data []byte) *domain.Conversion {
	t.Helper()
	fileKey, err := storage.Upload(context.Background(), name, domain.ContentTypePDF, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	conversion, err := domain.NewConversion(fileKey, name, domain.ContentTypePDF, int64(len(data)), 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), conversion))
	return conversion
}

func TestProcessConversionSuccess(t *testing.T) {
	repo, storage, renderer, uc := newProcessFixture()
	source := []byte("%PDF-1.4 fake source")
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", source)

	require.NoError(t, uc.ProcessConversion(context.Background(), conversion.ID))

	// Исходник дошёл до растеризатора без изменений
	assert.Equal(t, "report.pdf", renderer.gotName)
	assert.Equal(t, source, renderer.gotData)

	stored := repo.get(conversion.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.ConversionStatusCompleted, stored.Status)
	assert.Equal(t, "results/"+conversion.ID.String()+"/report.png", stored.ImageKey)
	assert.Equal(t, "report.png", stored.ImageName)
	assert.Equal(t, "results/"+conversion.ID.String()+"/thumb_report.png", stored.ThumbnailKey)
	assert.Equal(t, 2448, stored.Width)
	assert.Equal(t, 3168, stored.Height)
	assert.Equal(t, 1, stored.PageCount)
	assert.Empty(t, stored.Error)
	require.NotNil(t, stored.CompletedAt)

	// PNG и миниатюра сохранены в хранилище
	img, ok := storage.object(stored.ImageKey)
	require.True(t, ok)
	assert.Equal(t, []byte("png image bytes"), img)

	thumb, ok := storage.object(stored.ThumbnailKey)
	require.True(t, ok)
	assert.Equal(t, []byte("png thumbnail bytes"), thumb)
}

func TestProcessConversionSkipsFinalStatus(t *testing.T) {
	repo, storage, renderer, uc := newProcessFixture()
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", []byte("%PDF-1.4"))

	require.NoError(t, conversion.MarkProcessing())
	require.NoError(t, conversion.MarkCompleted("results/x/report.png", "report.png", "", 100, 200))
	require.NoError(t, repo.Update(context.Background(), conversion))

	// Повторная доставка финальной задачи не перезапускает конвейер
	require.NoError(t, uc.ProcessConversion(context.Background(), conversion.ID))
	assert.Zero(t, renderer.calls)
	assert.Equal(t, domain.ConversionStatusCompleted, repo.get(conversion.ID).Status)
}

func TestProcessConversionNotFound(t *testing.T) {
	_, _, _, uc := newProcessFixture()

	err := uc.ProcessConversion(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrConversionNotFound)
}

func TestProcessConversionDownloadFailure(t *testing.T) {
	repo, _, renderer, uc := newProcessFixture()

	// Задача есть, исходника в хранилище нет
	conversion, err := domain.NewConversion("uploads/1/gone.pdf", "gone.pdf", domain.ContentTypePDF, 10, 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), conversion))

	err = uc.ProcessConversion(context.Background(), conversion.ID)
	require.Error(t, err)
	assert.Zero(t, renderer.calls)

	stored := repo.get(conversion.ID)
	assert.Equal(t, domain.ConversionStatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "Failed to convert PDF: ")
	assert.Contains(t, stored.Error, "not found")
}

func TestProcessConversionPipelineFailure(t *testing.T) {
	repo, storage, renderer, uc := newProcessFixture()
	renderer.err = domain.NewDecodeError(errors.New("Invalid PDF structure"))
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", []byte("not a pdf"))

	err := uc.ProcessConversion(context.Background(), conversion.ID)
	require.Error(t, err)

	var convErr *domain.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, domain.ErrorKindDecode, convErr.Kind)

	stored := repo.get(conversion.ID)
	assert.Equal(t, domain.ConversionStatusFailed, stored.Status)
	assert.Equal(t, "Failed to convert PDF: Invalid PDF structure", stored.Error)
	assert.Empty(t, stored.ImageKey)

	// Повторная доставка после сбоя ничего не перезапускает: одна попытка
	require.NoError(t, uc.ProcessConversion(context.Background(), conversion.ID))
	assert.Equal(t, 1, renderer.calls)
}

func TestProcessConversionEncodeFailure(t *testing.T) {
	repo, storage, renderer, uc := newProcessFixture()
	renderer.err = domain.NewEncodeError(errors.New("encoder produced no data"))
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", []byte("%PDF-1.4"))

	err := uc.ProcessConversion(context.Background(), conversion.ID)
	require.Error(t, err)

	stored := repo.get(conversion.ID)
	assert.Equal(t, domain.ConversionStatusFailed, stored.Status)
	assert.Equal(t, "Failed to create image blob", stored.Error)
}

func TestConvertStoredSuccess(t *testing.T) {
	repo, storage, _, uc := newProcessFixture()
	source := []byte("%PDF-1.4 fake source")
	conversion := seedPendingConversion(t, repo, storage, "report.PDF", source)

	result, err := uc.ConvertStored(context.Background(), conversion, source)
	require.NoError(t, err)

	require.False(t, result.Failed())
	require.NotNil(t, result.File)
	assert.Equal(t, "report.png", result.File.Name)
	assert.Equal(t, domain.ContentTypePNG, result.File.ContentType)
	assert.Equal(t, "https://s3.local/results/"+conversion.ID.String()+"/report.png?signature=test", result.ImageURL)
	assert.Empty(t, result.ErrorText())

	assert.Equal(t, domain.ConversionStatusCompleted, repo.get(conversion.ID).Status)
}

func TestConvertStoredImageStoreFailure(t *testing.T) {
	repo, storage, _, uc := newProcessFixture()
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", []byte("%PDF-1.4"))
	storage.storeErr = errors.New("bucket unavailable")

	result, err := uc.ConvertStored(context.Background(), conversion, []byte("%PDF-1.4"))
	require.NoError(t, err)

	require.True(t, result.Failed())
	assert.Equal(t, domain.ErrorKindStorage, result.Err.Kind)
	assert.Equal(t, "Failed to convert PDF: bucket unavailable", result.ErrorText())
	assert.Nil(t, result.File)
	assert.Empty(t, result.ImageURL)

	assert.Equal(t, domain.ConversionStatusFailed, repo.get(conversion.ID).Status)
}

func TestConvertStoredThumbnailFailureNotFatal(t *testing.T) {
	repo, storage, _, uc := newProcessFixture()
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", []byte("%PDF-1.4"))
	storage.storeErrSubstr = "thumb_"

	result, err := uc.ConvertStored(context.Background(), conversion, []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.False(t, result.Failed())

	stored := repo.get(conversion.ID)
	assert.Equal(t, domain.ConversionStatusCompleted, stored.Status)
	assert.NotEmpty(t, stored.ImageKey)
	assert.Empty(t, stored.ThumbnailKey)
}

func TestConvertStoredPresignFailure(t *testing.T) {
	repo, storage, _, uc := newProcessFixture()
	conversion := seedPendingConversion(t, repo, storage, "report.pdf", []byte("%PDF-1.4"))
	storage.urlErr = errors.New("presign unavailable")

	result, err := uc.ConvertStored(context.Background(), conversion, []byte("%PDF-1.4"))
	require.NoError(t, err)

	require.True(t, result.Failed())
	assert.Equal(t, domain.ErrorKindStorage, result.Err.Kind)
	assert.Equal(t, domain.ConversionStatusFailed, repo.get(conversion.ID).Status)
}
