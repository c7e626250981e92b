package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plastinin/pdfpreview/internal/domain"
)

// fakeRepo хранилище задач в памяти
type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Conversion

	createErr error
	updateErr error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uuid.UUID]*domain.Conversion)}
}

func (r *fakeRepo) Create(_ context.Context, conversion *domain.Conversion) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[conversion.ID] = conversion
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversion, ok := r.items[id]
	if !ok {
		return nil, domain.ErrConversionNotFound
	}
	return conversion, nil
}

func (r *fakeRepo) Update(_ context.Context, conversion *domain.Conversion) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[conversion.ID]; !ok {
		return domain.ErrConversionNotFound
	}
	r.items[conversion.ID] = conversion
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrConversionNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, filter domain.ConversionFilter, pagination domain.Pagination) (*domain.ConversionListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversions := make([]*domain.Conversion, 0, len(r.items))
	for _, conversion := range r.items {
		if filter.Status != nil && conversion.Status != *filter.Status {
			continue
		}
		conversions = append(conversions, conversion)
	}
	sort.Slice(conversions, func(i, j int) bool {
		return conversions[i].CreatedAt.After(conversions[j].CreatedAt)
	})

	return &domain.ConversionListResult{
		Conversions: conversions,
		Total:       len(conversions),
		Pagination:  pagination,
	}, nil
}

func (r *fakeRepo) ListOlderThan(_ context.Context, cutoff time.Time, limit int) ([]*domain.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make([]*domain.Conversion, 0)
	for _, conversion := range r.items {
		if conversion.CreatedAt.Before(cutoff) && len(expired) < limit {
			expired = append(expired, conversion)
		}
	}
	return expired, nil
}

func (r *fakeRepo) get(id uuid.UUID) *domain.Conversion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// fakeStorage файловое хранилище в памяти
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int

	uploadErr   error
	storeErr    error
	downloadErr error
	deleteErr   error
	urlErr      error
	// Store отказывает только для ключей с этой подстрокой
	storeErrSubstr string

	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, fileName string, _ string, reader io.Reader, _ int64) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	fileKey := path.Join("uploads", strconv.Itoa(s.seq), fileName)
	s.objects[fileKey] = data
	return fileKey, nil
}

func (s *fakeStorage) Store(_ context.Context, fileKey string, _ string, reader io.Reader, _ int64) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	if s.storeErrSubstr != "" && strings.Contains(fileKey, s.storeErrSubstr) {
		return fmt.Errorf("store rejected key %s", fileKey)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[fileKey] = data
	return nil
}

func (s *fakeStorage) Download(_ context.Context, fileKey string) (io.ReadCloser, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[fileKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", fileKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, fileKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileKey)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, fileKey)
	return nil
}

func (s *fakeStorage) GetURL(_ context.Context, fileKey string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://s3.local/" + fileKey + "?signature=test", nil
}

func (s *fakeStorage) object(fileKey string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[fileKey]
	return data, ok
}

// fakeQueue очередь, запоминающая поставленные задачи
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	err      error
}

func (q *fakeQueue) Enqueue(_ context.Context, conversionID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, conversionID)
	return nil
}

// fakeInspector инспектор с заранее заданным ответом
type fakeInspector struct {
	info *domain.SourceInfo
	err  error
}

func (i *fakeInspector) Inspect(_ []byte) (*domain.SourceInfo, error) {
	if i.err != nil {
		return nil, i.err
	}
	if i.info != nil {
		return i.info, nil
	}
	return &domain.SourceInfo{PageCount: 1, Width: 612, Height: 792}, nil
}

// fakeRenderer растеризатор, отдающий детерминированный PNG без движка
type fakeRenderer struct {
	err   error
	calls int

	gotName string
	gotData []byte
}

func (r *fakeRenderer) Convert(_ context.Context, sourceName string, data []byte) (*domain.RenderedPage, error) {
	r.calls++
	r.gotName = sourceName
	r.gotData = data
	if r.err != nil {
		return nil, r.err
	}
	return &domain.RenderedPage{
		Image: &domain.File{
			Name:        domain.OutputFileName(sourceName),
			ContentType: domain.ContentTypePNG,
			Data:        []byte("png image bytes"),
		},
		Thumbnail: &domain.File{
			Name:        domain.ThumbnailFileName(sourceName),
			ContentType: domain.ContentTypePNG,
			Data:        []byte("png thumbnail bytes"),
		},
		Width:     2448,
		Height:    3168,
		PageCount: 1,
	}, nil
}
