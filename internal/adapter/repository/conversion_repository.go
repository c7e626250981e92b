package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plastinin/pdfpreview/internal/domain"
)

// Общий список колонок для SELECT
const conversionColumns = `id, status, source_key, source_name, content_type, source_size, page_count,
		image_key, image_name, thumbnail_key, width, height, error, created_at, updated_at, completed_at`

// ConversionRepository реализация репозитория задач конвертации для PostgreSQL
type ConversionRepository struct {
	pool *pgxpool.Pool
}

// NewConversionRepository создаёт новый экземпляр ConversionRepository
func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}

// Create создаёт новую задачу конвертации в БД
func (r *ConversionRepository) Create(ctx context.Context, conv *domain.Conversion) error {
	query := `
		INSERT INTO conversions (id, status, source_key, source_name, content_type, source_size, page_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		conv.ID,
		conv.Status,
		conv.SourceKey,
		conv.SourceName,
		conv.ContentType,
		conv.SourceSize,
		conv.PageCount,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	return nil
}

// GetByID возвращает задачу конвертации по ID
func (r *ConversionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversion, error) {
	query := `
		SELECT ` + conversionColumns + `
		FROM conversions
		WHERE id = $1
	`

	conv, err := scanConversion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversionNotFound
		}
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}

	return conv, nil
}

// Update обновляет задачу конвертации в БД
func (r *ConversionRepository) Update(ctx context.Context, conv *domain.Conversion) error {
	query := `
		UPDATE conversions
		SET status = $2, page_count = $3, image_key = $4, image_name = $5, thumbnail_key = $6,
		    width = $7, height = $8, error = $9, updated_at = $10, completed_at = $11
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		conv.ID,
		conv.Status,
		conv.PageCount,
		nullIfEmpty(conv.ImageKey),
		nullIfEmpty(conv.ImageName),
		nullIfEmpty(conv.ThumbnailKey),
		conv.Width,
		conv.Height,
		nullIfEmpty(conv.Error),
		conv.UpdatedAt,
		conv.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversion: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrConversionNotFound
	}

	return nil
}

// Delete удаляет задачу конвертации из БД
func (r *ConversionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM conversions WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversion: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrConversionNotFound
	}

	return nil
}

// List возвращает список задач конвертации с пагинацией и фильтрацией
func (r *ConversionRepository) List(ctx context.Context, filter domain.ConversionFilter, pagination domain.Pagination) (*domain.ConversionListResult, error) {
	// Базовый запрос
	baseQuery := `FROM conversions WHERE 1=1`
	args := []any{}
	argIndex := 1

	// Добавляем фильтр по статусу
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	// Запрос на подсчёт общего количества
	countQuery := "SELECT COUNT(*) " + baseQuery
	var total int
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %w", err)
	}

	// Запрос на получение данных
	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, conversionColumns, baseQuery, argIndex, argIndex+1)

	args = append(args, pagination.Limit(), pagination.Offset())

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	conversions := make([]*domain.Conversion, 0)
	for rows.Next() {
		conv, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &domain.ConversionListResult{
		Conversions: conversions,
		Total:       total,
		Pagination:  pagination,
	}, nil
}

// ListOlderThan возвращает задачи, созданные раньше указанного момента.
// Используется очисткой устаревших результатов.
func (r *ConversionRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Conversion, error) {
	query := `
		SELECT ` + conversionColumns + `
		FROM conversions
		WHERE created_at < $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired conversions: %w", err)
	}
	defer rows.Close()

	conversions := make([]*domain.Conversion, 0)
	for rows.Next() {
		conv, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return conversions, nil
}

// scanConversion читает одну строку в доменную модель
func scanConversion(row pgx.Row) (*domain.Conversion, error) {
	conv := &domain.Conversion{}
	// Указатели для NULL колонок
	var imageKey, imageName, thumbnailKey, errorMsg *string

	err := row.Scan(
		&conv.ID,
		&conv.Status,
		&conv.SourceKey,
		&conv.SourceName,
		&conv.ContentType,
		&conv.SourceSize,
		&conv.PageCount,
		&imageKey,
		&imageName,
		&thumbnailKey,
		&conv.Width,
		&conv.Height,
		&errorMsg,
		&conv.CreatedAt,
		&conv.UpdatedAt,
		&conv.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	// Обрабатываем NULL
	if imageKey != nil {
		conv.ImageKey = *imageKey
	}
	if imageName != nil {
		conv.ImageName = *imageName
	}
	if thumbnailKey != nil {
		conv.ThumbnailKey = *thumbnailKey
	}
	if errorMsg != nil {
		conv.Error = *errorMsg
	}

	return conv, nil
}

// nullIfEmpty превращает пустую строку в NULL
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
