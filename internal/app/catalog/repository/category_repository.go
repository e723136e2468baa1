package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"warehouse-catalog/internal/app/catalog/entity"
	"warehouse-catalog/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceName = "catalog-service"

type categoryRepository struct {
	db *pgxpool.Pool // Пул соединений с PostgreSQL для работы с категориями
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: db}
}

// GetAll получает все категории отсортированные по имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	query := `
		SELECT category_id, category_name, category_description
		FROM categories
		ORDER BY category_name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var category entity.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetByID получает категорию по ID, (nil, nil) если категории нет
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	query := `
		SELECT category_id, category_name, category_description
		FROM categories
		WHERE category_id = $1
	`

	var category entity.Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}

	return &category, nil
}

// ExistsByName проверяет существование категории по имени без учета регистра
func (r *categoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE LOWER(category_name) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, strings.TrimSpace(name)).Scan(&exists); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}

	return exists, nil
}

// Save вставляет категорию при нулевом ID (ID присваивает BIGSERIAL) и
// обновляет имя и описание иначе
func (r *categoryRepository) Save(ctx context.Context, category *entity.Category) error {
	if category.ID == 0 {
		timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "categories")
		defer timer.ObserveDuration()

		query := `
			INSERT INTO categories (category_name, category_description)
			VALUES ($1, $2)
			RETURNING category_id
		`

		if err := r.db.QueryRow(ctx, query, category.Name, category.Description).Scan(&category.ID); err != nil {
			metrics.RecordDbError(serviceName, metrics.DbOpInsert)
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "categories")
	defer timer.ObserveDuration()

	query := `
		UPDATE categories
		SET category_name = $1, category_description = $2
		WHERE category_id = $3
	`

	if _, err := r.db.Exec(ctx, query, category.Name, category.Description, category.ID); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// Delete удаляет категорию по ID. Отсутствующая строка не считается ошибкой.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "categories")
	defer timer.ObserveDuration()

	query := `DELETE FROM categories WHERE category_id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
