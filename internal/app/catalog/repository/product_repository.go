package repository

import (
	"context"
	"errors"
	"fmt"

	"warehouse-catalog/internal/app/catalog/entity"
	"warehouse-catalog/pkg/metrics"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetAll получает все товары, новые первыми
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var products []entity.Product
	result := r.db.WithContext(ctx).Order("created_date DESC").Find(&products)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get products: %w", result.Error)
	}

	return products, nil
}

// GetByID получает товар по ID, (nil, nil) если товара нет
func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "product_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get product by id: %w", result.Error)
	}

	return &product, nil
}

// ExistsByName проверяет существование товара по имени без учета регистра
func (r *productRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var count int64
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("LOWER(product_name) = LOWER(?)", name).
		Count(&count)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return false, fmt.Errorf("failed to check product existence: %w", result.Error)
	}

	return count > 0, nil
}

// Save вставляет товар при нулевом ID и обновляет существующий иначе.
// created_date при обновлении не трогается.
func (r *productRepository) Save(ctx context.Context, product *entity.Product) error {
	if product.ID == 0 {
		timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "products")
		defer timer.ObserveDuration()

		if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
			metrics.RecordDbError(serviceName, metrics.DbOpInsert)
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "products")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("product_id = ?", product.ID).
		Updates(map[string]interface{}{
			"product_name":         product.Name,
			"product_description":  product.Description,
			"category_id":          product.Category.ID,
			"category_name":        product.Category.Name,
			"category_description": product.Category.Description,
		})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update product: %w", result.Error)
	}

	return nil
}

// Delete удаляет товар по ID. Отсутствующая строка не считается ошибкой.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "products")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "product_id = ?", id)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}

	return nil
}
