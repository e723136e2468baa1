package service

import (
	"context"
	"fmt"

	"warehouse-catalog/internal/app/catalog/cache"
	"warehouse-catalog/internal/app/catalog/entity"
	"warehouse-catalog/internal/app/catalog/repository"
	"warehouse-catalog/pkg/logger"
	"warehouse-catalog/pkg/metrics"
)

const serviceName = "catalog-service"

const (
	slotCategoriesList = "categories:list"
	slotCategoriesByID = "categories:id"
)

// CategoryService обрабатывает бизнес-логику категорий и владеет их кешем.
// Кеш процессный: каждый экземпляр сервиса держит свой, межэкземплярной
// инвалидации нет - это принятое окно устаревания при нескольких репликах.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	listCache    *cache.Slot[[]entity.Category]
	byIDCache    *cache.Map[int64, entity.Category]
}

// NewCategoryService создает новый сервис категорий с внедрением зависимостей
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	listCache *cache.Slot[[]entity.Category],
	byIDCache *cache.Map[int64, entity.Category],
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		listCache:    listCache,
		byIDCache:    byIDCache,
	}
}

// GetAllCategories получает все категории через единственную list-ячейку кеша
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	if categories, ok := s.listCache.Get(); ok {
		metrics.RecordCacheHit(serviceName, slotCategoriesList)
		return categories, nil
	}
	metrics.RecordCacheMiss(serviceName, slotCategoriesList)

	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	// Заполняем ячейку только после успешного чтения из хранилища
	s.listCache.Put(categories)

	return categories, nil
}

// GetCategory получает категорию по ID через by-id ячейку кеша.
// Отсутствие категории никогда не кешируется.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	if category, ok := s.byIDCache.Get(id); ok {
		metrics.RecordCacheHit(serviceName, slotCategoriesByID)
		return &category, nil
	}
	metrics.RecordCacheMiss(serviceName, slotCategoriesByID)

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	s.byIDCache.Put(id, *category)

	return category, nil
}

// CreateCategory создает новую категорию с проверкой уникальности имени
// без учета регистра и вытесняет list-ячейку
func (s *CategoryService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	logger.Info().Str("name", req.Name).Msg("Creating new category")

	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		logger.Warn().Str("name", req.Name).Msg("Category with this name already exists")
		return nil, ErrCategoryAlreadyExists
	}

	category := &entity.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	// Вытесняем list-ячейку строго после подтверждения записи хранилищем.
	// By-id ячейку не заполняем: ее наполнит следующий GetCategory.
	s.listCache.Evict()
	metrics.RecordCacheEviction(serviceName, slotCategoriesList)

	logger.Info().Int64("id", category.ID).Msg("Category created successfully")
	return category, nil
}

// UpdateCategory обновляет имя и описание категории, пишет свежее значение
// в by-id ячейку (write-through) и вытесняет list-ячейку
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	logger.Info().Int64("id", id).Msg("Updating category")

	existing, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if existing == nil {
		logger.Warn().Int64("id", id).Msg("Cannot update category - not found")
		return nil, ErrCategoryNotFound
	}

	// Коллизию проверяем только при смене имени, иначе категория
	// конфликтовала бы сама с собой
	if existing.Name != req.Name {
		exists, err := s.categoryRepo.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			logger.Warn().Str("name", req.Name).Msg("Cannot update category - name already exists")
			return nil, ErrCategoryAlreadyExists
		}
	}

	existing.Name = req.Name
	existing.Description = req.Description

	if err := s.categoryRepo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.byIDCache.Put(id, *existing)
	s.listCache.Evict()
	metrics.RecordCacheEviction(serviceName, slotCategoriesList)

	logger.Info().Int64("id", id).Msg("Category updated successfully")
	return existing, nil
}

// DeleteCategory удаляет категорию и вытесняет обе затронутые ячейки кеша.
// Если на категорию ссылаются товары, внешний ключ хранилища отклонит
// удаление и ошибка уйдет наверх без доменной обертки.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	logger.Info().Int64("id", id).Msg("Attempting to delete category")

	existing, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if existing == nil {
		logger.Warn().Int64("id", id).Msg("Cannot delete category - not found")
		return ErrCategoryNotFound
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.byIDCache.Evict(id)
	metrics.RecordCacheEviction(serviceName, slotCategoriesByID)
	s.listCache.Evict()
	metrics.RecordCacheEviction(serviceName, slotCategoriesList)

	logger.Info().Int64("id", id).Msg("Category deleted successfully")
	return nil
}
