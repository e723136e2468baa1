package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"warehouse-catalog/internal/app/catalog/cache"
	"warehouse-catalog/internal/app/catalog/entity"
	"warehouse-catalog/internal/app/catalog/repository"
	"warehouse-catalog/internal/app/catalog/util"
	"warehouse-catalog/pkg/logger"
	"warehouse-catalog/pkg/metrics"
)

const (
	slotProductsList = "products:list"
	slotProductsByID = "products:id"
)

const (
	eventProductCreated = "PRODUCT_CREATED"
	eventProductUpdated = "PRODUCT_UPDATED"
	eventProductDeleted = "PRODUCT_DELETED"
)

// ProductService обрабатывает бизнес-логику товаров и владеет их кешем.
// Категория товара резолвится через CategoryRepository в момент записи и
// сохраняется как снимок: дальнейшие изменения категории товар не видят.
type ProductService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	kafkaProducer util.MessagePublisher
	listCache     *cache.Slot[[]entity.Product]
	byIDCache     *cache.Map[int64, entity.Product]
}

// NewProductService создает новый сервис товаров с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	kafkaProducer util.MessagePublisher,
	listCache *cache.Slot[[]entity.Product],
	byIDCache *cache.Map[int64, entity.Product],
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		kafkaProducer: kafkaProducer,
		listCache:     listCache,
		byIDCache:     byIDCache,
	}
}

// GetAllProducts получает все товары через единственную list-ячейку кеша
func (s *ProductService) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	if products, ok := s.listCache.Get(); ok {
		metrics.RecordCacheHit(serviceName, slotProductsList)
		return products, nil
	}
	metrics.RecordCacheMiss(serviceName, slotProductsList)

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.listCache.Put(products)

	return products, nil
}

// GetProduct получает товар по ID через by-id ячейку кеша.
// Отсутствие товара никогда не кешируется.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	if product, ok := s.byIDCache.Get(id); ok {
		metrics.RecordCacheHit(serviceName, slotProductsByID)
		return &product, nil
	}
	metrics.RecordCacheMiss(serviceName, slotProductsByID)

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	s.byIDCache.Put(id, *product)

	return product, nil
}

// CreateProduct создает новый товар.
// Порядок проверок фиксирован: сначала уникальность имени, затем
// существование категории - при обоих нарушениях сразу caller получает
// ErrProductAlreadyExists, а не ErrCategoryNotFound.
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	logger.Info().Str("name", req.Name).Msg("Creating new product")

	exists, err := s.productRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}
	if exists {
		logger.Warn().Str("name", req.Name).Msg("Product with this name already exists")
		return nil, ErrProductAlreadyExists
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}
	if category == nil {
		logger.Warn().Int64("category_id", req.CategoryID).Msg("Category for new product not found")
		return nil, ErrCategoryNotFound
	}

	product := &entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    *category, // Снимок категории на момент записи
		CreatedDate: time.Now().UTC(),
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.listCache.Evict()
	metrics.RecordCacheEviction(serviceName, slotProductsList)

	s.publishProductEvent(ctx, eventProductCreated, product)

	logger.Info().Int64("id", product.ID).Msg("Product created successfully")
	return product, nil
}

// UpdateProduct заменяет имя, описание и снимок категории товара.
// createdDate не изменяется. Свежее значение пишется в by-id ячейку
// (write-through), list-ячейка вытесняется.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error) {
	logger.Info().Int64("id", id).Msg("Updating product")

	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		logger.Warn().Int64("id", id).Msg("Cannot update product - not found")
		return nil, ErrProductNotFound
	}

	if existing.Name != req.Name {
		exists, err := s.productRepo.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check product name: %w", err)
		}
		if exists {
			logger.Warn().Str("name", req.Name).Msg("Cannot update product - name already exists")
			return nil, ErrProductAlreadyExists
		}
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}
	if category == nil {
		logger.Warn().Int64("category_id", req.CategoryID).Msg("Category for product update not found")
		return nil, ErrCategoryNotFound
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = *category

	if err := s.productRepo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.byIDCache.Put(id, *existing)
	s.listCache.Evict()
	metrics.RecordCacheEviction(serviceName, slotProductsList)

	s.publishProductEvent(ctx, eventProductUpdated, existing)

	logger.Info().Int64("id", id).Msg("Product updated successfully")
	return existing, nil
}

// DeleteProduct удаляет товар и вытесняет обе затронутые ячейки кеша
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	logger.Info().Int64("id", id).Msg("Deleting product")

	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		logger.Warn().Int64("id", id).Msg("Cannot delete product - not found")
		return ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.byIDCache.Evict(id)
	metrics.RecordCacheEviction(serviceName, slotProductsByID)
	s.listCache.Evict()
	metrics.RecordCacheEviction(serviceName, slotProductsList)

	s.publishProductEvent(ctx, eventProductDeleted, existing)

	logger.Info().Int64("id", id).Msg("Product deleted successfully")
	return nil
}

// publishProductEvent отправляет событие о товаре в Kafka.
// Ключ сообщения - ID товара для партиционирования. Сбой отправки
// логируется и не прерывает операцию: запись в хранилище уже подтверждена.
func (s *ProductService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category.Name,
		Timestamp: time.Now().UTC(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to marshal product event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(product.ID, 10), eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish product event")
	}
}
