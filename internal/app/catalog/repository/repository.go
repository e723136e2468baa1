// Package repository содержит контракты доступа к PostgreSQL для каталога.
//
// Репозитории не возвращают доменных ошибок: отсутствие сущности выражается
// как (nil, nil) для GetByID и false для ExistsByName, а политику (not found,
// already exists) применяет service layer. Ошибка из репозитория всегда
// означает сбой самого хранилища.
package repository

import (
	"context"

	"warehouse-catalog/internal/app/catalog/entity"
)

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]entity.Category, error)
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Save вставляет категорию при нулевом ID (ID присваивает база)
	// и обновляет существующую строку иначе
	Save(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error
}
