package service

import "errors"

// Ошибки бизнес-логики для обработки в handlers
var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrProductAlreadyExists  = errors.New("product with this name already exists")
)
