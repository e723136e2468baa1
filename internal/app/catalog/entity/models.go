package entity

import "time"

// Category представляет категорию товаров на складе
// ID присваивается базой данных (BIGSERIAL), имя уникально без учета регистра
type Category struct {
	ID          int64  `json:"id" gorm:"column:category_id"`
	Name        string `json:"name" gorm:"column:category_name"`
	Description string `json:"description" gorm:"column:category_description"`
}

// Product представляет товар в каталоге
// Категория хранится как денормализованный снимок на момент последней записи,
// последующие изменения категории на товар не распространяются
type Product struct {
	ID          int64     `json:"id" gorm:"column:product_id;primaryKey"`
	Name        string    `json:"name" gorm:"column:product_name"`
	Description string    `json:"description" gorm:"column:product_description"`
	Category    Category  `json:"category" gorm:"embedded"`
	CreatedDate time.Time `json:"createdDate" gorm:"column:created_date"`
}

// TableName задает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}
