package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product master data. Its category and suppliers
// always belong to the same tenant as the product.
type Product struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	TenantID    string         `json:"tenant_id" gorm:"type:varchar(36);index;not null;comment:'Tenant this product belongs to'"`
	Name        string         `json:"name" gorm:"type:varchar(255);index;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null"`
	Quantity    int            `json:"quantity" gorm:"not null;default:0"`
	CategoryID  uint           `json:"category_id" gorm:"index;not null"`
	Category    *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Suppliers   []Supplier     `json:"suppliers,omitempty" gorm:"many2many:product_suppliers"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// All returns every model owned by the service, in migration order.
func All() []interface{} {
	return []interface{}{&Tenant{}, &User{}, &Category{}, &Supplier{}, &Product{}}
}
