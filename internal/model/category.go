package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products of one tenant. Names are unique per tenant.
type Category struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	TenantID    string         `json:"tenant_id" gorm:"type:varchar(36);index;not null;comment:'Tenant this category belongs to'"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
