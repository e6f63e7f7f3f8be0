package model

import (
	"time"

	"gorm.io/gorm"
)

// Supplier represents the supplier master data of one tenant
type Supplier struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TenantID      string         `json:"tenant_id" gorm:"type:varchar(36);index;not null;comment:'Tenant this supplier belongs to'"`
	Name          string         `json:"name" gorm:"type:varchar(100);index;not null"`
	Email         string         `json:"email" gorm:"type:varchar(100);index"` // unique per tenant
	Phone         string         `json:"phone" gorm:"type:varchar(20)"`
	Address       string         `json:"address" gorm:"type:text"`
	ContactPerson string         `json:"contact_person" gorm:"type:varchar(100)"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
