package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names understood by the role checks.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is looked up globally by email because a user may exist before it is
// affiliated with a tenant. TenantID stays nil until the first successful
// tenant binding and is never changed afterwards.
type User struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	TenantID  *string        `json:"tenant_id,omitempty" gorm:"type:varchar(36);index"`
	IsActive  bool           `json:"is_active" gorm:"not null"`
	Roles     []string       `json:"roles" gorm:"type:text;serializer:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the identifier when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAffiliated reports whether the user is already committed to a tenant.
func (u *User) IsAffiliated() bool {
	return u.TenantID != nil && *u.TenantID != ""
}
