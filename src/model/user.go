package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the caller identity resolved by the auth layer. The API secret is
// stored bcrypt-hashed; only the key id is ever looked up directly.
type User struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	APIKeyID   string    `gorm:"size:60;uniqueIndex" json:"-"`
	APIKeyHash string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
