package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a user-owned label shared across that user's trades.
// Names are unique per user, case-sensitive.
type Tag struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name" json:"user_id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TradeTag is the trade<->tag association row. The composite primary key is
// the natural key, so re-inserting a link after a partial write is safe.
type TradeTag struct {
	TradeID string `gorm:"type:uuid;primaryKey" json:"trade_id"`
	TagID   string `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

func (TradeTag) TableName() string {
	return "trade_tags"
}
