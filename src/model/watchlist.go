package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavedWatchlist struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []SavedWatchlistItem `gorm:"foreignKey:WatchlistID;constraint:OnDelete:CASCADE" json:"items"`
}

func (SavedWatchlist) TableName() string {
	return "saved_watchlists"
}

func (w *SavedWatchlist) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// SavedWatchlistItem is one symbol on a watchlist. The watchlist+symbol pair
// is unique so item inserts can be retried with upsert semantics.
type SavedWatchlistItem struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	WatchlistID string    `gorm:"type:uuid;not null;uniqueIndex:idx_watchlist_symbol" json:"watchlist_id"`
	Symbol      string    `gorm:"size:20;not null;uniqueIndex:idx_watchlist_symbol" json:"symbol"`
	AddedAt     time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (SavedWatchlistItem) TableName() string {
	return "saved_watchlist_items"
}

func (i *SavedWatchlistItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
