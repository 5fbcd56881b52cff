package repository

import (
	"context"
	"errors"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository() *WatchlistRepository {
	return &WatchlistRepository{db: database.MainDB}
}

func (r *WatchlistRepository) WithDB(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Create inserts the watchlist parent row only. Items are added separately
// so a failed item insert leaves a visible, retryable partial state.
func (r *WatchlistRepository) Create(ctx context.Context, watchlist *model.SavedWatchlist) error {
	err := r.db.WithContext(ctx).Omit("Items").Create(watchlist).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "WatchlistRepository",
			"op":   "Create",
			"name": watchlist.Name,
		}).WithError(err).Error("Failed to create watchlist")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "WatchlistRepository",
		"op":           "Create",
		"watchlist_id": watchlist.ID,
	}).Info("Watchlist created")

	return nil
}

// FindByID fetches a watchlist with its items.
// Returns (nil, nil) if it does not exist or belongs to another user.
func (r *WatchlistRepository) FindByID(ctx context.Context, id, userID string) (*model.SavedWatchlist, error) {
	var watchlist model.SavedWatchlist

	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&watchlist).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "FindByID",
			"watchlist_id": id,
		}).WithError(err).Error("Failed to fetch watchlist")

		return nil, err
	}

	return &watchlist, nil
}

// FindByUser returns the user's watchlists with items, newest first.
func (r *WatchlistRepository) FindByUser(ctx context.Context, userID string) ([]model.SavedWatchlist, error) {
	var watchlists []model.SavedWatchlist

	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&watchlists).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "WatchlistRepository",
			"op":   "FindByUser",
		}).WithError(err).Error("Failed to fetch watchlists")

		return nil, err
	}

	return watchlists, nil
}

// UpdateColumns applies a partial metadata update to the user's watchlist.
func (r *WatchlistRepository) UpdateColumns(ctx context.Context, id, userID string, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.SavedWatchlist{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(columns)

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "UpdateColumns",
			"watchlist_id": id,
		}).WithError(result.Error).Error("Failed to update watchlist")

		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the user's watchlist and, via the FK constraint, its items.
func (r *WatchlistRepository) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.SavedWatchlist{})

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "Delete",
			"watchlist_id": id,
		}).WithError(result.Error).Error("Failed to delete watchlist")

		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AddItems upserts symbols onto a watchlist. Symbols are normalized to
// uppercase; the (watchlist_id, symbol) key makes retries idempotent.
func (r *WatchlistRepository) AddItems(ctx context.Context, watchlistID string, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	items := make([]model.SavedWatchlistItem, 0, len(symbols))
	for _, symbol := range symbols {
		items = append(items, model.SavedWatchlistItem{
			WatchlistID: watchlistID,
			Symbol:      strings.ToUpper(symbol),
		})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "AddItems",
			"watchlist_id": watchlistID,
			"symbols":      len(symbols),
		}).WithError(err).Error("Failed to add watchlist items")

		return err
	}

	return nil
}

// RemoveItem removes one symbol from a watchlist.
func (r *WatchlistRepository) RemoveItem(ctx context.Context, watchlistID, symbol string) error {
	err := r.db.WithContext(ctx).
		Where("watchlist_id = ? AND symbol = ?", watchlistID, strings.ToUpper(symbol)).
		Delete(&model.SavedWatchlistItem{}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "RemoveItem",
			"watchlist_id": watchlistID,
			"symbol":       symbol,
		}).WithError(err).Error("Failed to remove watchlist item")

		return err
	}

	return nil
}
