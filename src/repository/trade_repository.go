package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// TradeRepository handles read/write operations for ledger entries.
// Every query is scoped to the owning user: a caller can never read or
// touch another user's rows through this type.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main read/write database.
func NewTradeRepository() *TradeRepository {
	return &TradeRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create inserts a new trade. The given trade is updated with the generated
// ID and timestamps.
func (r *TradeRepository) Create(ctx context.Context, trade *model.Trade) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "TradeRepository",
		"op":     "Create",
		"symbol": trade.Symbol,
		"side":   trade.Side,
	}).Debug("Creating new trade")

	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create trade")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Create",
		"trade_id": trade.ID,
	}).Info("Trade created successfully")

	return nil
}

// FindByID fetches a single trade with its tags.
// Returns (nil, nil) if the trade does not exist or belongs to another user.
func (r *TradeRepository) FindByID(ctx context.Context, id, userID string) (*model.Trade, error) {
	var trade model.Trade

	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND user_id = ?", id, userID).
		First(&trade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":     "TradeRepository",
				"op":       "FindByID",
				"trade_id": id,
			}).Info("Trade not found")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "FindByID",
			"trade_id": id,
		}).WithError(err).Error("Failed to fetch trade by ID")

		return nil, err
	}

	return &trade, nil
}

// FindLatest returns the user's trades with tags, newest first.
func (r *TradeRepository) FindLatest(ctx context.Context, userID string, limit, offset int) ([]model.Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "TradeRepository",
			"op":    "FindLatest",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch latest trades")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "TradeRepository",
		"op":          "FindLatest",
		"rows_return": len(trades),
	}).Debug("Latest trades fetched")

	return trades, nil
}

// UpdateColumns applies a partial update to the user's trade.
// Returns gorm.ErrRecordNotFound when no owned row matched.
func (r *TradeRepository) UpdateColumns(ctx context.Context, id, userID string, columns map[string]interface{}) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "UpdateColumns",
		"trade_id": id,
	}).Debug("Updating trade")

	result := r.db.WithContext(ctx).
		Model(&model.Trade{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(columns)

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "UpdateColumns",
			"trade_id": id,
		}).WithError(result.Error).Error("Failed to update trade")

		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the user's trade. Returns gorm.ErrRecordNotFound when no
// owned row matched.
func (r *TradeRepository) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Trade{})

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "Delete",
			"trade_id": id,
		}).WithError(result.Error).Error("Failed to delete trade")

		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Delete",
		"trade_id": id,
	}).Info("Trade deleted successfully")

	return nil
}

// StatsProjection fetches the slim per-trade rows used for aggregation,
// skipping narrative and screenshot columns.
func (r *TradeRepository) StatsProjection(ctx context.Context, userID string) ([]model.TradeProjection, error) {
	var rows []model.TradeProjection

	err := r.db.WithContext(ctx).
		Model(&model.Trade{}).
		Select("net_pnl", "side", "created_at").
		Where("user_id = ?", userID).
		Scan(&rows).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "StatsProjection",
		}).WithError(err).Error("Failed to fetch stats projection")

		return nil, err
	}

	return rows, nil
}
