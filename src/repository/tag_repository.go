package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// TagRepository handles tag lookup, find-or-create resolution and
// trade<->tag link rows.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository() *TagRepository {
	return &TagRepository{db: database.MainDB}
}

func (r *TagRepository) WithDB(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByName looks up a tag by exact, case-sensitive name for the given user.
// Returns (nil, nil) when no such tag exists.
func (r *TagRepository) FindByName(ctx context.Context, userID, name string) (*model.Tag, error) {
	var tag model.Tag

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&tag).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "TagRepository",
			"op":   "FindByName",
			"name": name,
		}).WithError(err).Error("Failed to fetch tag by name")

		return nil, err
	}

	return &tag, nil
}

// FindOrCreate resolves a tag name to a stable tag identity owned by the
// user. Two concurrent calls for the same new name may both miss the
// existence check; the unique (user_id, name) index then rejects the second
// insert, which falls back to a lookup and returns the winning row.
func (r *TagRepository) FindOrCreate(ctx context.Context, userID, name string) (*model.Tag, error) {
	tag, err := r.FindByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	created := model.Tag{UserID: userID, Name: name}
	err = r.db.WithContext(ctx).Create(&created).Error
	if err == nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TagRepository",
			"op":     "FindOrCreate",
			"tag_id": created.ID,
			"name":   name,
		}).Info("Tag created")

		return &created, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		logger.WithFields(map[string]interface{}{
			"repo": "TagRepository",
			"op":   "FindOrCreate",
			"name": name,
		}).Info("Tag insert lost creation race, re-fetching winner")

		tag, lookupErr := r.FindByName(ctx, userID, name)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if tag != nil {
			return tag, nil
		}
	}

	logger.WithFields(map[string]interface{}{
		"repo": "TagRepository",
		"op":   "FindOrCreate",
		"name": name,
	}).WithError(err).Error("Failed to create tag")

	return nil, err
}

// FindByUser returns all of the user's tags ordered by name.
func (r *TagRepository) FindByUser(ctx context.Context, userID string) ([]model.Tag, error) {
	var tags []model.Tag

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&tags).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TagRepository",
			"op":   "FindByUser",
		}).WithError(err).Error("Failed to fetch tags")

		return nil, err
	}

	return tags, nil
}

// LinkTrade inserts trade<->tag association rows. The insert is an upsert on
// the natural (trade_id, tag_id) key, so a retry after a partial write
// failure is safe.
func (r *TagRepository) LinkTrade(ctx context.Context, tradeID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]model.TradeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, model.TradeTag{TradeID: tradeID, TagID: tagID})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TagRepository",
			"op":       "LinkTrade",
			"trade_id": tradeID,
			"tags":     len(tagIDs),
		}).WithError(err).Error("Failed to link tags to trade")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TagRepository",
		"op":       "LinkTrade",
		"trade_id": tradeID,
		"tags":     len(tagIDs),
	}).Debug("Tags linked to trade")

	return nil
}
