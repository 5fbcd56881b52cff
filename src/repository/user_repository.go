package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *UserRepository {
	return &UserRepository{db: database.MainDB}
}

func (r *UserRepository) WithDB(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByAPIKeyID fetches a user by API key id.
// Returns (nil, nil) when no user carries that key.
func (r *UserRepository) FindByAPIKeyID(ctx context.Context, keyID string) (*model.User, error) {
	var user model.User

	err := r.db.WithContext(ctx).
		Where("api_key_id = ?", keyID).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "FindByAPIKeyID",
		}).WithError(err).Error("Failed to fetch user by API key id")

		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "UserRepository",
			"op":    "Create",
			"email": user.Email,
		}).WithError(err).Error("Failed to create user")

		return err
	}

	return nil
}
