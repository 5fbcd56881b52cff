package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tradejournal/src/journal"
	"tradejournal/src/model"
)

type Store interface {
	Create(ctx context.Context, watchlist *model.SavedWatchlist) error
	FindByID(ctx context.Context, id, userID string) (*model.SavedWatchlist, error)
	FindByUser(ctx context.Context, userID string) ([]model.SavedWatchlist, error)
	UpdateColumns(ctx context.Context, id, userID string, columns map[string]interface{}) error
	Delete(ctx context.Context, id, userID string) error
	AddItems(ctx context.Context, watchlistID string, symbols []string) error
	RemoveItem(ctx context.Context, watchlistID, symbol string) error
}

// Service manages saved watchlists. Creation is a two-phase write (parent
// row, then item rows) with no transaction across the phases: an item
// failure leaves the parent committed and is reported as a partial write
// the caller can retry, since item inserts are upserts on a natural key.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Symbols     []string `json:"symbols"`
}

func (s *Service) Create(ctx context.Context, user *model.User, input CreateInput) (*model.SavedWatchlist, error) {
	if user == nil {
		return nil, journal.ErrUnauthenticated
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: watchlist name is required", journal.ErrInvalidInput)
	}

	watchlist := &model.SavedWatchlist{
		UserID:      user.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}

	if err := s.store.Create(ctx, watchlist); err != nil {
		return nil, err
	}

	if len(input.Symbols) > 0 {
		if err := s.store.AddItems(ctx, watchlist.ID, input.Symbols); err != nil {
			return watchlist, &journal.PartialWriteError{
				ParentID: watchlist.ID,
				Step:     "watchlist items",
				Err:      err,
			}
		}
	}

	return s.get(ctx, user, watchlist.ID)
}

func (s *Service) get(ctx context.Context, user *model.User, id string) (*model.SavedWatchlist, error) {
	watchlist, err := s.store.FindByID(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	if watchlist == nil {
		return nil, journal.ErrNotFound
	}
	return watchlist, nil
}

func (s *Service) Get(ctx context.Context, user *model.User, id string) (*model.SavedWatchlist, error) {
	if user == nil {
		return nil, journal.ErrUnauthenticated
	}
	return s.get(ctx, user, id)
}

// List returns the caller's watchlists with items, newest first.
func (s *Service) List(ctx context.Context, user *model.User) ([]model.SavedWatchlist, error) {
	if user == nil {
		return nil, journal.ErrUnauthenticated
	}
	return s.store.FindByUser(ctx, user.ID)
}

type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *Service) Update(ctx context.Context, user *model.User, id string, input UpdateInput) error {
	if user == nil {
		return journal.ErrUnauthenticated
	}

	columns := map[string]interface{}{}
	if input.Name != nil {
		columns["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		columns["description"] = *input.Description
	}
	if len(columns) == 0 {
		return nil
	}

	if err := s.store.UpdateColumns(ctx, id, user.ID, columns); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return journal.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, user *model.User, id string) error {
	if user == nil {
		return journal.ErrUnauthenticated
	}

	if err := s.store.Delete(ctx, id, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return journal.ErrNotFound
		}
		return err
	}
	return nil
}

// AddSymbol adds one symbol to an owned watchlist.
func (s *Service) AddSymbol(ctx context.Context, user *model.User, id, symbol string) error {
	if user == nil {
		return journal.ErrUnauthenticated
	}

	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("%w: symbol is required", journal.ErrInvalidInput)
	}

	// Ownership check before writing items, which are keyed by watchlist only.
	if _, err := s.get(ctx, user, id); err != nil {
		return err
	}

	return s.store.AddItems(ctx, id, []string{symbol})
}

// RemoveSymbol removes one symbol from an owned watchlist.
func (s *Service) RemoveSymbol(ctx context.Context, user *model.User, id, symbol string) error {
	if user == nil {
		return journal.ErrUnauthenticated
	}

	if _, err := s.get(ctx, user, id); err != nil {
		return err
	}

	return s.store.RemoveItem(ctx, id, symbol)
}

// LoadTickers renders an owned watchlist as a comma-separated ticker string.
func (s *Service) LoadTickers(ctx context.Context, user *model.User, id string) (string, error) {
	if user == nil {
		return "", journal.ErrUnauthenticated
	}

	watchlist, err := s.get(ctx, user, id)
	if err != nil {
		return "", err
	}

	symbols := make([]string, 0, len(watchlist.Items))
	for _, item := range watchlist.Items {
		symbols = append(symbols, item.Symbol)
	}
	return strings.Join(symbols, ","), nil
}
