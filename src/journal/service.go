package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradejournal/src/model"
)

// TradeStore is the slice of the trade repository the journal needs.
type TradeStore interface {
	Create(ctx context.Context, trade *model.Trade) error
	FindByID(ctx context.Context, id, userID string) (*model.Trade, error)
	FindLatest(ctx context.Context, userID string, limit, offset int) ([]model.Trade, error)
	UpdateColumns(ctx context.Context, id, userID string, columns map[string]interface{}) error
	Delete(ctx context.Context, id, userID string) error
}

// TagStore is the slice of the tag repository the journal needs.
type TagStore interface {
	FindOrCreate(ctx context.Context, userID, name string) (*model.Tag, error)
	LinkTrade(ctx context.Context, tradeID string, tagIDs []string) error
}

// Service turns raw trade inputs into priced, risk-scored ledger entries.
type Service struct {
	trades TradeStore
	tags   TagStore
	now    func() time.Time
}

func NewService(trades TradeStore, tags TagStore) *Service {
	return &Service{trades: trades, tags: tags, now: time.Now}
}

type CreateTradeInput struct {
	Symbol     string           `json:"symbol"`
	Side       string           `json:"side"`
	Quantity   decimal.Decimal  `json:"quantity"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	ExitPrice  decimal.Decimal  `json:"exit_price"`
	Commission *decimal.Decimal `json:"commission,omitempty"`
	StopLoss   *decimal.Decimal `json:"stop_loss,omitempty"`
	Target     *decimal.Decimal `json:"target,omitempty"`

	Setup            string `json:"setup,omitempty"`
	Mistakes         string `json:"mistakes,omitempty"`
	Lessons          string `json:"lessons,omitempty"`
	MarketConditions string `json:"market_conditions,omitempty"`
	SectorMomentum   string `json:"sector_momentum,omitempty"`

	Screenshots []string   `json:"screenshots,omitempty"`
	Date        string     `json:"date,omitempty"`
	EntryTime   *time.Time `json:"entry_time,omitempty"`
	ExitTime    *time.Time `json:"exit_time,omitempty"`

	TagIDs   []string `json:"tag_ids,omitempty"`
	TagNames []string `json:"tag_names,omitempty"`
}

func (in *CreateTradeInput) validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if in.Side != model.SideLong && in.Side != model.SideShort {
		return fmt.Errorf("%w: side must be LONG or SHORT", ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !in.EntryPrice.IsPositive() || !in.ExitPrice.IsPositive() {
		return fmt.Errorf("%w: entry and exit prices must be positive", ErrInvalidInput)
	}
	if in.Commission != nil && in.Commission.IsNegative() {
		return fmt.Errorf("%w: commission cannot be negative", ErrInvalidInput)
	}
	return nil
}

// CreateTrade validates and prices a trade input, persists it, then links
// any supplied tags. A tag step failure after the trade row committed is
// reported as a PartialWriteError alongside the persisted trade.
func (s *Service) CreateTrade(ctx context.Context, user *model.User, input CreateTradeInput) (*model.Trade, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	commission := decimal.Zero
	if input.Commission != nil {
		commission = *input.Commission
	}

	gross := grossPnl(input.Side, input.Quantity, input.EntryPrice, input.ExitPrice)
	net := gross.Sub(commission)

	now := s.now()

	trade := &model.Trade{
		UserID:     user.ID,
		Symbol:     strings.ToUpper(strings.TrimSpace(input.Symbol)),
		Side:       input.Side,
		Quantity:   input.Quantity,
		EntryPrice: input.EntryPrice,
		ExitPrice:  input.ExitPrice,
		Commission: commission,

		GrossPnl:   gross,
		NetPnl:     net,
		RiskReward: riskReward(input.EntryPrice, input.StopLoss, input.Target),

		StopLoss: input.StopLoss,
		Target:   input.Target,

		Setup:            input.Setup,
		Mistakes:         input.Mistakes,
		Lessons:          input.Lessons,
		MarketConditions: input.MarketConditions,
		SectorMomentum:   input.SectorMomentum,

		Screenshots: input.Screenshots,
		Date:        input.Date,
		EntryTime:   now,
		ExitTime:    now,
	}

	if trade.Screenshots == nil {
		trade.Screenshots = []string{}
	}
	if trade.Date == "" {
		trade.Date = now.Format("2006-01-02")
	}
	if input.EntryTime != nil {
		trade.EntryTime = *input.EntryTime
	}
	if input.ExitTime != nil {
		trade.ExitTime = *input.ExitTime
	}

	if err := s.trades.Create(ctx, trade); err != nil {
		return nil, err
	}

	tagIDs, err := s.resolveTagIDs(ctx, user.ID, input)
	if err != nil {
		return trade, &PartialWriteError{ParentID: trade.ID, Step: "tag resolution", Err: err}
	}

	if len(tagIDs) > 0 {
		if err := s.tags.LinkTrade(ctx, trade.ID, tagIDs); err != nil {
			return trade, &PartialWriteError{ParentID: trade.ID, Step: "tag linking", Err: err}
		}
	}

	return trade, nil
}

func (s *Service) resolveTagIDs(ctx context.Context, userID string, input CreateTradeInput) ([]string, error) {
	ids := append([]string(nil), input.TagIDs...)
	for _, name := range input.TagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := s.tags.FindOrCreate(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// ResolveTag maps a free-text tag name to a stable, user-owned tag identity.
func (s *Service) ResolveTag(ctx context.Context, user *model.User, name string) (*model.Tag, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}

	return s.tags.FindOrCreate(ctx, user.ID, name)
}

// UpdateTradeInput carries the patchable trade fields; nil means "leave as is".
// A JSON null decodes the same as an absent key, so StopLoss and Target can be
// replaced but not cleared back to NULL through this input.
type UpdateTradeInput struct {
	Symbol     *string          `json:"symbol,omitempty"`
	Side       *string          `json:"side,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	EntryPrice *decimal.Decimal `json:"entry_price,omitempty"`
	ExitPrice  *decimal.Decimal `json:"exit_price,omitempty"`
	Commission *decimal.Decimal `json:"commission,omitempty"`
	StopLoss   *decimal.Decimal `json:"stop_loss,omitempty"`
	Target     *decimal.Decimal `json:"target,omitempty"`

	Setup            *string `json:"setup,omitempty"`
	Mistakes         *string `json:"mistakes,omitempty"`
	Lessons          *string `json:"lessons,omitempty"`
	MarketConditions *string `json:"market_conditions,omitempty"`
	SectorMomentum   *string `json:"sector_momentum,omitempty"`

	Screenshots []string `json:"screenshots,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

// UpdateTrade applies a partial update. When any pricing input (side,
// quantity, entry/exit price, commission) is touched, gross and net P&L are
// re-derived from the merged field set; the same happens for risk/reward
// when entry price, stop or target changes.
func (s *Service) UpdateTrade(ctx context.Context, user *model.User, id string, input UpdateTradeInput) (*model.Trade, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	existing, err := s.trades.FindByID(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	columns := map[string]interface{}{}

	if input.Symbol != nil {
		symbol := strings.ToUpper(strings.TrimSpace(*input.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
		}
		columns["symbol"] = symbol
	}
	if input.Setup != nil {
		columns["setup"] = *input.Setup
	}
	if input.Mistakes != nil {
		columns["mistakes"] = *input.Mistakes
	}
	if input.Lessons != nil {
		columns["lessons"] = *input.Lessons
	}
	if input.MarketConditions != nil {
		columns["market_conditions"] = *input.MarketConditions
	}
	if input.SectorMomentum != nil {
		columns["sector_momentum"] = *input.SectorMomentum
	}
	if input.Screenshots != nil {
		columns["screenshots"] = input.Screenshots
	}
	if input.Date != nil {
		columns["date"] = *input.Date
	}

	// Merge incoming pricing fields over the stored ones.
	side := existing.Side
	if input.Side != nil {
		if *input.Side != model.SideLong && *input.Side != model.SideShort {
			return nil, fmt.Errorf("%w: side must be LONG or SHORT", ErrInvalidInput)
		}
		side = *input.Side
		columns["side"] = side
	}

	quantity := existing.Quantity
	if input.Quantity != nil {
		if !input.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
		quantity = *input.Quantity
		columns["quantity"] = quantity
	}

	entryPrice := existing.EntryPrice
	if input.EntryPrice != nil {
		if !input.EntryPrice.IsPositive() {
			return nil, fmt.Errorf("%w: entry and exit prices must be positive", ErrInvalidInput)
		}
		entryPrice = *input.EntryPrice
		columns["entry_price"] = entryPrice
	}

	exitPrice := existing.ExitPrice
	if input.ExitPrice != nil {
		if !input.ExitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: entry and exit prices must be positive", ErrInvalidInput)
		}
		exitPrice = *input.ExitPrice
		columns["exit_price"] = exitPrice
	}

	commission := existing.Commission
	if input.Commission != nil {
		if input.Commission.IsNegative() {
			return nil, fmt.Errorf("%w: commission cannot be negative", ErrInvalidInput)
		}
		commission = *input.Commission
		columns["commission"] = commission
	}

	pricingTouched := input.Side != nil || input.Quantity != nil ||
		input.EntryPrice != nil || input.ExitPrice != nil || input.Commission != nil

	if pricingTouched {
		gross := grossPnl(side, quantity, entryPrice, exitPrice)
		columns["gross_pnl"] = gross
		columns["net_pnl"] = gross.Sub(commission)
	}

	stopLoss := existing.StopLoss
	if input.StopLoss != nil {
		stopLoss = input.StopLoss
		columns["stop_loss"] = input.StopLoss
	}
	target := existing.Target
	if input.Target != nil {
		target = input.Target
		columns["target"] = input.Target
	}

	if input.EntryPrice != nil || input.StopLoss != nil || input.Target != nil {
		columns["risk_reward"] = riskReward(entryPrice, stopLoss, target)
	}

	if len(columns) == 0 {
		return existing, nil
	}

	if err := s.trades.UpdateColumns(ctx, id, user.ID, columns); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"trade_id":  id,
		"recompute": pricingTouched,
	}).Info("Trade updated")

	return s.trades.FindByID(ctx, id, user.ID)
}

// GetTrade loads one owned trade with tags.
func (s *Service) GetTrade(ctx context.Context, user *model.User, id string) (*model.Trade, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	trade, err := s.trades.FindByID(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, ErrNotFound
	}
	return trade, nil
}

// ListTrades returns the caller's trades with tags, newest first.
func (s *Service) ListTrades(ctx context.Context, user *model.User, limit, offset int) ([]model.Trade, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return s.trades.FindLatest(ctx, user.ID, limit, offset)
}

// DeleteTrade removes one owned trade.
func (s *Service) DeleteTrade(ctx context.Context, user *model.User, id string) error {
	if user == nil {
		return ErrUnauthenticated
	}

	if err := s.trades.Delete(ctx, id, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
