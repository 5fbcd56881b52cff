package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// Trade is one recorded round trip with realized P&L. Derived economics
// (gross_pnl, net_pnl, risk_reward) are computed by the journal service
// before the row is written, never by the database.
type Trade struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	Symbol string `gorm:"size:20;not null;index" json:"symbol"`
	Side   string `gorm:"size:10;not null" json:"side"`

	Quantity   decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	EntryPrice decimal.Decimal `gorm:"type:numeric;not null" json:"entry_price"`
	ExitPrice  decimal.Decimal `gorm:"type:numeric;not null" json:"exit_price"`
	Commission decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"commission"`

	GrossPnl   decimal.Decimal  `gorm:"type:numeric;not null" json:"gross_pnl"`
	NetPnl     decimal.Decimal  `gorm:"type:numeric;not null" json:"net_pnl"`
	RiskReward *decimal.Decimal `gorm:"type:numeric" json:"risk_reward,omitempty"`

	StopLoss *decimal.Decimal `gorm:"type:numeric" json:"stop_loss,omitempty"`
	Target   *decimal.Decimal `gorm:"type:numeric" json:"target,omitempty"`

	Setup            string `gorm:"size:1024" json:"setup,omitempty"`
	Mistakes         string `gorm:"size:1024" json:"mistakes,omitempty"`
	Lessons          string `gorm:"size:1024" json:"lessons,omitempty"`
	MarketConditions string `gorm:"size:1024" json:"market_conditions,omitempty"`
	SectorMomentum   string `gorm:"size:1024" json:"sector_momentum,omitempty"`

	// Screenshots holds opaque attachment storage references, in upload order.
	Screenshots []string `gorm:"serializer:json" json:"screenshots"`

	// Date is the trading calendar date, formatted 2006-01-02.
	Date      string    `gorm:"size:10;not null" json:"date"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags []Tag `gorm:"many2many:trade_tags;" json:"tags,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}

func (t *Trade) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TradeProjection is the slim read model used by the statistics aggregator.
// Pulling only these columns keeps aggregation queries off the heavy
// narrative and screenshot fields.
type TradeProjection struct {
	NetPnl    decimal.Decimal `json:"net_pnl"`
	Side      string          `json:"side"`
	CreatedAt time.Time       `json:"created_at"`
}
