package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradejournal/src/model"
)

type mockTradeStore struct {
	created    []*model.Trade
	stored     map[string]*model.Trade
	columns    map[string]interface{}
	createErr  error
	updateErr  error
	deleteErr  error
	deletedIDs []string
}

func (m *mockTradeStore) Create(_ context.Context, trade *model.Trade) error {
	if m.createErr != nil {
		return m.createErr
	}
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	m.created = append(m.created, trade)
	if m.stored == nil {
		m.stored = map[string]*model.Trade{}
	}
	m.stored[trade.ID] = trade
	return nil
}

func (m *mockTradeStore) FindByID(_ context.Context, id, userID string) (*model.Trade, error) {
	trade, ok := m.stored[id]
	if !ok || trade.UserID != userID {
		return nil, nil
	}
	return trade, nil
}

func (m *mockTradeStore) FindLatest(_ context.Context, userID string, limit, offset int) ([]model.Trade, error) {
	var out []model.Trade
	for _, trade := range m.stored {
		if trade.UserID == userID {
			out = append(out, *trade)
		}
	}
	return out, nil
}

func (m *mockTradeStore) UpdateColumns(_ context.Context, id, userID string, columns map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.columns = columns
	return nil
}

func (m *mockTradeStore) Delete(_ context.Context, id, userID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type mockTagStore struct {
	tags       map[string]*model.Tag
	findErr    error
	linkErr    error
	linkedIDs  []string
	linkedWith string
}

func (m *mockTagStore) FindOrCreate(_ context.Context, userID, name string) (*model.Tag, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.tags == nil {
		m.tags = map[string]*model.Tag{}
	}
	if tag, ok := m.tags[name]; ok {
		return tag, nil
	}
	tag := &model.Tag{ID: uuid.NewString(), UserID: userID, Name: name}
	m.tags[name] = tag
	return tag, nil
}

func (m *mockTagStore) LinkTrade(_ context.Context, tradeID string, tagIDs []string) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	m.linkedWith = tradeID
	m.linkedIDs = append(m.linkedIDs, tagIDs...)
	return nil
}

func newTestService(trades *mockTradeStore, tags *mockTagStore) *Service {
	svc := NewService(trades, tags)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	}
	return svc
}

func testUser() *model.User {
	return &model.User{ID: uuid.NewString()}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateTradeLongPnl(t *testing.T) {
	trades := &mockTradeStore{}
	svc := newTestService(trades, &mockTagStore{})

	commission := dec("1.00")
	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "aapl",
		Side:       model.SideLong,
		Quantity:   dec("100"),
		EntryPrice: dec("175.50"),
		ExitPrice:  dec("178.25"),
		Commission: &commission,
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", trade.Symbol)
	assert.True(t, trade.GrossPnl.Equal(dec("275.00")), "gross: %s", trade.GrossPnl)
	assert.True(t, trade.NetPnl.Equal(dec("274.00")), "net: %s", trade.NetPnl)
	assert.Nil(t, trade.RiskReward)
	require.Len(t, trades.created, 1)
}

func TestCreateTradeShortPnl(t *testing.T) {
	svc := newTestService(&mockTradeStore{}, &mockTagStore{})

	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "XYZ",
		Side:       model.SideShort,
		Quantity:   dec("200"),
		EntryPrice: dec("10.00"),
		ExitPrice:  dec("8.00"),
	})
	require.NoError(t, err)

	assert.True(t, trade.GrossPnl.Equal(dec("400.00")), "gross: %s", trade.GrossPnl)
	assert.True(t, trade.NetPnl.Equal(dec("400.00")), "net: %s", trade.NetPnl)
}

func TestCreateTradeRiskReward(t *testing.T) {
	svc := newTestService(&mockTradeStore{}, &mockTagStore{})

	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "AAPL",
		Side:       model.SideLong,
		Quantity:   dec("100"),
		EntryPrice: dec("100.00"),
		ExitPrice:  dec("106.00"),
		StopLoss:   decPtr("98.00"),
		Target:     decPtr("106.00"),
	})
	require.NoError(t, err)

	require.NotNil(t, trade.RiskReward)
	assert.True(t, trade.RiskReward.Equal(dec("3")), "risk/reward: %s", trade.RiskReward)
}

func TestCreateTradeDegenerateRisk(t *testing.T) {
	svc := newTestService(&mockTradeStore{}, &mockTagStore{})

	// Stop equal to entry: ratio must stay undefined, never Inf.
	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "AAPL",
		Side:       model.SideLong,
		Quantity:   dec("10"),
		EntryPrice: dec("100.00"),
		ExitPrice:  dec("101.00"),
		StopLoss:   decPtr("100.00"),
		Target:     decPtr("110.00"),
	})
	require.NoError(t, err)
	assert.Nil(t, trade.RiskReward)
}

func TestCreateTradeDefaults(t *testing.T) {
	trades := &mockTradeStore{}
	svc := newTestService(trades, &mockTagStore{})

	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "SPY",
		Side:       model.SideLong,
		Quantity:   dec("1"),
		EntryPrice: dec("450.00"),
		ExitPrice:  dec("451.00"),
	})
	require.NoError(t, err)

	assert.True(t, trade.Commission.IsZero())
	assert.NotNil(t, trade.Screenshots)
	assert.Empty(t, trade.Screenshots)
	assert.Equal(t, "2024-03-15", trade.Date)
	assert.False(t, trade.EntryTime.IsZero())
	assert.False(t, trade.ExitTime.IsZero())
}

func TestCreateTradeUnauthenticated(t *testing.T) {
	svc := newTestService(&mockTradeStore{}, &mockTagStore{})

	_, err := svc.CreateTrade(context.Background(), nil, CreateTradeInput{
		Symbol:     "AAPL",
		Side:       model.SideLong,
		Quantity:   dec("1"),
		EntryPrice: dec("1"),
		ExitPrice:  dec("1"),
	})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateTradeValidation(t *testing.T) {
	svc := newTestService(&mockTradeStore{}, &mockTagStore{})
	user := testUser()

	cases := []struct {
		name  string
		input CreateTradeInput
	}{
		{"missing symbol", CreateTradeInput{Side: model.SideLong, Quantity: dec("1"), EntryPrice: dec("1"), ExitPrice: dec("1")}},
		{"bad side", CreateTradeInput{Symbol: "AAPL", Side: "BUY", Quantity: dec("1"), EntryPrice: dec("1"), ExitPrice: dec("1")}},
		{"zero quantity", CreateTradeInput{Symbol: "AAPL", Side: model.SideLong, Quantity: dec("0"), EntryPrice: dec("1"), ExitPrice: dec("1")}},
		{"negative entry", CreateTradeInput{Symbol: "AAPL", Side: model.SideLong, Quantity: dec("1"), EntryPrice: dec("-1"), ExitPrice: dec("1")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTrade(context.Background(), user, tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateTradeResolvesTagNames(t *testing.T) {
	trades := &mockTradeStore{}
	tags := &mockTagStore{}
	svc := newTestService(trades, tags)

	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "AAPL",
		Side:       model.SideLong,
		Quantity:   dec("1"),
		EntryPrice: dec("1"),
		ExitPrice:  dec("2"),
		TagIDs:     []string{"existing-tag"},
		TagNames:   []string{"momentum", " ", "gap-up"},
	})
	require.NoError(t, err)

	assert.Equal(t, trade.ID, tags.linkedWith)
	require.Len(t, tags.linkedIDs, 3)
	assert.Equal(t, "existing-tag", tags.linkedIDs[0])
}

func TestCreateTradePartialWrite(t *testing.T) {
	trades := &mockTradeStore{}
	tags := &mockTagStore{linkErr: fmt.Errorf("link failed")}
	svc := newTestService(trades, tags)

	trade, err := svc.CreateTrade(context.Background(), testUser(), CreateTradeInput{
		Symbol:     "AAPL",
		Side:       model.SideLong,
		Quantity:   dec("1"),
		EntryPrice: dec("1"),
		ExitPrice:  dec("2"),
		TagIDs:     []string{"some-tag"},
	})

	// The parent row committed: both the trade and the step error come back.
	require.NotNil(t, trade)
	var partial *PartialWriteError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, trade.ID, partial.ParentID)
	assert.Equal(t, "tag linking", partial.Step)
}

func TestUpdateTradeRecomputesPnl(t *testing.T) {
	user := testUser()
	existing := &model.Trade{
		ID:         "trade-1",
		UserID:     user.ID,
		Symbol:     "XYZ",
		Side:       model.SideShort,
		Quantity:   dec("200"),
		EntryPrice: dec("10.00"),
		ExitPrice:  dec("8.00"),
		Commission: dec("0"),
		GrossPnl:   dec("400.00"),
		NetPnl:     dec("400.00"),
	}
	trades := &mockTradeStore{stored: map[string]*model.Trade{"trade-1": existing}}
	svc := newTestService(trades, &mockTagStore{})

	// Touch only the exit price; the SHORT convention must be reapplied
	// over the merged field set.
	_, err := svc.UpdateTrade(context.Background(), user, "trade-1", UpdateTradeInput{
		ExitPrice: decPtr("9.00"),
	})
	require.NoError(t, err)

	gross, ok := trades.columns["gross_pnl"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, gross.Equal(dec("200.00")), "gross: %s", gross)
	net, ok := trades.columns["net_pnl"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, net.Equal(dec("200.00")), "net: %s", net)
}

func TestUpdateTradeRejectsInvalidFields(t *testing.T) {
	user := testUser()
	blank := "   "

	cases := []struct {
		name  string
		input UpdateTradeInput
	}{
		{"negative entry price", UpdateTradeInput{EntryPrice: decPtr("-5.00")}},
		{"zero exit price", UpdateTradeInput{ExitPrice: decPtr("0")}},
		{"blank symbol", UpdateTradeInput{Symbol: &blank}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			existing := &model.Trade{
				ID:         "trade-1",
				UserID:     user.ID,
				Symbol:     "XYZ",
				Side:       model.SideLong,
				Quantity:   dec("100"),
				EntryPrice: dec("10.00"),
				ExitPrice:  dec("21.50"),
			}
			trades := &mockTradeStore{stored: map[string]*model.Trade{"trade-1": existing}}
			svc := newTestService(trades, &mockTagStore{})

			_, err := svc.UpdateTrade(context.Background(), user, "trade-1", tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, trades.columns, "rejected update must not reach the store")
		})
	}
}

func TestUpdateTradeNarrativeOnlySkipsRecompute(t *testing.T) {
	user := testUser()
	existing := &model.Trade{
		ID:         "trade-1",
		UserID:     user.ID,
		Side:       model.SideLong,
		Quantity:   dec("1"),
		EntryPrice: dec("1"),
		ExitPrice:  dec("2"),
	}
	trades := &mockTradeStore{stored: map[string]*model.Trade{"trade-1": existing}}
	svc := newTestService(trades, &mockTagStore{})

	lessons := "wait for confirmation"
	_, err := svc.UpdateTrade(context.Background(), user, "trade-1", UpdateTradeInput{
		Lessons: &lessons,
	})
	require.NoError(t, err)

	assert.Contains(t, trades.columns, "lessons")
	assert.NotContains(t, trades.columns, "gross_pnl")
	assert.NotContains(t, trades.columns, "net_pnl")
}

func TestUpdateTradeNotFound(t *testing.T) {
	svc := newTestService(&mockTradeStore{}, &mockTagStore{})

	setup := "whatever"
	_, err := svc.UpdateTrade(context.Background(), testUser(), "missing", UpdateTradeInput{Setup: &setup})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTradeNotFound(t *testing.T) {
	trades := &mockTradeStore{deleteErr: gorm.ErrRecordNotFound}
	svc := newTestService(trades, &mockTagStore{})

	err := svc.DeleteTrade(context.Background(), testUser(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveTag(t *testing.T) {
	tags := &mockTagStore{}
	svc := newTestService(&mockTradeStore{}, tags)
	user := testUser()

	first, err := svc.ResolveTag(context.Background(), user, " momentum ")
	require.NoError(t, err)
	second, err := svc.ResolveTag(context.Background(), user, "momentum")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	_, err = svc.ResolveTag(context.Background(), user, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ResolveTag(context.Background(), nil, "momentum")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRiskRewardHelper(t *testing.T) {
	if got := riskReward(dec("100"), nil, decPtr("110")); got != nil {
		t.Fatalf("expected nil ratio without a stop, got %s", got)
	}
	if got := riskReward(dec("100"), decPtr("100"), decPtr("110")); got != nil {
		t.Fatalf("expected nil ratio for zero risk leg, got %s", got)
	}

	got := riskReward(dec("100"), decPtr("95"), decPtr("110"))
	if got == nil || !got.Equal(dec("2")) {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestDeleteTradeOtherError(t *testing.T) {
	trades := &mockTradeStore{deleteErr: errors.New("db down")}
	svc := newTestService(trades, &mockTagStore{})

	err := svc.DeleteTrade(context.Background(), testUser(), "trade-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
