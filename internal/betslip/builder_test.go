package betslip

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/risk"
	"github.com/radieske/sportsbook-core/internal/wallet"
)

// fakeMarkets serve snapshots fixos por chave de mercado.
type fakeMarkets struct {
	markets map[market.Key]market.Market
}

func (f *fakeMarkets) Get(_ context.Context, key market.Key) (market.Market, error) {
	m, ok := f.markets[key]
	if !ok {
		return market.Market{}, market.ErrNotFound
	}
	return m, nil
}

// fakeStore registra as chamadas de persistência sem banco.
type fakeStore struct {
	created    *Slip
	legs       []Bet
	daily      int64
	bonusCents int64
	createErr  error
}

func (f *fakeStore) Create(_ context.Context, slip *Slip, legs []Bet, _ bool) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = slip
	f.legs = legs
	return nil
}

func (f *fakeStore) DailyPotentialWinCents(context.Context, string, time.Time) (int64, error) {
	return f.daily, nil
}

func (f *fakeStore) ActiveBonusCents(context.Context, string) (int64, error) {
	if f.bonusCents == 0 {
		return 0, wallet.ErrNoActiveBonus
	}
	return f.bonusCents, nil
}

type fakeAccounts struct{ net7d int64 }

func (f *fakeAccounts) NetWinningsSince(context.Context, string, time.Time) (int64, error) {
	return f.net7d, nil
}

func activeMarket(prices map[string]float64) market.Market {
	return market.Market{Status: market.StatusActive, Prices: prices}
}

func newTestBuilder(markets map[market.Key]market.Market, store *fakeStore, net7d int64) *Builder {
	return &Builder{
		Log:      zap.NewNop(),
		Markets:  &fakeMarkets{markets: markets},
		Accounts: &fakeAccounts{net7d: net7d},
		Store:    store,
	}
}

var key1x2 = market.Key{FixtureID: "sr:match:1", MarketID: "1x2"}

func TestPlaceSingleHappyPath(t *testing.T) {
	store := &fakeStore{}
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 2.50}),
	}, store, 0)

	slip, err := b.Place(context.Background(), Request{
		PlayerID:   "player-1",
		StakeCents: 1000,
		Legs:       []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.50}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if slip.Odds != 2.50 {
		t.Errorf("odds = %v, want 2.50", slip.Odds)
	}
	if slip.PotentialPayoutCents != 2500 {
		t.Errorf("potential payout = %d, want 2500", slip.PotentialPayoutCents)
	}
	if store.created == nil || store.created.ID != slip.ID {
		t.Fatal("slip not persisted")
	}
	if len(store.legs) != 1 || store.legs[0].Price != 2.50 {
		t.Errorf("persisted legs = %+v", store.legs)
	}
}

func TestPlaceRejectsStaleOdds(t *testing.T) {
	store := &fakeStore{}
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 2.60}),
	}, store, 0)

	_, err := b.Place(context.Background(), Request{
		PlayerID:   "player-1",
		StakeCents: 1000,
		Legs:       []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.50}},
	})
	if !errors.Is(err, ErrStaleOdds) {
		t.Fatalf("Place() error = %v, want ErrStaleOdds", err)
	}
	if store.created != nil {
		t.Error("nothing should be persisted on rejection")
	}
}

func TestPlaceRejectsSuspendedMarket(t *testing.T) {
	store := &fakeStore{}
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: {Status: market.StatusSuspended, Prices: map[string]float64{"1": 2.50}},
	}, store, 0)

	_, err := b.Place(context.Background(), Request{
		PlayerID:   "player-1",
		StakeCents: 1000,
		Legs:       []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.50}},
	})
	if !errors.Is(err, ErrMarketUnavailable) {
		t.Fatalf("Place() error = %v, want ErrMarketUnavailable", err)
	}
}

func TestPlaceUnknownMarketUnavailable(t *testing.T) {
	b := newTestBuilder(map[market.Key]market.Market{}, &fakeStore{}, 0)
	_, err := b.Place(context.Background(), Request{
		PlayerID:   "player-1",
		StakeCents: 1000,
		Legs:       []LegRequest{{FixtureID: "sr:match:9", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.0}},
	})
	if !errors.Is(err, ErrMarketUnavailable) {
		t.Fatalf("Place() error = %v, want ErrMarketUnavailable", err)
	}
}

func TestPlaceSameGameDiscountAndRestrictions(t *testing.T) {
	keyOU := market.Key{FixtureID: "sr:match:1", MarketID: "over_under", Specifier: "2.5"}
	markets := map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 2.00}),
		keyOU:  activeMarket(map[string]float64{"Over": 1.80}),
	}

	t.Run("desconto aplicado em toda perna", func(t *testing.T) {
		store := &fakeStore{}
		b := newTestBuilder(markets, store, 0)
		slip, err := b.Place(context.Background(), Request{
			PlayerID:   "player-1",
			StakeCents: 1000,
			Legs: []LegRequest{
				{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.00},
				{FixtureID: "sr:match:1", MarketID: "over_under", Specifier: "2.5", Outcome: "Over", ClaimedOdds: 1.80},
			},
		})
		if err != nil {
			t.Fatalf("Place() error = %v", err)
		}
		// 2.00 -> 1.80, 1.80 -> 1.62; produto 2.916 -> 2.92
		if slip.Odds != 2.92 {
			t.Errorf("odds = %v, want 2.92", slip.Odds)
		}
		if store.legs[0].Price != 1.80 || store.legs[1].Price != 1.62 {
			t.Errorf("leg prices = %v / %v, want 1.80 / 1.62", store.legs[0].Price, store.legs[1].Price)
		}
	})

	t.Run("mercado fora da lista permitida", func(t *testing.T) {
		keyCS := market.Key{FixtureID: "sr:match:1", MarketID: "correct_score"}
		m2 := map[market.Key]market.Market{
			key1x2: activeMarket(map[string]float64{"1": 2.00}),
			keyCS:  activeMarket(map[string]float64{"2:1": 9.00}),
		}
		b := newTestBuilder(m2, &fakeStore{}, 0)
		_, err := b.Place(context.Background(), Request{
			PlayerID:   "player-1",
			StakeCents: 1000,
			Legs: []LegRequest{
				{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.00},
				{FixtureID: "sr:match:1", MarketID: "correct_score", Outcome: "2:1", ClaimedOdds: 9.00},
			},
		})
		if !errors.Is(err, ErrSameGameRestricted) {
			t.Fatalf("Place() error = %v, want ErrSameGameRestricted", err)
		}
	})
}

func TestPlaceTierLimit(t *testing.T) {
	store := &fakeStore{}
	// tier D (>= 1000 reais de ganho líquido em 7d): single máximo 500 reais
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 2.00}),
	}, store, 150_000_00)

	_, err := b.Place(context.Background(), Request{
		PlayerID:   "player-hot",
		StakeCents: 600_00,
		Legs:       []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.00}},
	})
	if !errors.Is(err, ErrOverTierLimit) {
		t.Fatalf("Place() error = %v, want ErrOverTierLimit", err)
	}
	if store.created != nil {
		t.Error("nothing should be persisted on rejection")
	}
}

func TestPlaceDailyWinCap(t *testing.T) {
	store := &fakeStore{daily: 199_000_00}
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 2.00}),
	}, store, 0)

	_, err := b.Place(context.Background(), Request{
		PlayerID:   "player-1",
		StakeCents: 1_000_00,
		Legs:       []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.00}},
	})
	if !errors.Is(err, ErrOverDailyWinCap) {
		t.Fatalf("Place() error = %v, want ErrOverDailyWinCap", err)
	}
}

func TestPlaceInsufficientFundsPropagates(t *testing.T) {
	store := &fakeStore{createErr: wallet.ErrInsufficientFunds}
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 2.00}),
	}, store, 0)

	_, err := b.Place(context.Background(), Request{
		PlayerID:   "player-broke",
		StakeCents: 1000,
		Legs:       []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 2.00}},
	})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("Place() error = %v, want ErrInsufficientFunds", err)
	}
}

func TestPlaceWithBonusUsesBonusAsStake(t *testing.T) {
	store := &fakeStore{bonusCents: 500}
	b := newTestBuilder(map[market.Key]market.Market{
		key1x2: activeMarket(map[string]float64{"1": 3.00}),
	}, store, 0)

	slip, err := b.Place(context.Background(), Request{
		PlayerID: "player-1",
		UseBonus: true,
		Legs:     []LegRequest{{FixtureID: "sr:match:1", MarketID: "1x2", Outcome: "1", ClaimedOdds: 3.00}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if slip.StakeCents != 500 {
		t.Errorf("stake = %d, want bonus amount 500", slip.StakeCents)
	}
	if !slip.UsedBonus {
		t.Error("UsedBonus should be set")
	}
}

func TestPlaceNoLegs(t *testing.T) {
	b := newTestBuilder(nil, &fakeStore{}, 0)
	_, err := b.Place(context.Background(), Request{PlayerID: "p", StakeCents: 100})
	if !errors.Is(err, ErrNoLegs) {
		t.Fatalf("Place() error = %v, want ErrNoLegs", err)
	}
}

func TestCompositionDerivesBetType(t *testing.T) {
	tests := []struct {
		name string
		legs []LegRequest
		want risk.BetType
	}{
		{name: "uma perna", legs: []LegRequest{{FixtureID: "a"}}, want: risk.Single},
		{name: "fixtures distintos", legs: []LegRequest{{FixtureID: "a"}, {FixtureID: "b"}}, want: risk.Parlay},
		{name: "mesmo fixture", legs: []LegRequest{{FixtureID: "a"}, {FixtureID: "a"}}, want: risk.SameGameMulti},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composition(tt.legs); got != tt.want {
				t.Errorf("composition() = %v, want %v", got, tt.want)
			}
		})
	}
}
