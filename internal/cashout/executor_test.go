package cashout

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/betslip"
	"github.com/radieske/sportsbook-core/internal/fixture"
	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/tax"
)

type fakeSlips struct {
	slip betslip.Slip
	legs []betslip.Bet
}

func (f *fakeSlips) Get(context.Context, string) (betslip.Slip, []betslip.Bet, error) {
	return f.slip, f.legs, nil
}

type fakeFixtures struct{ statuses map[string]string }

func (f *fakeFixtures) Statuses(context.Context, []string) (map[string]string, error) {
	return f.statuses, nil
}

type fakeMarketSource struct{ markets map[market.Key]market.Market }

func (f *fakeMarketSource) Get(_ context.Context, key market.Key) (market.Market, error) {
	m, ok := f.markets[key]
	if !ok {
		return market.Market{}, market.ErrNotFound
	}
	return m, nil
}

type fakeCashoutStore struct {
	called    bool
	value     int64
	taxCents  int64
	playerID  string
	execError error
}

func (f *fakeCashoutStore) ExecuteCashout(_ context.Context, _ string, valueCents, taxCents int64) (string, int64, error) {
	if f.execError != nil {
		return "", 0, f.execError
	}
	f.called = true
	f.value = valueCents
	f.taxCents = taxCents
	return f.playerID, valueCents - taxCents, nil
}

type fakeNotify struct{ calls int }

func (f *fakeNotify) BalanceChanged(context.Context, string, int64, string) error {
	f.calls++
	return nil
}

var testKey = market.Key{FixtureID: "sr:match:1", MarketID: "1x2"}

func newTestService(slip betslip.Slip, legs []betslip.Bet, markets map[market.Key]market.Market, store *fakeCashoutStore, policy tax.Policy) *Service {
	return &Service{
		Log:      zap.NewNop(),
		Slips:    &fakeSlips{slip: slip, legs: legs},
		Fixtures: &fakeFixtures{statuses: map[string]string{"sr:match:1": fixture.StatusLive}},
		Markets:  &fakeMarketSource{markets: markets},
		Store:    store,
		Notify:   &fakeNotify{},
		Tax:      policy,
		Margin:   0.80,
	}
}

func TestExecuteTaxesPositiveNetOnly(t *testing.T) {
	slip := betslip.Slip{
		ID: "slip-1", Status: betslip.StatusActive,
		StakeCents: 100000, Odds: 5.0, PotentialPayoutCents: 500000,
	}
	legs := []betslip.Bet{{Key: testKey, Outcome: "1", Price: 5.0, Status: betslip.StatusActive}}

	t.Run("ganho líquido positivo paga imposto", func(t *testing.T) {
		store := &fakeCashoutStore{playerID: "player-1"}
		svc := newTestService(slip, legs, map[market.Key]market.Market{
			testKey: {Status: market.StatusActive, Prices: map[string]float64{"1": 3.0}},
		}, store, tax.RatePolicy{Rate: 0.15})

		offer, err := svc.Execute(context.Background(), "slip-1")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !store.called {
			t.Fatal("store not called")
		}
		// valor 133333, net 33333, imposto 15% = 4999.95 -> 5000
		if store.value != 133333 {
			t.Errorf("value = %d, want 133333", store.value)
		}
		if store.taxCents != 5000 {
			t.Errorf("tax = %d, want 5000", store.taxCents)
		}
		if offer.CashoutValueCents != 133333 {
			t.Errorf("offer value = %d", offer.CashoutValueCents)
		}
	})

	t.Run("cashout abaixo do stake não tributa", func(t *testing.T) {
		store := &fakeCashoutStore{playerID: "player-1"}
		// odds atuais maiores que as originais: valor < stake
		svc := newTestService(slip, legs, map[market.Key]market.Market{
			testKey: {Status: market.StatusActive, Prices: map[string]float64{"1": 8.0}},
		}, store, tax.RatePolicy{Rate: 0.15})

		if _, err := svc.Execute(context.Background(), "slip-1"); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if store.taxCents != 0 {
			t.Errorf("tax = %d, want 0 on negative net", store.taxCents)
		}
	})
}

func TestExecuteUnavailableDoesNotTouchStore(t *testing.T) {
	slip := betslip.Slip{ID: "slip-1", Status: betslip.StatusClosed, StakeCents: 1000}
	store := &fakeCashoutStore{playerID: "player-1"}
	svc := newTestService(slip, nil, nil, store, tax.None{})

	offer, err := svc.Execute(context.Background(), "slip-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Execute() error = %v, want ErrUnavailable", err)
	}
	if store.called {
		t.Error("store must not be called for unavailable offer")
	}
	if offer.Reason != ReasonSlipNotActive {
		t.Errorf("reason = %q, want %q", offer.Reason, ReasonSlipNotActive)
	}
}

func TestExecuteStoreFailurePropagates(t *testing.T) {
	slip := betslip.Slip{
		ID: "slip-1", Status: betslip.StatusActive,
		StakeCents: 1000, Odds: 2.0,
	}
	legs := []betslip.Bet{{Key: testKey, Outcome: "1", Price: 2.0, Status: betslip.StatusActive}}
	store := &fakeCashoutStore{execError: errors.New("pq: deadlock detected")}
	svc := newTestService(slip, legs, map[market.Key]market.Market{
		testKey: {Status: market.StatusActive, Prices: map[string]float64{"1": 2.0}},
	}, store, tax.None{})

	if _, err := svc.Execute(context.Background(), "slip-1"); err == nil {
		t.Fatal("store failure must surface")
	}
	notify := svc.Notify.(*fakeNotify)
	if notify.calls != 0 {
		t.Error("no notification on failed cashout")
	}
}

func TestExecuteNotifiesBalance(t *testing.T) {
	slip := betslip.Slip{
		ID: "slip-1", Status: betslip.StatusActive,
		StakeCents: 1000, Odds: 2.0,
	}
	legs := []betslip.Bet{{Key: testKey, Outcome: "1", Price: 2.0, Status: betslip.StatusActive}}
	store := &fakeCashoutStore{playerID: "player-1"}
	svc := newTestService(slip, legs, map[market.Key]market.Market{
		testKey: {Status: market.StatusActive, Prices: map[string]float64{"1": 2.0}},
	}, store, tax.None{})

	if _, err := svc.Execute(context.Background(), "slip-1"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	notify := svc.Notify.(*fakeNotify)
	if notify.calls != 1 {
		t.Errorf("balance notifications = %d, want 1", notify.calls)
	}
}
