package betslip

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/risk"
)

// Rejeições de negócio do builder. Cada uma vira uma razão legível na
// borda HTTP; nenhuma deixa commit parcial pra trás.
var (
	ErrStaleOdds          = errors.New("changed odds")
	ErrMarketUnavailable  = errors.New("market unavailable")
	ErrSameGameRestricted = errors.New("same-game multi restriction violated")
	ErrOverTierLimit      = errors.New("stake exceeds your current limit")
	ErrOverSlipWinCap     = errors.New("potential win exceeds slip cap")
	ErrOverDailyWinCap    = errors.New("potential win exceeds daily cap")
	ErrNoLegs             = errors.New("betslip has no legs")
	ErrInvalidStake       = errors.New("stake must be positive")
	ErrSlipNotFound       = errors.New("betslip not found")
)

// LegRequest é uma perna pedida pelo cliente, com as odds que ele viu.
type LegRequest struct {
	FixtureID   string
	MarketID    string
	Specifier   string
	Outcome     string
	ClaimedOdds float64
}

// Request é o pedido de criação de um slip.
type Request struct {
	PlayerID   string
	StakeCents int64
	UseBonus   bool
	Legs       []LegRequest
}

// MarketSource lê o snapshot autoritativo de um mercado (Postgres).
type MarketSource interface {
	Get(ctx context.Context, key market.Key) (market.Market, error)
}

// PriceSource é o caminho rápido (Redis) pro preço corrente.
type PriceSource interface {
	CurrentPrice(ctx context.Context, key market.Key, outcome string) (price float64, tradeable bool, found bool, err error)
}

// Accounts expõe o que o builder precisa da carteira sem acoplar no SQL.
type Accounts interface {
	NetWinningsSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

// Store comita o slip: débito (ou resgate de bônus), slip e pernas em uma
// única unidade atômica. Qualquer falha desfaz tudo.
type Store interface {
	Create(ctx context.Context, slip *Slip, legs []Bet, useBonus bool) error
	DailyPotentialWinCents(ctx context.Context, playerID string, since time.Time) (int64, error)
	ActiveBonusCents(ctx context.Context, playerID string) (int64, error)
}

// Builder valida e comita novos slips.
type Builder struct {
	Log      *zap.Logger
	Markets  MarketSource
	Cache    PriceSource // opcional; cache miss cai pro Postgres
	Accounts Accounts
	Store    Store
}

// tolerância de comparação de odds (float vindo do mesmo feed)
const oddsEpsilon = 1e-9

// Place executa os gates na ordem do contrato; o primeiro que falhar
// aborta sem nenhum efeito persistido.
func (b *Builder) Place(ctx context.Context, req Request) (*Slip, error) {
	if len(req.Legs) == 0 {
		return nil, ErrNoLegs
	}

	// 5 (antecipado pra validação de limites): com bônus, o stake é o valor
	// do bônus ativo; sem bônus, stake do pedido.
	stake := req.StakeCents
	if req.UseBonus {
		bonus, err := b.Store.ActiveBonusCents(ctx, req.PlayerID)
		if err != nil {
			return nil, err
		}
		stake = bonus
	}
	if stake <= 0 {
		return nil, ErrInvalidStake
	}

	// 1) preço corrente de cada perna vs. odds declaradas pelo cliente
	prices := make([]float64, len(req.Legs))
	for i, leg := range req.Legs {
		key := market.Key{FixtureID: leg.FixtureID, MarketID: leg.MarketID, Specifier: leg.Specifier}
		current, tradeable, err := b.currentPrice(ctx, key, leg.Outcome)
		if err != nil {
			return nil, err
		}
		if !tradeable {
			return nil, ErrMarketUnavailable
		}
		if math.Abs(current-leg.ClaimedOdds) > oddsEpsilon {
			return nil, ErrStaleOdds
		}
		prices[i] = current
	}

	// 2) same-game-multi: restrições + desconto de correlação
	betType := composition(req.Legs)
	if betType == risk.SameGameMulti {
		sgmLegs := make([]risk.SGMLeg, len(req.Legs))
		for i, l := range req.Legs {
			sgmLegs[i] = risk.SGMLeg{MarketID: l.MarketID, Specifier: l.Specifier}
		}
		if !risk.ValidateSameGame(sgmLegs) {
			return nil, ErrSameGameRestricted
		}
		prices = ApplySameGameDiscount(prices)
	}

	// 3) odds combinadas e retorno potencial
	combined := CombinedOdds(prices)
	payout := PotentialPayoutCents(stake, combined)

	// 4) limites de risco do tier + tetos globais
	net7d, err := b.Accounts.NetWinningsSince(ctx, req.PlayerID, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	tier := risk.TierFor(net7d)
	if stake > risk.MaxStake(tier, betType) {
		return nil, ErrOverTierLimit
	}
	if payout > risk.MaxSlipPotentialWinCents {
		return nil, ErrOverSlipWinCap
	}
	dayStart := time.Now().Add(-24 * time.Hour)
	daily, err := b.Store.DailyPotentialWinCents(ctx, req.PlayerID, dayStart)
	if err != nil {
		return nil, err
	}
	if daily+payout > risk.MaxDailyPotentialWinCents {
		return nil, ErrOverDailyWinCap
	}

	// 5+6) débito (ou resgate de bônus) + persistência, tudo em uma transação
	slip := &Slip{
		ID:                   uuid.NewString(),
		PlayerID:             req.PlayerID,
		StakeCents:           stake,
		Odds:                 combined,
		PotentialPayoutCents: payout,
		Status:               StatusActive,
		UsedBonus:            req.UseBonus,
		CreatedAt:            time.Now().UTC(),
	}
	legs := make([]Bet, len(req.Legs))
	for i, l := range req.Legs {
		legs[i] = Bet{
			ID:      uuid.NewString(),
			SlipID:  slip.ID,
			Key:     market.Key{FixtureID: l.FixtureID, MarketID: l.MarketID, Specifier: l.Specifier},
			Outcome: l.Outcome,
			Price:   prices[i],
			Status:  StatusActive,
		}
	}

	if err := b.Store.Create(ctx, slip, legs, req.UseBonus); err != nil {
		return nil, err
	}

	b.Log.Info("betslip placed",
		zap.String("slip_id", slip.ID),
		zap.String("player_id", req.PlayerID),
		zap.Int64("stake_cents", stake),
		zap.Float64("odds", combined),
		zap.Int("legs", len(legs)),
		zap.String("bet_type", string(betType)),
	)
	return slip, nil
}

// currentPrice tenta o cache Redis e cai pro Postgres em caso de miss.
func (b *Builder) currentPrice(ctx context.Context, key market.Key, outcome string) (float64, bool, error) {
	if b.Cache != nil {
		price, tradeable, found, err := b.Cache.CurrentPrice(ctx, key, outcome)
		if err == nil && found {
			return price, tradeable, nil
		}
		// erro de cache não derruba a aposta; segue pro banco
	}

	m, err := b.Markets.Get(ctx, key)
	if err == market.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	price, ok := m.Prices[outcome]
	if !ok {
		return 0, false, nil
	}
	return price, m.Tradeable(), nil
}

// composition deriva o tipo da aposta a partir das pernas.
func composition(legs []LegRequest) risk.BetType {
	if len(legs) == 1 {
		return risk.Single
	}
	first := legs[0].FixtureID
	for _, l := range legs[1:] {
		if l.FixtureID != first {
			return risk.Parlay
		}
	}
	return risk.SameGameMulti
}
