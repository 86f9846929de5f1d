package cashout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/betslip"
	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/tax"
)

// ErrUnavailable indica oferta indisponível; a razão acompanha o erro.
var ErrUnavailable = errors.New("cashout unavailable")

// SlipSource carrega o slip e as pernas.
type SlipSource interface {
	Get(ctx context.Context, slipID string) (betslip.Slip, []betslip.Bet, error)
}

// FixtureSource retorna o status dos fixtures referenciados pelas pernas.
type FixtureSource interface {
	Statuses(ctx context.Context, ids []string) (map[string]string, error)
}

// MarketSource retorna o snapshot corrente de um mercado.
type MarketSource interface {
	Get(ctx context.Context, key market.Key) (market.Market, error)
}

// Store comita o cashout: fecha slip e pernas, credita o valor líquido e
// registra no ledger em uma unidade atômica; falha no meio desfaz tudo.
type Store interface {
	ExecuteCashout(ctx context.Context, slipID string, valueCents, taxCents int64) (playerID string, newBalanceCents int64, err error)
}

// Notifier publica a mudança de saldo resultante.
type Notifier interface {
	BalanceChanged(ctx context.Context, playerID string, balanceCents int64, reason string) error
}

// Service precifica e executa cashout de slips abertos.
type Service struct {
	Log      *zap.Logger
	Slips    SlipSource
	Fixtures FixtureSource
	Markets  MarketSource
	Store    Store
	Notify   Notifier
	Tax      tax.Policy
	Margin   float64 // fator de margem do cashout (0.80)
}

// Price monta o snapshot consistente e calcula a oferta corrente.
func (s *Service) Price(ctx context.Context, slipID string) (Offer, error) {
	snap, err := s.snapshot(ctx, slipID)
	if err != nil {
		return Offer{}, err
	}
	return Price(snap, s.Margin), nil
}

// Execute comita um cashout exatamente uma vez.
// Oferta indisponível: nenhuma mutação, erro com a razão da oferta.
func (s *Service) Execute(ctx context.Context, slipID string) (Offer, error) {
	offer, err := s.Price(ctx, slipID)
	if err != nil {
		return Offer{}, err
	}
	if !offer.Available {
		return offer, fmt.Errorf("%w: %s", ErrUnavailable, offer.Reason)
	}

	// imposto só sobre ganho líquido positivo; política é colaborador externo
	net := offer.CashoutValueCents - offer.StakeCents
	var taxCents int64
	if net > 0 {
		taxCents = s.Tax.TaxOn(net)
	}

	playerID, newBalance, err := s.Store.ExecuteCashout(ctx, slipID, offer.CashoutValueCents, taxCents)
	if err != nil {
		return offer, err
	}

	s.Log.Info("cashout executed",
		zap.String("slip_id", slipID),
		zap.String("player_id", playerID),
		zap.Int64("value_cents", offer.CashoutValueCents),
		zap.Int64("tax_cents", taxCents),
	)

	if s.Notify != nil {
		if err := s.Notify.BalanceChanged(ctx, playerID, newBalance, "cashout"); err != nil {
			s.Log.Warn("balance notification failed",
				zap.String("player_id", playerID), zap.Error(err))
		}
	}
	return offer, nil
}

func (s *Service) snapshot(ctx context.Context, slipID string) (Snapshot, error) {
	slip, legs, err := s.Slips.Get(ctx, slipID)
	if err != nil {
		return Snapshot{}, err
	}

	ids := make([]string, 0, len(legs))
	seen := make(map[string]bool)
	for _, l := range legs {
		if !seen[l.FixtureID] {
			seen[l.FixtureID] = true
			ids = append(ids, l.FixtureID)
		}
	}
	statuses, err := s.Fixtures.Statuses(ctx, ids)
	if err != nil {
		return Snapshot{}, err
	}

	markets := make(map[market.Key]market.Market)
	for _, l := range legs {
		if l.Status == betslip.StatusClosed {
			continue // preço congelado, mercado irrelevante
		}
		m, err := s.Markets.Get(ctx, l.Key)
		if err == market.ErrNotFound {
			continue // ausência tratada como não negociável pelo pricer
		}
		if err != nil {
			return Snapshot{}, err
		}
		markets[l.Key] = m
	}

	return Snapshot{Slip: slip, Legs: legs, FixtureStatus: statuses, Markets: markets}, nil
}
