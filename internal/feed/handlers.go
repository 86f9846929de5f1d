package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/fixture"
	"github.com/radieske/sportsbook-core/internal/market"
	cevents "github.com/radieske/sportsbook-core/pkg/contracts/events"
	"github.com/radieske/sportsbook-core/pkg/contracts/feed"
)

// FixtureStore é o que os handlers precisam do armazenamento de fixtures.
type FixtureStore interface {
	Upsert(ctx context.Context, f fixture.Fixture) error
	UpdateScore(ctx context.Context, id string, home, away int) error
}

// MarketStore é o upsert atômico de odds por chave de mercado.
type MarketStore interface {
	UpsertOdds(ctx context.Context, key market.Key, priceDelta map[string]float64, status market.Status) error
}

// MarketCache espelha o estado corrente pro caminho rápido do betting-service.
type MarketCache interface {
	Merge(ctx context.Context, key market.Key, priceDelta map[string]float64, status market.Status) error
}

// SettlementHandler é o engine de settlement plugado no dispatcher.
type SettlementHandler interface {
	HandleSettlement(ctx context.Context, ev feed.Event) error
}

// MarketNotifier publica mudanças de mercado pro publisher externo.
type MarketNotifier interface {
	MarketChanged(ctx context.Context, ev cevents.MarketChanged) error
}

// Handlers concentra o processamento dos eventos normalizados do feed.
type Handlers struct {
	Log        *zap.Logger
	Fixtures   FixtureStore
	Markets    MarketStore
	Cache      MarketCache
	Settlement SettlementHandler
	Notify     MarketNotifier

	OnMarketUpsert func() // métrica
}

// HandleFixture grava/atualiza o fixture (status só avança).
func (h *Handlers) HandleFixture(ctx context.Context, ev feed.Event) error {
	if ev.Fixture == nil {
		return nil
	}
	return h.Fixtures.Upsert(ctx, fixture.Fixture{
		ID:        ev.FixtureID,
		Sport:     ev.Fixture.Sport,
		HomeTeam:  ev.Fixture.HomeTeam,
		AwayTeam:  ev.Fixture.AwayTeam,
		StartTime: time.UnixMilli(ev.Fixture.StartTime).UTC(),
		Status:    fixture.NormalizeStatus(ev.Fixture.Status),
	})
}

// HandleLivescore grava o placar corrente.
// Fixture ainda não ingerido: descartado com log, o feed corrige depois.
func (h *Handlers) HandleLivescore(ctx context.Context, ev feed.Event) error {
	if ev.Livescore == nil {
		return nil
	}
	err := h.Fixtures.UpdateScore(ctx, ev.FixtureID, ev.Livescore.HomeScore, ev.Livescore.AwayScore)
	if err == fixture.ErrNotFound {
		h.Log.Warn("livescore for unknown fixture dropped", zap.String("fixture_id", ev.FixtureID))
		return nil
	}
	return err
}

// HandleOdds particiona os preços por specifier e faz um upsert atômico
// por partição: cada grupo mapeia pra exatamente uma linha de mercado e
// uma transação de escrita.
func (h *Handlers) HandleOdds(ctx context.Context, ev feed.Event) error {
	for _, m := range ev.Markets {
		for specifier, part := range partitionOdds(m) {
			key := market.Key{FixtureID: ev.FixtureID, MarketID: m.ID, Specifier: specifier}

			if err := h.Markets.UpsertOdds(ctx, key, part.prices, part.status); err != nil {
				return err
			}
			if h.OnMarketUpsert != nil {
				h.OnMarketUpsert()
			}

			// cache e notificação não bloqueiam a persistência
			if h.Cache != nil {
				if err := h.Cache.Merge(ctx, key, part.prices, part.status); err != nil {
					h.Log.Warn("price cache update failed", zap.Error(err))
				}
			}
			if h.Notify != nil {
				notice := cevents.MarketChanged{
					FixtureID: key.FixtureID,
					MarketID:  key.MarketID,
					Specifier: key.Specifier,
					Status:    string(part.status),
					Prices:    part.prices,
				}
				if err := h.Notify.MarketChanged(ctx, notice); err != nil {
					h.Log.Warn("market notification failed", zap.Error(err))
				}
			}
		}
	}
	return nil
}

// HandleSettlement delega pro engine de settlement.
func (h *Handlers) HandleSettlement(ctx context.Context, ev feed.Event) error {
	return h.Settlement.HandleSettlement(ctx, ev)
}

type oddsPartition struct {
	prices map[string]float64
	status market.Status
}

// partitionOdds agrupa as seleções de um mercado do feed por baseline.
// Qualquer seleção suspensa suspende a partição inteira. Preço não
// positivo é entrada malformada: descartado do mapa de preços, mas a
// seleção ainda conta pro status (fornecedor zera preço ao suspender).
func partitionOdds(m feed.Market) map[string]oddsPartition {
	out := make(map[string]oddsPartition)
	for _, p := range m.Providers {
		for _, b := range p.Bets {
			part, ok := out[b.BaseLine]
			if !ok {
				part = oddsPartition{prices: make(map[string]float64), status: market.StatusActive}
			}
			if b.Price > 0 {
				part.prices[b.Name] = b.Price
			}
			if b.Status == feed.BetStatusSuspended {
				part.status = market.StatusSuspended
			}
			out[b.BaseLine] = part
		}
	}
	return out
}
