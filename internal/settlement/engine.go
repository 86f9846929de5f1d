package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/betslip"
	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/pkg/contracts/feed"
)

// BetResolution fecha uma aposta individual.
type BetResolution struct {
	BetID  string
	SlipID string
	Result betslip.Result
}

// SlipResolution é o efeito final sobre um slip completamente fechado.
type SlipResolution struct {
	SlipID           string
	PlayerID         string
	Result           betslip.Result
	PayoutCents      int64
	NewBalanceCents  int64
	BalanceNotReason string
}

// MarketSettler grava o veredito no mercado (idempotente). Retorna
// quantas linhas de mercado mudaram; zero indica referência a um
// mercado desconhecido ou já settled.
type MarketSettler interface {
	Settle(ctx context.Context, key market.Key, verdicts map[string]int) (int64, error)
}

// Store fecha apostas e resolve slips em uma única passada transacional
// por chave de mercado. Reentrega do mesmo settlement é no-op: as apostas
// já fechadas não são mais ACTIVE.
type Store interface {
	ActiveBets(ctx context.Context, key market.Key) ([]betslip.Bet, error)
	ResolveBets(ctx context.Context, resolutions []BetResolution) ([]SlipResolution, error)
}

// Notifier publica a mudança de saldo pro publisher externo.
type Notifier interface {
	BalanceChanged(ctx context.Context, playerID string, balanceCents int64, reason string) error
}

// Engine consome eventos de settlement do feed e fecha apostas com
// desfecho determinístico, exatamente uma vez por mercado/outcome.
type Engine struct {
	Log     *zap.Logger
	Markets MarketSettler
	Store   Store
	Notify  Notifier

	OnSettled func(bets int) // métrica
	OnSkipped func(string)   // métrica por motivo
}

// HandleSettlement aplica uma mensagem de settlement do feed.
// Entradas sem baseline liquidam a linha "sem specifier"; entradas com
// baseline são agrupadas e liquidam só a linha correspondente.
// Fixture ou mercado desconhecidos: log e segue; o feed não re-enfileira
// mensagens falhas (estado velho após reconexão não deve reprocessar).
func (e *Engine) HandleSettlement(ctx context.Context, ev feed.Event) error {
	for _, m := range ev.Markets {
		for baseline, verdicts := range partitionVerdicts(m) {
			key := market.Key{FixtureID: ev.FixtureID, MarketID: m.ID, Specifier: baseline}
			if err := e.settleKey(ctx, key, verdicts); err != nil {
				// recuperável: mensagem pode referenciar dado ainda não ingerido
				e.Log.Warn("settlement skipped",
					zap.String("fixture_id", key.FixtureID),
					zap.String("market_id", key.MarketID),
					zap.String("specifier", key.Specifier),
					zap.Error(err),
				)
				if e.OnSkipped != nil {
					e.OnSkipped("apply")
				}
			}
		}
	}
	return nil
}

func (e *Engine) settleKey(ctx context.Context, key market.Key, verdicts map[string]Verdict) error {
	raw := make(map[string]int, len(verdicts))
	for outcome, v := range verdicts {
		raw[outcome] = int(v)
	}
	n, err := e.Markets.Settle(ctx, key, raw)
	if err != nil {
		return err
	}
	if n == 0 {
		// referência velha (mercado nunca ingerido) ou reentrega
		e.Log.Warn("settlement matched no open market",
			zap.String("fixture_id", key.FixtureID),
			zap.String("market_id", key.MarketID),
			zap.String("specifier", key.Specifier),
		)
	}

	dec := Decide(verdicts)

	bets, err := e.Store.ActiveBets(ctx, key)
	if err != nil {
		return err
	}
	if len(bets) == 0 {
		return nil // nada aberto (ou settlement reentregue)
	}

	resolutions := make([]BetResolution, len(bets))
	for i, b := range bets {
		resolutions[i] = BetResolution{
			BetID:  b.ID,
			SlipID: b.SlipID,
			Result: dec.ResultFor(b.Outcome),
		}
	}

	slips, err := e.Store.ResolveBets(ctx, resolutions)
	if err != nil {
		return err
	}

	if e.OnSettled != nil {
		e.OnSettled(len(bets))
	}

	for _, s := range slips {
		if s.PayoutCents > 0 && e.Notify != nil {
			if err := e.Notify.BalanceChanged(ctx, s.PlayerID, s.NewBalanceCents, s.BalanceNotReason); err != nil {
				e.Log.Warn("balance notification failed",
					zap.String("player_id", s.PlayerID), zap.Error(err))
			}
		}
	}
	return nil
}

// partitionVerdicts agrupa os vereditos de um mercado do feed por baseline.
// Códigos desconhecidos são descartados (enum fechado).
func partitionVerdicts(m feed.Market) map[string]map[string]Verdict {
	out := make(map[string]map[string]Verdict)
	for _, p := range m.Providers {
		for _, b := range p.Bets {
			v, ok := ParseVerdict(b.Settlement)
			if !ok {
				continue
			}
			group, ok := out[b.BaseLine]
			if !ok {
				group = make(map[string]Verdict)
				out[b.BaseLine] = group
			}
			group[b.Name] = v
		}
	}
	return out
}
