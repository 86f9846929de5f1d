package cashout

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/sportsbook-core/internal/betslip"
	"github.com/radieske/sportsbook-core/internal/fixture"
	"github.com/radieske/sportsbook-core/internal/market"
)

// Motivos de indisponibilidade retornados ao cliente.
const (
	ReasonSlipNotActive    = "betslip is not active"
	ReasonFixtureCancelled = "fixture cancelled"
	ReasonLegLost          = "a leg has already lost"
	ReasonMarketClosed     = "market no longer tradeable"
)

// Snapshot é a visão consistente usada pra precificar: slip, pernas,
// status dos fixtures e mercados correntes das pernas ainda abertas.
// Montado de uma vez antes do cálculo; o cálculo em si é puro.
type Snapshot struct {
	Slip          betslip.Slip
	Legs          []betslip.Bet
	FixtureStatus map[string]string          // fixtureID -> status
	Markets       map[market.Key]market.Market
}

// Offer é o resultado da precificação de cashout.
type Offer struct {
	Available         bool
	Reason            string
	CashoutValueCents int64
	CurrentOdds       float64
	PotentialWinCents int64
	StakeCents        int64
}

// Price calcula o valor de compra antecipada de um slip aberto.
//
// Indisponível quando o slip não está ativo, algum fixture foi cancelado,
// alguma perna fechada perdeu, ou alguma perna aberta referencia mercado
// ausente/não negociável.
//
// Valor = stake × (odds originais ÷ odds correntes) × margem, 2 casas.
// Pernas fechadas mantêm o preço congelado da aposta; pernas abertas usam
// o preço corrente do mercado.
func Price(s Snapshot, marginFactor float64) Offer {
	base := Offer{
		StakeCents:        s.Slip.StakeCents,
		PotentialWinCents: s.Slip.PotentialPayoutCents,
	}

	if s.Slip.Status != betslip.StatusActive {
		base.Reason = ReasonSlipNotActive
		return base
	}

	current := decimal.NewFromInt(1)
	for _, leg := range s.Legs {
		if s.FixtureStatus[leg.FixtureID] == fixture.StatusCancelled {
			base.Reason = ReasonFixtureCancelled
			return base
		}

		if leg.Status == betslip.StatusClosed {
			if leg.Result == betslip.ResultLoss {
				base.Reason = ReasonLegLost
				return base
			}
			if leg.Price <= 0 {
				base.Reason = ReasonMarketClosed
				return base
			}
			// preço congelado no momento da aposta
			current = current.Mul(decimal.NewFromFloat(leg.Price))
			continue
		}

		m, ok := s.Markets[leg.Key]
		if !ok || !m.Tradeable() {
			base.Reason = ReasonMarketClosed
			return base
		}
		// preço não positivo invalida o denominador do cálculo
		livePrice, ok := m.Prices[leg.Outcome]
		if !ok || livePrice <= 0 {
			base.Reason = ReasonMarketClosed
			return base
		}
		current = current.Mul(decimal.NewFromFloat(livePrice))
	}

	original := decimal.NewFromFloat(s.Slip.Odds)
	margin := decimal.NewFromFloat(marginFactor)
	stake := decimal.NewFromInt(s.Slip.StakeCents)

	// stake × (orig/current) × margem, arredondado a centavos
	value := stake.Mul(original).Div(current).Mul(margin).Round(0)

	base.Available = true
	base.CashoutValueCents = value.IntPart()
	base.CurrentOdds, _ = current.Round(2).Float64()
	return base
}
