package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/sportsbook-core/internal/betslip"
)

// Decision é a semântica de um settlement aplicada a uma chave de mercado.
type Decision struct {
	VoidAll  bool
	Verdicts map[string]Verdict // outcome -> veredito
}

// Decide interpreta os vereditos de um settlement.
// Qualquer veredito de anulação (Cancelled/Refund) anula o mercado inteiro.
func Decide(verdicts map[string]Verdict) Decision {
	d := Decision{Verdicts: verdicts}
	for _, v := range verdicts {
		if v.Void() {
			d.VoidAll = true
			break
		}
	}
	return d
}

// ResultFor define o desfecho de uma aposta pelo outcome armazenado.
// Mercado anulado fecha tudo como Void; senão, vence quem está no conjunto
// vencedor, com Half* preservados como desfechos próprios.
func (d Decision) ResultFor(outcome string) betslip.Result {
	if d.VoidAll {
		return betslip.ResultVoid
	}
	switch d.Verdicts[outcome] {
	case VerdictWinner:
		return betslip.ResultWin
	case VerdictHalfWon:
		return betslip.ResultHalfWon
	case VerdictHalfLost:
		return betslip.ResultHalfLost
	default:
		return betslip.ResultLoss
	}
}

// effectiveMultiplier é a contribuição de uma perna fechada pro retorno do
// slip: Win paga o preço cheio, Void devolve (1.0), HalfWon paga metade do
// preço + metade do stake, HalfLost devolve metade, Loss zera o slip.
func effectiveMultiplier(res betslip.Result, price float64) decimal.Decimal {
	switch res {
	case betslip.ResultWin:
		return decimal.NewFromFloat(price)
	case betslip.ResultVoid:
		return decimal.NewFromInt(1)
	case betslip.ResultHalfWon:
		return decimal.NewFromFloat(price).Add(decimal.NewFromInt(1)).Div(decimal.NewFromInt(2))
	case betslip.ResultHalfLost:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// ResolveSlip fecha a conta de um slip quando todas as pernas estiverem
// fechadas: done=false enquanto houver perna ativa. O retorno é
// stake × produto dos multiplicadores efetivos.
func ResolveSlip(slip betslip.Slip, legs []betslip.Bet) (result betslip.Result, payoutCents int64, done bool) {
	allVoid := true
	anyLoss := false
	acc := decimal.NewFromInt(1)

	for _, leg := range legs {
		if leg.Status != betslip.StatusClosed {
			return betslip.ResultNone, 0, false
		}
		if leg.Result != betslip.ResultVoid {
			allVoid = false
		}
		if leg.Result == betslip.ResultLoss {
			anyLoss = true
		}
		acc = acc.Mul(effectiveMultiplier(leg.Result, leg.Price))
	}

	payout := decimal.NewFromInt(slip.StakeCents).Mul(acc).Round(0).IntPart()

	switch {
	case allVoid:
		return betslip.ResultVoid, slip.StakeCents, true
	case anyLoss:
		return betslip.ResultLoss, 0, true
	default:
		return betslip.ResultWin, payout, true
	}
}
