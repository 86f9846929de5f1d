package betslip

import "github.com/shopspring/decimal"

// Fator de desconto de correlação para pernas do mesmo fixture.
const SameGameDiscount = "0.9"

// ApplySameGameDiscount aplica o desconto de correlação a cada perna de um
// same-game-multi. Matemática decimal pra resultado exato em 2 casas
// (2.00 -> 1.80, 1.80 -> 1.62).
func ApplySameGameDiscount(prices []float64) []float64 {
	factor := decimal.RequireFromString(SameGameDiscount)
	out := make([]float64, len(prices))
	for i, p := range prices {
		d := decimal.NewFromFloat(p).Mul(factor).Round(2)
		out[i], _ = d.Float64()
	}
	return out
}

// CombinedOdds calcula as odds combinadas como o produto dos preços
// efetivos das pernas, arredondado em 2 casas.
func CombinedOdds(prices []float64) float64 {
	acc := decimal.NewFromInt(1)
	for _, p := range prices {
		acc = acc.Mul(decimal.NewFromFloat(p))
	}
	f, _ := acc.Round(2).Float64()
	return f
}

// PotentialPayoutCents calcula o retorno potencial: stake × odds combinadas.
func PotentialPayoutCents(stakeCents int64, combinedOdds float64) int64 {
	v := decimal.NewFromInt(stakeCents).Mul(decimal.NewFromFloat(combinedOdds))
	return v.Round(0).IntPart()
}
