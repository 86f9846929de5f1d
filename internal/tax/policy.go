package tax

import "github.com/shopspring/decimal"

// Policy calcula o imposto retido sobre ganhos líquidos.
// A fórmula exata é política externa: o core só consome a interface.
type Policy interface {
	TaxOn(netWinningsCents int64) int64
}

// RatePolicy é a implementação padrão: alíquota fixa sobre o que exceder
// a faixa isenta. Ganho líquido zero ou negativo nunca gera imposto.
type RatePolicy struct {
	Rate        float64 // ex.: 0.15
	ExemptCents int64   // faixa isenta
}

func (p RatePolicy) TaxOn(netWinningsCents int64) int64 {
	if netWinningsCents <= p.ExemptCents {
		return 0
	}
	// aritmética em decimal, igual aos demais caminhos de dinheiro
	taxable := decimal.NewFromInt(netWinningsCents - p.ExemptCents)
	return taxable.Mul(decimal.NewFromFloat(p.Rate)).Round(0).IntPart()
}

// None é uma política nula (útil em testes e ambientes sem retenção).
type None struct{}

func (None) TaxOn(int64) int64 { return 0 }
