package market

import "time"

// Status de negociação de um mercado.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusSettled   Status = "SETTLED"
)

// Key identifica um mercado de forma única: fixture + mercado + specifier.
// Specifier vazio representa o mercado "sem baseline" (ex.: 1x2).
type Key struct {
	FixtureID string
	MarketID  string
	Specifier string
}

// Market é o snapshot persistido de um mercado negociável.
// Prices é merge-updated: chaves novas entram, existentes são sobrescritas,
// nunca substituído por inteiro fora do settlement.
type Market struct {
	Key
	Status    Status
	Prices    map[string]float64 // outcome -> preço decimal
	Verdicts  map[string]int     // outcome -> código de veredito (só após settlement)
	UpdatedAt time.Time
}

// Tradeable indica se o mercado ainda aceita apostas/cashout.
func (m Market) Tradeable() bool { return m.Status == StatusActive }
