package events

import "time"

// BalanceChanged é publicado no canal "balance_<playerId>" após qualquer
// movimentação de saldo (aposta, ganho, cashout, depósito).
type BalanceChanged struct {
	PlayerID     string    `json:"player_id"`
	BalanceCents int64     `json:"balance_cents"`
	Reason       string    `json:"reason"` // "stake", "winnings", "refund", "cashout", "deposit"
	Ts           time.Time `json:"ts"`
}

// MarketChanged é publicado no canal "market_<fixture>_<market>" após
// upsert de odds ou settlement do mercado.
type MarketChanged struct {
	FixtureID string             `json:"fixture_id"`
	MarketID  string             `json:"market_id"`
	Specifier string             `json:"specifier,omitempty"`
	Status    string             `json:"status"`
	Prices    map[string]float64 `json:"prices,omitempty"`
	Ts        time.Time          `json:"ts"`
}
