package dto

import "time"

type PlaceBetSlipResponse struct {
	OK     bool   `json:"ok"`
	SlipID string `json:"slip_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type BetSlipResponse struct {
	SlipID               string     `json:"slip_id"`
	PlayerID             string     `json:"player_id"`
	StakeCents           int64      `json:"stake_cents"`
	Odds                 float64    `json:"odds"`
	PotentialPayoutCents int64      `json:"potential_payout_cents"`
	Status               string     `json:"status"`
	Result               string     `json:"result,omitempty"`
	CashoutValueCents    *int64     `json:"cashout_value_cents,omitempty"`
	CashoutAt            *time.Time `json:"cashout_at,omitempty"`
	Legs                 []LegView  `json:"legs"`
}

type LegView struct {
	FixtureID string  `json:"fixture_id"`
	MarketID  string  `json:"market_id"`
	Specifier string  `json:"specifier,omitempty"`
	OutcomeID string  `json:"outcome_id"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	Result    string  `json:"result,omitempty"`
}

type CashoutOfferResponse struct {
	Available         bool    `json:"available"`
	CashoutValueCents int64   `json:"cashout_value_cents,omitempty"`
	CurrentOdds       float64 `json:"current_odds,omitempty"`
	PotentialWinCents int64   `json:"potential_win_cents,omitempty"`
	StakeCents        int64   `json:"stake_cents,omitempty"`
	Reason            string  `json:"reason,omitempty"`
}

type CashoutExecuteResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type WalletResponse struct {
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
}
