package dto

// PlaceBetSlipRequest é o pedido de criação de aposta.
// StakeCents é ignorado quando UseBonus=true (o stake vira o bônus ativo).
type PlaceBetSlipRequest struct {
	PlayerID   string       `json:"player_id" validate:"required"`
	StakeCents int64        `json:"stake_cents" validate:"required_without=UseBonus,gte=0"`
	UseBonus   bool         `json:"use_bonus"`
	Legs       []LegRequest `json:"legs" validate:"required,min=1,dive"`
}

type LegRequest struct {
	FixtureID   string  `json:"fixture_id" validate:"required"`
	MarketID    string  `json:"market_id" validate:"required"`
	Specifier   string  `json:"specifier,omitempty"`
	OutcomeID   string  `json:"outcome_id" validate:"required"`
	ClaimedOdds float64 `json:"claimed_odds" validate:"required,gt=1"`
}

type DepositRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	ExternalRef string `json:"external_ref,omitempty"`
}
