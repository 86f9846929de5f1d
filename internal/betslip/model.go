package betslip

import (
	"time"

	"github.com/radieske/sportsbook-core/internal/market"
)

// Status de slip e de perna. CLOSED é terminal.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// Result é o desfecho de um slip ou de uma perna.
// Vazio enquanto aberto. HalfWon/HalfLost são desfechos distintos
// (asian handicap), nunca colapsados em Win/Loss.
type Result string

const (
	ResultNone     Result = ""
	ResultWin      Result = "WIN"
	ResultLoss     Result = "LOSS"
	ResultVoid     Result = "VOID"
	ResultHalfWon  Result = "HALF_WON"
	ResultHalfLost Result = "HALF_LOST"
)

// Slip é uma aposta registrada, possivelmente com várias pernas.
type Slip struct {
	ID                   string
	PlayerID             string
	StakeCents           int64
	Odds                 float64 // odds combinadas no momento da aposta
	PotentialPayoutCents int64
	Status               Status
	Result               Result
	UsedBonus            bool
	CashoutValueCents    *int64     // setado no máximo uma vez
	CashoutAt            *time.Time // idem
	CreatedAt            time.Time
}

// Bet é uma seleção dentro de um slip.
// Price é o preço no momento da aposta, imutável depois de gravado.
type Bet struct {
	ID     string
	SlipID string
	market.Key
	Outcome string
	Price   float64
	Status  Status
	Result  Result
}
