package feed

import "encoding/json"

// Tipos de mensagem observados no feed do fornecedor.
// Tipos desconhecidos são ignorados (forward-compatibility).
const (
	TypeFixtureUpdate     = 1
	TypeLivescoreUpdate   = 2
	TypeOddsUpdate        = 3
	TypeConnectivityAlert = 32
	TypeSettlement        = 35
)

// Message é o envelope bruto recebido do fornecedor.
type Message struct {
	Header Header `json:"header"`
	Body   Body   `json:"body"`
}

type Header struct {
	Type            int   `json:"type"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

type Body struct {
	Events EventList `json:"events"`
}

// Event é uma entrada do feed referente a um fixture.
// Campos opcionais dependem do tipo da mensagem.
type Event struct {
	FixtureID string     `json:"fixtureId"`
	Fixture   *Fixture   `json:"fixture,omitempty"`
	Markets   MarketList `json:"markets,omitempty"`
	Livescore *Livescore `json:"livescore,omitempty"`
}

type Fixture struct {
	Sport     string `json:"sport"`
	StartTime int64  `json:"startTime"`
	Status    string `json:"status"` // "scheduled", "live", "ended", "cancelled"
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
}

type Livescore struct {
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	Period    string `json:"period"`
}

type Market struct {
	ID        string     `json:"id"`
	Providers []Provider `json:"providers"`
}

type Provider struct {
	Bets []Bet `json:"bets"`
}

// Bet é uma seleção do mercado no feed.
// Em mensagens de settlement o campo Settlement carrega o veredito.
type Bet struct {
	BaseLine   string  `json:"baseLine,omitempty"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Status     int     `json:"status"`               // 1=ativo, 2=suspenso, 3=settled
	Settlement int     `json:"settlement,omitempty"` // veredito (mensagens tipo 35)
}

// Status de seleção no feed do fornecedor.
const (
	BetStatusOpen      = 1
	BetStatusSuspended = 2
	BetStatusSettled   = 3
)

// EventList aceita tanto um objeto único quanto uma lista no JSON do
// fornecedor, normalizado aqui uma única vez, na borda de ingestão.
type EventList []Event

func (l *EventList) UnmarshalJSON(data []byte) error {
	var many []Event
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one Event
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = EventList{one}
	return nil
}

// MarketList tem a mesma ambiguidade objeto-vs-lista de EventList.
type MarketList []Market

func (l *MarketList) UnmarshalJSON(data []byte) error {
	var many []Market
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one Market
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = MarketList{one}
	return nil
}
