package risk

// Tier é a classificação de risco do jogador, derivada do ganho líquido
// dos últimos 7 dias. Quanto maior o ganho histórico, mais restrito o
// tier. Sempre recalculado sob demanda, nunca armazenado como verdade.
type Tier string

const (
	TierA Tier = "A" // ganhos baixos, limites mais folgados
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D" // ganhos altos, limites mais apertados
)

// BetType classifica a composição do slip para fins de limite.
type BetType string

const (
	Single        BetType = "SINGLE"
	Parlay        BetType = "PARLAY"
	SameGameMulti BetType = "SGM"
)

// Limiares de ganho líquido em 7 dias (centavos) para cada tier.
const (
	tierBFromCents = 1_000_00
	tierCFromCents = 10_000_00
	tierDFromCents = 100_000_00
)

// TierFor deriva o tier do jogador a partir do ganho líquido de 7 dias.
func TierFor(netWinnings7dCents int64) Tier {
	switch {
	case netWinnings7dCents < tierBFromCents:
		return TierA
	case netWinnings7dCents < tierCFromCents:
		return TierB
	case netWinnings7dCents < tierDFromCents:
		return TierC
	default:
		return TierD
	}
}

// Tabela fixa de stake máximo (centavos) por tier × tipo de aposta.
var maxStake = map[Tier]map[BetType]int64{
	TierA: {Single: 5_000_00, Parlay: 2_500_00, SameGameMulti: 1_000_00},
	TierB: {Single: 2_500_00, Parlay: 1_000_00, SameGameMulti: 500_00},
	TierC: {Single: 1_000_00, Parlay: 500_00, SameGameMulti: 250_00},
	TierD: {Single: 500_00, Parlay: 250_00, SameGameMulti: 100_00},
}

// MaxStake retorna o stake máximo permitido para o tier e composição.
func MaxStake(t Tier, bt BetType) int64 {
	return maxStake[t][bt]
}

// Tetos globais, independentes de tier, aplicados no commit do slip.
const (
	// Ganho potencial máximo de um único slip.
	MaxSlipPotentialWinCents int64 = 50_000_00
	// Ganho potencial agregado máximo por jogador por dia corrente.
	MaxDailyPotentialWinCents int64 = 200_000_00
)

// Restrições de same-game-multi (múltipla no mesmo fixture).
const MaxSameGameLegs = 4

var sgmAllowedMarkets = map[string]bool{
	"1x2":                  true,
	"over_under":           true,
	"both_teams_to_score":  true,
	"double_chance":        true,
}

var sgmAllowedGoalLines = map[string]bool{
	"0.5": true,
	"1.5": true,
	"2.5": true,
	"3.5": true,
	"4.5": true,
}

// SGMLeg é a visão mínima de uma perna para validação de same-game-multi.
type SGMLeg struct {
	MarketID  string
	Specifier string
}

// ValidateSameGame verifica as restrições de SGM: allow-list de mercados,
// allow-list de goal lines e número máximo de pernas. Qualquer violação
// rejeita o slip antes mesmo da checagem de limites de stake.
func ValidateSameGame(legs []SGMLeg) bool {
	if len(legs) > MaxSameGameLegs {
		return false
	}
	for _, l := range legs {
		if !sgmAllowedMarkets[l.MarketID] {
			return false
		}
		if l.Specifier != "" && !sgmAllowedGoalLines[l.Specifier] {
			return false
		}
	}
	return true
}
