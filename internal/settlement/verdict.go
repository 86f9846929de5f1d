package settlement

// Verdict é o veredito de settlement por outcome, enum fechado.
// Códigos fora da tabela são rejeitados no parse: um gap visível em
// compile time, não um mapa aberto de inteiros.
type Verdict int

const (
	VerdictCancelled Verdict = -1
	VerdictLoser     Verdict = 1
	VerdictWinner    Verdict = 2
	VerdictRefund    Verdict = 3
	VerdictHalfLost  Verdict = 4
	VerdictHalfWon   Verdict = 5
)

// ParseVerdict traduz o código inteiro do feed. ok=false para códigos
// desconhecidos (a entrada inteira é descartada, nunca adivinhada).
func ParseVerdict(code int) (Verdict, bool) {
	switch Verdict(code) {
	case VerdictCancelled, VerdictLoser, VerdictWinner, VerdictRefund, VerdictHalfLost, VerdictHalfWon:
		return Verdict(code), true
	default:
		return 0, false
	}
}

// Void indica um veredito de anulação: anula TODAS as apostas do mercado,
// não só o outcome anulado.
func (v Verdict) Void() bool {
	return v == VerdictCancelled || v == VerdictRefund
}
