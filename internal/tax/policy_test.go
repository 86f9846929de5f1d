package tax

import "testing"

func TestRatePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy RatePolicy
		net    int64
		want   int64
	}{
		{name: "alíquota cheia sem isenção", policy: RatePolicy{Rate: 0.15}, net: 10000, want: 1500},
		{name: "net negativo não tributa", policy: RatePolicy{Rate: 0.15}, net: -500, want: 0},
		{name: "net zero não tributa", policy: RatePolicy{Rate: 0.15}, net: 0, want: 0},
		{name: "dentro da faixa isenta", policy: RatePolicy{Rate: 0.15, ExemptCents: 5000}, net: 5000, want: 0},
		{name: "só o excedente é tributado", policy: RatePolicy{Rate: 0.15, ExemptCents: 5000}, net: 15000, want: 1500},
		// 33333 × 0.15 = 4999.95, arredonda pra 5000 (decimal, não float)
		{name: "fração de centavo arredonda", policy: RatePolicy{Rate: 0.15}, net: 33333, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.TaxOn(tt.net); got != tt.want {
				t.Errorf("TaxOn(%d) = %d, want %d", tt.net, got, tt.want)
			}
		})
	}
}

func TestNone(t *testing.T) {
	if (None{}).TaxOn(999999) != 0 {
		t.Error("None should never tax")
	}
}
