package betslip

import "testing"

func TestApplySameGameDiscount(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{name: "par exato em duas casas", prices: []float64{2.00, 1.80}, want: []float64{1.80, 1.62}},
		{name: "perna única também desconta", prices: []float64{3.00}, want: []float64{2.70}},
		{name: "arredonda pra duas casas", prices: []float64{1.85}, want: []float64{1.67}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySameGameDiscount(tt.prices)
			if len(got) != len(tt.want) {
				t.Fatalf("ApplySameGameDiscount() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("leg %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCombinedOdds(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{name: "perna única é o próprio preço", prices: []float64{2.50}, want: 2.50},
		{name: "produto de duas pernas", prices: []float64{2.00, 1.50}, want: 3.00},
		{name: "pernas descontadas do exemplo canônico", prices: []float64{1.80, 1.62}, want: 2.92},
		{name: "sem pernas vale 1", prices: nil, want: 1.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombinedOdds(tt.prices); got != tt.want {
				t.Errorf("CombinedOdds(%v) = %v, want %v", tt.prices, got, tt.want)
			}
		})
	}
}

func TestPotentialPayoutCents(t *testing.T) {
	tests := []struct {
		name  string
		stake int64
		odds  float64
		want  int64
	}{
		{name: "stake 10 reais a 2.50", stake: 1000, odds: 2.50, want: 2500},
		{name: "arredonda pro centavo", stake: 333, odds: 1.33, want: 443},
		{name: "odds 1 devolve o stake", stake: 5000, odds: 1.00, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PotentialPayoutCents(tt.stake, tt.odds); got != tt.want {
				t.Errorf("PotentialPayoutCents(%d, %v) = %d, want %d", tt.stake, tt.odds, got, tt.want)
			}
		})
	}
}
