package market

import "testing"

func TestMergePrices(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]float64
		delta    map[string]float64
		want     map[string]float64
	}{
		{
			name:     "delta sobrescreve só as chaves que traz",
			existing: map[string]float64{"1": 2.10, "X": 3.40, "2": 3.10},
			delta:    map[string]float64{"1": 2.25},
			want:     map[string]float64{"1": 2.25, "X": 3.40, "2": 3.10},
		},
		{
			name:     "chaves novas entram sem apagar as antigas",
			existing: map[string]float64{"Over": 1.85},
			delta:    map[string]float64{"Under": 1.95},
			want:     map[string]float64{"Over": 1.85, "Under": 1.95},
		},
		{
			name:     "mapa existente vazio",
			existing: nil,
			delta:    map[string]float64{"1": 1.50},
			want:     map[string]float64{"1": 1.50},
		},
		{
			name:     "delta vazio preserva tudo",
			existing: map[string]float64{"1": 2.00, "2": 2.00},
			delta:    nil,
			want:     map[string]float64{"1": 2.00, "2": 2.00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergePrices(tt.existing, tt.delta)
			if len(got) != len(tt.want) {
				t.Fatalf("MergePrices() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("MergePrices()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestMergePricesDoesNotMutateInputs(t *testing.T) {
	existing := map[string]float64{"1": 2.10}
	delta := map[string]float64{"1": 2.50}
	_ = MergePrices(existing, delta)
	if existing["1"] != 2.10 {
		t.Errorf("existing mutated: %v", existing)
	}
}

func TestTradeable(t *testing.T) {
	if !(Market{Status: StatusActive}).Tradeable() {
		t.Error("ACTIVE market should be tradeable")
	}
	if (Market{Status: StatusSuspended}).Tradeable() {
		t.Error("SUSPENDED market should not be tradeable")
	}
	if (Market{Status: StatusSettled}).Tradeable() {
		t.Error("SETTLED market should not be tradeable")
	}
}
