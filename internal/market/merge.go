package market

// MergePrices aplica um delta a um mapa de preços existente: chaves novas
// entram, existentes são sobrescritas, as demais permanecem intactas.
// Mesma semântica do merge JSONB feito no upsert do Postgres.
func MergePrices(existing, delta map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(existing)+len(delta))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range delta {
		out[k] = v
	}
	return out
}
