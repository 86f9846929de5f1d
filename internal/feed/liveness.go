package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Suspender é o kill-switch do Market Store.
type Suspender interface {
	SuspendActive(ctx context.Context) (int64, error)
}

// Monitor acompanha a saúde do feed por produto. Estado do processo,
// exposto só via Touch/LastSeenAt/Healthy, nada de global ambiente.
type Monitor struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	now      func() time.Time
}

func NewMonitor() *Monitor {
	return &Monitor{
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Touch registra atividade do produto (qualquer mensagem conta, inclusive
// connectivity alerts).
func (m *Monitor) Touch(product string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[product] = m.now()
}

// LastSeenAt retorna o último instante de atividade do produto.
func (m *Monitor) LastSeenAt(product string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.lastSeen[product]
	return t, ok
}

// Healthy indica se o produto recebeu mensagem dentro da janela.
// Produto nunca visto é saudável: o consumer ainda pode estar subindo.
func (m *Monitor) Healthy(product string, maxSilence time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.lastSeen[product]
	if !ok {
		return true
	}
	return m.now().Sub(t) <= maxSilence
}

// Watchdog suspende mercados quando o feed silencia além do limite,
// impedindo apostas contra preços velhos. A reativação acontece
// naturalmente no próximo odds update de cada mercado.
type Watchdog struct {
	Log        *zap.Logger
	Monitor    *Monitor
	Store      Suspender
	Products   []string
	MaxSilence time.Duration
	Interval   time.Duration

	tripped map[string]bool
}

// Run roda o laço de verificação até o contexto encerrar.
func (w *Watchdog) Run(ctx context.Context) {
	if w.tripped == nil {
		w.tripped = make(map[string]bool)
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *Watchdog) check(ctx context.Context) {
	for _, product := range w.Products {
		healthy := w.Monitor.Healthy(product, w.MaxSilence)

		if healthy {
			if w.tripped[product] {
				w.Log.Info("feed recovered", zap.String("product", product))
				w.tripped[product] = false
			}
			continue
		}
		if w.tripped[product] {
			continue // já suspenso; não martela o banco a cada tick
		}

		n, err := w.Store.SuspendActive(ctx)
		if err != nil {
			w.Log.Error("suspend on feed silence failed",
				zap.String("product", product), zap.Error(err))
			continue
		}
		w.tripped[product] = true
		w.Log.Warn("feed silent, markets suspended",
			zap.String("product", product),
			zap.Int64("markets", n),
			zap.Duration("max_silence", w.MaxSilence),
		)
	}
}
