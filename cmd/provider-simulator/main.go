package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/shared/config"
	"github.com/radieske/sportsbook-core/internal/shared/logger"
	"github.com/radieske/sportsbook-core/pkg/contracts/feed"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Catálogo fixo de partidas simuladas para geração do feed
	fixtureCatalog = []simFixture{
		{ID: "sr:match:1001", Home: "Flamengo", Away: "Palmeiras", Product: "inplay"},
		{ID: "sr:match:1002", Home: "Grêmio", Away: "Internacional", Product: "inplay"},
		{ID: "sr:match:1003", Home: "Corinthians", Away: "Santos", Product: "prematch"},
		{ID: "sr:match:1004", Home: "São Paulo", Away: "Vasco", Product: "prematch"},
	}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provider_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provider_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
)

type simFixture struct {
	ID      string
	Home    string
	Away    string
	Product string
}

// Representa uma conexão de cliente WebSocket inscrita em um produto
type clientConn struct {
	id      string
	product string
	conn    *websocket.Conn
}

// Estrutura responsável por gerenciar os clientes conectados via WebSocket
// e realizar broadcast de mensagens por produto.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected",
		zap.String("client_id", c.id), zap.String("product", c.product))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Envia uma mensagem para todos os clientes inscritos no produto
func (h *hub) broadcast(product string, v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		if c.product != product {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

// gera número aleatório entre min e max
func rnd(min, max float64) float64 {
	return (rand.Float64() * (max - min)) + min
}

func envelope(msgType int, events ...feed.Event) feed.Message {
	return feed.Message{
		Header: feed.Header{Type: msgType, ServerTimestamp: time.Now().UnixMilli()},
		Body:   feed.Body{Events: events},
	}
}

// oddsEvent gera uma atualização de odds 1x2 + over/under pro fixture
func oddsEvent(f simFixture) feed.Event {
	home := rnd(1.40, 3.50)
	away := rnd(2.00, 5.00)
	return feed.Event{
		FixtureID: f.ID,
		Markets: feed.MarketList{
			{
				ID: "1x2",
				Providers: []feed.Provider{{Bets: []feed.Bet{
					{Name: "1", Price: home, Status: feed.BetStatusOpen},
					{Name: "X", Price: rnd(2.50, 4.50), Status: feed.BetStatusOpen},
					{Name: "2", Price: away, Status: feed.BetStatusOpen},
				}}},
			},
			{
				ID: "over_under",
				Providers: []feed.Provider{{Bets: []feed.Bet{
					{BaseLine: "2.5", Name: "Over", Price: rnd(1.50, 2.30), Status: feed.BetStatusOpen},
					{BaseLine: "2.5", Name: "Under", Price: rnd(1.50, 2.30), Status: feed.BetStatusOpen},
				}}},
			},
		},
	}
}

func livescoreEvent(f simFixture, minute int) feed.Event {
	return feed.Event{
		FixtureID: f.ID,
		Livescore: &feed.Livescore{
			HomeScore: rand.Intn(4),
			AwayScore: rand.Intn(3),
			Period:    fmt.Sprintf("%d'", minute),
		},
	}
}

func fixtureEvent(f simFixture, status string) feed.Event {
	return feed.Event{
		FixtureID: f.ID,
		Fixture: &feed.Fixture{
			Sport:     "football",
			StartTime: time.Now().Add(30 * time.Minute).UnixMilli(),
			Status:    status,
			HomeTeam:  f.Home,
			AwayTeam:  f.Away,
		},
	}
}

// settlementEvent fecha o mercado 1x2 com um vencedor aleatório
func settlementEvent(f simFixture) feed.Event {
	winner := rand.Intn(3)
	verdict := func(i int) int {
		if i == winner {
			return 2 // winner
		}
		return 1 // loser
	}
	return feed.Event{
		FixtureID: f.ID,
		Markets: feed.MarketList{{
			ID: "1x2",
			Providers: []feed.Provider{{Bets: []feed.Bet{
				{Name: "1", Status: feed.BetStatusSettled, Settlement: verdict(0)},
				{Name: "X", Status: feed.BetStatusSettled, Settlement: verdict(1)},
				{Name: "2", Status: feed.BetStatusSettled, Settlement: verdict(2)},
			}}},
		}},
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, wsMessagesSent)

	h := newHub(log)

	// Publica o catálogo de fixtures uma vez por minuto
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		emit := func() {
			for _, f := range fixtureCatalog {
				status := "scheduled"
				if f.Product == "inplay" {
					status = "live"
				}
				h.broadcast(f.Product, envelope(feed.TypeFixtureUpdate, fixtureEvent(f, status)))
			}
		}
		emit()
		for range ticker.C {
			emit()
		}
	}()

	// Gera odds a cada 3 segundos e livescore pros jogos ao vivo a cada 10
	go func() {
		oddsTicker := time.NewTicker(3 * time.Second)
		scoreTicker := time.NewTicker(10 * time.Second)
		defer oddsTicker.Stop()
		defer scoreTicker.Stop()
		minute := 1
		for {
			select {
			case <-oddsTicker.C:
				for _, f := range fixtureCatalog {
					h.broadcast(f.Product, envelope(feed.TypeOddsUpdate, oddsEvent(f)))
				}
			case <-scoreTicker.C:
				minute++
				for _, f := range fixtureCatalog {
					if f.Product != "inplay" {
						continue
					}
					h.broadcast(f.Product, envelope(feed.TypeLivescoreUpdate, livescoreEvent(f, minute)))
					// ~10% de chance de settlement pra exercitar o fluxo completo
					if rand.Intn(10) == 0 {
						h.broadcast(f.Product, envelope(feed.TypeSettlement, settlementEvent(f)))
					}
				}
			}
		}
	}()

	// ==== MUX PÚBLICO (HTTP principal): /ws
	appMux := http.NewServeMux()

	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		product := r.URL.Query().Get("product")
		if product == "" {
			product = "prematch"
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, product: product, conn: conn}
		h.add(c)

		// Goroutine para manter a conexão viva e remover cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("provider simulator (metrics) running",
			zap.String("addr", metricsAddr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("provider simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
