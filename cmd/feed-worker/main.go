package main

import (
	"context"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/feed"
	"github.com/radieske/sportsbook-core/internal/fixture"
	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/notify"
	"github.com/radieske/sportsbook-core/internal/settlement"
	sharedcache "github.com/radieske/sportsbook-core/internal/shared/cache"
	"github.com/radieske/sportsbook-core/internal/shared/config"
	"github.com/radieske/sportsbook-core/internal/shared/db"
	skafka "github.com/radieske/sportsbook-core/internal/shared/kafka"
	"github.com/radieske/sportsbook-core/internal/shared/logger"
	"github.com/radieske/sportsbook-core/internal/shared/metrics"
	"github.com/radieske/sportsbook-core/internal/wallet"
	ctopics "github.com/radieske/sportsbook-core/pkg/contracts/topics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Métricas Prometheus por estágio do processamento do feed
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_messages_consumed_total", Help: "mensagens consumidas por produto"}, []string{"product"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_events_dropped_total", Help: "eventos descartados por motivo"}, []string{"reason"})
	upserts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_market_upserts_total", Help: "upserts de mercado"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_bets_settled_total", Help: "apostas fechadas por settlement"})
	prometheus.MustRegister(consumed, dropped, upserts, settled)

	walletRepo := wallet.NewPostgres(pg)
	fixtures := fixture.NewStore(pg)
	markets := market.NewStore(pg)
	priceCache := market.NewPriceCache(redisClient, time.Duration(cfg.PriceCacheTTLSec)*time.Second)
	publisher := notify.NewPublisher(redisClient)

	engine := &settlement.Engine{
		Log:       log,
		Markets:   markets,
		Store:     settlement.NewPostgres(pg, walletRepo),
		Notify:    publisher,
		OnSettled: func(bets int) { settled.Add(float64(bets)) },
		OnSkipped: func(reason string) { dropped.WithLabelValues("settlement_" + reason).Inc() },
	}

	handlers := &feed.Handlers{
		Log:            log,
		Fixtures:       fixtures,
		Markets:        markets,
		Cache:          priceCache,
		Settlement:     engine,
		Notify:         publisher,
		OnMarketUpsert: func() { upserts.Inc() },
	}

	monitor := feed.NewMonitor()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	// um consumer independente por produto do feed
	products := strings.Split(cfg.FeedProducts, ",")
	var wg sync.WaitGroup
	for _, product := range products {
		product = strings.TrimSpace(product)
		if product == "" {
			continue
		}
		product := product

		reader := skafka.NewReader(cfg.KafkaBrokers,
			ctopics.FeedTopic(cfg.TopicFeedPrefix, product), "feed-worker-"+product)
		defer reader.Close()

		consumer := &feed.Consumer{
			Log:        log,
			Reader:     reader,
			Product:    product,
			Handlers:   handlers,
			Monitor:    monitor,
			OnConsumed: func() { consumed.WithLabelValues(product).Inc() },
			OnDropped:  func(reason string) { dropped.WithLabelValues(reason).Inc() },
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("feed consumer stopped with error",
					zap.String("product", product), zap.Error(err))
			}
		}()
	}

	// watchdog de liveness: feed calado suspende mercados ativos
	watchdog := &feed.Watchdog{
		Log:        log,
		Monitor:    monitor,
		Store:      markets,
		Products:   products,
		MaxSilence: cfg.FeedSilenceMax,
		Interval:   cfg.FeedSilenceMax / 4,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		watchdog.Run(ctx)
	}()

	log.Info("feed-worker started", zap.Strings("products", products))
	wg.Wait()
	log.Info("feed-worker stopped")
}
