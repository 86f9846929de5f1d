package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/betslip"
	bhttp "github.com/radieske/sportsbook-core/internal/betting/http"
	"github.com/radieske/sportsbook-core/internal/cashout"
	"github.com/radieske/sportsbook-core/internal/fixture"
	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/notify"
	sharedcache "github.com/radieske/sportsbook-core/internal/shared/cache"
	"github.com/radieske/sportsbook-core/internal/shared/config"
	"github.com/radieske/sportsbook-core/internal/shared/db"
	"github.com/radieske/sportsbook-core/internal/shared/logger"
	"github.com/radieske/sportsbook-core/internal/shared/metrics"
	"github.com/radieske/sportsbook-core/internal/tax"
	"github.com/radieske/sportsbook-core/internal/wallet"
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

	walletRepo := wallet.NewPostgres(pg)
	fixtures := fixture.NewStore(pg)
	markets := market.NewStore(pg)
	priceCache := market.NewPriceCache(redisClient, time.Duration(cfg.PriceCacheTTLSec)*time.Second)
	slipStore := betslip.NewPostgres(pg, walletRepo)
	publisher := notify.NewPublisher(redisClient)

	builder := &betslip.Builder{
		Log:      log,
		Markets:  markets,
		Cache:    priceCache,
		Accounts: walletRepo,
		Store:    slipStore,
	}

	cashoutSvc := &cashout.Service{
		Log:      log,
		Slips:    slipStore,
		Fixtures: fixtures,
		Markets:  markets,
		Store:    cashout.NewPostgres(pg, walletRepo),
		Notify:   publisher,
		Tax:      tax.RatePolicy{Rate: cfg.TaxRate, ExemptCents: cfg.TaxExemptCents},
		Margin:   cfg.CashoutMargin,
	}

	server := bhttp.NewServer(log, builder, slipStore, cashoutSvc, walletRepo)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	api := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("betting-service API listening", zap.String("port", cfg.HTTPPort))
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
}
