package main

import (
	"context"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/feed"
	"github.com/radieske/sportsbook-core/internal/shared/config"
	skafka "github.com/radieske/sportsbook-core/internal/shared/kafka"
	"github.com/radieske/sportsbook-core/internal/shared/logger"
	"github.com/radieske/sportsbook-core/internal/shared/metrics"
	ctopics "github.com/radieske/sportsbook-core/pkg/contracts/topics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	// um gateway por produto do feed (prematch, inplay), cada um com seu
	// tópico e sua conexão WS independente
	products := strings.Split(cfg.FeedProducts, ",")
	var wg sync.WaitGroup
	for _, product := range products {
		product = strings.TrimSpace(product)
		if product == "" {
			continue
		}

		writer := skafka.NewWriter(cfg.KafkaBrokers, ctopics.FeedTopic(cfg.TopicFeedPrefix, product))
		defer writer.Close()

		gw := &feed.Gateway{
			URL:           cfg.ProviderWSURL + "?product=" + product,
			Product:       product,
			Log:           log,
			Writer:        writer,
			ReconnectWait: cfg.FeedReconnectWait,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			gw.Start(ctx)
		}()
	}

	log.Info("feed-gateway started", zap.Strings("products", products))
	wg.Wait()
	log.Info("feed-gateway stopped")
}
