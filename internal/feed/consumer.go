package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	skafka "github.com/radieske/sportsbook-core/internal/shared/kafka"
	"github.com/radieske/sportsbook-core/pkg/contracts/feed"
)

// Consumer consome um stream do feed (um por produto), normaliza as
// mensagens e despacha pros handlers por tipo.
// Mensagens malformadas são descartadas por evento, nunca derrubam o
// consumer, e nunca voltam pra fila.
type Consumer struct {
	Log      *zap.Logger
	Reader   *kafka.Reader
	Product  string
	Handlers *Handlers
	Monitor  *Monitor

	OnConsumed func()       // métricas
	OnDropped  func(string) // métricas por motivo
}

// Run é o loop principal: lê, normaliza, despacha. Encerra no cancel.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		_, value, err := skafka.ReadNext(ctx, c.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			if c.OnDropped != nil {
				c.OnDropped("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		var msg feed.Message
		if err := json.Unmarshal(value, &msg); err != nil {
			c.Log.Warn("invalid feed message", zap.Error(err))
			if c.OnDropped != nil {
				c.OnDropped("decode")
			}
			continue
		}

		c.Monitor.Touch(c.Product)
		c.dispatch(ctx, msg)
	}
}

// dispatch roteia cada evento pro handler do tipo da mensagem.
// Eventos de fixtures diferentes rodam em paralelo; a ordem por fixture é
// garantida pela chave de partição Kafka (fixture id).
func (c *Consumer) dispatch(ctx context.Context, msg feed.Message) {
	if msg.Header.Type == feed.TypeConnectivityAlert {
		c.Log.Info("connectivity alert from provider", zap.String("product", c.Product))
		return
	}

	var wg sync.WaitGroup
	for _, ev := range msg.Body.Events {
		if ev.FixtureID == "" {
			// evento inteiro descartado: sem fixture id não há chave
			c.Log.Warn("feed event without fixture id dropped",
				zap.Int("message_type", msg.Header.Type))
			if c.OnDropped != nil {
				c.OnDropped("no_fixture_id")
			}
			continue
		}

		handler := c.handlerFor(msg.Header.Type)
		if handler == nil {
			// tipo desconhecido: descarte silencioso (forward-compatibility)
			if c.OnDropped != nil {
				c.OnDropped("unknown_type")
			}
			continue
		}

		wg.Add(1)
		go func(ev feed.Event) {
			defer wg.Done()
			if err := handler(ctx, ev); err != nil {
				c.Log.Warn("feed event handler failed",
					zap.Int("message_type", msg.Header.Type),
					zap.String("fixture_id", ev.FixtureID),
					zap.Error(err))
				if c.OnDropped != nil {
					c.OnDropped("handler")
				}
			}
		}(ev)
	}
	wg.Wait()
}

func (c *Consumer) handlerFor(msgType int) func(context.Context, feed.Event) error {
	switch msgType {
	case feed.TypeFixtureUpdate:
		return c.Handlers.HandleFixture
	case feed.TypeLivescoreUpdate:
		return c.Handlers.HandleLivescore
	case feed.TypeOddsUpdate:
		return c.Handlers.HandleOdds
	case feed.TypeSettlement:
		return c.Handlers.HandleSettlement
	default:
		return nil
	}
}
