package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sportsbook-core/pkg/contracts/events"
	"github.com/radieske/sportsbook-core/pkg/contracts/topics"
)

// Publisher entrega notificações de mudança de estado pro publisher externo
// via Redis Pub/Sub. O core só decide o que publicar; a entrega aos
// assinantes é responsabilidade de fora.
type Publisher struct {
	r *redis.Client
}

func NewPublisher(r *redis.Client) *Publisher { return &Publisher{r: r} }

// BalanceChanged publica no canal "balance_<playerId>".
func (p *Publisher) BalanceChanged(ctx context.Context, playerID string, balanceCents int64, reason string) error {
	payload, err := json.Marshal(events.BalanceChanged{
		PlayerID:     playerID,
		BalanceCents: balanceCents,
		Reason:       reason,
		Ts:           time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.r.Publish(ctx, topics.ChannelBalancePrefix+playerID, payload).Err()
}

// MarketChanged publica no canal "market_<fixture>_<market>".
func (p *Publisher) MarketChanged(ctx context.Context, ev events.MarketChanged) error {
	ev.Ts = time.Now().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	channel := topics.ChannelMarketPrefix + ev.FixtureID + "_" + ev.MarketID
	return p.r.Publish(ctx, channel, payload).Err()
}
