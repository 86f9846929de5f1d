package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PriceCache espelha no Redis os preços correntes de cada mercado,
// usado pelo betting-service no check rápido de odds defasadas.
type PriceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewPriceCache(c *redis.Client, ttl time.Duration) *PriceCache {
	return &PriceCache{Client: c, TTL: ttl}
}

type cachedMarket struct {
	Status Status             `json:"status"`
	Prices map[string]float64 `json:"prices"`
}

func cacheKey(k Key) string {
	return fmt.Sprintf("odds:current:%s:%s:%s", k.FixtureID, k.MarketID, k.Specifier)
}

// Merge aplica um delta de preços ao snapshot cacheado, espelhando o merge
// JSONB do Postgres. Cache frio vira o próprio delta.
func (c *PriceCache) Merge(ctx context.Context, key Key, priceDelta map[string]float64, status Status) error {
	var existing map[string]float64
	if b, err := c.Client.Get(ctx, cacheKey(key)).Bytes(); err == nil {
		var m cachedMarket
		if json.Unmarshal(b, &m) == nil {
			existing = m.Prices
		}
	}

	merged, err := json.Marshal(cachedMarket{
		Status: status,
		Prices: MergePrices(existing, priceDelta),
	})
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, cacheKey(key), merged, c.TTL).Err()
}

// CurrentPrice retorna o preço corrente de um outcome, se cacheado.
// Cache miss não é erro: o chamador cai pro Postgres.
func (c *PriceCache) CurrentPrice(ctx context.Context, key Key, outcome string) (price float64, tradeable bool, found bool, err error) {
	b, err := c.Client.Get(ctx, cacheKey(key)).Bytes()
	if err == redis.Nil {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}

	var m cachedMarket
	if err := json.Unmarshal(b, &m); err != nil {
		return 0, false, false, err
	}

	p, ok := m.Prices[outcome]
	if !ok {
		return 0, false, false, nil
	}
	return p, m.Status == StatusActive, true, nil
}
