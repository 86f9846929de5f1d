package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	skafka "github.com/radieske/sportsbook-core/internal/shared/kafka"
	"github.com/radieske/sportsbook-core/pkg/contracts/feed"
)

// Gateway consome o WebSocket do fornecedor pra um produto do feed e
// encaminha as mensagens brutas pro tópico Kafka do produto.
// Desconexão: espera o backoff fixo e reconecta do zero, sem buffer de
// replay, o fornecedor reenvia o estado corrente após reconexão.
type Gateway struct {
	URL           string
	Product       string
	Log           *zap.Logger
	Writer        *kafka.Writer
	ReconnectWait time.Duration
}

// Start roda o laço de conexão/escuta até o contexto encerrar.
func (g *Gateway) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			g.Log.Info("context canceled, stopping feed gateway",
				zap.String("product", g.Product))
			return
		default:
			if err := g.connectAndListen(ctx); err != nil {
				g.Log.Warn("provider connection closed",
					zap.String("product", g.Product), zap.Error(err))
				// backoff interrompível: cancelamento não espera o timer
				select {
				case <-ctx.Done():
				case <-time.After(g.ReconnectWait):
				}
			}
		}
	}
}

// connectAndListen mantém a conexão e repassa cada mensagem pro Kafka,
// chaveada pelo fixture id do primeiro evento (ordem por partição).
func (g *Gateway) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	g.Log.Info("connected to provider WS",
		zap.String("url", g.URL), zap.String("product", g.Product))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		// valida o envelope antes de encaminhar; lixo não entra no tópico
		var msg feed.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			g.Log.Warn("invalid provider message dropped", zap.Error(err))
			continue
		}

		key := g.Product
		if len(msg.Body.Events) > 0 && msg.Body.Events[0].FixtureID != "" {
			key = msg.Body.Events[0].FixtureID
		}

		if err := skafka.WriteJSON(ctx, g.Writer, key, message); err != nil {
			g.Log.Error("failed to publish feed message", zap.Error(err))
		}
	}
}
