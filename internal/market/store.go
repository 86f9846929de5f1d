package market

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("market not found")

// Store implementa a persistência de mercados em Postgres.
// Cada upsert é uma única instrução atômica: escritas concorrentes para a
// mesma chave são serializadas pela linha, sem lock global.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// UpsertOdds insere ou atualiza um mercado pela chave (fixture, market, specifier),
// fazendo merge do delta de preços no mapa existente (JSONB ||).
// Mercados já settled não voltam a negociar por odds atrasadas.
func (s *Store) UpsertOdds(ctx context.Context, key Key, priceDelta map[string]float64, status Status) error {
	prices, err := json.Marshal(priceDelta)
	if err != nil {
		return fmt.Errorf("marshal price delta: %w", err)
	}

	const q = `
		INSERT INTO markets (fixture_id, market_id, specifier, status, prices, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (fixture_id, market_id, specifier) DO UPDATE SET
		  prices     = markets.prices || EXCLUDED.prices,
		  status     = EXCLUDED.status,
		  updated_at = EXCLUDED.updated_at
		WHERE markets.status <> 'SETTLED'
	`
	_, err = s.db.ExecContext(ctx, q,
		key.FixtureID, key.MarketID, key.Specifier, string(status), prices, time.Now().UTC(),
	)
	return err
}

// Settle marca o mercado como SETTLED e grava o veredito por outcome.
// Idempotente: uma segunda chamada não altera nada (guarda por status).
// Retorna quantas linhas mudaram; zero significa chave desconhecida ou
// mercado já settled.
func (s *Store) Settle(ctx context.Context, key Key, verdicts map[string]int) (int64, error) {
	vjson, err := json.Marshal(verdicts)
	if err != nil {
		return 0, fmt.Errorf("marshal verdicts: %w", err)
	}

	const q = `
		UPDATE markets
		SET status = 'SETTLED', verdicts = $4, updated_at = $5
		WHERE fixture_id=$1 AND market_id=$2 AND specifier=$3 AND status <> 'SETTLED'
	`
	res, err := s.db.ExecContext(ctx, q,
		key.FixtureID, key.MarketID, key.Specifier, vjson, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Get retorna o snapshot atual de um mercado.
func (s *Store) Get(ctx context.Context, key Key) (Market, error) {
	const q = `
		SELECT status, prices, COALESCE(verdicts, '{}'::jsonb), updated_at
		FROM markets
		WHERE fixture_id=$1 AND market_id=$2 AND specifier=$3
	`
	var (
		m      = Market{Key: key}
		status string
		pjson  []byte
		vjson  []byte
	)
	err := s.db.QueryRowContext(ctx, q, key.FixtureID, key.MarketID, key.Specifier).
		Scan(&status, &pjson, &vjson, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return Market{}, ErrNotFound
	}
	if err != nil {
		return Market{}, err
	}

	m.Status = Status(status)
	if err := json.Unmarshal(pjson, &m.Prices); err != nil {
		return Market{}, fmt.Errorf("decode prices: %w", err)
	}
	if err := json.Unmarshal(vjson, &m.Verdicts); err != nil {
		return Market{}, fmt.Errorf("decode verdicts: %w", err)
	}
	return m, nil
}

// SuspendActive suspende todos os mercados ativos.
// Kill-switch do monitor de liveness: sem feed, sem aceitar apostas
// contra preços velhos.
func (s *Store) SuspendActive(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE markets SET status='SUSPENDED', updated_at=$1 WHERE status='ACTIVE'`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
