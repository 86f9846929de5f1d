package fixture

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Status de um fixture. Transições só avançam:
// scheduled -> live -> ended|cancelled.
const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusEnded     = "ENDED"
	StatusCancelled = "CANCELLED"
)

var ErrNotFound = errors.New("fixture not found")

// Fixture é o registro persistido de um evento esportivo real.
type Fixture struct {
	ID        string // id externo do fornecedor
	Sport     string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	Status    string
	HomeScore int
	AwayScore int
	UpdatedAt time.Time
}

// StatusRank dá a ordem das transições válidas. Mensagens fora de ordem
// do feed nunca regridem o status (mesma regra aplicada no SQL do upsert).
func StatusRank(s string) int {
	switch s {
	case StatusScheduled:
		return 0
	case StatusLive:
		return 1
	case StatusEnded, StatusCancelled:
		return 2
	default:
		return -1
	}
}

// Store persiste fixtures em Postgres.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Upsert insere ou atualiza um fixture pelo id externo.
// O status só é atualizado se avançar na ordem scheduled->live->ended.
func (s *Store) Upsert(ctx context.Context, f Fixture) error {
	const q = `
		INSERT INTO fixtures (id, sport, home_team, away_team, start_time, status, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
		  sport      = EXCLUDED.sport,
		  home_team  = EXCLUDED.home_team,
		  away_team  = EXCLUDED.away_team,
		  start_time = EXCLUDED.start_time,
		  status     = CASE
		    WHEN (CASE EXCLUDED.status WHEN 'LIVE' THEN 1 WHEN 'ENDED' THEN 2 WHEN 'CANCELLED' THEN 2 ELSE 0 END)
		       > (CASE fixtures.status WHEN 'LIVE' THEN 1 WHEN 'ENDED' THEN 2 WHEN 'CANCELLED' THEN 2 ELSE 0 END)
		    THEN EXCLUDED.status ELSE fixtures.status END,
		  updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, q,
		f.ID, f.Sport, f.HomeTeam, f.AwayTeam, f.StartTime, f.Status, time.Now().UTC(),
	)
	return err
}

// UpdateScore grava o placar corrente vindo do livescore.
func (s *Store) UpdateScore(ctx context.Context, id string, home, away int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fixtures SET home_score=$2, away_score=$3, updated_at=$4 WHERE id=$1`,
		id, home, away, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retorna um fixture pelo id externo.
func (s *Store) Get(ctx context.Context, id string) (Fixture, error) {
	const q = `
		SELECT id, sport, home_team, away_team, start_time, status, home_score, away_score, updated_at
		FROM fixtures WHERE id=$1
	`
	var f Fixture
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.Sport, &f.HomeTeam, &f.AwayTeam, &f.StartTime,
		&f.Status, &f.HomeScore, &f.AwayScore, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Fixture{}, ErrNotFound
	}
	return f, err
}

// Statuses retorna o status de vários fixtures de uma vez (pricer de cashout).
func (s *Store) Statuses(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		var st string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM fixtures WHERE id=$1`, id).Scan(&st)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = st
	}
	return out, nil
}

// NormalizeStatus traduz o status textual do feed pro domínio.
// Valores desconhecidos mantêm SCHEDULED (o feed corrige depois).
func NormalizeStatus(feedStatus string) string {
	switch feedStatus {
	case "live":
		return StatusLive
	case "ended":
		return StatusEnded
	case "cancelled":
		return StatusCancelled
	default:
		return StatusScheduled
	}
}
