package betslip

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/sportsbook-core/internal/wallet"
)

// Postgres persiste slips e pernas. O Create comita débito de carteira,
// slip e pernas na mesma transação: ou tudo entra, ou nada.
type Postgres struct {
	db     *sql.DB
	wallet *wallet.Postgres
}

func NewPostgres(db *sql.DB, w *wallet.Postgres) *Postgres {
	return &Postgres{db: db, wallet: w}
}

// Create insere o slip e as pernas junto com o débito do stake (ou resgate
// do bônus). Nenhum slip parcial fica visível em caso de falha.
func (p *Postgres) Create(ctx context.Context, slip *Slip, legs []Bet, useBonus bool) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if useBonus {
		amount, err := p.wallet.RedeemBonusTx(ctx, tx, slip.PlayerID)
		if err != nil {
			return err
		}
		// o stake efetivo é o valor do bônus resgatado
		slip.StakeCents = amount
		slip.PotentialPayoutCents = PotentialPayoutCents(amount, slip.Odds)
	} else {
		if _, err := p.wallet.DebitTx(ctx, tx, slip.PlayerID, slip.StakeCents,
			wallet.CategoryStake, "stake:"+slip.ID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bet_slips
		  (id, player_id, stake_cents, odds, potential_payout_cents, status, used_bonus, created_at)
		VALUES ($1,$2,$3,$4,$5,'ACTIVE',$6,$7)`,
		slip.ID, slip.PlayerID, slip.StakeCents, slip.Odds,
		slip.PotentialPayoutCents, slip.UsedBonus, slip.CreatedAt,
	); err != nil {
		return err
	}

	for _, leg := range legs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bets
			  (id, slip_id, fixture_id, market_id, specifier, outcome, price, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,'ACTIVE')`,
			leg.ID, leg.SlipID, leg.FixtureID, leg.MarketID, leg.Specifier,
			leg.Outcome, leg.Price,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get carrega um slip com todas as pernas.
func (p *Postgres) Get(ctx context.Context, slipID string) (Slip, []Bet, error) {
	var (
		s       Slip
		status  string
		result  sql.NullString
		coValue sql.NullInt64
		coAt    sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, player_id, stake_cents, odds, potential_payout_cents,
		       status, result, used_bonus, cashout_value_cents, cashout_at, created_at
		FROM bet_slips WHERE id=$1`, slipID).
		Scan(&s.ID, &s.PlayerID, &s.StakeCents, &s.Odds, &s.PotentialPayoutCents,
			&status, &result, &s.UsedBonus, &coValue, &coAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return Slip{}, nil, ErrSlipNotFound
	}
	if err != nil {
		return Slip{}, nil, err
	}
	s.Status = Status(status)
	if result.Valid {
		s.Result = Result(result.String)
	}
	if coValue.Valid {
		s.CashoutValueCents = &coValue.Int64
	}
	if coAt.Valid {
		s.CashoutAt = &coAt.Time
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, slip_id, fixture_id, market_id, specifier, outcome, price, status, COALESCE(result,'')
		FROM bets WHERE slip_id=$1 ORDER BY id`, slipID)
	if err != nil {
		return Slip{}, nil, err
	}
	defer rows.Close()

	var legs []Bet
	for rows.Next() {
		var (
			b   Bet
			st  string
			res string
		)
		if err := rows.Scan(&b.ID, &b.SlipID, &b.FixtureID, &b.MarketID,
			&b.Specifier, &b.Outcome, &b.Price, &st, &res); err != nil {
			return Slip{}, nil, err
		}
		b.Status = Status(st)
		b.Result = Result(res)
		legs = append(legs, b)
	}
	return s, legs, rows.Err()
}

// DailyPotentialWinCents soma o retorno potencial dos slips ativos do
// jogador criados desde o instante dado (teto diário agregado).
func (p *Postgres) DailyPotentialWinCents(ctx context.Context, playerID string, since time.Time) (int64, error) {
	var total int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(potential_payout_cents), 0)
		FROM bet_slips
		WHERE player_id=$1 AND status='ACTIVE' AND created_at >= $2`,
		playerID, since).Scan(&total)
	return total, err
}

// ActiveBonusCents retorna o valor do bônus ativo mais antigo, sem consumir.
func (p *Postgres) ActiveBonusCents(ctx context.Context, playerID string) (int64, error) {
	var amount int64
	err := p.db.QueryRowContext(ctx, `
		SELECT amount_cents FROM bonuses
		WHERE user_id=$1 AND status='ACTIVE'
		ORDER BY created_at ASC LIMIT 1`, playerID).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, wallet.ErrNoActiveBonus
	}
	return amount, err
}
