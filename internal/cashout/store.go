package cashout

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/radieske/sportsbook-core/internal/wallet"
)

var errSlipChanged = errors.New("betslip no longer active")

// Postgres comita cashouts em banco: lock do slip, fechamento do slip e
// das pernas, crédito líquido e lançamento no ledger, tudo em uma
// transação. Qualquer erro deixa o slip exatamente como estava.
type Postgres struct {
	db     *sql.DB
	wallet *wallet.Postgres
}

func NewPostgres(db *sql.DB, w *wallet.Postgres) *Postgres {
	return &Postgres{db: db, wallet: w}
}

func (p *Postgres) ExecuteCashout(ctx context.Context, slipID string, valueCents, taxCents int64) (string, int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	// lock da linha do slip; revalida que segue ativo entre o pricing e o commit
	var playerID, status string
	err = tx.QueryRowContext(ctx,
		`SELECT player_id, status FROM bet_slips WHERE id=$1 FOR UPDATE`, slipID).
		Scan(&playerID, &status)
	if err != nil {
		return "", 0, err
	}
	if status != "ACTIVE" {
		return "", 0, errSlipChanged
	}

	now := time.Now().UTC()

	// cashout_value/cashout_at setados no máximo uma vez (slip era ACTIVE)
	if _, err := tx.ExecContext(ctx, `
		UPDATE bet_slips
		SET status='CLOSED', result='WIN', cashout_value_cents=$2, cashout_at=$3
		WHERE id=$1`,
		slipID, valueCents, now); err != nil {
		return "", 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='CLOSED', result='WIN', settled_at=$2
		WHERE slip_id=$1 AND status='ACTIVE'`,
		slipID, now); err != nil {
		return "", 0, err
	}

	newBalance, err := p.wallet.CreditTx(ctx, tx, playerID, valueCents-taxCents,
		wallet.CategoryCashout, "cashout:"+slipID)
	if err != nil {
		return "", 0, err
	}

	if err := tx.Commit(); err != nil {
		return "", 0, err
	}
	return playerID, newBalance, nil
}
