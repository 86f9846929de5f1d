package settlement

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/sportsbook-core/internal/betslip"
	"github.com/radieske/sportsbook-core/internal/market"
	"github.com/radieske/sportsbook-core/internal/wallet"
)

// Postgres aplica settlements em banco. ResolveBets roda tudo em uma
// transação: fechamento das apostas, resolução dos slips completos e
// crédito dos ganhos comitam juntos ou não comitam.
type Postgres struct {
	db     *sql.DB
	wallet *wallet.Postgres
}

func NewPostgres(db *sql.DB, w *wallet.Postgres) *Postgres {
	return &Postgres{db: db, wallet: w}
}

// ActiveBets seleciona as apostas abertas de uma chave de mercado.
func (p *Postgres) ActiveBets(ctx context.Context, key market.Key) ([]betslip.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, slip_id, fixture_id, market_id, specifier, outcome, price
		FROM bets
		WHERE fixture_id=$1 AND market_id=$2 AND specifier=$3 AND status='ACTIVE'`,
		key.FixtureID, key.MarketID, key.Specifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bets []betslip.Bet
	for rows.Next() {
		b := betslip.Bet{Status: betslip.StatusActive}
		if err := rows.Scan(&b.ID, &b.SlipID, &b.FixtureID, &b.MarketID,
			&b.Specifier, &b.Outcome, &b.Price); err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// ResolveBets fecha as apostas e resolve os slips que ficaram completos.
// O guard status='ACTIVE' no UPDATE garante que reentrega é no-op.
func (p *Postgres) ResolveBets(ctx context.Context, resolutions []BetResolution) ([]SlipResolution, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	slipIDs := make(map[string]bool)
	for _, r := range resolutions {
		res, err := tx.ExecContext(ctx, `
			UPDATE bets SET status='CLOSED', result=$2, settled_at=$3
			WHERE id=$1 AND status='ACTIVE'`,
			r.BetID, string(r.Result), now)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slipIDs[r.SlipID] = true
		}
	}

	var out []SlipResolution
	for slipID := range slipIDs {
		sr, done, err := p.resolveSlipTx(ctx, tx, slipID, now)
		if err != nil {
			return nil, err
		}
		if done {
			out = append(out, sr)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveSlipTx fecha um slip cujas pernas estejam todas fechadas e
// credita o retorno (ganho ou devolução de stake anulado).
func (p *Postgres) resolveSlipTx(ctx context.Context, tx *sql.Tx, slipID string, now time.Time) (SlipResolution, bool, error) {
	var slip betslip.Slip
	var status string
	err := tx.QueryRowContext(ctx, `
		SELECT id, player_id, stake_cents, odds, status
		FROM bet_slips WHERE id=$1 FOR UPDATE`, slipID).
		Scan(&slip.ID, &slip.PlayerID, &slip.StakeCents, &slip.Odds, &status)
	if err != nil {
		return SlipResolution{}, false, err
	}
	if betslip.Status(status) != betslip.StatusActive {
		return SlipResolution{}, false, nil // cashout ou settlement anterior já fechou
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT price, status, COALESCE(result,'') FROM bets WHERE slip_id=$1`, slipID)
	if err != nil {
		return SlipResolution{}, false, err
	}
	var legs []betslip.Bet
	for rows.Next() {
		var (
			b   betslip.Bet
			st  string
			res string
		)
		if err := rows.Scan(&b.Price, &st, &res); err != nil {
			rows.Close()
			return SlipResolution{}, false, err
		}
		b.Status = betslip.Status(st)
		b.Result = betslip.Result(res)
		legs = append(legs, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SlipResolution{}, false, err
	}

	result, payout, done := ResolveSlip(slip, legs)
	if !done {
		return SlipResolution{}, false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bet_slips SET status='CLOSED', result=$2, settled_at=$3 WHERE id=$1`,
		slipID, string(result), now); err != nil {
		return SlipResolution{}, false, err
	}

	sr := SlipResolution{
		SlipID:      slipID,
		PlayerID:    slip.PlayerID,
		Result:      result,
		PayoutCents: payout,
	}

	if payout > 0 {
		category := wallet.CategoryWinnings
		sr.BalanceNotReason = "winnings"
		if result == betslip.ResultVoid {
			category = wallet.CategoryRefund
			sr.BalanceNotReason = "refund"
		}
		newBal, err := p.wallet.CreditTx(ctx, tx, slip.PlayerID, payout, category, "slip:"+slipID)
		if err != nil {
			return SlipResolution{}, false, err
		}
		sr.NewBalanceCents = newBal
	}

	return sr, true, nil
}
