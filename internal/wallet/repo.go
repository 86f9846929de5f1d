package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoActiveBonus     = errors.New("no active bonus")
	ErrNotFound          = errors.New("not found")
)

// Categorias de lançamento no ledger da carteira.
const (
	CategoryDeposit  = "DEPOSIT"
	CategoryStake    = "STAKE"
	CategoryWinnings = "WINNINGS"
	CategoryRefund   = "REFUND"
	CategoryCashout  = "CASHOUT"
	CategoryBonus    = "BONUS"
)

// Postgres implementa operações de carteira em banco.
// Os métodos *Tx participam de transações maiores (betslip, settlement,
// cashout): o débito/crédito e o lançamento no ledger comitam junto com
// o restante da unidade de trabalho.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a
// carteira se não existir. Usa transação para garantir atomicidade.
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no ledger.
// Garante lock pessimista na linha da carteira.
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err = p.CreditTx(ctx, tx, userID, amount, CategoryDeposit, "deposit:"+externalRef)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// DebitTx debita o saldo dentro de uma transação externa, com lock FOR UPDATE
// na linha da carteira. Saldo insuficiente devolve ErrInsufficientFunds sem
// alterar nada (o rollback fica por conta do dono da transação).
func (p *Postgres) DebitTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, category, description string) (newBalance int64, err error) {
	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`,
		amount, walletID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, category, amount_cents, description)
		 VALUES($1,'DEBIT',$2,$3,$4)`,
		walletID, category, amount, description); err != nil {
		return 0, err
	}

	return balance - amount, nil
}

// CreditTx credita o saldo dentro de uma transação externa.
func (p *Postgres) CreditTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, category, description string) (newBalance int64, err error) {
	var walletID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		amount, walletID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, category, amount_cents, description)
		 VALUES($1,'CREDIT',$2,$3,$4)`,
		walletID, category, amount, description); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// RedeemBonusTx marca o bônus ativo mais antigo do usuário como REDEEMED e
// retorna o valor, dentro de uma transação externa. Sem bônus ativo,
// devolve ErrNoActiveBonus.
func (p *Postgres) RedeemBonusTx(ctx context.Context, tx *sql.Tx, userID string) (amountCents int64, err error) {
	var bonusID string
	err = tx.QueryRowContext(ctx, `
		SELECT id, amount_cents FROM bonuses
		WHERE user_id=$1 AND status='ACTIVE'
		ORDER BY created_at ASC LIMIT 1
		FOR UPDATE`, userID).Scan(&bonusID, &amountCents)
	if err == sql.ErrNoRows {
		return 0, ErrNoActiveBonus
	}
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bonuses SET status='REDEEMED', redeemed_at=$2 WHERE id=$1`,
		bonusID, time.Now().UTC()); err != nil {
		return 0, err
	}
	return amountCents, nil
}

// NetWinningsSince soma ganhos menos apostas do usuário a partir de um
// instante. Alimenta o tier de risco: sempre recalculado, nunca cacheado.
func (p *Postgres) NetWinningsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	const q = `
		SELECT COALESCE(SUM(
		  CASE
		    WHEN l.operation_type='CREDIT' AND l.category IN ('WINNINGS','CASHOUT') THEN l.amount_cents
		    WHEN l.operation_type='DEBIT'  AND l.category='STAKE' THEN -l.amount_cents
		    ELSE 0
		  END), 0)
		FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE w.user_id=$1 AND l.created_at >= $2
	`
	var net int64
	err := p.db.QueryRowContext(ctx, q, userID, since).Scan(&net)
	return net, err
}
