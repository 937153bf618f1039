package repo

import (
	"context"

	dom "Tracker/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepo provides transaction persistence. Every query is keyed by
// the owning user; a row that exists but belongs to someone else is
// indistinguishable from a missing row.
type LedgerRepo interface {
	Create(ctx context.Context, t dom.Transaction) (dom.Transaction, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Transaction, error)
	List(ctx context.Context, userID int64) ([]dom.Transaction, error)
	Update(ctx context.Context, userID, id int64, t dom.Transaction) (dom.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	Search(ctx context.Context, userID int64, q string) ([]dom.Transaction, error)
	Balance(ctx context.Context, userID int64) (dom.BalanceSummary, error)
}

type PGLedgerRepo struct {
	db *pgxpool.Pool
}

func NewPGLedgerRepo(db *pgxpool.Pool) *PGLedgerRepo {
	return &PGLedgerRepo{db: db}
}

const transactionColumns = `id, user_id, amount, category, kind, date, note, created_at`

func (r *PGLedgerRepo) Create(ctx context.Context, t dom.Transaction) (dom.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, amount, category, kind, date, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + transactionColumns
	var out dom.Transaction
	err := r.db.QueryRow(ctx, query,
		t.UserID, t.Amount, t.Category, string(t.Kind), t.Date, t.Note,
	).Scan(
		&out.ID, &out.UserID, &out.Amount, &out.Category, &out.Kind,
		&out.Date, &out.Note, &out.CreatedAt,
	)
	return out, err
}

func (r *PGLedgerRepo) GetByID(ctx context.Context, userID, id int64) (dom.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE id = $1 AND user_id = $2`
	var t dom.Transaction
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Kind,
		&t.Date, &t.Note, &t.CreatedAt,
	)
	return t, err
}

func (r *PGLedgerRepo) List(ctx context.Context, userID int64) ([]dom.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1 ORDER BY date DESC, id ASC`
	return r.queryList(ctx, query, userID)
}

// Update replaces all mutable fields of an owned row. A missing or
// foreign id surfaces as pgx.ErrNoRows.
func (r *PGLedgerRepo) Update(ctx context.Context, userID, id int64, t dom.Transaction) (dom.Transaction, error) {
	query := `
		UPDATE transactions
		SET amount = $3, category = $4, kind = $5, date = $6, note = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + transactionColumns
	var out dom.Transaction
	err := r.db.QueryRow(ctx, query,
		id, userID, t.Amount, t.Category, string(t.Kind), t.Date, t.Note,
	).Scan(
		&out.ID, &out.UserID, &out.Amount, &out.Category, &out.Kind,
		&out.Date, &out.Note, &out.CreatedAt,
	)
	return out, err
}

// Delete removes an owned row. Deleting a missing or foreign id is a
// silent no-op.
func (r *PGLedgerRepo) Delete(ctx context.Context, userID, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *PGLedgerRepo) Search(ctx context.Context, userID int64, q string) ([]dom.Transaction, error) {
	pattern := "%" + q + "%"
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND (category ILIKE $2 OR note ILIKE $2)
		ORDER BY date DESC, id ASC`
	return r.queryList(ctx, query, userID, pattern)
}

// Balance aggregates in SQL; COALESCE keeps the empty ledger at zero
// rather than NULL.
func (r *PGLedgerRepo) Balance(ctx context.Context, userID int64) (dom.BalanceSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
		FROM transactions WHERE user_id = $1`
	var s dom.BalanceSummary
	if err := r.db.QueryRow(ctx, query, userID).Scan(&s.Income, &s.Expense); err != nil {
		return dom.BalanceSummary{}, err
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s, nil
}

func (r *PGLedgerRepo) queryList(ctx context.Context, query string, args ...any) ([]dom.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Transaction
	for rows.Next() {
		var t dom.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Kind,
			&t.Date, &t.Note, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
