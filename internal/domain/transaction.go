package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of transaction kinds.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ParseKind maps a raw form value to a Kind. Anything outside the enum
// is rejected.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	}
	return "", fmt.Errorf("kind must be income or expense, got %q", s)
}

// Transaction is the domain entity for one ledger entry.
// Date is an opaque sortable string (YYYY-MM-DD by convention); the
// database orders on it lexically.
type Transaction struct {
	ID       int64
	UserID   int64
	Amount   decimal.Decimal
	Category string
	Kind     Kind
	Date     string
	Note     string

	CreatedAt time.Time
}

// BalanceSummary holds the per-user aggregates. All three are zero for
// an empty ledger, never unset.
type BalanceSummary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}
