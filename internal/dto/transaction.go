package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionForm is the body for POST /add and POST /edit/:id.
// Amount stays a string here: the service parses it so a malformed
// number becomes a validation error instead of a crash.
type TransactionForm struct {
	Amount   string `form:"amount" json:"amount" binding:"required"`
	Category string `form:"category" json:"category" binding:"required"`
	Type     string `form:"type" json:"type" binding:"required"`
	Date     string `form:"date" json:"date" binding:"required"`
	Note     string `form:"note" json:"note"`
}

type TransactionResponse struct {
	ID       int64           `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Type     string          `json:"type"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`

	CreatedAt time.Time `json:"created_at"`
}

type BalanceResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type LedgerPageResponse struct {
	Flash        string                `json:"flash,omitempty"`
	Transactions []TransactionResponse `json:"transactions"`
	BalanceResponse
}

type HistoryResponse struct {
	Flash        string                `json:"flash,omitempty"`
	Transactions []TransactionResponse `json:"transactions"`
}
