package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"Tracker/internal/auth"
	dom "Tracker/internal/domain"
	"Tracker/internal/dto"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler maps the browser routes onto the ledger service. All
// routes here sit behind auth.RequireSession, so UserIDFromContext is
// always set.
type LedgerHandler struct {
	svc *service.LedgerService
}

func NewLedgerHandler(svc *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// Index godoc
// @Summary      Transaction list with balance summary
// @Tags         ledger
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.LedgerPageResponse
// @Failure      500  {object}  map[string]string
// @Router       / [get]
func (h *LedgerHandler) Index(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.svc.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.LedgerPageResponse{
		Flash:        popFlash(c),
		Transactions: transactionsToResponses(list),
		BalanceResponse: dto.BalanceResponse{
			Income:  summary.Income,
			Expense: summary.Expense,
			Balance: summary.Balance,
		},
	})
}

// ShowAdd godoc
// @Summary      Add-form data
// @Tags         ledger
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /add [get]
func (h *LedgerHandler) ShowAdd(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"flash": popFlash(c),
		"kinds": []dom.Kind{dom.KindIncome, dom.KindExpense},
	})
}

// Add godoc
// @Summary      Create a transaction
// @Tags         ledger
// @Accept       x-www-form-urlencoded
// @Security     CookieAuth
// @Param        amount    formData  string  true   "Amount"
// @Param        category  formData  string  true   "Category"
// @Param        type      formData  string  true   "income or expense"
// @Param        date      formData  string  true   "Date (YYYY-MM-DD)"
// @Param        note      formData  string  false  "Note"
// @Success      303
// @Failure      500  {object}  map[string]string
// @Router       /add [post]
func (h *LedgerHandler) Add(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.TransactionForm
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Amount, category, type and date are required.")
		c.Redirect(http.StatusSeeOther, "/add")
		return
	}
	_, err := h.svc.Add(c.Request.Context(), userID, req.Amount, req.Category, req.Type, req.Date, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			setFlash(c, err.Error())
			c.Redirect(http.StatusSeeOther, "/add")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	setFlash(c, "Transaction added.")
	c.Redirect(http.StatusSeeOther, "/")
}

// History godoc
// @Summary      Full transaction history
// @Tags         ledger
// @Produce      json
// @Security     CookieAuth
// @Param        q    query     string  false  "Filter by category or note"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      500  {object}  map[string]string
// @Router       /history [get]
func (h *LedgerHandler) History(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var (
		list []dom.Transaction
		err  error
	)
	if q := c.Query("q"); q != "" {
		list, err = h.svc.Search(c.Request.Context(), userID, q)
	} else {
		list, err = h.svc.List(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{
		Flash:        popFlash(c),
		Transactions: transactionsToResponses(list),
	})
}

// Delete godoc
// @Summary      Delete a transaction
// @Tags         ledger
// @Security     CookieAuth
// @Param        id   path  int  true  "Transaction ID"
// @Success      302
// @Failure      500  {object}  map[string]string
// @Router       /delete/{id} [get]
func (h *LedgerHandler) Delete(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// Deleting a missing or foreign id is deliberately not an error.
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	setFlash(c, "Transaction deleted successfully")
	c.Redirect(http.StatusFound, "/history")
}

// ShowEdit godoc
// @Summary      Current values for the edit form
// @Tags         ledger
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      500  {object}  map[string]string
// @Router       /edit/{id} [get]
func (h *LedgerHandler) ShowEdit(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			setFlash(c, "Transaction not found.")
			c.Redirect(http.StatusFound, "/history")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flash":       popFlash(c),
		"transaction": transactionToResponse(t),
		"kinds":       []dom.Kind{dom.KindIncome, dom.KindExpense},
	})
}

// Edit godoc
// @Summary      Update a transaction
// @Tags         ledger
// @Accept       x-www-form-urlencoded
// @Security     CookieAuth
// @Param        id        path      int     true   "Transaction ID"
// @Param        amount    formData  string  true   "Amount"
// @Param        category  formData  string  true   "Category"
// @Param        type      formData  string  true   "income or expense"
// @Param        date      formData  string  true   "Date (YYYY-MM-DD)"
// @Param        note      formData  string  false  "Note"
// @Success      303
// @Failure      500  {object}  map[string]string
// @Router       /edit/{id} [post]
func (h *LedgerHandler) Edit(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TransactionForm
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Amount, category, type and date are required.")
		c.Redirect(http.StatusSeeOther, "/edit/"+strconv.FormatInt(id, 10))
		return
	}
	err := h.svc.Update(c.Request.Context(), userID, id, req.Amount, req.Category, req.Type, req.Date, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			setFlash(c, err.Error())
			c.Redirect(http.StatusSeeOther, "/edit/"+strconv.FormatInt(id, 10))
		case errors.Is(err, service.ErrNotFound):
			setFlash(c, "Transaction not found.")
			c.Redirect(http.StatusSeeOther, "/history")
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	setFlash(c, "Transaction updated successfully!")
	c.Redirect(http.StatusSeeOther, "/history")
}

// parseID reads a positive numeric :id. A malformed id rides the same
// not-found flow as a missing row.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		setFlash(c, "Transaction not found.")
		c.Redirect(http.StatusFound, "/history")
		return 0, false
	}
	return id, true
}

func transactionToResponse(t dom.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID,
		Amount:    t.Amount,
		Category:  t.Category,
		Type:      string(t.Kind),
		Date:      t.Date,
		Note:      t.Note,
		CreatedAt: t.CreatedAt,
	}
}

func transactionsToResponses(list []dom.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, len(list))
	for i := range list {
		out[i] = transactionToResponse(list[i])
	}
	return out
}
