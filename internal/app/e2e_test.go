package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"

	"Tracker/internal/app"
	"Tracker/internal/config"
	dom "Tracker/internal/domain"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// In-memory stand-ins for Postgres and Redis so the full route table
// runs under httptest.

type memUserRepo struct {
	byName map[string]dom.User
	nextID int64
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	u, ok := r.byName[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *memUserRepo) Create(_ context.Context, username, passwordHash string) (dom.User, error) {
	if _, ok := r.byName[username]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505"}
	}
	u := dom.User{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	r.nextID++
	r.byName[username] = u
	return u, nil
}

type memLedgerRepo struct {
	rows   map[int64]dom.Transaction
	nextID int64
}

func (r *memLedgerRepo) Create(_ context.Context, t dom.Transaction) (dom.Transaction, error) {
	t.ID = r.nextID
	r.nextID++
	r.rows[t.ID] = t
	return t, nil
}

func (r *memLedgerRepo) GetByID(_ context.Context, userID, id int64) (dom.Transaction, error) {
	t, ok := r.rows[id]
	if !ok || t.UserID != userID {
		return dom.Transaction{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *memLedgerRepo) List(_ context.Context, userID int64) ([]dom.Transaction, error) {
	var list []dom.Transaction
	for _, t := range r.rows {
		if t.UserID == userID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date > list[j].Date
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *memLedgerRepo) Update(_ context.Context, userID, id int64, t dom.Transaction) (dom.Transaction, error) {
	existing, ok := r.rows[id]
	if !ok || existing.UserID != userID {
		return dom.Transaction{}, pgx.ErrNoRows
	}
	t.ID = id
	t.UserID = userID
	r.rows[id] = t
	return t, nil
}

func (r *memLedgerRepo) Delete(_ context.Context, userID, id int64) error {
	t, ok := r.rows[id]
	if ok && t.UserID == userID {
		delete(r.rows, id)
	}
	return nil
}

func (r *memLedgerRepo) Search(ctx context.Context, userID int64, q string) ([]dom.Transaction, error) {
	list, _ := r.List(ctx, userID)
	var out []dom.Transaction
	for _, t := range list {
		if strings.Contains(strings.ToLower(t.Category), strings.ToLower(q)) ||
			strings.Contains(strings.ToLower(t.Note), strings.ToLower(q)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) Balance(_ context.Context, userID int64) (dom.BalanceSummary, error) {
	s := dom.BalanceSummary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range r.rows {
		if t.UserID != userID {
			continue
		}
		if t.Kind == dom.KindIncome {
			s.Income = s.Income.Add(t.Amount)
		} else {
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s, nil
}

type memSessions struct {
	sessions map[string]int64
	nextID   int
}

func (f *memSessions) Create(_ context.Context, userID int64) (string, error) {
	id := "sess-" + strconv.Itoa(f.nextID)
	f.nextID++
	f.sessions[id] = userID
	return id, nil
}

func (f *memSessions) GetUserID(_ context.Context, sessionID string) (int64, bool) {
	uid, ok := f.sessions[sessionID]
	return uid, ok
}

func (f *memSessions) Delete(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memLedgerRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ledgerRepo := &memLedgerRepo{rows: map[int64]dom.Transaction{}, nextID: 1}
	app.Setup(r, app.Deps{
		Cfg:      config.Config{},
		Sessions: &memSessions{sessions: map[string]int64{}, nextID: 1},
		Users:    service.NewUserService(&memUserRepo{byName: map[string]dom.User{}, nextID: 1}),
		Ledger:   service.NewLedgerService(ledgerRepo, nil),
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, ledgerRepo
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		// Redirects are assertions here, not navigation.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.Post(target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp
}

func getJSON(t *testing.T, client *http.Client, target string, out any) *http.Response {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

type balancePage struct {
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
		Type     string `json:"type"`
		Date     string `json:"date"`
	} `json:"transactions"`
}

func TestEndToEnd_LedgerFlow(t *testing.T) {
	ts, ledgerRepo := newTestServer(t)
	alice := newBrowser(t)

	// Unauthenticated access bounces to the login page.
	resp, err := alice.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	creds := url.Values{"username": {"alice"}, "password": {"pw1"}}

	resp = postForm(t, alice, ts.URL+"/register", creds)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// Second registration with the same name is refused.
	resp = postForm(t, alice, ts.URL+"/register", creds)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/register", resp.Header.Get("Location"))

	// Wrong password and unknown user land on the same page.
	resp = postForm(t, alice, ts.URL+"/login", url.Values{"username": {"alice"}, "password": {"wrongpw"}})
	require.Equal(t, "/login", resp.Header.Get("Location"))
	resp = postForm(t, alice, ts.URL+"/login", url.Values{"username": {"ghost"}, "password": {"x"}})
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = postForm(t, alice, ts.URL+"/login", creds)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = postForm(t, alice, ts.URL+"/add", url.Values{
		"amount": {"100"}, "category": {"salary"}, "type": {"income"}, "date": {"2024-01-01"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = postForm(t, alice, ts.URL+"/add", url.Values{
		"amount": {"40"}, "category": {"food"}, "type": {"expense"}, "date": {"2024-01-02"}, "note": {"groceries"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Malformed amount is a validation bounce, not a crash.
	resp = postForm(t, alice, ts.URL+"/add", url.Values{
		"amount": {"lots"}, "category": {"food"}, "type": {"expense"}, "date": {"2024-01-03"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/add", resp.Header.Get("Location"))

	var page balancePage
	resp = getJSON(t, alice, ts.URL+"/", &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, page.Income.Equal(decimal.NewFromInt(100)), "income = %s", page.Income)
	require.True(t, page.Expense.Equal(decimal.NewFromInt(40)), "expense = %s", page.Expense)
	require.True(t, page.Balance.Equal(decimal.NewFromInt(60)), "balance = %s", page.Balance)
	require.Len(t, page.Transactions, 2)
	// Descending date: the food expense comes before the salary.
	require.Equal(t, "food", page.Transactions[0].Category)
	require.Equal(t, "salary", page.Transactions[1].Category)

	foodID := page.Transactions[0].ID

	// Deleting a transaction that does not exist changes nothing.
	before := len(ledgerRepo.rows)
	resp, err = alice.Get(ts.URL + "/delete/9999")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/history", resp.Header.Get("Location"))
	require.Len(t, ledgerRepo.rows, before)

	// A second user cannot see, edit or delete alice's rows.
	bob := newBrowser(t)
	postForm(t, bob, ts.URL+"/register", url.Values{"username": {"bob"}, "password": {"pw2"}})
	postForm(t, bob, ts.URL+"/login", url.Values{"username": {"bob"}, "password": {"pw2"}})

	var bobPage balancePage
	resp = getJSON(t, bob, ts.URL+"/", &bobPage)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, bobPage.Transactions)
	require.True(t, bobPage.Balance.IsZero())

	resp, err = bob.Get(ts.URL + "/edit/" + strconv.FormatInt(foodID, 10))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/history", resp.Header.Get("Location"))

	resp = postForm(t, bob, ts.URL+"/edit/"+strconv.FormatInt(foodID, 10), url.Values{
		"amount": {"1"}, "category": {"hijack"}, "type": {"expense"}, "date": {"2024-01-02"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/history", resp.Header.Get("Location"))
	require.Equal(t, "food", ledgerRepo.rows[foodID].Category)

	resp, err = bob.Get(ts.URL + "/delete/" + strconv.FormatInt(foodID, 10))
	require.NoError(t, err)
	resp.Body.Close()
	_, stillThere := ledgerRepo.rows[foodID]
	require.True(t, stillThere)

	// The owner can edit, and history reflects it.
	resp = postForm(t, alice, ts.URL+"/edit/"+strconv.FormatInt(foodID, 10), url.Values{
		"amount": {"45.50"}, "category": {"food"}, "type": {"expense"}, "date": {"2024-01-02"}, "note": {"groceries+wine"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/history", resp.Header.Get("Location"))
	require.True(t, ledgerRepo.rows[foodID].Amount.Equal(decimal.RequireFromString("45.50")))

	// History search by category.
	var history struct {
		Transactions []struct {
			Category string `json:"category"`
		} `json:"transactions"`
	}
	resp = getJSON(t, alice, ts.URL+"/history?q=food", &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history.Transactions, 1)
	require.Equal(t, "food", history.Transactions[0].Category)

	// Logout revokes the session; logging out twice is harmless.
	resp, err = alice.Get(ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = alice.Get(ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = alice.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestEndToEnd_HealthAndVersion(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newBrowser(t)

	var health struct {
		OK bool `json:"ok"`
	}
	resp := getJSON(t, client, ts.URL+"/health", &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, health.OK)

	resp = getJSON(t, client, ts.URL+"/version", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
