package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	dom "Tracker/internal/domain"
	"Tracker/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound covers both a missing transaction and one owned by a
	// different user; the two cases must stay indistinguishable.
	ErrNotFound = errors.New("transaction not found")

	// ErrValidation marks malformed input. Wrapped errors carry the
	// user-facing reason.
	ErrValidation = errors.New("invalid transaction")
)

// Cache is the per-user read cache for ledger queries. A nil entry
// (not an empty one) signals a miss. Implemented by cache.LedgerCache.
type Cache interface {
	GetList(ctx context.Context, userID int64) ([]dom.Transaction, error)
	SetList(ctx context.Context, userID int64, list []dom.Transaction) error
	GetSearch(ctx context.Context, userID int64, q string) ([]dom.Transaction, error)
	SetSearch(ctx context.Context, userID int64, q string, list []dom.Transaction) error
	GetSummary(ctx context.Context, userID int64) (*dom.BalanceSummary, error)
	SetSummary(ctx context.Context, userID int64, s dom.BalanceSummary) error
	InvalidateAll(ctx context.Context, userID int64) error
}

// LedgerService owns the per-user transaction ledger: listing,
// aggregation and the add/edit/delete operations. Every call is scoped
// to the session user's id.
type LedgerService struct {
	repo  repo.LedgerRepo
	cache Cache
	sf    singleflight.Group
}

// NewLedgerService creates a LedgerService. If c is nil, caching is disabled.
func NewLedgerService(r repo.LedgerRepo, c Cache) *LedgerService {
	return &LedgerService{repo: r, cache: c}
}

// validate parses and checks the raw form fields. Amount must be a
// positive number, kind must be in the enum, category and date must be
// non-empty. Note is optional.
func validate(userID int64, amount, category, kind, date, note string) (dom.Transaction, error) {
	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return dom.Transaction{}, fmt.Errorf("%w: amount must be a number", ErrValidation)
	}
	if !amt.IsPositive() {
		return dom.Transaction{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return dom.Transaction{}, fmt.Errorf("%w: category is required", ErrValidation)
	}
	k, err := dom.ParseKind(strings.TrimSpace(kind))
	if err != nil {
		return dom.Transaction{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return dom.Transaction{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	return dom.Transaction{
		UserID:   userID,
		Amount:   amt,
		Category: category,
		Kind:     k,
		Date:     date,
		Note:     strings.TrimSpace(note),
	}, nil
}

// Add validates the raw fields and inserts a transaction for userID.
func (s *LedgerService) Add(ctx context.Context, userID int64, amount, category, kind, date, note string) (int64, error) {
	t, err := validate(userID, amount, category, kind, date, note)
	if err != nil {
		return 0, err
	}
	out, err := s.repo.Create(ctx, t)
	if err != nil {
		return 0, err
	}
	s.invalidateCache(ctx, userID)
	return out.ID, nil
}

// List returns the user's transactions, newest date first.
func (s *LedgerService) List(ctx context.Context, userID int64) ([]dom.Transaction, error) {
	if s.cache == nil {
		return s.repo.List(ctx, userID)
	}
	key := "list:" + strconv.FormatInt(userID, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, userID, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Transaction), nil
}

// Balance returns the user's income/expense totals and their
// difference. An empty ledger yields zeros.
func (s *LedgerService) Balance(ctx context.Context, userID int64) (dom.BalanceSummary, error) {
	if s.cache == nil {
		return s.repo.Balance(ctx, userID)
	}
	key := "summary:" + strconv.FormatInt(userID, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if sum, err := s.cache.GetSummary(ctx, userID); err == nil && sum != nil {
			return *sum, nil
		}
		sum, err := s.repo.Balance(ctx, userID)
		if err != nil {
			return dom.BalanceSummary{}, err
		}
		_ = s.cache.SetSummary(ctx, userID, sum)
		return sum, nil
	})
	if err != nil {
		return dom.BalanceSummary{}, err
	}
	return v.(dom.BalanceSummary), nil
}

// Get returns one owned transaction, for the edit form.
func (s *LedgerService) Get(ctx context.Context, userID, id int64) (dom.Transaction, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Transaction{}, ErrNotFound
		}
		return dom.Transaction{}, err
	}
	return t, nil
}

// Update replaces all mutable fields of an owned transaction. A missing
// or foreign id changes nothing and returns ErrNotFound.
func (s *LedgerService) Update(ctx context.Context, userID, id int64, amount, category, kind, date, note string) error {
	t, err := validate(userID, amount, category, kind, date, note)
	if err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, userID, id, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// Delete removes an owned transaction. Unlike Update, a missing or
// foreign id is a silent no-op, not an error.
func (s *LedgerService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// Search filters the user's transactions by category or note substring.
func (s *LedgerService) Search(ctx context.Context, userID int64, q string) ([]dom.Transaction, error) {
	q = strings.TrimSpace(q)
	if s.cache == nil {
		return s.repo.Search(ctx, userID, q)
	}
	key := "search:" + strconv.FormatInt(userID, 10) + ":" + strings.ToLower(q)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetSearch(ctx, userID, q); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.Search(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetSearch(ctx, userID, q, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Transaction), nil
}

func (s *LedgerService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx, userID)
	}
}
