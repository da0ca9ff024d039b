// Package repo provides the bulk prefetch and document persistence queries
// behind the report module builders
package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/modkit/repokit"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the read surface the module builders prefetch from. Every
// method takes a full id list and chunks it internally, so callers issue
// one logical lookup per relation regardless of batch size
type Storage interface {
	// profile
	CustomersByID(ctx context.Context, ids []int64) (map[int64]CustomerRow, error)
	ContactsByParty(ctx context.Context, ids []int64) (map[int64][]ContactRow, error)
	AddressesByParty(ctx context.Context, ids []int64) (map[int64][]AddressRow, error)
	IdentityDocsByParty(ctx context.Context, ids []int64) (map[int64][]IdentityDocRow, error)

	// account membership, shared by several modules
	HolderLinks(ctx context.Context, partyIDs []int64) ([]HolderLink, error)

	// accounts
	AccountsByID(ctx context.Context, accountIDs []int64) (map[int64]AccountRow, error)
	HoldersByAccount(ctx context.Context, accountIDs []int64) (map[int64][]HolderRow, error)
	PostedBalances(ctx context.Context, accountIDs []int64) (map[int64]float64, error)

	// transactions
	DirectTransactionCount(ctx context.Context) (int64, error)
	DirectTransactionsByAccount(ctx context.Context, accountIDs []int64) (map[int64][]TransactionRow, error)
	PostedLedgerByAccount(ctx context.Context, accountIDs []int64) (map[int64][]LedgerPostingRow, error)

	// cards
	CardsByAccount(ctx context.Context, accountIDs []int64) ([]CardRow, error)
	OpenAuthsByCard(ctx context.Context, cardIDs []int64) (map[int64][]AuthorizationRow, error)
	SettlementsByCard(ctx context.Context, cardIDs []int64) (map[int64][]SettlementRow, error)

	// loans
	LoansByParty(ctx context.Context, partyIDs []int64) (map[int64][]LoanRow, error)
	NextDueByLoan(ctx context.Context, loanIDs []int64) (map[int64]ScheduleRow, error)
	PaymentsByLoan(ctx context.Context, loanIDs []int64) (map[int64][]PaymentRow, error)

	// compliance
	FlagsByParty(ctx context.Context, partyIDs []int64) (map[int64][]FlagRow, error)

	// fees
	FeesByAccount(ctx context.Context, accountIDs []int64) (map[int64][]FeeRow, error)
}

// eachChunk runs fn once per id sublist, sized for IN (...) lookups
func eachChunk(ids []int64, fn func(sub []int64) error) error {
	for _, sub := range chunk.Split(ids, chunk.DefaultSize) {
		if err := fn(sub); err != nil {
			return err
		}
	}
	return nil
}

// tsStr formats a nullable timestamp as ISO-8601 UTC seconds with Z suffix.
// Lexicographic order of the result matches chronological order
func tsStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02T15:04:05Z")
	return &s
}

// dateStr formats a nullable date as YYYY-MM-DD
func dateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}
