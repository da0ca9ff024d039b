package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// TransactionRow is one row of the direct transaction table
type TransactionRow struct {
	TransactionID int64
	AccountID     int64
	Type          *string
	Amount        *float64
	Timestamp     *string
	Description   *string
	TransferID    *int64
}

// LedgerPostingRow is the posting-plus-entry fallback shape
type LedgerPostingRow struct {
	EntryID     int64
	AccountID   int64
	Amount      *float64
	PostingTs   *string
	Description *string
	EntrySource *string
	Reference   *string
	EntryTs     *string
}

// DirectTransactionCount implements Storage; the result decides once per
// run whether the direct table or the ledger fallback feeds the module
func (s *pg) DirectTransactionCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM ecs_transactions`).Scan(&n)
	if err != nil {
		return 0, perr.FromPostgres(err, "transaction count failed")
	}
	return n, nil
}

// DirectTransactionsByAccount implements Storage
func (s *pg) DirectTransactionsByAccount(ctx context.Context, accountIDs []int64) (map[int64][]TransactionRow, error) {
	out := make(map[int64][]TransactionRow)
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT account_id, txn_type, amount, txn_ts, description, transfer_id, transaction_id
			FROM ecs_transactions
			WHERE account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY txn_ts DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "transactions lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r TransactionRow
			var ts *time.Time
			if err := rs.Scan(&r.AccountID, &r.Type, &r.Amount, &ts,
				&r.Description, &r.TransferID, &r.TransactionID); err != nil {
				return perr.FromPostgres(err, "transactions scan failed")
			}
			r.Timestamp = tsStr(ts)
			out[r.AccountID] = append(out[r.AccountID], r)
		}
		return rs.Err()
	})
	return out, err
}

// PostedLedgerByAccount implements Storage
func (s *pg) PostedLedgerByAccount(ctx context.Context, accountIDs []int64) (map[int64][]LedgerPostingRow, error) {
	out := make(map[int64][]LedgerPostingRow)
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT ap.account_id, ap.amount, ap.posting_ts, ap.description,
			       je.entry_id, je.source, je.reference, je.entry_ts
			FROM ecs_account_postings ap
			JOIN ecs_journal_entries je ON je.entry_id = ap.entry_id
			WHERE je.status = 'POSTED'
			  AND ap.account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY ap.posting_ts DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "ledger postings lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r LedgerPostingRow
			var postingTs, entryTs *time.Time
			if err := rs.Scan(&r.AccountID, &r.Amount, &postingTs, &r.Description,
				&r.EntryID, &r.EntrySource, &r.Reference, &entryTs); err != nil {
				return perr.FromPostgres(err, "ledger postings scan failed")
			}
			r.PostingTs = tsStr(postingTs)
			r.EntryTs = tsStr(entryTs)
			out[r.AccountID] = append(out[r.AccountID], r)
		}
		return rs.Err()
	})
	return out, err
}
