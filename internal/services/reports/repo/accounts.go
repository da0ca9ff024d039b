package repo

import (
	"context"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// HolderLink is one party-to-account membership edge
type HolderLink struct {
	PartyID   int64
	AccountID int64
}

// AccountRow is an account joined to its deposit product
type AccountRow struct {
	ID               int64
	AccountNumber    string
	Status           string
	ProductCode      string
	ProductName      string
	CurrencyCode     string
	OverdraftAllowed bool
	OverdraftLimit   *float64
}

// HolderRow is one holder on an account, already role-ordered
type HolderRow struct {
	PartyID  int64
	Role     string
	FullName string
}

// HolderLinks implements Storage
func (s *pg) HolderLinks(ctx context.Context, partyIDs []int64) ([]HolderLink, error) {
	var out []HolderLink
	err := eachChunk(partyIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT party_id, account_id
			FROM ecs_account_holders
			WHERE party_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY party_id, account_id
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "holder links lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var l HolderLink
			if err := rs.Scan(&l.PartyID, &l.AccountID); err != nil {
				return perr.FromPostgres(err, "holder links scan failed")
			}
			out = append(out, l)
		}
		return rs.Err()
	})
	return out, err
}

// AccountsByID implements Storage
func (s *pg) AccountsByID(ctx context.Context, accountIDs []int64) (map[int64]AccountRow, error) {
	out := make(map[int64]AccountRow, len(accountIDs))
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT a.account_id, a.account_number, a.status,
			       dp.code, dp.name, dp.currency_code,
			       dp.overdraft_allowed, dp.overdraft_limit
			FROM ecs_accounts a
			JOIN ecs_deposit_products dp ON dp.product_id = a.product_id
			WHERE a.account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "accounts lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r AccountRow
			if err := rs.Scan(&r.ID, &r.AccountNumber, &r.Status,
				&r.ProductCode, &r.ProductName, &r.CurrencyCode,
				&r.OverdraftAllowed, &r.OverdraftLimit); err != nil {
				return perr.FromPostgres(err, "accounts scan failed")
			}
			out[r.ID] = r
		}
		return rs.Err()
	})
	return out, err
}

// HoldersByAccount implements Storage. Rows come back ordered PRIMARY,
// JOINT, then everything else, tie-broken by party id
func (s *pg) HoldersByAccount(ctx context.Context, accountIDs []int64) (map[int64][]HolderRow, error) {
	out := make(map[int64][]HolderRow)
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT h.account_id, h.party_id, h.role, p.full_name
			FROM ecs_account_holders h
			JOIN ecs_parties p ON p.party_id = h.party_id
			WHERE h.account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY h.account_id,
			         CASE h.role WHEN 'PRIMARY' THEN 0 WHEN 'JOINT' THEN 1 ELSE 2 END,
			         h.party_id
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "account holders lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var aid int64
			var r HolderRow
			if err := rs.Scan(&aid, &r.PartyID, &r.Role, &r.FullName); err != nil {
				return perr.FromPostgres(err, "account holders scan failed")
			}
			out[aid] = append(out[aid], r)
		}
		return rs.Err()
	})
	return out, err
}

// PostedBalances implements Storage: signed sum of posted postings per
// account, rounded to 2 decimals in SQL. Accounts with no posted activity
// are absent from the result
func (s *pg) PostedBalances(ctx context.Context, accountIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64)
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT ap.account_id, ROUND(COALESCE(SUM(ap.amount), 0), 2)::float8
			FROM ecs_account_postings ap
			JOIN ecs_journal_entries je ON je.entry_id = ap.entry_id
			WHERE je.status = 'POSTED'
			  AND ap.account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			GROUP BY ap.account_id
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "posted balance lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var aid int64
			var bal float64
			if err := rs.Scan(&aid, &bal); err != nil {
				return perr.FromPostgres(err, "posted balance scan failed")
			}
			out[aid] = bal
		}
		return rs.Err()
	})
	return out, err
}
