package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// FeeRow is one applied fee joined to its fee type
type FeeRow struct {
	FeeID     int64
	AccountID int64
	EntryID   *int64
	AppliedAt *string
	FeeCode   string
	FeeName   string
	FeeAmount *float64
}

// FeesByAccount implements Storage
func (s *pg) FeesByAccount(ctx context.Context, accountIDs []int64) (map[int64][]FeeRow, error) {
	out := make(map[int64][]FeeRow)
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT fa.fee_id, fa.account_id, fa.entry_id, fa.applied_at,
			       ft.code, ft.name, ft.amount
			FROM ecs_fees_applied fa
			JOIN ecs_fee_types ft ON ft.fee_type_id = fa.fee_type_id
			WHERE fa.account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY fa.applied_at DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "applied fees lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r FeeRow
			var applied *time.Time
			if err := rs.Scan(&r.FeeID, &r.AccountID, &r.EntryID, &applied,
				&r.FeeCode, &r.FeeName, &r.FeeAmount); err != nil {
				return perr.FromPostgres(err, "applied fees scan failed")
			}
			r.AppliedAt = tsStr(applied)
			out[r.AccountID] = append(out[r.AccountID], r)
		}
		return rs.Err()
	})
	return out, err
}
