package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// FlagRow is one compliance flag; open flags sort before closed ones
type FlagRow struct {
	FlagID    int64
	AccountID *int64
	Severity  string
	Category  string
	Note      *string
	CreatedAt *string
	Status    string
}

// FlagsByParty implements Storage
func (s *pg) FlagsByParty(ctx context.Context, partyIDs []int64) (map[int64][]FlagRow, error) {
	out := make(map[int64][]FlagRow)
	err := eachChunk(partyIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT flag_id, party_id, account_id, severity, category, note, created_at, status
			FROM ecs_compliance_flags
			WHERE party_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY party_id,
			         CASE status WHEN 'OPEN' THEN 0 ELSE 1 END,
			         created_at DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "compliance flags lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var pid int64
			var r FlagRow
			var created *time.Time
			if err := rs.Scan(&r.FlagID, &pid, &r.AccountID, &r.Severity,
				&r.Category, &r.Note, &created, &r.Status); err != nil {
				return perr.FromPostgres(err, "compliance flags scan failed")
			}
			r.CreatedAt = tsStr(created)
			out[pid] = append(out[pid], r)
		}
		return rs.Err()
	})
	return out, err
}
