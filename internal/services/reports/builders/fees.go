package builders

import (
	"context"
	"sort"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// Fees builds the applied-fees payload across every owned account,
// newest applied first, capped by the configured limit
type Fees struct {
	store repo.Storage
	limit int
}

// NewFees constructs the FEES builder
func NewFees(store repo.Storage, limit int) *Fees {
	return &Fees{store: store, limit: limit}
}

// Code implements domain.Builder
func (b *Fees) Code() string { return domain.ModuleFees }

// Build implements domain.Builder
func (b *Fees) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	m, err := loadMembership(ctx, b.store, customerIDs)
	if err != nil {
		return nil, err
	}

	var fees map[int64][]repo.FeeRow
	if len(m.accountIDs) > 0 {
		if fees, err = b.store.FeesByAccount(ctx, m.accountIDs); err != nil {
			return nil, err
		}
	}

	type entry struct {
		appliedAt string
		row       repo.FeeRow
	}
	byCustomer := make(map[int64][]entry)
	for aid, rows := range fees {
		for _, r := range rows {
			at := ""
			if r.AppliedAt != nil {
				at = *r.AppliedAt
			}
			for _, cid := range m.customersByAccount[aid] {
				byCustomer[cid] = append(byCustomer[cid], entry{appliedAt: at, row: r})
			}
		}
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		entries := byCustomer[cid]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].appliedAt > entries[j].appliedAt })
		if len(entries) > b.limit {
			entries = entries[:b.limit]
		}

		feeArr := docval.EmptyArray()
		for _, e := range entries {
			feeArr.Append(docval.Object().
				Set("feeId", docval.Int(e.row.FeeID)).
				Set("accountId", docval.Int(e.row.AccountID)).
				Set("entryId", docval.IntOrNull(e.row.EntryID)).
				Set("appliedAt", docval.StrOrNull(e.row.AppliedAt)).
				Set("feeCode", docval.String(e.row.FeeCode)).
				Set("feeName", docval.String(e.row.FeeName)).
				Set("feeAmount", docval.FloatOrNull(e.row.FeeAmount)))
		}
		out[cid] = docval.Object().
			Set("fees", feeArr).
			Set("limit", docval.Int(int64(b.limit)))
	}
	return out, nil
}
