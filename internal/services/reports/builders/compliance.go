package builders

import (
	"context"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// Compliance builds the compliance-flags payload, open flags first then
// newest first, capped by the configured limit
type Compliance struct {
	store repo.Storage
	limit int
}

// NewCompliance constructs the COMPLIANCE builder
func NewCompliance(store repo.Storage, limit int) *Compliance {
	return &Compliance{store: store, limit: limit}
}

// Code implements domain.Builder
func (b *Compliance) Code() string { return domain.ModuleCompliance }

// Build implements domain.Builder
func (b *Compliance) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	flags, err := b.store.FlagsByParty(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		flagArr := docval.EmptyArray()
		for i, f := range flags[cid] {
			if i >= b.limit {
				break
			}
			flagArr.Append(docval.Object().
				Set("flagId", docval.Int(f.FlagID)).
				Set("accountId", docval.IntOrNull(f.AccountID)).
				Set("severity", docval.String(f.Severity)).
				Set("category", docval.String(f.Category)).
				Set("note", docval.StrOrNull(f.Note)).
				Set("createdAt", docval.StrOrNull(f.CreatedAt)).
				Set("status", docval.String(f.Status)))
		}
		out[cid] = docval.Object().
			Set("flags", flagArr).
			Set("limit", docval.Int(int64(b.limit)))
	}
	return out, nil
}
