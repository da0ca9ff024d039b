package builders

import (
	"context"
	"sort"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// TransactionSource describes which relation feeds the TRANSACTIONS module.
// It is resolved once per run, not per batch or per request
type TransactionSource struct {
	// UseDirect is true when the direct transaction table has rows;
	// otherwise the module falls back to posted ledger entries
	UseDirect bool
}

// ProbeTransactionSource resolves the source descriptor for a run
func ProbeTransactionSource(ctx context.Context, store repo.Storage) (TransactionSource, error) {
	n, err := store.DirectTransactionCount(ctx)
	if err != nil {
		return TransactionSource{}, err
	}
	return TransactionSource{UseDirect: n > 0}, nil
}

// Transactions builds the recent-activity payload merged across every
// account the customer holds, newest first, capped by the configured limit
type Transactions struct {
	store  repo.Storage
	source TransactionSource
	limit  int
}

// NewTransactions constructs the TRANSACTIONS builder
func NewTransactions(store repo.Storage, source TransactionSource, limit int) *Transactions {
	return &Transactions{store: store, source: source, limit: limit}
}

// Code implements domain.Builder
func (b *Transactions) Code() string { return domain.ModuleTransactions }

// Build implements domain.Builder
func (b *Transactions) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	m, err := loadMembership(ctx, b.store, customerIDs)
	if err != nil {
		return nil, err
	}

	type entry struct {
		ts  string
		doc docval.Value
	}
	byCustomer := make(map[int64][]entry)

	if len(m.accountIDs) > 0 {
		if b.source.UseDirect {
			txns, err := b.store.DirectTransactionsByAccount(ctx, m.accountIDs)
			if err != nil {
				return nil, err
			}
			for aid, rows := range txns {
				for _, r := range rows {
					doc := docval.Object().
						Set("source", docval.String("ecs_transactions")).
						Set("transactionId", docval.Int(r.TransactionID)).
						Set("accountId", docval.Int(aid)).
						Set("type", docval.StrOrNull(r.Type)).
						Set("amount", docval.FloatOrNull(r.Amount)).
						Set("timestamp", docval.StrOrNull(r.Timestamp)).
						Set("description", docval.StrOrNull(r.Description)).
						Set("transferId", docval.IntOrNull(r.TransferID))
					ts := ""
					if r.Timestamp != nil {
						ts = *r.Timestamp
					}
					for _, cid := range m.customersByAccount[aid] {
						byCustomer[cid] = append(byCustomer[cid], entry{ts: ts, doc: doc})
					}
				}
			}
		} else {
			postings, err := b.store.PostedLedgerByAccount(ctx, m.accountIDs)
			if err != nil {
				return nil, err
			}
			for aid, rows := range postings {
				for _, r := range rows {
					doc := docval.Object().
						Set("source", docval.String("ecs_account_postings")).
						Set("entryId", docval.Int(r.EntryID)).
						Set("accountId", docval.Int(aid)).
						Set("amount", docval.FloatOrNull(r.Amount)).
						Set("postingTs", docval.StrOrNull(r.PostingTs)).
						Set("description", docval.StrOrNull(r.Description)).
						Set("entrySource", docval.StrOrNull(r.EntrySource)).
						Set("reference", docval.StrOrNull(r.Reference)).
						Set("entryTs", docval.StrOrNull(r.EntryTs))
					ts := ""
					if r.PostingTs != nil {
						ts = *r.PostingTs
					}
					for _, cid := range m.customersByAccount[aid] {
						byCustomer[cid] = append(byCustomer[cid], entry{ts: ts, doc: doc})
					}
				}
			}
		}
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		entries := byCustomer[cid]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ts > entries[j].ts })
		if len(entries) > b.limit {
			entries = entries[:b.limit]
		}

		txnArr := docval.EmptyArray()
		for _, e := range entries {
			txnArr.Append(e.doc)
		}
		out[cid] = docval.Object().
			Set("transactions", txnArr).
			Set("limit", docval.Int(int64(b.limit)))
	}
	return out, nil
}
