package builders

import (
	"context"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// Accounts builds the owned-accounts payload with product metadata,
// role-ordered holders and the posted-ledger balance per account
type Accounts struct {
	store repo.Storage
}

// NewAccounts constructs the ACCOUNTS builder
func NewAccounts(store repo.Storage) *Accounts { return &Accounts{store: store} }

// Code implements domain.Builder
func (b *Accounts) Code() string { return domain.ModuleAccounts }

// Build implements domain.Builder
func (b *Accounts) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	m, err := loadMembership(ctx, b.store, customerIDs)
	if err != nil {
		return nil, err
	}

	var (
		accounts map[int64]repo.AccountRow
		holders  map[int64][]repo.HolderRow
		balances map[int64]float64
	)
	if len(m.accountIDs) > 0 {
		if accounts, err = b.store.AccountsByID(ctx, m.accountIDs); err != nil {
			return nil, err
		}
		if holders, err = b.store.HoldersByAccount(ctx, m.accountIDs); err != nil {
			return nil, err
		}
		if balances, err = b.store.PostedBalances(ctx, m.accountIDs); err != nil {
			return nil, err
		}
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		accArr := docval.EmptyArray()
		for _, aid := range m.accountsByCustomer[cid] {
			a, ok := accounts[aid]
			if !ok {
				continue
			}

			holderArr := docval.EmptyArray()
			for _, h := range holders[aid] {
				holderArr.Append(docval.Object().
					Set("party_id", docval.Int(h.PartyID)).
					Set("role", docval.String(h.Role)).
					Set("full_name", docval.String(h.FullName)))
			}

			accArr.Append(docval.Object().
				Set("account_id", docval.Int(a.ID)).
				Set("account_number", docval.String(a.AccountNumber)).
				Set("status", docval.String(a.Status)).
				Set("product_code", docval.String(a.ProductCode)).
				Set("product_name", docval.String(a.ProductName)).
				Set("currency_code", docval.String(a.CurrencyCode)).
				Set("overdraft_allowed", docval.Bool(a.OverdraftAllowed)).
				Set("overdraft_limit", docval.FloatOrNull(a.OverdraftLimit)).
				Set("holders", holderArr).
				Set("balance", docval.Money(balances[aid])))
		}
		out[cid] = docval.Object().Set("accounts", accArr)
	}
	return out, nil
}
