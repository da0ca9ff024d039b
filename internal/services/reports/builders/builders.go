// Package builders holds the per-module document builders. Each builder
// prefetches its relations in bulk for the whole customer batch, then
// assembles one payload per requested customer, including customers with
// no data at all.
package builders

import (
	"context"
	"sort"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// membership is the party-to-account ownership view several modules share
type membership struct {
	accountsByCustomer map[int64][]int64
	customersByAccount map[int64][]int64
	accountIDs         []int64
}

func loadMembership(ctx context.Context, store repo.Storage, customerIDs []int64) (membership, error) {
	m := membership{
		accountsByCustomer: make(map[int64][]int64),
		customersByAccount: make(map[int64][]int64),
	}
	links, err := store.HolderLinks(ctx, customerIDs)
	if err != nil {
		return membership{}, err
	}
	seen := make(map[int64]struct{})
	for _, l := range links {
		m.accountsByCustomer[l.PartyID] = append(m.accountsByCustomer[l.PartyID], l.AccountID)
		m.customersByAccount[l.AccountID] = append(m.customersByAccount[l.AccountID], l.PartyID)
		if _, ok := seen[l.AccountID]; !ok {
			seen[l.AccountID] = struct{}{}
			m.accountIDs = append(m.accountIDs, l.AccountID)
		}
	}
	sort.Slice(m.accountIDs, func(i, j int) bool { return m.accountIDs[i] < m.accountIDs[j] })
	return m, nil
}
