package builders

import (
	"context"
	"sort"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// Cards builds the issued-cards payload with open authorizations and
// recent settlements nested per card
type Cards struct {
	store       repo.Storage
	authLimit   int
	settleLimit int
}

// NewCards constructs the CARDS builder
func NewCards(store repo.Storage, authLimit, settleLimit int) *Cards {
	return &Cards{store: store, authLimit: authLimit, settleLimit: settleLimit}
}

// Code implements domain.Builder
func (b *Cards) Code() string { return domain.ModuleCards }

// Build implements domain.Builder
func (b *Cards) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	m, err := loadMembership(ctx, b.store, customerIDs)
	if err != nil {
		return nil, err
	}

	var cards []repo.CardRow
	if len(m.accountIDs) > 0 {
		if cards, err = b.store.CardsByAccount(ctx, m.accountIDs); err != nil {
			return nil, err
		}
	}

	cardIDs := make([]int64, 0, len(cards))
	for _, c := range cards {
		cardIDs = append(cardIDs, c.ID)
	}
	sort.Slice(cardIDs, func(i, j int) bool { return cardIDs[i] < cardIDs[j] })

	var (
		auths       map[int64][]repo.AuthorizationRow
		settlements map[int64][]repo.SettlementRow
	)
	if len(cardIDs) > 0 {
		if auths, err = b.store.OpenAuthsByCard(ctx, cardIDs); err != nil {
			return nil, err
		}
		if settlements, err = b.store.SettlementsByCard(ctx, cardIDs); err != nil {
			return nil, err
		}
	}

	// one shared card document per card, attached to every holding customer
	cardDocs := make(map[int64]docval.Value, len(cards))
	for _, c := range cards {
		authArr := docval.EmptyArray()
		for i, a := range auths[c.ID] {
			if i >= b.authLimit {
				break
			}
			authArr.Append(docval.Object().
				Set("authId", docval.Int(a.AuthID)).
				Set("accountId", docval.Int(a.AccountID)).
				Set("amount", docval.FloatOrNull(a.Amount)).
				Set("merchant", docval.StrOrNull(a.Merchant)).
				Set("authTs", docval.StrOrNull(a.AuthTs)).
				Set("status", docval.String(a.Status)).
				Set("reference", docval.StrOrNull(a.Reference)))
		}

		settleArr := docval.EmptyArray()
		for i, s := range settlements[c.ID] {
			if i >= b.settleLimit {
				break
			}
			settleArr.Append(docval.Object().
				Set("settlementId", docval.Int(s.SettlementID)).
				Set("authId", docval.Int(s.AuthID)).
				Set("entryId", docval.IntOrNull(s.EntryID)).
				Set("settledTs", docval.StrOrNull(s.SettledTs)).
				Set("amount", docval.FloatOrNull(s.Amount)).
				Set("merchant", docval.StrOrNull(s.Merchant)).
				Set("reference", docval.StrOrNull(s.Reference)))
		}

		cardDocs[c.ID] = docval.Object().
			Set("cardId", docval.Int(c.ID)).
			Set("accountId", docval.Int(c.AccountID)).
			Set("panLast4", docval.String(c.PanLast4)).
			Set("cardType", docval.String(c.CardType)).
			Set("status", docval.String(c.Status)).
			Set("issuedAt", docval.StrOrNull(c.IssuedAt)).
			Set("expiresOn", docval.StrOrNull(c.ExpiresOn)).
			Set("openAuthorizations", authArr).
			Set("recentSettlements", settleArr)
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		cardArr := docval.EmptyArray()
		owned := make(map[int64]struct{}, len(m.accountsByCustomer[cid]))
		for _, aid := range m.accountsByCustomer[cid] {
			owned[aid] = struct{}{}
		}
		for _, c := range cards {
			if _, ok := owned[c.AccountID]; ok {
				cardArr.Append(cardDocs[c.ID])
			}
		}
		out[cid] = docval.Object().Set("cards", cardArr)
	}
	return out, nil
}
