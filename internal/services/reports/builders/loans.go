package builders

import (
	"context"
	"sort"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// Loans builds the loans payload: the party's loans newest first, each
// with its earliest still-due installment and most recent payments
type Loans struct {
	store        repo.Storage
	paymentLimit int
}

// NewLoans constructs the LOANS builder
func NewLoans(store repo.Storage, paymentLimit int) *Loans {
	return &Loans{store: store, paymentLimit: paymentLimit}
}

// Code implements domain.Builder
func (b *Loans) Code() string { return domain.ModuleLoans }

// Build implements domain.Builder
func (b *Loans) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	loans, err := b.store.LoansByParty(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	loanIDSet := make(map[int64]struct{})
	for _, lst := range loans {
		for _, l := range lst {
			loanIDSet[l.ID] = struct{}{}
		}
	}
	loanIDs := make([]int64, 0, len(loanIDSet))
	for id := range loanIDSet {
		loanIDs = append(loanIDs, id)
	}
	sort.Slice(loanIDs, func(i, j int) bool { return loanIDs[i] < loanIDs[j] })

	var (
		nextDue  map[int64]repo.ScheduleRow
		payments map[int64][]repo.PaymentRow
	)
	if len(loanIDs) > 0 {
		if nextDue, err = b.store.NextDueByLoan(ctx, loanIDs); err != nil {
			return nil, err
		}
		if payments, err = b.store.PaymentsByLoan(ctx, loanIDs); err != nil {
			return nil, err
		}
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		loanArr := docval.EmptyArray()
		for _, l := range loans[cid] {
			due := docval.Null()
			if d, ok := nextDue[l.ID]; ok {
				due = docval.Object().
					Set("installmentNo", docval.Int(d.InstallmentNo)).
					Set("dueDate", docval.StrOrNull(d.DueDate)).
					Set("duePrincipal", docval.FloatOrNull(d.DuePrincipal)).
					Set("dueInterest", docval.FloatOrNull(d.DueInterest))
			}

			payArr := docval.EmptyArray()
			for i, p := range payments[l.ID] {
				if i >= b.paymentLimit {
					break
				}
				payArr.Append(docval.Object().
					Set("paymentId", docval.Int(p.PaymentID)).
					Set("entryId", docval.IntOrNull(p.EntryID)).
					Set("paidAt", docval.StrOrNull(p.PaidAt)).
					Set("amount", docval.FloatOrNull(p.Amount)))
			}

			loanArr.Append(docval.Object().
				Set("loanId", docval.Int(l.ID)).
				Set("partyId", docval.Int(l.PartyID)).
				Set("branchId", docval.IntOrNull(l.BranchID)).
				Set("loanProductId", docval.IntOrNull(l.LoanProductID)).
				Set("principal", docval.FloatOrNull(l.Principal)).
				Set("apr", docval.FloatOrNull(l.APR)).
				Set("termMonths", docval.IntOrNull(l.TermMonths)).
				Set("status", docval.String(l.Status)).
				Set("originatedAt", docval.StrOrNull(l.OriginatedAt)).
				Set("nextDue", due).
				Set("recentPayments", payArr))
		}
		out[cid] = docval.Object().Set("loans", loanArr)
	}
	return out, nil
}
