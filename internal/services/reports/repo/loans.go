package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// LoanRow is one loan, newest-originated first
type LoanRow struct {
	ID            int64
	PartyID       int64
	BranchID      *int64
	LoanProductID *int64
	Principal     *float64
	APR           *float64
	TermMonths    *int64
	Status        string
	OriginatedAt  *string
}

// ScheduleRow is the earliest still-due installment of a loan
type ScheduleRow struct {
	InstallmentNo int64
	DueDate       *string
	DuePrincipal  *float64
	DueInterest   *float64
}

// PaymentRow is one loan payment, newest first
type PaymentRow struct {
	PaymentID int64
	EntryID   *int64
	PaidAt    *string
	Amount    *float64
}

// LoansByParty implements Storage
func (s *pg) LoansByParty(ctx context.Context, partyIDs []int64) (map[int64][]LoanRow, error) {
	out := make(map[int64][]LoanRow)
	err := eachChunk(partyIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT loan_id, party_id, branch_id, loan_product_id, principal, apr,
			       term_months, status, originated_at
			FROM ecs_loans
			WHERE party_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY originated_at DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "loans lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r LoanRow
			var originated *time.Time
			if err := rs.Scan(&r.ID, &r.PartyID, &r.BranchID, &r.LoanProductID,
				&r.Principal, &r.APR, &r.TermMonths, &r.Status, &originated); err != nil {
				return perr.FromPostgres(err, "loans scan failed")
			}
			r.OriginatedAt = tsStr(originated)
			out[r.PartyID] = append(out[r.PartyID], r)
		}
		return rs.Err()
	})
	return out, err
}

// NextDueByLoan implements Storage: the first DUE installment per loan,
// earliest due date wins
func (s *pg) NextDueByLoan(ctx context.Context, loanIDs []int64) (map[int64]ScheduleRow, error) {
	out := make(map[int64]ScheduleRow)
	err := eachChunk(loanIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT loan_id, installment_no, due_date, due_principal, due_interest
			FROM ecs_loan_schedule
			WHERE loan_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			  AND status = 'DUE'
			ORDER BY loan_id, due_date
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "loan schedule lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var lid int64
			var r ScheduleRow
			var due *time.Time
			if err := rs.Scan(&lid, &r.InstallmentNo, &due, &r.DuePrincipal, &r.DueInterest); err != nil {
				return perr.FromPostgres(err, "loan schedule scan failed")
			}
			if _, seen := out[lid]; seen {
				continue
			}
			r.DueDate = dateStr(due)
			out[lid] = r
		}
		return rs.Err()
	})
	return out, err
}

// PaymentsByLoan implements Storage
func (s *pg) PaymentsByLoan(ctx context.Context, loanIDs []int64) (map[int64][]PaymentRow, error) {
	out := make(map[int64][]PaymentRow)
	err := eachChunk(loanIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT payment_id, loan_id, entry_id, paid_at, amount
			FROM ecs_loan_payments
			WHERE loan_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY paid_at DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "loan payments lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var lid int64
			var r PaymentRow
			var paid *time.Time
			if err := rs.Scan(&r.PaymentID, &lid, &r.EntryID, &paid, &r.Amount); err != nil {
				return perr.FromPostgres(err, "loan payments scan failed")
			}
			r.PaidAt = tsStr(paid)
			out[lid] = append(out[lid], r)
		}
		return rs.Err()
	})
	return out, err
}
