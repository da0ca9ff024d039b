package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// CardRow is one issued card
type CardRow struct {
	ID        int64
	AccountID int64
	PanLast4  string
	CardType  string
	Status    string
	IssuedAt  *string
	ExpiresOn *string
}

// AuthorizationRow is one approved, not-yet-settled authorization
type AuthorizationRow struct {
	AuthID    int64
	AccountID int64
	Amount    *float64
	Merchant  *string
	AuthTs    *string
	Status    string
	Reference *string
}

// SettlementRow is one settlement joined back to its authorization
type SettlementRow struct {
	SettlementID int64
	AuthID       int64
	EntryID      *int64
	SettledTs    *string
	Amount       *float64
	Merchant     *string
	Reference    *string
}

// CardsByAccount implements Storage
func (s *pg) CardsByAccount(ctx context.Context, accountIDs []int64) ([]CardRow, error) {
	var out []CardRow
	err := eachChunk(accountIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT card_id, account_id, pan_last4, card_type, status, issued_at, expires_on
			FROM ecs_cards
			WHERE account_id IN (`+chunk.Placeholders(len(sub), 1)+`)
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "cards lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r CardRow
			var issued, expires *time.Time
			if err := rs.Scan(&r.ID, &r.AccountID, &r.PanLast4, &r.CardType,
				&r.Status, &issued, &expires); err != nil {
				return perr.FromPostgres(err, "cards scan failed")
			}
			r.IssuedAt = tsStr(issued)
			r.ExpiresOn = dateStr(expires)
			out = append(out, r)
		}
		return rs.Err()
	})
	return out, err
}

// OpenAuthsByCard implements Storage; only APPROVED authorizations qualify
func (s *pg) OpenAuthsByCard(ctx context.Context, cardIDs []int64) (map[int64][]AuthorizationRow, error) {
	out := make(map[int64][]AuthorizationRow)
	err := eachChunk(cardIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT auth_id, card_id, account_id, amount, merchant, auth_ts, status, reference
			FROM ecs_card_authorizations
			WHERE card_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			  AND status = 'APPROVED'
			ORDER BY auth_ts DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "card authorizations lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var cardID int64
			var r AuthorizationRow
			var authTs *time.Time
			if err := rs.Scan(&r.AuthID, &cardID, &r.AccountID, &r.Amount,
				&r.Merchant, &authTs, &r.Status, &r.Reference); err != nil {
				return perr.FromPostgres(err, "card authorizations scan failed")
			}
			r.AuthTs = tsStr(authTs)
			out[cardID] = append(out[cardID], r)
		}
		return rs.Err()
	})
	return out, err
}

// SettlementsByCard implements Storage
func (s *pg) SettlementsByCard(ctx context.Context, cardIDs []int64) (map[int64][]SettlementRow, error) {
	out := make(map[int64][]SettlementRow)
	err := eachChunk(cardIDs, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT s.settlement_id, s.auth_id, s.entry_id, s.settled_ts,
			       a.card_id, a.amount, a.merchant, a.reference
			FROM ecs_card_settlements s
			JOIN ecs_card_authorizations a ON a.auth_id = s.auth_id
			WHERE a.card_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY s.settled_ts DESC
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "card settlements lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var cardID int64
			var r SettlementRow
			var settledTs *time.Time
			if err := rs.Scan(&r.SettlementID, &r.AuthID, &r.EntryID, &settledTs,
				&cardID, &r.Amount, &r.Merchant, &r.Reference); err != nil {
				return perr.FromPostgres(err, "card settlements scan failed")
			}
			r.SettledTs = tsStr(settledTs)
			out[cardID] = append(out[cardID], r)
		}
		return rs.Err()
	})
	return out, err
}
