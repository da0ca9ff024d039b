package repo

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
)

// CustomerRow is the customer master record
type CustomerRow struct {
	ID        int64
	FirstName *string
	LastName  *string
	Email     *string
	CreatedAt *string
}

// ContactRow is one party contact point
type ContactRow struct {
	Type      string
	Value     string
	IsPrimary bool
}

// AddressRow is one linked party address
type AddressRow struct {
	AddrType   string
	IsPrimary  bool
	Line1      *string
	Line2      *string
	City       *string
	Region     *string
	PostalCode *string
	Country    *string
}

// IdentityDocRow is one identity document on file
type IdentityDocRow struct {
	DocType   string
	DocNumber string
	IssuedBy  *string
	ExpiresOn *string
}

// CustomersByID implements Storage
func (s *pg) CustomersByID(ctx context.Context, ids []int64) (map[int64]CustomerRow, error) {
	out := make(map[int64]CustomerRow, len(ids))
	err := eachChunk(ids, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT customer_id, first_name, last_name, email, created_at
			FROM ecs_customers
			WHERE customer_id IN (`+chunk.Placeholders(len(sub), 1)+`)
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "customer master lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var r CustomerRow
			var created *time.Time
			if err := rs.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Email, &created); err != nil {
				return perr.FromPostgres(err, "customer master scan failed")
			}
			r.CreatedAt = tsStr(created)
			out[r.ID] = r
		}
		return rs.Err()
	})
	return out, err
}

// ContactsByParty implements Storage
func (s *pg) ContactsByParty(ctx context.Context, ids []int64) (map[int64][]ContactRow, error) {
	out := make(map[int64][]ContactRow)
	err := eachChunk(ids, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT party_id, type, value, is_primary
			FROM ecs_party_contacts
			WHERE party_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY party_id, is_primary DESC, type, value
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "party contacts lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var pid int64
			var r ContactRow
			if err := rs.Scan(&pid, &r.Type, &r.Value, &r.IsPrimary); err != nil {
				return perr.FromPostgres(err, "party contacts scan failed")
			}
			out[pid] = append(out[pid], r)
		}
		return rs.Err()
	})
	return out, err
}

// AddressesByParty implements Storage
func (s *pg) AddressesByParty(ctx context.Context, ids []int64) (map[int64][]AddressRow, error) {
	out := make(map[int64][]AddressRow)
	err := eachChunk(ids, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT pa.party_id, pa.addr_type, pa.is_primary,
			       a.line1, a.line2, a.city, a.region, a.postal_code, a.country
			FROM ecs_party_addresses pa
			JOIN ecs_addresses a ON a.address_id = pa.address_id
			WHERE pa.party_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY pa.party_id, pa.is_primary DESC, pa.addr_type
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "party addresses lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var pid int64
			var r AddressRow
			if err := rs.Scan(&pid, &r.AddrType, &r.IsPrimary,
				&r.Line1, &r.Line2, &r.City, &r.Region, &r.PostalCode, &r.Country); err != nil {
				return perr.FromPostgres(err, "party addresses scan failed")
			}
			out[pid] = append(out[pid], r)
		}
		return rs.Err()
	})
	return out, err
}

// IdentityDocsByParty implements Storage
func (s *pg) IdentityDocsByParty(ctx context.Context, ids []int64) (map[int64][]IdentityDocRow, error) {
	out := make(map[int64][]IdentityDocRow)
	err := eachChunk(ids, func(sub []int64) error {
		rs, err := s.q.Query(ctx, `
			SELECT party_id, doc_type, doc_number, issued_by, expires_on
			FROM ecs_party_id_documents
			WHERE party_id IN (`+chunk.Placeholders(len(sub), 1)+`)
			ORDER BY party_id, doc_type, doc_number
		`, chunk.Args(sub)...)
		if err != nil {
			return perr.FromPostgres(err, "identity documents lookup failed")
		}
		defer rs.Close()
		for rs.Next() {
			var pid int64
			var r IdentityDocRow
			var expires *time.Time
			if err := rs.Scan(&pid, &r.DocType, &r.DocNumber, &r.IssuedBy, &expires); err != nil {
				return perr.FromPostgres(err, "identity documents scan failed")
			}
			r.ExpiresOn = dateStr(expires)
			out[pid] = append(out[pid], r)
		}
		return rs.Err()
	})
	return out, err
}
