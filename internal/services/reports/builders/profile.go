package builders

import (
	"context"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// Profile builds the customer master payload: identity, contacts,
// addresses and identity documents. A customer missing from the master
// table still gets a document, flagged rather than aborted
type Profile struct {
	store repo.Storage
}

// NewProfile constructs the CUSTOMER_PROFILE builder
func NewProfile(store repo.Storage) *Profile { return &Profile{store: store} }

// Code implements domain.Builder
func (b *Profile) Code() string { return domain.ModuleCustomerProfile }

// Build implements domain.Builder
func (b *Profile) Build(ctx context.Context, customerIDs []int64, _ string) (map[int64]docval.Value, error) {
	if len(customerIDs) == 0 {
		return map[int64]docval.Value{}, nil
	}

	customers, err := b.store.CustomersByID(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	contacts, err := b.store.ContactsByParty(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	addresses, err := b.store.AddressesByParty(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	idDocs, err := b.store.IdentityDocsByParty(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]docval.Value, len(customerIDs))
	for _, cid := range customerIDs {
		c, exists := customers[cid]

		customer := docval.Object().
			Set("customerId", docval.Int(cid)).
			Set("existsInEcsCustomers", docval.Bool(exists))
		if exists {
			customer.
				Set("firstName", docval.StrOrNull(c.FirstName)).
				Set("lastName", docval.StrOrNull(c.LastName)).
				Set("email", docval.StrOrNull(c.Email)).
				Set("createdAt", docval.StrOrNull(c.CreatedAt))
		} else {
			customer.
				Set("firstName", docval.Null()).
				Set("lastName", docval.Null()).
				Set("email", docval.Null()).
				Set("createdAt", docval.Null())
		}

		contactArr := docval.EmptyArray()
		for _, ct := range contacts[cid] {
			contactArr = contactArr.Append(docval.Object().
				Set("type", docval.String(ct.Type)).
				Set("value", docval.String(ct.Value)).
				Set("is_primary", docval.Bool(ct.IsPrimary)))
		}

		addrArr := docval.EmptyArray()
		for _, ad := range addresses[cid] {
			addrArr = addrArr.Append(docval.Object().
				Set("addr_type", docval.String(ad.AddrType)).
				Set("is_primary", docval.Bool(ad.IsPrimary)).
				Set("line1", docval.StrOrNull(ad.Line1)).
				Set("line2", docval.StrOrNull(ad.Line2)).
				Set("city", docval.StrOrNull(ad.City)).
				Set("region", docval.StrOrNull(ad.Region)).
				Set("postal_code", docval.StrOrNull(ad.PostalCode)).
				Set("country", docval.StrOrNull(ad.Country)))
		}

		docsArr := docval.EmptyArray()
		for _, d := range idDocs[cid] {
			docsArr = docsArr.Append(docval.Object().
				Set("doc_type", docval.String(d.DocType)).
				Set("doc_number", docval.String(d.DocNumber)).
				Set("issued_by", docval.StrOrNull(d.IssuedBy)).
				Set("expires_on", docval.StrOrNull(d.ExpiresOn)))
		}

		out[cid] = docval.Object().
			Set("customer", customer).
			Set("contacts", contactArr).
			Set("addresses", addrArr).
			Set("kycDocuments", docsArr)
	}
	return out, nil
}
