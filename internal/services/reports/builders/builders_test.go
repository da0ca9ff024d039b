package builders

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
)

// fakeStore is an in-memory Storage; zero value answers every lookup empty
type fakeStore struct {
	customers   map[int64]repo.CustomerRow
	contacts    map[int64][]repo.ContactRow
	addresses   map[int64][]repo.AddressRow
	idDocs      map[int64][]repo.IdentityDocRow
	links       []repo.HolderLink
	accounts    map[int64]repo.AccountRow
	holders     map[int64][]repo.HolderRow
	balances    map[int64]float64
	directCount int64
	directTxns  map[int64][]repo.TransactionRow
	ledger      map[int64][]repo.LedgerPostingRow
	cards       []repo.CardRow
	auths       map[int64][]repo.AuthorizationRow
	settlements map[int64][]repo.SettlementRow
	loans       map[int64][]repo.LoanRow
	nextDue     map[int64]repo.ScheduleRow
	payments    map[int64][]repo.PaymentRow
	flags       map[int64][]repo.FlagRow
	fees        map[int64][]repo.FeeRow
}

func (f *fakeStore) CustomersByID(context.Context, []int64) (map[int64]repo.CustomerRow, error) {
	return f.customers, nil
}
func (f *fakeStore) ContactsByParty(context.Context, []int64) (map[int64][]repo.ContactRow, error) {
	return f.contacts, nil
}
func (f *fakeStore) AddressesByParty(context.Context, []int64) (map[int64][]repo.AddressRow, error) {
	return f.addresses, nil
}
func (f *fakeStore) IdentityDocsByParty(context.Context, []int64) (map[int64][]repo.IdentityDocRow, error) {
	return f.idDocs, nil
}
func (f *fakeStore) HolderLinks(context.Context, []int64) ([]repo.HolderLink, error) {
	return f.links, nil
}
func (f *fakeStore) AccountsByID(context.Context, []int64) (map[int64]repo.AccountRow, error) {
	return f.accounts, nil
}
func (f *fakeStore) HoldersByAccount(context.Context, []int64) (map[int64][]repo.HolderRow, error) {
	return f.holders, nil
}
func (f *fakeStore) PostedBalances(context.Context, []int64) (map[int64]float64, error) {
	return f.balances, nil
}
func (f *fakeStore) DirectTransactionCount(context.Context) (int64, error) {
	return f.directCount, nil
}
func (f *fakeStore) DirectTransactionsByAccount(context.Context, []int64) (map[int64][]repo.TransactionRow, error) {
	return f.directTxns, nil
}
func (f *fakeStore) PostedLedgerByAccount(context.Context, []int64) (map[int64][]repo.LedgerPostingRow, error) {
	return f.ledger, nil
}
func (f *fakeStore) CardsByAccount(context.Context, []int64) ([]repo.CardRow, error) {
	return f.cards, nil
}
func (f *fakeStore) OpenAuthsByCard(context.Context, []int64) (map[int64][]repo.AuthorizationRow, error) {
	return f.auths, nil
}
func (f *fakeStore) SettlementsByCard(context.Context, []int64) (map[int64][]repo.SettlementRow, error) {
	return f.settlements, nil
}
func (f *fakeStore) LoansByParty(context.Context, []int64) (map[int64][]repo.LoanRow, error) {
	return f.loans, nil
}
func (f *fakeStore) NextDueByLoan(context.Context, []int64) (map[int64]repo.ScheduleRow, error) {
	return f.nextDue, nil
}
func (f *fakeStore) PaymentsByLoan(context.Context, []int64) (map[int64][]repo.PaymentRow, error) {
	return f.payments, nil
}
func (f *fakeStore) FlagsByParty(context.Context, []int64) (map[int64][]repo.FlagRow, error) {
	return f.flags, nil
}
func (f *fakeStore) FeesByAccount(context.Context, []int64) (map[int64][]repo.FeeRow, error) {
	return f.fees, nil
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }

func mustGet(t *testing.T, v docval.Value, key string) docval.Value {
	t.Helper()
	item, ok := v.Get(key)
	if !ok {
		t.Fatalf("payload missing key %q: %s", key, v.EncodeJSON())
	}
	return item
}

func TestProfileEveryRequestedCustomerGetsPayload(t *testing.T) {
	t.Parallel()

	first := "Ada"
	st := &fakeStore{
		customers: map[int64]repo.CustomerRow{
			101: {ID: 101, FirstName: &first},
		},
		contacts: map[int64][]repo.ContactRow{
			101: {{Type: "EMAIL", Value: "ada@example.com", IsPrimary: true}},
		},
	}

	docs, err := NewProfile(st).Build(context.Background(), []int64{101, 102}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("want payloads for both customers, got %d", len(docs))
	}

	known := mustGet(t, docs[101], "customer")
	if v := mustGet(t, known, "existsInEcsCustomers"); v.EncodeJSON() != "true" {
		t.Fatal("known customer not flagged as existing")
	}
	if v := mustGet(t, known, "firstName"); v.Str() != "Ada" {
		t.Fatalf("firstName=%q", v.Str())
	}
	if mustGet(t, docs[101], "contacts").Len() != 1 {
		t.Fatal("contacts missing")
	}

	// a worklist id without a master row still yields a flagged document
	missing := mustGet(t, docs[102], "customer")
	if v := mustGet(t, missing, "existsInEcsCustomers"); v.EncodeJSON() != "false" {
		t.Fatal("missing customer not flagged")
	}
	if v := mustGet(t, missing, "firstName"); v.Kind() != docval.KindNull {
		t.Fatal("missing customer fields should be null")
	}
	if mustGet(t, docs[102], "kycDocuments").Len() != 0 {
		t.Fatal("missing customer should have empty kycDocuments")
	}
}

func TestAccountsBalanceAndHolders(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		links: []repo.HolderLink{{PartyID: 101, AccountID: 5001}},
		accounts: map[int64]repo.AccountRow{
			5001: {ID: 5001, AccountNumber: "ACC-5001", Status: "OPEN", ProductCode: "CHK", ProductName: "Checking", CurrencyCode: "EUR"},
		},
		holders: map[int64][]repo.HolderRow{
			5001: {{PartyID: 101, Role: "PRIMARY", FullName: "Ada Lovelace"}},
		},
		// +500.00 and -200.00 posted
		balances: map[int64]float64{5001: 300},
	}

	docs, err := NewAccounts(st).Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	accounts := mustGet(t, docs[101], "accounts")
	if accounts.Len() != 1 {
		t.Fatalf("want 1 account, got %d", accounts.Len())
	}
	acc := accounts.Items()[0]
	if bal := mustGet(t, acc, "balance"); bal.NumLit() != "300.00" {
		t.Fatalf("balance=%s want 300.00", bal.NumLit())
	}
	holders := mustGet(t, acc, "holders")
	if holders.Len() != 1 || mustGet(t, holders.Items()[0], "role").Str() != "PRIMARY" {
		t.Fatalf("holders wrong: %s", holders.EncodeJSON())
	}
}

func TestAccountsUnknownAccountSkipped(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		links: []repo.HolderLink{{PartyID: 101, AccountID: 5001}},
		// AccountsByID returns nothing for the linked id
	}
	docs, err := NewAccounts(st).Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if mustGet(t, docs[101], "accounts").Len() != 0 {
		t.Fatal("orphan holder link should not produce an account entry")
	}
}

func TestTransactionsDirectSourceOrderAndTrim(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		links: []repo.HolderLink{{PartyID: 101, AccountID: 1}, {PartyID: 101, AccountID: 2}},
		directTxns: map[int64][]repo.TransactionRow{
			1: {
				{TransactionID: 11, AccountID: 1, Timestamp: strp("2024-01-03T00:00:00Z"), Amount: f64p(10)},
				{TransactionID: 12, AccountID: 1, Timestamp: strp("2024-01-01T00:00:00Z"), Amount: f64p(20)},
			},
			2: {
				{TransactionID: 21, AccountID: 2, Timestamp: strp("2024-01-02T00:00:00Z"), Amount: f64p(30)},
			},
		},
	}

	b := NewTransactions(st, TransactionSource{UseDirect: true}, 2)
	docs, err := b.Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	txns := mustGet(t, docs[101], "transactions")
	if txns.Len() != 2 {
		t.Fatalf("limit not applied: %d entries", txns.Len())
	}
	// merged across accounts, newest first
	first := mustGet(t, txns.Items()[0], "transactionId").NumLit()
	second := mustGet(t, txns.Items()[1], "transactionId").NumLit()
	if first != "11" || second != "21" {
		t.Fatalf("order wrong: %s then %s", first, second)
	}
	if mustGet(t, txns.Items()[0], "source").Str() != "ecs_transactions" {
		t.Fatal("direct source marker missing")
	}
	if mustGet(t, docs[101], "limit").NumLit() != "2" {
		t.Fatal("limit field missing")
	}
}

func TestTransactionsLedgerFallback(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		links: []repo.HolderLink{{PartyID: 101, AccountID: 1}},
		ledger: map[int64][]repo.LedgerPostingRow{
			1: {{EntryID: 900, AccountID: 1, Amount: f64p(-200), PostingTs: strp("2024-01-02T08:00:00Z")}},
		},
	}

	b := NewTransactions(st, TransactionSource{UseDirect: false}, 50)
	docs, err := b.Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	txns := mustGet(t, docs[101], "transactions")
	if txns.Len() != 1 {
		t.Fatalf("want 1 ledger entry, got %d", txns.Len())
	}
	e := txns.Items()[0]
	if mustGet(t, e, "source").Str() != "ecs_account_postings" {
		t.Fatal("fallback source marker missing")
	}
	if mustGet(t, e, "entryId").NumLit() != "900" {
		t.Fatalf("entryId wrong: %s", e.EncodeJSON())
	}
}

func TestTransactionSourceProbe(t *testing.T) {
	t.Parallel()

	src, err := ProbeTransactionSource(context.Background(), &fakeStore{directCount: 3})
	if err != nil || !src.UseDirect {
		t.Fatalf("probe with rows: %+v err=%v", src, err)
	}
	src, err = ProbeTransactionSource(context.Background(), &fakeStore{})
	if err != nil || src.UseDirect {
		t.Fatalf("probe without rows: %+v err=%v", src, err)
	}
}

func TestCardsNestedAuthsAndSettlements(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		links: []repo.HolderLink{{PartyID: 101, AccountID: 1}},
		cards: []repo.CardRow{
			{ID: 70, AccountID: 1, PanLast4: "4242", CardType: "DEBIT", Status: "ACTIVE"},
		},
		auths: map[int64][]repo.AuthorizationRow{
			70: {
				{AuthID: 1, AccountID: 1, Status: "APPROVED", AuthTs: strp("2024-01-05T00:00:00Z")},
				{AuthID: 2, AccountID: 1, Status: "APPROVED", AuthTs: strp("2024-01-04T00:00:00Z")},
				{AuthID: 3, AccountID: 1, Status: "APPROVED", AuthTs: strp("2024-01-03T00:00:00Z")},
			},
		},
		settlements: map[int64][]repo.SettlementRow{
			70: {{SettlementID: 40, AuthID: 1, SettledTs: strp("2024-01-06T00:00:00Z")}},
		},
	}

	b := NewCards(st, 2, 20)
	docs, err := b.Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cards := mustGet(t, docs[101], "cards")
	if cards.Len() != 1 {
		t.Fatalf("want 1 card, got %d", cards.Len())
	}
	card := cards.Items()[0]
	if mustGet(t, card, "panLast4").Str() != "4242" {
		t.Fatalf("card shape wrong: %s", card.EncodeJSON())
	}
	auths := mustGet(t, card, "openAuthorizations")
	if auths.Len() != 2 {
		t.Fatalf("auth limit not applied: %d", auths.Len())
	}
	if mustGet(t, auths.Items()[0], "authId").NumLit() != "1" {
		t.Fatal("auths not newest-first")
	}
	if mustGet(t, card, "recentSettlements").Len() != 1 {
		t.Fatal("settlements missing")
	}
}

func TestLoansNextDueAndPayments(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		loans: map[int64][]repo.LoanRow{
			101: {
				{ID: 300, PartyID: 101, Principal: f64p(10000), Status: "ACTIVE"},
				{ID: 301, PartyID: 101, Principal: f64p(5000), Status: "PAID_OFF"},
			},
		},
		nextDue: map[int64]repo.ScheduleRow{
			300: {InstallmentNo: 4, DueDate: strp("2024-02-01"), DuePrincipal: f64p(250), DueInterest: f64p(30)},
		},
		payments: map[int64][]repo.PaymentRow{
			300: {{PaymentID: 7, PaidAt: strp("2024-01-01T00:00:00Z"), Amount: f64p(280)}},
		},
	}

	docs, err := NewLoans(st, 10).Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	loans := mustGet(t, docs[101], "loans")
	if loans.Len() != 2 {
		t.Fatalf("want 2 loans, got %d", loans.Len())
	}

	byID := map[string]docval.Value{}
	for _, l := range loans.Items() {
		byID[mustGet(t, l, "loanId").NumLit()] = l
	}
	due := mustGet(t, byID["300"], "nextDue")
	if mustGet(t, due, "installmentNo").NumLit() != "4" {
		t.Fatalf("nextDue wrong: %s", due.EncodeJSON())
	}
	if v := mustGet(t, byID["301"], "nextDue"); v.Kind() != docval.KindNull {
		t.Fatal("loan without due installment should carry null nextDue")
	}
	if mustGet(t, byID["300"], "recentPayments").Len() != 1 {
		t.Fatal("payments missing")
	}
}

func TestComplianceTrim(t *testing.T) {
	t.Parallel()

	var flags []repo.FlagRow
	for i := 0; i < 60; i++ {
		flags = append(flags, repo.FlagRow{
			FlagID:    int64(i + 1),
			Severity:  "LOW",
			Category:  "KYC",
			Status:    "OPEN",
			CreatedAt: strp(fmt.Sprintf("2024-01-%02dT00:00:00Z", i%28+1)),
		})
	}
	st := &fakeStore{flags: map[int64][]repo.FlagRow{101: flags}}

	docs, err := NewCompliance(st, 50).Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := mustGet(t, docs[101], "flags").Len(); got != 50 {
		t.Fatalf("flag trim wrong: %d", got)
	}
	if mustGet(t, docs[101], "limit").NumLit() != "50" {
		t.Fatal("limit field missing")
	}
}

func TestFeesNewestFirst(t *testing.T) {
	t.Parallel()

	st := &fakeStore{
		links: []repo.HolderLink{{PartyID: 101, AccountID: 1}},
		fees: map[int64][]repo.FeeRow{
			1: {
				{FeeID: 1, AccountID: 1, FeeCode: "MNT", FeeName: "Maintenance", AppliedAt: strp("2024-01-01T00:00:00Z"), FeeAmount: f64p(5)},
				{FeeID: 2, AccountID: 1, FeeCode: "ODF", FeeName: "Overdraft", AppliedAt: strp("2024-02-01T00:00:00Z"), FeeAmount: f64p(25)},
			},
		},
	}

	docs, err := NewFees(st, 50).Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fees := mustGet(t, docs[101], "fees")
	if fees.Len() != 2 {
		t.Fatalf("want 2 fees, got %d", fees.Len())
	}
	if mustGet(t, fees.Items()[0], "feeId").NumLit() != "2" {
		t.Fatal("fees not newest-first")
	}
}

func TestBuildersEmitKeyedMarkupShape(t *testing.T) {
	t.Parallel()

	st := &fakeStore{customers: map[int64]repo.CustomerRow{101: {ID: 101}}}
	docs, err := NewProfile(st).Build(context.Background(), []int64{101}, "2024-01-01")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	markup := docval.RenderMarkup("CUSTOMER_PROFILE", docs[101])
	if !strings.HasPrefix(markup, "<CUSTOMER_PROFILE>") || !strings.HasSuffix(markup, "</CUSTOMER_PROFILE>") {
		t.Fatalf("markup root wrong: %s", markup)
	}
	if !strings.Contains(markup, "<customerId>101</customerId>") {
		t.Fatalf("markup fields missing: %s", markup)
	}
}
