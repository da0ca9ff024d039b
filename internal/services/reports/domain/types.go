// Package domain holds report module types shared across layers
package domain

import (
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
)

// SchemaVersion stamps every persisted document
const SchemaVersion = "1.0"

// Module codes, in their fixed generation order
const (
	ModuleCustomerProfile = "CUSTOMER_PROFILE"
	ModuleAccounts        = "ACCOUNTS"
	ModuleTransactions    = "TRANSACTIONS"
	ModuleCards           = "CARDS"
	ModuleLoans           = "LOANS"
	ModuleCompliance      = "COMPLIANCE"
	ModuleFees            = "FEES"
)

// Modules returns the fixed module order. Callers must not reorder it:
// the coordinator iterates it as-is and the unified document keys follow it
func Modules() []string {
	return []string{
		ModuleCustomerProfile,
		ModuleAccounts,
		ModuleTransactions,
		ModuleCards,
		ModuleLoans,
		ModuleCompliance,
		ModuleFees,
	}
}

// Limits are the per-module trim caps, hoisted into configuration instead of
// constants buried in each builder
type Limits struct {
	Transactions    int
	CardOpenAuths   int
	CardSettlements int
	LoanPayments    int
	ComplianceFlags int
	Fees            int
}

// DefaultLimits returns the production trim caps
func DefaultLimits() Limits {
	return Limits{
		Transactions:    50,
		CardOpenAuths:   50,
		CardSettlements: 20,
		LoanPayments:    10,
		ComplianceFlags: 50,
		Fees:            50,
	}
}

// DocumentRow is one persisted module document
type DocumentRow struct {
	RunID         int64
	CustomerID    int64
	ModuleCode    string
	StructuredDoc string
	MarkupDoc     string
	GeneratedAt   string // ISO-8601 UTC seconds with Z suffix
}

// Envelope wraps a module payload into the persisted document shape
func Envelope(module, asOfDate string, customerID int64, payload docval.Value) docval.Value {
	return docval.Object().
		Set("schemaVersion", docval.String(SchemaVersion)).
		Set("module", docval.String(module)).
		Set("asOfDate", docval.String(asOfDate)).
		Set("customerId", docval.Int(customerID)).
		Set("payload", payload)
}

// Render serializes an envelope at the persistence boundary: compact JSON
// plus the markup mirror rooted at the module code
func Render(module string, envelope docval.Value) (structured, markup string) {
	return envelope.EncodeJSON(), docval.RenderMarkup(module, envelope)
}

// WarningPayload is stored when a builder produced no entry for a requested
// customer; it keeps the worklist x module cross product complete
func WarningPayload(msg string) docval.Value {
	return docval.Object().Set("warning", docval.String(msg))
}
