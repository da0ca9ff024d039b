// Package domain holds the unified report types shared across layers
package domain

import (
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
)

// MarkupRoot names the root element of the unified markup document
const MarkupRoot = "CustomerReport"

// UnifiedRow is one persisted unified document
type UnifiedRow struct {
	RunID         int64
	CustomerID    int64
	StructuredDoc string
	MarkupDoc     string
	GeneratedAt   string
}

// Envelope wraps the per-module payload mapping into the unified document
// shape. The modules object must carry every fixed module code as a key
func Envelope(asOfDate string, customerID int64, modules docval.Value) docval.Value {
	return docval.Object().
		Set("schemaVersion", docval.String("1.0")).
		Set("asOfDate", docval.String(asOfDate)).
		Set("customerId", docval.Int(customerID)).
		Set("modules", modules)
}

// Render serializes a unified envelope at the persistence boundary
func Render(envelope docval.Value) (structured, markup string) {
	return envelope.EncodeJSON(), docval.RenderMarkup(MarkupRoot, envelope)
}
