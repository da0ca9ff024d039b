// Package domain holds worklist types shared across layers
package domain

// Run identifies one report execution context
type Run struct {
	ID       int64
	AsOfDate string // YYYY-MM-DD, defaulted to today when the run row has none
}

// BatchRange is the inclusive batch number span of the worklist
type BatchRange struct {
	Min int
	Max int
}
