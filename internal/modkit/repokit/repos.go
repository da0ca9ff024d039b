// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// Binder resolves a repository implementation against a concrete Queryer,
// so the same repo can run on a pool or inside a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}
