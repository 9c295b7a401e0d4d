/*
store.go - Persistence interface for append-only line logs

PURPOSE:
  Defines the minimal primitive every log backend implements: a named,
  ordered sequence of text lines. Typed records are layered on top by
  Log[R] (ledger.go); backends never see record structure.

APPEND-ONLY CONTRACT:
  - Append(): write one line as the new last line
  - ReadAll(): every line, in write order
  - RemoveLast(): the single permitted correction, drops exactly the last line
  - No update, no insert-in-the-middle

DURABILITY:
  Each call is durable before it returns. There is no buffering across
  calls, so a crash between two appends never loses the first.

IMPLEMENTATIONS:
  - store/flatfile: one file per log, fsync per operation (default)
  - store/sqlite: one table row per line
  - generic/store/memory.go: in-memory for testing

SEE ALSO:
  - ledger.go: Typed log on top of LineStore
*/
package generic

import "context"

// =============================================================================
// LINE STORE - Interface for log persistence (append-only)
// =============================================================================

// LineStore persists the lines of one log.
// IMPORTANT: Append-only except for RemoveLast.
type LineStore interface {
	// Name identifies the log in errors and audit records.
	Name() string

	// Append persists line as the new last line.
	Append(ctx context.Context, line string) error

	// ReadAll returns every line in write order. An absent log reads as empty.
	ReadAll(ctx context.Context) ([]string, error)

	// RemoveLast deletes and returns the last line.
	// Returns ErrEmptyLog if the log is absent or empty.
	RemoveLast(ctx context.Context) (string, error)

	// Exists reports whether the log holds at least one line.
	Exists(ctx context.Context) (bool, error)
}
