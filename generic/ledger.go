/*
ledger.go - Typed append-only log

PURPOSE:
  Log[R] turns a LineStore into a log of typed records. Each record is one
  line, encoded by a Codec. The log is the source of truth for a metric:
  every series, bin and trend is derived by replaying it.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: records are added at the end, never edited in place.
  2. ONE CORRECTION: RemoveLast drops exactly the last record. It exists so a
     provisional record can be replaced by a fresh copy.
  3. ORDERED: depending on the log's Ordering, each new record's key must be
     strictly after (or not before) the last record's key.
  4. ALL-OR-NOTHING READS: a single malformed row fails ReadAll. Skipping it
     would silently drop a day from the series.

EXAMPLE FLOW (provisional correction):
  1. Jun 10 synced while still today:   append {Jun 10, 1800, 2000, provisional}
  2. Jun 12 sync sees provisional tail:  RemoveLast -> {Jun 10 ...}
  3. Re-fetch Jun 10..Jun 12:            append Jun 10 (final), Jun 11 (final), Jun 12 (provisional)

SEE ALSO:
  - store.go: LineStore interface
  - fitness/codec.go: Codecs for the calorie, weight and run logs
*/
package generic

import (
	"context"
	"fmt"
)

// =============================================================================
// CODEC - Record <-> line
// =============================================================================

// Codec converts records to and from single log lines.
type Codec[R any] interface {
	Encode(r R) string
	Decode(line string) (R, error)
	// Key returns the date the record is ordered by.
	Key(r R) TimePoint
}

// Ordering is the constraint Append enforces between consecutive records.
type Ordering int

const (
	// OrderStrict requires each key to be strictly after the previous one
	// (dense daily logs: no duplicate dates).
	OrderStrict Ordering = iota
	// OrderNonDecreasing permits repeated keys but never going backwards.
	OrderNonDecreasing
	// OrderNone keeps whatever order records arrive in.
	OrderNone
)

// =============================================================================
// LOG - Typed wrapper around a LineStore
// =============================================================================

// Log is a typed, ordered, append-only record log.
// Not safe for concurrent use: a log has a single writer.
type Log[R any] struct {
	Store LineStore
	Codec Codec[R]
	Order Ordering

	// cached key of the last record; loaded lazily
	last      TimePoint
	lastValid bool
	loaded    bool
}

func NewLog[R any](store LineStore, codec Codec[R], order Ordering) *Log[R] {
	return &Log[R]{Store: store, Codec: codec, Order: order}
}

// Name returns the underlying store's name.
func (l *Log[R]) Name() string {
	return l.Store.Name()
}

// Append encodes r and writes it as the new last line.
func (l *Log[R]) Append(ctx context.Context, r R) error {
	if err := l.loadLast(ctx); err != nil {
		return err
	}
	key := l.Codec.Key(r)
	if l.lastValid && !l.inOrder(key) {
		return &OutOfOrderError{Log: l.Name(), Last: l.last, Next: key}
	}
	line := l.Codec.Encode(r)
	// a row that cannot be read back would make the whole log unreadable
	if _, err := l.Codec.Decode(line); err != nil {
		return fmt.Errorf("append to %s: row %q: %v: %w", l.Name(), line, err, ErrMalformedRow)
	}
	if err := l.Store.Append(ctx, line); err != nil {
		return fmt.Errorf("append to %s: %w", l.Name(), err)
	}
	l.last, l.lastValid = key, true
	return nil
}

func (l *Log[R]) inOrder(key TimePoint) bool {
	switch l.Order {
	case OrderStrict:
		return key.After(l.last)
	case OrderNonDecreasing:
		return key.AfterOrEqual(l.last)
	default:
		return true
	}
}

// ReadAll decodes every record in file order.
func (l *Log[R]) ReadAll(ctx context.Context) ([]R, error) {
	lines, err := l.Store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Name(), err)
	}
	records := make([]R, 0, len(lines))
	for i, line := range lines {
		r, err := l.Codec.Decode(line)
		if err != nil {
			return nil, &MalformedRowError{Log: l.Name(), Line: i + 1, Row: line, Reason: err.Error()}
		}
		records = append(records, r)
	}
	return records, nil
}

// Last returns the final record without removing it.
// The boolean is false when the log is empty.
func (l *Log[R]) Last(ctx context.Context) (R, bool, error) {
	var zero R
	lines, err := l.Store.ReadAll(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("read %s: %w", l.Name(), err)
	}
	if len(lines) == 0 {
		return zero, false, nil
	}
	line := lines[len(lines)-1]
	r, err := l.Codec.Decode(line)
	if err != nil {
		return zero, false, &MalformedRowError{Log: l.Name(), Line: len(lines), Row: line, Reason: err.Error()}
	}
	return r, true, nil
}

// RemoveLast deletes and returns the last record.
// Returns ErrEmptyLog if there is nothing to remove.
func (l *Log[R]) RemoveLast(ctx context.Context) (R, error) {
	var zero R
	line, err := l.Store.RemoveLast(ctx)
	if err != nil {
		return zero, err
	}
	// the new tail is unknown until re-read
	l.loaded = false
	r, err := l.Codec.Decode(line)
	if err != nil {
		return zero, &MalformedRowError{Log: l.Name(), Row: line, Reason: err.Error()}
	}
	return r, nil
}

// Exists reports whether the log holds any records.
func (l *Log[R]) Exists(ctx context.Context) (bool, error) {
	return l.Store.Exists(ctx)
}

func (l *Log[R]) loadLast(ctx context.Context) error {
	if l.loaded || l.Order == OrderNone {
		return nil
	}
	r, ok, err := l.Last(ctx)
	if err != nil {
		return err
	}
	l.lastValid = ok
	if ok {
		l.last = l.Codec.Key(r)
	}
	l.loaded = true
	return nil
}
