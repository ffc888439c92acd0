package diff

import (
	"errors"
	"fmt"

	"github.com/cottagelabs/lantern-compare/cmd/tables"
)

// Static errors for alignment failures
var (
	ErrColumnCountMismatch  = errors.New("files have a different number of columns after whitelisting")
	ErrColumnMismatch       = errors.New("files have different columns at the same position")
	ErrMisplacedEquivalence = errors.New("columns declared equivalent occur at different positions")
)

// Equivalence declares that column A in file 1 and column B in file 2
// denote the same logical column when they occur at the same position.
// An equivalence at mismatched positions is a schema error, not a
// rename to be resolved.
type Equivalence struct {
	A string
	B string
}

// Options carries the merged comparison settings that affect alignment
type Options struct {
	Whitelist    []string
	Equivalences []Equivalence
}

// ColumnPair names one logical column in both files
type ColumnPair struct {
	A string
	B string
}

// AlignmentError is a fatal schema/configuration mismatch between the
// two files' column sets. Positions are 1-based for operator messages.
type AlignmentError struct {
	ColumnA   string
	ColumnB   string
	PositionA int
	PositionB int
	Err       error
}

func (e *AlignmentError) Error() string {
	switch {
	case errors.Is(e.Err, ErrColumnCountMismatch):
		return fmt.Sprintf("%s: file 1 has %d, file 2 has %d", e.Err.Error(), e.PositionA, e.PositionB)
	case errors.Is(e.Err, ErrMisplacedEquivalence):
		return fmt.Sprintf("%s: '%s' at position %d in file 1, '%s' at position %d in file 2",
			e.Err.Error(), e.ColumnA, e.PositionA, e.ColumnB, e.PositionB)
	default:
		return fmt.Sprintf("%s: '%s' vs '%s' at position %d",
			e.Err.Error(), e.ColumnA, e.ColumnB, e.PositionA)
	}
}

func (e *AlignmentError) Unwrap() error { return e.Err }

// Alignment is the reconciled view of the two files: both tables
// narrowed to the whitelist and the canonical list of column pairs to
// diff, in file-1 column order. Identifier columns and Title are kept
// in the tables (the join needs them) but excluded from the pairs.
type Alignment struct {
	A     *tables.Table
	B     *tables.Table
	Pairs []ColumnPair
}

// Align reconciles the two files' column sets. It fails with an
// AlignmentError when the files cannot be compared safely: uneven
// column counts after whitelisting, columns that differ at a position
// without a covering equivalence, or an equivalence whose columns sit
// at different positions.
func Align(a, b *tables.Table, opts Options) (*Alignment, error) {
	na := applyWhitelist(a, opts.Whitelist)
	nb := applyWhitelist(b, opts.Whitelist)

	if len(na.Columns) != len(nb.Columns) {
		return nil, &AlignmentError{
			PositionA: len(na.Columns),
			PositionB: len(nb.Columns),
			Err:       ErrColumnCountMismatch,
		}
	}

	pairs := make([]ColumnPair, 0, len(na.Columns))
	for i := range na.Columns {
		nameA := na.Columns[i]
		nameB := nb.Columns[i]

		if nameA != nameB {
			if err := checkEquivalence(nameA, nameB, i, na, nb, opts.Equivalences); err != nil {
				return nil, err
			}
		}

		if isIdentifierColumn(nameA) || isIdentifierColumn(nameB) {
			continue
		}
		pairs = append(pairs, ColumnPair{A: nameA, B: nameB})
	}

	return &Alignment{A: na, B: nb, Pairs: pairs}, nil
}

// applyWhitelist narrows a table to the whitelisted columns. The
// identifier columns and Title survive regardless, even when the
// whitelist omits them: the join cannot proceed without them.
func applyWhitelist(t *tables.Table, whitelist []string) *tables.Table {
	if len(whitelist) == 0 {
		return t
	}

	allowed := make(map[string]bool, len(whitelist)+len(identifierColumns))
	for _, c := range whitelist {
		allowed[c] = true
	}
	for _, c := range identifierColumns {
		allowed[c] = true
	}

	kept := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if allowed[c] {
			kept = append(kept, c)
		}
	}
	return t.Select(kept)
}

// checkEquivalence decides whether differing column names at position
// i are an expected difference. The covering equivalence must name
// exactly this position's columns; an equivalence whose counterpart
// lives at another position is reported as such.
func checkEquivalence(nameA, nameB string, i int, na, nb *tables.Table, equivalences []Equivalence) error {
	for _, eq := range equivalences {
		if eq.A == nameA && eq.B == nameB {
			return nil
		}
	}

	// Not covered here; if an equivalence mentions either name, report
	// where its counterpart actually is.
	for _, eq := range equivalences {
		if eq.A == nameA {
			if pos := columnPosition(nb, eq.B); pos >= 0 {
				return &AlignmentError{
					ColumnA:   nameA,
					ColumnB:   eq.B,
					PositionA: i + 1,
					PositionB: pos + 1,
					Err:       ErrMisplacedEquivalence,
				}
			}
		}
		if eq.B == nameB {
			if pos := columnPosition(na, eq.A); pos >= 0 {
				return &AlignmentError{
					ColumnA:   eq.A,
					ColumnB:   nameB,
					PositionA: pos + 1,
					PositionB: i + 1,
					Err:       ErrMisplacedEquivalence,
				}
			}
		}
	}

	return &AlignmentError{
		ColumnA:   nameA,
		ColumnB:   nameB,
		PositionA: i + 1,
		PositionB: i + 1,
		Err:       ErrColumnMismatch,
	}
}

func columnPosition(t *tables.Table, name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
