package diff

import (
	"strings"

	"github.com/cottagelabs/lantern-compare/cmd/tables"
)

// Identifier column names shared by every Lantern sheet. Title is used
// for reporting only, never for matching.
const (
	ColPMCID = "PMCID"
	ColPMID  = "PMID"
	ColDOI   = "DOI"
	ColTitle = "Article title"
)

// KeyKind identifies which identifier field produced a row's identity key
type KeyKind int

const (
	KindPMCID KeyKind = iota
	KindPMID
	KindDOI
)

func (k KeyKind) String() string {
	switch k {
	case KindPMCID:
		return ColPMCID
	case KindPMID:
		return ColPMID
	case KindDOI:
		return ColDOI
	default:
		return "unknown"
	}
}

// Key is a row's identity: the first populated identifier field in
// PMCID → PMID → DOI order, tagged with its kind so that a PMCID of
// "1" never matches a PMID of "1". Comparable, usable as a map key.
type Key struct {
	Kind  KeyKind
	Value string
}

// KeyFor derives the identity key for a row. The second return is
// false when none of the identifier fields carry a usable value, in
// which case the row cannot be matched and is unconditionally
// suspicious.
//
// Whitespace-only values count as empty. Values are canonicalised for
// matching purposes only (trimmed, case-folded, and PMCID values lose
// a leading "PMC" prefix), so "PMC123" and "pmc123" produce the same
// key; cell comparison elsewhere stays exact.
func KeyFor(r tables.Row) (Key, bool) {
	if v := normalise(r[ColPMCID]); v != "" {
		return Key{Kind: KindPMCID, Value: strings.TrimPrefix(v, "pmc")}, true
	}
	if v := normalise(r[ColPMID]); v != "" {
		return Key{Kind: KindPMID, Value: v}, true
	}
	if v := normalise(r[ColDOI]); v != "" {
		return Key{Kind: KindDOI, Value: v}, true
	}
	return Key{}, false
}

func normalise(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// identifierColumns are the columns the matcher needs; the aligner
// never drops them and never diffs them.
var identifierColumns = []string{ColPMCID, ColPMID, ColDOI, ColTitle}

func isIdentifierColumn(name string) bool {
	for _, c := range identifierColumns {
		if c == name {
			return true
		}
	}
	return false
}
