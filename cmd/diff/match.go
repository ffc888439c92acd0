package diff

import (
	"github.com/cottagelabs/lantern-compare/cmd/tables"
)

// Source identifies which input file a suspicious row came from
type Source int

const (
	SourceFile1 Source = 1
	SourceFile2 Source = 2
)

// MatchedPair is one article found in both files via its identity key
type MatchedPair struct {
	Key Key
	A   tables.Row
	B   tables.Row
}

// SuspiciousEntry is a row that could not be confidently matched: it
// has no usable identifier, its identifier does not appear in the
// other file, or it is surplus for a duplicated identifier.
type SuspiciousEntry struct {
	Source Source
	Row    tables.Row
	Key    Key
	HasKey bool
}

// MatchResult separates the join into matched pairs and suspicious
// rows. Pairs and file-1 suspicious entries follow file 1's row order;
// file-2-only suspicious entries follow in file 2's row order.
type MatchResult struct {
	Pairs      []MatchedPair
	Suspicious []SuspiciousEntry
}

// Match indexes both tables by identity key and joins them. A key
// shared by several rows in one file is paired positionally within
// that key's list; rows left over after pairing are suspicious, as are
// rows with no key or with a key absent from the other file.
func Match(a, b *tables.Table) MatchResult {
	indexA := buildKeyIndex(a)
	indexB := buildKeyIndex(b)

	var result MatchResult

	seenA := make(map[Key]int)
	for _, row := range a.Rows {
		key, ok := KeyFor(row)
		if !ok {
			result.Suspicious = append(result.Suspicious, SuspiciousEntry{Source: SourceFile1, Row: row})
			continue
		}

		counterparts, present := indexB[key]
		if !present {
			result.Suspicious = append(result.Suspicious, SuspiciousEntry{Source: SourceFile1, Row: row, Key: key, HasKey: true})
			continue
		}

		pos := seenA[key]
		seenA[key]++
		if pos >= len(counterparts) {
			// surplus duplicate on the file-1 side
			result.Suspicious = append(result.Suspicious, SuspiciousEntry{Source: SourceFile1, Row: row, Key: key, HasKey: true})
			continue
		}

		result.Pairs = append(result.Pairs, MatchedPair{Key: key, A: row, B: counterparts[pos]})
	}

	seenB := make(map[Key]int)
	for _, row := range b.Rows {
		key, ok := KeyFor(row)
		if !ok {
			result.Suspicious = append(result.Suspicious, SuspiciousEntry{Source: SourceFile2, Row: row})
			continue
		}

		counterparts, present := indexA[key]
		if !present {
			result.Suspicious = append(result.Suspicious, SuspiciousEntry{Source: SourceFile2, Row: row, Key: key, HasKey: true})
			continue
		}

		pos := seenB[key]
		seenB[key]++
		if pos >= len(counterparts) {
			// surplus duplicate on the file-2 side
			result.Suspicious = append(result.Suspicious, SuspiciousEntry{Source: SourceFile2, Row: row, Key: key, HasKey: true})
		}
	}

	return result
}

func buildKeyIndex(t *tables.Table) map[Key][]tables.Row {
	index := make(map[Key][]tables.Row, len(t.Rows))
	for _, row := range t.Rows {
		if key, ok := KeyFor(row); ok {
			index[key] = append(index[key], row)
		}
	}
	return index
}
