package diff

import (
	"fmt"
	"log/slog"

	"github.com/cottagelabs/lantern-compare/cmd/tables"
)

// DiscrepancyRecord is one matched article whose value in a given
// column differs between the two files. The identifying fields come
// from the original source table, not from either derived file.
type DiscrepancyRecord struct {
	ValueA string
	ValueB string
	PMCID  string
	PMID   string
	DOI    string
	Title  string
}

// Section collects the discrepancies for one column pair, in
// matched-pair order
type Section struct {
	Pair    ColumnPair
	Records []DiscrepancyRecord
}

// Diff compares every matched pair across the aligned column pairs
// using exact string equality. Whitespace and case differences are
// real differences here: they may indicate genuine pipeline
// discrepancies. One Section is returned per column pair, in the order
// the aligner discovered them, empty sections included.
//
// Identifying metadata is looked up in the original table by identity
// key; a key missing from the original degrades to empty metadata
// fields and a warning instead of failing the run.
func Diff(pairs []ColumnPair, matches []MatchedPair, original *tables.Table, logger *slog.Logger) []Section {
	originalIndex := buildKeyIndex(original)

	sections := make([]Section, len(pairs))
	for i, pair := range pairs {
		sections[i].Pair = pair
	}

	warned := make(map[Key]bool)
	for _, m := range matches {
		for i, pair := range pairs {
			valueA := m.A[pair.A]
			valueB := m.B[pair.B]
			if valueA == valueB {
				continue
			}

			record := DiscrepancyRecord{ValueA: valueA, ValueB: valueB}
			if rows, ok := originalIndex[m.Key]; ok {
				source := rows[0]
				record.PMCID = source[ColPMCID]
				record.PMID = source[ColPMID]
				record.DOI = source[ColDOI]
				record.Title = source[ColTitle]
			} else if logger != nil && !warned[m.Key] {
				warned[m.Key] = true
				logger.Warn(fmt.Sprintf("Identity key %s=%s not found in original file, emitting empty identifying fields", m.Key.Kind, m.Key.Value))
			}

			sections[i].Records = append(sections[i].Records, record)
		}
	}

	return sections
}
