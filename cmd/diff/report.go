package diff

// SuspiciousPlacement says where the suspicious report belongs
type SuspiciousPlacement int

const (
	// PlacementInline displays suspicious entries directly in the run output
	PlacementInline SuspiciousPlacement = iota
	// PlacementSeparateFile routes them to their own artifact
	PlacementSeparateFile
)

// suspiciousInlineLimit is the entry count at which the suspicious
// report moves from inline display to a separate artifact
const suspiciousInlineLimit = 50

// SuspiciousReport bears the placement decision and the ordered entries
type SuspiciousReport struct {
	Placement SuspiciousPlacement
	Entries   []SuspiciousEntry
}

// Report is the assembled comparison outcome. Sections keep the
// aligner's discovery order, empty ones included; the writer decides
// whether to omit those. No further mutation happens after assembly.
type Report struct {
	Sections   []Section
	Suspicious SuspiciousReport
}

// Assemble packages the diff sections and suspicious entries for
// output. Pure classification, no I/O: fewer than 50 suspicious
// entries are marked for inline display, 50 or more for a separate
// artifact.
func Assemble(sections []Section, suspicious []SuspiciousEntry) *Report {
	placement := PlacementInline
	if len(suspicious) >= suspiciousInlineLimit {
		placement = PlacementSeparateFile
	}

	return &Report{
		Sections: sections,
		Suspicious: SuspiciousReport{
			Placement: placement,
			Entries:   suspicious,
		},
	}
}

// TotalDiscrepancies counts the records across all sections
func (r *Report) TotalDiscrepancies() int {
	total := 0
	for _, s := range r.Sections {
		total += len(s.Records)
	}
	return total
}

// NonEmptySections counts the sections holding at least one record
func (r *Report) NonEmptySections() int {
	count := 0
	for _, s := range r.Sections {
		if len(s.Records) > 0 {
			count++
		}
	}
	return count
}
