package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cottagelabs/lantern-compare/cmd/compressors"
	"github.com/cottagelabs/lantern-compare/cmd/diff"
	"github.com/cottagelabs/lantern-compare/cmd/tables"
)

// Comparer runs one comparison end to end: load the three sheets,
// align, match, diff, assemble, write the report artifacts and
// optionally publish them to S3.
type Comparer struct {
	config   *Config
	settings *Settings
	logger   *slog.Logger

	// observer receives phase transitions for the progress UI; nil in
	// plain-log mode
	observer func(ProgressEvent)
}

// NewComparer creates a new Comparer instance
func NewComparer(config *Config, settings *Settings, logger *slog.Logger) *Comparer {
	return &Comparer{
		config:   config,
		settings: settings,
		logger:   logger,
	}
}

// SetObserver registers the progress event sink
func (c *Comparer) SetObserver(observer func(ProgressEvent)) {
	c.observer = observer
}

// Run executes the comparison. The pipeline is pure and synchronous;
// cancellation is honored only between stages, never mid-stage.
func (c *Comparer) Run(ctx context.Context) error {
	c.notify(PhaseLoading, "")

	a, err := c.loadTable(c.config.FileA)
	if err != nil {
		return err
	}
	b, err := c.loadTable(c.config.FileB)
	if err != nil {
		return err
	}
	original, err := c.loadTable(c.config.OriginalFile)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.notify(PhaseAligning, "")
	opts := diff.Options{
		Whitelist:    c.settings.WhitelistColumns,
		Equivalences: c.settings.ColumnEquivalences,
	}
	if len(opts.Whitelist) > 0 {
		c.logger.Info(fmt.Sprintf("Whitelist found, keeping columns: %s", strings.Join(opts.Whitelist, ", ")))
	} else {
		c.logger.Info("No column whitelist found")
	}

	alignment, err := diff.Align(a, b, opts)
	if err != nil {
		return fmt.Errorf("cannot compare files: %w", err)
	}

	if c.config.PrintHeaders {
		c.printHeader(alignment.A, c.config.FileA)
		c.printHeader(alignment.B, c.config.FileB)
		c.printHeader(original, c.config.OriginalFile)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.notify(PhaseMatching, fmt.Sprintf("%d + %d rows", len(alignment.A.Rows), len(alignment.B.Rows)))
	matches := diff.Match(alignment.A, alignment.B)

	if err := ctx.Err(); err != nil {
		return err
	}

	c.notify(PhaseDiffing, fmt.Sprintf("%d matched pairs × %d columns", len(matches.Pairs), len(alignment.Pairs)))
	sections := diff.Diff(alignment.Pairs, matches.Pairs, original, c.logger)
	report := diff.Assemble(sections, matches.Suspicious)

	if err := ctx.Err(); err != nil {
		return err
	}

	c.notify(PhaseWriting, "")
	resultsPath, suspiciousPath, err := c.writeReports(report)
	if err != nil {
		return err
	}

	if c.config.S3.Enabled() {
		uploader, err := NewUploader(&c.config.S3, c.logger)
		if err != nil {
			return fmt.Errorf("failed to set up S3 upload: %w", err)
		}
		for _, path := range []string{resultsPath, suspiciousPath} {
			if path == "" {
				continue
			}
			if err := uploader.UploadFile(path); err != nil {
				return fmt.Errorf("failed to upload %s: %w", path, err)
			}
		}
	}

	c.notify(PhaseComplete, "")
	c.printSummary(a, b, original, matches, report, resultsPath, suspiciousPath)
	return nil
}

func (c *Comparer) notify(phase Phase, detail string) {
	if c.observer != nil {
		c.observer(ProgressEvent{Phase: phase, Detail: detail})
		return
	}
	if detail != "" {
		c.logger.Debug(fmt.Sprintf("%s (%s)", phase, detail))
	} else {
		c.logger.Debug(phase.String())
	}
}

// loadTable reads one CSV sheet, decompressing transparently when the
// filename carries a compression extension
func (c *Comparer) loadTable(path string) (*tables.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	compressor, err := compressors.GetCompressor(compressors.Detect(path))
	if err != nil {
		return nil, err
	}
	decompressed, err := compressor.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	reader := tables.NewReaderWithCloser(decompressed)
	defer reader.Close()

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return table, nil
}

func (c *Comparer) printHeader(t *tables.Table, path string) {
	c.logger.Info(fmt.Sprintf("%s header:", filepath.Base(path)))
	c.logger.Info(`"` + strings.Join(t.Columns, `","`) + `"`)
}

// writeReports serializes the assembled report. The results CSV is
// always written; the suspicious CSV is written when any entries
// exist, and additionally echoed to the log when classified inline.
func (c *Comparer) writeReports(report *diff.Report) (resultsPath, suspiciousPath string, err error) {
	aName := filepath.Base(c.config.FileA)
	bName := filepath.Base(c.config.FileB)
	oName := filepath.Base(c.config.OriginalFile)

	resultsPath = NewOutputTemplate(c.config.OutputTemplate).Generate(aName, bName)
	resultsPath, err = c.writeArtifact(resultsPath, resultsRecords(report, aName, bName, oName))
	if err != nil {
		return "", "", err
	}
	c.logger.Info(fmt.Sprintf("Saved results to %s", resultsPath))

	if len(report.Suspicious.Entries) == 0 {
		return resultsPath, "", nil
	}

	if report.Suspicious.Placement == diff.PlacementInline {
		c.logger.Info("These records are suspicious: they could not be matched by identifier across the two sheets.")
		for _, entry := range report.Suspicious.Entries {
			c.logger.Info(fmt.Sprintf("  %s: PMCID=%q PMID=%q DOI=%q title=%q",
				c.sourceName(entry.Source),
				entry.Row[diff.ColPMCID], entry.Row[diff.ColPMID],
				entry.Row[diff.ColDOI], entry.Row[diff.ColTitle]))
		}
	}

	suspiciousPath = SuspiciousSibling(resultsPath, aName, bName)
	suspiciousPath, err = c.writeArtifact(suspiciousPath, suspiciousRecords(report.Suspicious.Entries, aName, bName))
	if err != nil {
		return "", "", err
	}
	c.logger.Info(fmt.Sprintf("Saved suspicious records to %s", suspiciousPath))

	return resultsPath, suspiciousPath, nil
}

// writeArtifact renders records as CSV, applies the configured
// compression and writes the file, returning the final path (with the
// compression extension appended when one applies)
func (c *Comparer) writeArtifact(path string, records [][]string) (string, error) {
	data, err := tables.FormatRecords(records)
	if err != nil {
		return "", err
	}

	compressor, err := compressors.GetCompressor(c.config.Compression)
	if err != nil {
		return "", err
	}
	compressed, err := compressor.Compress(data, c.config.CompressionLevel)
	if err != nil {
		return "", err
	}
	path += compressor.Extension()

	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (c *Comparer) sourceName(source diff.Source) string {
	if source == diff.SourceFile2 {
		return filepath.Base(c.config.FileB)
	}
	return filepath.Base(c.config.FileA)
}

// resultsRecords lays out the multi-section results CSV: for each
// non-empty section a header row naming the column pair and the
// original file's identifying columns, the records, then a blank row
func resultsRecords(report *diff.Report, aName, bName, oName string) [][]string {
	var records [][]string
	for _, section := range report.Sections {
		if len(section.Records) == 0 {
			continue
		}

		records = append(records, []string{
			fmt.Sprintf("%s %s", aName, section.Pair.A),
			fmt.Sprintf("%s %s", bName, section.Pair.B),
			fmt.Sprintf("%s PMCID", oName),
			fmt.Sprintf("%s PMID", oName),
			fmt.Sprintf("%s DOI", oName),
			fmt.Sprintf("%s Article title", oName),
		})
		for _, r := range section.Records {
			records = append(records, []string{r.ValueA, r.ValueB, r.PMCID, r.PMID, r.DOI, r.Title})
		}
		records = append(records, []string{})
	}
	return records
}

// suspiciousRecords lays out the suspicious-rows CSV
func suspiciousRecords(entries []diff.SuspiciousEntry, aName, bName string) [][]string {
	records := [][]string{{"File", "PMCID", "PMID", "DOI", "Article title"}}
	for _, entry := range entries {
		name := aName
		if entry.Source == diff.SourceFile2 {
			name = bName
		}
		records = append(records, []string{
			name,
			entry.Row[diff.ColPMCID],
			entry.Row[diff.ColPMID],
			entry.Row[diff.ColDOI],
			entry.Row[diff.ColTitle],
		})
	}
	return records
}

func (c *Comparer) printSummary(a, b, original *tables.Table, matches diff.MatchResult, report *diff.Report, resultsPath, suspiciousPath string) {
	c.logger.Info("")
	c.logger.Info(fmt.Sprintf("Original file %s number of rows %d", filepath.Base(c.config.OriginalFile), len(original.Rows)))
	c.logger.Info(fmt.Sprintf("%s number of rows %d", filepath.Base(c.config.FileA), len(a.Rows)))
	c.logger.Info(fmt.Sprintf("%s number of rows %d", filepath.Base(c.config.FileB), len(b.Rows)))
	c.logger.Info(fmt.Sprintf("%d rows were matched and compared for differences", len(matches.Pairs)))
	c.logger.Info(fmt.Sprintf("%d suspicious rows could not be matched by identifier across the two sheets", len(matches.Suspicious)))
	c.logger.Info(fmt.Sprintf("%d differing columns, %d differences in total", report.NonEmptySections(), report.TotalDiscrepancies()))
	if suspiciousPath != "" {
		c.logger.Info(fmt.Sprintf("Reports written: %s, %s", resultsPath, suspiciousPath))
	} else {
		c.logger.Info(fmt.Sprintf("Report written: %s", resultsPath))
	}
}
