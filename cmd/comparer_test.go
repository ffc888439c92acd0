package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cottagelabs/lantern-compare/cmd/compressors"
	"github.com/cottagelabs/lantern-compare/cmd/diff"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func comparerConfig(dir string) *Config {
	return &Config{
		LogFormat:      "text",
		FileA:          filepath.Join(dir, "a.csv"),
		FileB:          filepath.Join(dir, "b.csv"),
		OriginalFile:   filepath.Join(dir, "original.csv"),
		OutputTemplate: filepath.Join(dir, "{a}_comparison_{b}.csv"),
		Compression:    "none",
	}
}

const originalSheet = "PMCID,PMID,DOI,Article title,Licence\n" +
	"PMC1,10,d1,First,cc-by\n" +
	"PMC2,20,d2,Second,cc0\n"

func TestComparerRun(t *testing.T) {
	t.Run("WritesDifferencesWithOriginalMetadata", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv",
			"PMCID,PMID,DOI,Article title,Licence\nPMC1,10,d1,First,cc-by\nPMC2,20,d2,Second,cc0\n")
		writeFile(t, dir, "b.csv",
			"PMCID,PMID,DOI,Article title,Licence\nPMC2,20,d2,Second,cc-by-nc\nPMC1,10,d1,First,cc-by\n")

		comparer := NewComparer(comparerConfig(dir), &Settings{}, discardLogger())
		if err := comparer.Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		resultsPath := filepath.Join(dir, "a.csv_comparison_b.csv.csv")
		data, err := os.ReadFile(resultsPath)
		if err != nil {
			t.Fatalf("results file not written: %v", err)
		}

		content := string(data)
		if !strings.Contains(content, "a.csv Licence,b.csv Licence,original.csv PMCID") {
			t.Fatalf("missing section header, got: %s", content)
		}
		if !strings.Contains(content, "cc0,cc-by-nc,PMC2,20,d2,Second") {
			t.Fatalf("missing discrepancy record, got: %s", content)
		}
		if strings.Contains(content, "cc-by,cc-by") {
			t.Fatalf("equal values should not be reported, got: %s", content)
		}

		// No suspicious rows, so no suspicious artifact
		if _, err := os.Stat(filepath.Join(dir, "a.csv_suspicious_b.csv.csv")); !os.IsNotExist(err) {
			t.Fatal("suspicious file should not exist for a clean match")
		}
	})

	t.Run("FileComparedAgainstItselfIsEmpty", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv", originalSheet)
		writeFile(t, dir, "b.csv", originalSheet)

		comparer := NewComparer(comparerConfig(dir), &Settings{}, discardLogger())
		if err := comparer.Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "a.csv_comparison_b.csv.csv"))
		if err != nil {
			t.Fatalf("results file not written: %v", err)
		}
		if len(data) != 0 {
			t.Fatalf("identical files should produce an empty results file, got: %s", data)
		}
	})

	t.Run("UnmatchedRowsGoToSuspiciousFile", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv",
			"PMCID,PMID,DOI,Article title,Licence\nPMC1,10,d1,First,cc-by\nPMC9,90,d9,Orphan,cc0\n")
		writeFile(t, dir, "b.csv",
			"PMCID,PMID,DOI,Article title,Licence\nPMC1,10,d1,First,cc-by\n")

		comparer := NewComparer(comparerConfig(dir), &Settings{}, discardLogger())
		if err := comparer.Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		// Template suffixes land after the expanded basenames, so the
		// artifact names double up the .csv the inputs already carry.
		data, err := os.ReadFile(filepath.Join(dir, "a.csv_suspicious_b.csv.csv"))
		if err != nil {
			t.Fatalf("suspicious file not written: %v", err)
		}

		content := string(data)
		if !strings.Contains(content, "File,PMCID,PMID,DOI,Article title") {
			t.Fatalf("missing suspicious header, got: %s", content)
		}
		if !strings.Contains(content, "a.csv,PMC9,90,d9,Orphan") {
			t.Fatalf("missing suspicious row, got: %s", content)
		}
	})

	t.Run("EquivalenceAndWhitelistFlowThrough", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv",
			"PMCID,PMID,DOI,Article title,Licence,Archived\nPMC1,10,d1,First,cc-by,yes\n")
		writeFile(t, dir, "b.csv",
			"PMCID,PMID,DOI,Article title,License,Archived\nPMC1,10,d1,First,cc0,no\n")

		settings := &Settings{
			WhitelistColumns:   []string{"Licence", "License"},
			ColumnEquivalences: []diff.Equivalence{{A: "Licence", B: "License"}},
		}

		comparer := NewComparer(comparerConfig(dir), settings, discardLogger())
		if err := comparer.Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "a.csv_comparison_b.csv.csv"))
		if err != nil {
			t.Fatalf("results file not written: %v", err)
		}

		content := string(data)
		if !strings.Contains(content, "cc-by,cc0,PMC1,10,d1,First") {
			t.Fatalf("renamed column should be diffed, got: %s", content)
		}
		if strings.Contains(content, "Archived") {
			t.Fatalf("non-whitelisted column should be dropped, got: %s", content)
		}
	})

	t.Run("MismatchedColumnsFail", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv", "PMCID,PMID,DOI,Article title,Licence\nPMC1,10,d1,First,cc-by\n")
		writeFile(t, dir, "b.csv", "PMCID,PMID,DOI,Article title,Archived\nPMC1,10,d1,First,yes\n")

		comparer := NewComparer(comparerConfig(dir), &Settings{}, discardLogger())
		err := comparer.Run(context.Background())
		if err == nil {
			t.Fatal("differing columns without an equivalence should fail the run")
		}
	})

	t.Run("ReadsCompressedInputs", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)

		compressor, err := compressors.GetCompressor("gzip")
		if err != nil {
			t.Fatalf("failed to get gzip compressor: %v", err)
		}
		compressed, err := compressor.Compress([]byte(originalSheet), compressor.DefaultLevel())
		if err != nil {
			t.Fatalf("failed to compress fixture: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "a.csv.gz"), compressed, 0o644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		writeFile(t, dir, "b.csv", originalSheet)

		config := comparerConfig(dir)
		config.FileA = filepath.Join(dir, "a.csv.gz")

		comparer := NewComparer(config, &Settings{}, discardLogger())
		if err := comparer.Run(context.Background()); err != nil {
			t.Fatalf("run with compressed input failed: %v", err)
		}
	})

	t.Run("CompressesWrittenReports", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv",
			"PMCID,PMID,DOI,Article title,Licence\nPMC1,10,d1,First,cc-by\n")
		writeFile(t, dir, "b.csv",
			"PMCID,PMID,DOI,Article title,Licence\nPMC1,10,d1,First,cc0\n")

		config := comparerConfig(dir)
		config.Compression = "gzip"
		config.CompressionLevel = 6

		comparer := NewComparer(config, &Settings{}, discardLogger())
		if err := comparer.Run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "a.csv_comparison_b.csv.csv.gz")); err != nil {
			t.Fatalf("compressed results file not written: %v", err)
		}
	})

	t.Run("CancelledContextStopsTheRun", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "original.csv", originalSheet)
		writeFile(t, dir, "a.csv", originalSheet)
		writeFile(t, dir, "b.csv", originalSheet)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		comparer := NewComparer(comparerConfig(dir), &Settings{}, discardLogger())
		err := comparer.Run(ctx)
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}
