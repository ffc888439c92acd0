package cmd

import (
	"path/filepath"
	"testing"
)

func TestOutputTemplateGeneration(t *testing.T) {
	t.Run("DefaultTemplate", func(t *testing.T) {
		template := NewOutputTemplate(DefaultResultsTemplate)
		result := template.Generate("run1.csv", "run2.csv")

		expected := "run1.csv_comparison_run2.csv.csv"
		if result != expected {
			t.Fatalf("expected '%s', got '%s'", expected, result)
		}
	})

	t.Run("CustomTemplateWithDirectory", func(t *testing.T) {
		template := NewOutputTemplate("reports/{a}-vs-{b}.csv")
		result := template.Generate("march", "april")

		expected := "reports/march-vs-april.csv"
		if result != expected {
			t.Fatalf("expected '%s', got '%s'", expected, result)
		}
	})

	t.Run("RepeatedPlaceholders", func(t *testing.T) {
		template := NewOutputTemplate("{a}/{a}_{b}.csv")
		result := template.Generate("x", "y")

		expected := "x/x_y.csv"
		if result != expected {
			t.Fatalf("expected '%s', got '%s'", expected, result)
		}
	})

	t.Run("NoPlaceholders", func(t *testing.T) {
		template := NewOutputTemplate("fixed-name.csv")
		result := template.Generate("a", "b")

		if result != "fixed-name.csv" {
			t.Fatalf("template without placeholders should pass through, got '%s'", result)
		}
	})
}

func TestSuspiciousSibling(t *testing.T) {
	t.Run("BareResultsPath", func(t *testing.T) {
		path := SuspiciousSibling("a_comparison_b.csv", "a", "b")
		if path != "a_suspicious_b.csv" {
			t.Fatalf("unexpected suspicious path: '%s'", path)
		}
	})

	t.Run("ResultsPathWithDirectory", func(t *testing.T) {
		path := SuspiciousSibling(filepath.Join("reports", "a_comparison_b.csv"), "a", "b")
		expected := filepath.Join("reports", "a_suspicious_b.csv")
		if path != expected {
			t.Fatalf("expected '%s', got '%s'", expected, path)
		}
	})
}
