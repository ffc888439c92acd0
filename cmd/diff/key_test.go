package diff

import (
	"testing"

	"github.com/cottagelabs/lantern-compare/cmd/tables"
)

func TestKeyFor(t *testing.T) {
	t.Run("PMCIDWinsOverOtherIdentifiers", func(t *testing.T) {
		row := tables.Row{
			ColPMCID: "PMC123",
			ColPMID:  "456",
			ColDOI:   "10.1/abc",
		}

		key, ok := KeyFor(row)
		if !ok {
			t.Fatal("row with identifiers should produce a key")
		}
		if key.Kind != KindPMCID {
			t.Fatalf("expected PMCID key, got %s", key.Kind)
		}
		if key.Value != "123" {
			t.Fatalf("expected canonical value '123', got '%s'", key.Value)
		}
	})

	t.Run("FallsBackToPMID", func(t *testing.T) {
		row := tables.Row{
			ColPMCID: "",
			ColPMID:  "456",
			ColDOI:   "10.1/abc",
		}

		key, ok := KeyFor(row)
		if !ok {
			t.Fatal("row with PMID should produce a key")
		}
		if key.Kind != KindPMID {
			t.Fatalf("expected PMID key, got %s", key.Kind)
		}
		if key.Value != "456" {
			t.Fatalf("expected value '456', got '%s'", key.Value)
		}
	})

	t.Run("FallsBackToDOI", func(t *testing.T) {
		row := tables.Row{
			ColPMCID: "",
			ColPMID:  "",
			ColDOI:   "10.1/ABC",
		}

		key, ok := KeyFor(row)
		if !ok {
			t.Fatal("row with DOI should produce a key")
		}
		if key.Kind != KindDOI {
			t.Fatalf("expected DOI key, got %s", key.Kind)
		}
		if key.Value != "10.1/abc" {
			t.Fatalf("expected case-folded value, got '%s'", key.Value)
		}
	})

	t.Run("WhitespaceOnlyIdentifiersAreEmpty", func(t *testing.T) {
		row := tables.Row{
			ColPMCID: "   ",
			ColPMID:  "\t",
			ColDOI:   " ",
		}

		_, ok := KeyFor(row)
		if ok {
			t.Fatal("whitespace-only identifiers should not produce a key")
		}
	})

	t.Run("NoIdentifiersNoKey", func(t *testing.T) {
		row := tables.Row{ColTitle: "Some article"}

		_, ok := KeyFor(row)
		if ok {
			t.Fatal("row without identifiers should not produce a key")
		}
	})

	t.Run("PMCPrefixCanonicalised", func(t *testing.T) {
		variants := []string{"PMC999", "pmc999", "Pmc999", " PMC999 ", "999"}
		for _, v := range variants {
			key, ok := KeyFor(tables.Row{ColPMCID: v})
			if !ok {
				t.Fatalf("PMCID '%s' should produce a key", v)
			}
			if key.Value != "999" {
				t.Fatalf("PMCID '%s' should canonicalise to '999', got '%s'", v, key.Value)
			}
		}
	})

	t.Run("SameValueDifferentKindsDoNotMatch", func(t *testing.T) {
		pmcKey, _ := KeyFor(tables.Row{ColPMCID: "1"})
		pmidKey, _ := KeyFor(tables.Row{ColPMID: "1"})

		if pmcKey == pmidKey {
			t.Fatal("PMCID '1' must not equal PMID '1'")
		}
	})
}

func TestKeyKindString(t *testing.T) {
	cases := []struct {
		kind KeyKind
		want string
	}{
		{KindPMCID, "PMCID"},
		{KindPMID, "PMID"},
		{KindDOI, "DOI"},
		{KeyKind(99), "unknown"},
	}

	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Fatalf("expected '%s', got '%s'", tc.want, got)
		}
	}
}

func TestIsIdentifierColumn(t *testing.T) {
	for _, name := range []string{ColPMCID, ColPMID, ColDOI, ColTitle} {
		if !isIdentifierColumn(name) {
			t.Fatalf("'%s' should be an identifier column", name)
		}
	}
	if isIdentifierColumn("Licence") {
		t.Fatal("'Licence' should not be an identifier column")
	}
}
