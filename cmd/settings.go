package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cottagelabs/lantern-compare/cmd/diff"
	"github.com/spf13/viper"
)

// Static errors for comparison settings
var (
	ErrSettingsUnreadable  = errors.New("settings file exists but could not be parsed, remove the file or fix it before running again")
	ErrEquivalenceNotAPair = errors.New("column_equivalences entries must be [name_in_file1, name_in_file2] pairs")
)

// globalSettingsFile is picked up from the working directory when no
// explicit settings file is given, mirroring how operators keep one
// settings file next to the sheets they compare.
const globalSettingsFile = "settings.json"

// Settings are the merged comparison settings: the optional global
// settings.json overlaid by an optional per-original-file
// "<original basename>.json". Later files win per key.
type Settings struct {
	WhitelistColumns   []string
	ColumnEquivalences []diff.Equivalence
}

// loadSettings discovers and merges the settings files for a run.
// explicitPath, when set, replaces the global settings.json. Missing
// files are fine (empty settings); malformed files are fatal.
func loadSettings(explicitPath, originalFile string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("json")

	globalPath := explicitPath
	if globalPath == "" {
		globalPath = globalSettingsFile
	}

	merged := false
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSettingsUnreadable, globalPath, err)
		}
		merged = true
	} else if explicitPath != "" {
		return nil, fmt.Errorf("settings file not found: %s", explicitPath)
	}

	// Per-original-file override, named after the original's basename
	overridePath := filepath.Base(originalFile) + ".json"
	if fileExists(overridePath) {
		v.SetConfigFile(overridePath)
		if !merged {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrSettingsUnreadable, overridePath, err)
			}
		} else if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSettingsUnreadable, overridePath, err)
		}
	}

	settings := &Settings{
		WhitelistColumns: v.GetStringSlice("whitelist_columns"),
	}

	equivalences, err := parseEquivalences(v.Get("column_equivalences"))
	if err != nil {
		return nil, err
	}
	settings.ColumnEquivalences = equivalences

	return settings, nil
}

// parseEquivalences converts the raw column_equivalences value into
// ordered rename rules. The JSON shape is a list of two-element lists.
func parseEquivalences(raw interface{}) ([]diff.Equivalence, error) {
	if raw == nil {
		return nil, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrEquivalenceNotAPair, raw)
	}

	equivalences := make([]diff.Equivalence, 0, len(list))
	for _, entry := range list {
		pair, ok := entry.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: got %v", ErrEquivalenceNotAPair, entry)
		}

		a, aOK := pair[0].(string)
		b, bOK := pair[1].(string)
		if !aOK || !bOK {
			return nil, fmt.Errorf("%w: got %v", ErrEquivalenceNotAPair, entry)
		}

		equivalences = append(equivalences, diff.Equivalence{A: a, B: b})
	}

	return equivalences, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
