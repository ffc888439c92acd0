package cmd

import (
	"path/filepath"
	"strings"
)

// Default filename templates for the two report artifacts
const (
	DefaultResultsTemplate    = "{a}_comparison_{b}.csv"
	defaultSuspiciousTemplate = "{a}_suspicious_{b}.csv"
)

// OutputTemplate generates report filenames from templates
type OutputTemplate struct {
	template string
}

// NewOutputTemplate creates a new OutputTemplate instance
func NewOutputTemplate(template string) *OutputTemplate {
	return &OutputTemplate{template: template}
}

// Generate replaces placeholders in the template with actual values
// Supports: {a}, {b} (basenames of the two compared files)
func (ot *OutputTemplate) Generate(aName, bName string) string {
	result := ot.template

	result = strings.ReplaceAll(result, "{a}", aName)
	result = strings.ReplaceAll(result, "{b}", bName)

	return result
}

// SuspiciousSibling returns the suspicious-report path next to the
// results path, using the default suspicious naming
func SuspiciousSibling(resultsPath, aName, bName string) string {
	name := NewOutputTemplate(defaultSuspiciousTemplate).Generate(aName, bName)
	dir := filepath.Dir(resultsPath)
	if dir == "." {
		return name
	}
	return filepath.Join(dir, name)
}
