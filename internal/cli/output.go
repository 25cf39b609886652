package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Table streams rows into a tabwriter as they are added.
type Table struct {
	w    *tabwriter.Writer
	cols int
}

// NewTable starts a table on stdout and writes the header row.
func NewTable(headers ...string) *Table {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	return &Table{w: w, cols: len(headers)}
}

// AddRow writes one row. Extra columns are dropped, missing ones left blank.
func (t *Table) AddRow(cols ...string) {
	if len(cols) > t.cols {
		cols = cols[:t.cols]
	}
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

// Render flushes buffered rows to stdout.
func (t *Table) Render() {
	t.w.Flush()
}

// printOutput marshals data to stdout as JSON or YAML depending on the
// --output flag.
func printOutput(data any) error {
	if getOutputFormat() == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
