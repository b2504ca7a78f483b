package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document identifies one notebook file in the source directory.
type Document struct {
	Name string // file name, e.g. "pendulum_energy.ipynb"
	Path string // full path to the file
}

// Base returns the document name without its extension.
func (d Document) Base() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// Cell is one unit of a notebook: narrative text or executable code.
type Cell struct {
	Type           string   `json:"cell_type"`
	Source         []string `json:"source"`
	ExecutionCount *int     `json:"execution_count,omitempty"`
	Outputs        []Output `json:"outputs,omitempty"`
}

// Output is a recorded result attached to a code cell.
type Output struct {
	Type string   `json:"output_type"`
	Text []string `json:"text,omitempty"`
}

// Notebook is the parsed cell structure of a document.
// The conversion pipeline never reads this; it exists for inspection
// commands (list, stats) only.
type Notebook struct {
	Cells    []Cell         `json:"cells"`
	Metadata map[string]any `json:"metadata"`
	Format   int            `json:"nbformat"`
}

// CodeCells returns the number of executable cells.
func (n *Notebook) CodeCells() int {
	count := 0
	for _, c := range n.Cells {
		if c.Type == "code" {
			count++
		}
	}
	return count
}

// MarkdownCells returns the number of narrative cells.
func (n *Notebook) MarkdownCells() int {
	count := 0
	for _, c := range n.Cells {
		if c.Type == "markdown" {
			count++
		}
	}
	return count
}

// Title returns the first markdown heading, or the empty string.
func (n *Notebook) Title() string {
	for _, c := range n.Cells {
		if c.Type != "markdown" {
			continue
		}
		for _, line := range c.Source {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "#") {
				return strings.TrimSpace(strings.TrimLeft(line, "#"))
			}
		}
	}
	return ""
}

// Read parses a notebook file. Content is parsed read-only; documents
// are never modified.
func Read(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &nb, nil
}
