// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/evobench/internal/evolve"
	"github.com/jonathan/evobench/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDataset outputs a human-readable summary of a loaded dataset and the
// sample fraction chosen for it.
func (p *Printer) PrintDataset(d *types.Dataset, sampleFraction float64) {
	if d == nil {
		return
	}

	categorical := 0
	for _, isCat := range d.Categorical {
		if isCat {
			categorical++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:        %s\n", d.Name))
	sb.WriteString(fmt.Sprintf("Rows:        %d\n", d.Rows()))
	sb.WriteString(fmt.Sprintf("Columns:     %d (%d categorical)\n", d.Cols(), categorical))
	sb.WriteString(fmt.Sprintf("Sample size: %g", sampleFraction))

	p.printBox("DATASET", sb.String())
}

// PrintEvolutionRecord outputs a summary of a completed fit: final generation
// statistics and the top-ranked candidates.
func (p *Printer) PrintEvolutionRecord(rec *evolve.EvolutionRecord) {
	if rec == nil || rec.Logbook == nil {
		return
	}

	var sb strings.Builder

	generations := rec.Logbook.Generations()
	sb.WriteString(fmt.Sprintf("Generations: %d\n", len(generations)))

	scoreMax := rec.Logbook.Chapter(evolve.ChapterScore).Select(evolve.StatMax)
	if len(scoreMax) > 0 {
		sb.WriteString(fmt.Sprintf("Final max score: %.4f\n", scoreMax[len(scoreMax)-1]))
	}
	sb.WriteString("\n")

	count := min(len(rec.Best), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i, rec.Best[i].String()))
	}
	if len(rec.Best) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(rec.Best)-maxItemsToShow))
	}

	p.printBox("EVOLUTION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
