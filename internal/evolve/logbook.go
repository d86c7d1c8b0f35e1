package evolve

import (
	"fmt"
	"sort"
	"strings"
)

// Chapter names used by the harness. Engines may record more.
const (
	ChapterScore     = "score"
	ChapterTestScore = "test_score"
)

// Statistic column names within a chapter.
const (
	StatMax = "max"
	StatAvg = "avg"
)

// Logbook is the generation-indexed statistics history of one fit. Each named
// chapter holds one float column per statistic, all aligned with Generations.
type Logbook struct {
	generations []int
	chapters    map[string]*Chapter
}

// Chapter is one named group of statistic columns.
type Chapter struct {
	columns map[string][]float64
}

// NewLogbook returns an empty logbook.
func NewLogbook() *Logbook {
	return &Logbook{chapters: make(map[string]*Chapter)}
}

// Append records one generation's statistics. Chapters are created on first
// use; every chapter row must be appended for every generation to stay aligned.
func (lb *Logbook) Append(gen int, stats map[string]map[string]float64) {
	lb.generations = append(lb.generations, gen)
	for chapter, columns := range stats {
		ch, ok := lb.chapters[chapter]
		if !ok {
			ch = &Chapter{columns: make(map[string][]float64)}
			lb.chapters[chapter] = ch
		}
		for col, v := range columns {
			ch.columns[col] = append(ch.columns[col], v)
		}
	}
}

// Generations returns the generation index column.
func (lb *Logbook) Generations() []int {
	return lb.generations
}

// Chapter returns the named chapter, or an empty one if never recorded.
func (lb *Logbook) Chapter(name string) *Chapter {
	if ch, ok := lb.chapters[name]; ok {
		return ch
	}
	return &Chapter{columns: make(map[string][]float64)}
}

// Select returns the named statistic column. Missing columns yield nil.
func (c *Chapter) Select(stat string) []float64 {
	return c.columns[stat]
}

// String renders the logbook as an aligned text table, one row per generation.
func (lb *Logbook) String() string {
	chapterNames := make([]string, 0, len(lb.chapters))
	for name := range lb.chapters {
		chapterNames = append(chapterNames, name)
	}
	sort.Strings(chapterNames)

	type column struct {
		chapter string
		stat    string
	}
	var columns []column
	for _, name := range chapterNames {
		stats := make([]string, 0, len(lb.chapters[name].columns))
		for stat := range lb.chapters[name].columns {
			stats = append(stats, stat)
		}
		sort.Strings(stats)
		for _, stat := range stats {
			columns = append(columns, column{chapter: name, stat: stat})
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s", "gen"))
	for _, col := range columns {
		sb.WriteString(fmt.Sprintf("%-22s", col.chapter+"."+col.stat))
	}
	sb.WriteString("\n")

	for i, gen := range lb.generations {
		sb.WriteString(fmt.Sprintf("%-6d", gen))
		for _, col := range columns {
			values := lb.chapters[col.chapter].columns[col.stat]
			if i < len(values) {
				sb.WriteString(fmt.Sprintf("%-22g", values[i]))
			} else {
				sb.WriteString(fmt.Sprintf("%-22s", "-"))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
