// Package evolve declares the contracts the harness consumes from the
// evolutionary pipeline-search engine. The engine itself lives outside this
// module; it registers a factory here (database/sql driver style) and the
// harness constructs one classifier per task through it.
package evolve

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/evobench/internal/types"
)

// EvaluatorConfig configures the fitness-scoring strategy injected into the
// classifier: k-fold cross-validation over a subsample of the training data.
type EvaluatorConfig struct {
	// CVFolds is the cross-validation fold count.
	CVFolds int

	// Timeout bounds a single fitness evaluation. Zero means unbounded.
	Timeout time.Duration

	// PerGen redraws the subsample every generation when true. The harness
	// keeps it false so the sample stays fixed for the whole run.
	PerGen bool

	// SampleFraction is the portion of rows each evaluation may use, in (0, 1].
	SampleFraction float64
}

// ClassifierConfig is everything the harness passes to a classifier factory.
type ClassifierConfig struct {
	NJobs     int
	Timeout   time.Duration
	Evaluator EvaluatorConfig
	MaxHeight int
}

// Classifier is the evolutionary search estimator. Fit blocks until the search
// budget is exhausted; afterwards the logbook and the ranked candidates are
// read-only.
type Classifier interface {
	Fit(features [][]float64, labels []float64) error

	// Logbook returns the per-generation statistics history of the last fit.
	Logbook() *Logbook

	// BestIndividuals returns up to n top-ranked candidates, best first,
	// each carrying its fitness value.
	BestIndividuals(n int) []types.Individual
}

// Factory constructs one classifier for one task.
type Factory func(cfg ClassifierConfig) (Classifier, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a classifier engine available under the given name.
// It panics on duplicate registration, like database/sql drivers.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("evolve: RegisterFactory with nil factory")
	}
	if _, dup := factories[name]; dup {
		panic("evolve: RegisterFactory called twice for engine " + name)
	}
	factories[name] = f
}

// LookupFactory returns the factory registered under name.
func LookupFactory(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	if !ok {
		known := make([]string, 0, len(factories))
		for k := range factories {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("no classifier engine registered under %q (registered: %v)", name, known)
	}
	return f, nil
}

// EvolutionRecord is the post-fit artifact consumed by the run recorder: the
// generation history plus the ranked candidates.
type EvolutionRecord struct {
	Logbook *Logbook
	Best    []types.Individual
}
