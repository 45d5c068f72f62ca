package cache

import (
	"fmt"
)

// DefaultSemanticThreshold is used when a semantic lookup does not specify
// a distance threshold.
const DefaultSemanticThreshold = 0.1

// Strategy selects which cache backend a lookup or store targets.
// It is a closed set: ExactMatch carries no parameters, Semantic carries the
// distance threshold. This makes it impossible to pass a threshold where it
// is meaningless.
type Strategy interface {
	Name() string
	strategy()
}

// ExactMatch selects the exact-match key/value backend.
type ExactMatch struct{}

// Name returns the strategy identifier.
func (ExactMatch) Name() string { return "exact" }

func (ExactMatch) strategy() {}

// Semantic selects the similarity-search backend.
type Semantic struct {
	// Threshold is the maximum embedding distance for a hit.
	// Smaller means more similar; normalized embeddings keep it in [0, 1].
	// The boundary is inclusive: distance == Threshold is a hit.
	Threshold float64
}

// Name returns the strategy identifier.
func (Semantic) Name() string { return "semantic" }

func (Semantic) strategy() {}

// ParseStrategy builds a Strategy from the wire form used by the HTTP API.
// threshold must be nil for "exact"; for "semantic" a nil threshold falls
// back to DefaultSemanticThreshold.
func ParseStrategy(name string, threshold *float64) (Strategy, error) {
	switch name {
	case "exact", "":
		if threshold != nil {
			return nil, fmt.Errorf("threshold is not valid for the exact strategy")
		}
		return ExactMatch{}, nil
	case "semantic":
		t := DefaultSemanticThreshold
		if threshold != nil {
			t = *threshold
		}
		if t < 0 || t > 1 {
			return nil, fmt.Errorf("threshold must be in [0, 1], got %v", t)
		}
		return Semantic{Threshold: t}, nil
	default:
		return nil, fmt.Errorf("unknown cache strategy %q", name)
	}
}
