package strategy

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the read-only strategy catalog. It is constructed once at
// startup, validated, and then shared across concurrent runs without
// locking.
type Registry struct {
	defs map[int]*Definition
}

// NewRegistry builds the catalog of the ten built-in strategies and
// validates every definition. A validation failure is a programming error
// in the catalog, reported rather than deferred to run time.
func NewRegistry() (*Registry, error) {
	defs := builtinDefinitions()
	r := &Registry{defs: make(map[int]*Definition, len(defs))}
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("strategy catalog: %w", err)
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("strategy catalog: duplicate id %d", d.ID)
		}
		r.defs[d.ID] = d
	}
	return r, nil
}

// Get returns the definition for the given id.
func (r *Registry) Get(id int) (*Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, &UnknownStrategyError{ID: id}
	}
	return d, nil
}

// List returns all definitions ordered by id.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidateRoles checks every role id in the catalog against the known-role
// predicate. Called during system assembly so that an unknown role is a
// construction-time error, not a runtime one.
func (r *Registry) ValidateRoles(known func(id string) bool) error {
	for _, d := range r.List() {
		for _, st := range d.Stages {
			for _, role := range st.Roles {
				if !known(role) {
					return fmt.Errorf("strategy %d: stage %q names unknown role %q", d.ID, st.Name, role)
				}
			}
		}
	}
	return nil
}

// Recommend maps a research topic to a strategy id using a keyword
// heuristic. It never fails; unrecognized topics get the parallel swarm.
func Recommend(topic string) int {
	lower := strings.ToLower(topic)
	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("news", "today", "latest", "breaking", "current"):
		return 9
	case contains(" vs ", "versus", "compare", "comparison", "better", "which"):
		return 10
	case contains("debate", "controversial", "pros and cons", "should we"):
		return 7
	case contains("comprehensive", "all aspects", "multi-disciplinary"):
		return 6
	case len(strings.Fields(topic)) < 5:
		return 3
	default:
		return 4
	}
}
