// Package aggregate merges parallel agent outputs into a single candidate
// artifact. Merging is pure synchronous computation: inputs are folded in
// declared role order, never completion order, so the merged output is
// identical across runs regardless of model latency.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/nami-dev/nami/agent"
)

// Policy names an aggregation policy.
type Policy string

const (
	// PolicyConsensus synthesizes N outputs into one artifact with explicit
	// agreement and divergence lists. Divergent claims are surfaced as
	// annotated uncertainty, never resolved by majority vote.
	PolicyConsensus Policy = "consensus"

	// PolicyDebate treats exactly two inputs as opposing positions and
	// reports both plus open disagreements, with no forced reconciliation.
	PolicyDebate Policy = "debate"
)

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	return p == PolicyConsensus || p == PolicyDebate
}

// Contribution is one agent's output, tagged with the role that produced it.
// The slice passed to Merge must be in declared role order and contain only
// successful outputs; failed agents are excluded upstream.
type Contribution struct {
	Role   string
	Output *agent.Output
}

// Merged is the result of folding contributions under a policy.
type Merged struct {
	// Text is the synthesized artifact.
	Text string

	// Agreements lists claims shared by all contributors.
	Agreements []string

	// Divergences lists claims some but not all contributors made,
	// annotated with their sources.
	Divergences []string

	// Contributors names the roles that contributed, in declared order.
	Contributors []string

	// PartialConsensus is true when fewer than the originally declared
	// number of agents contributed.
	PartialConsensus bool
}

// Merge folds contributions under the named policy. The expected count is
// the number of roles originally declared for the stage; when fewer
// contributions survive, the merge proceeds with the subset and flags
// PartialConsensus.
func Merge(contribs []Contribution, expected int, policy Policy) (*Merged, error) {
	if len(contribs) == 0 {
		return nil, fmt.Errorf("aggregate: no contributions to merge")
	}
	if len(contribs) > expected {
		return nil, fmt.Errorf("aggregate: %d contributions exceed the %d declared roles", len(contribs), expected)
	}

	switch policy {
	case PolicyConsensus, "":
		return mergeConsensus(contribs, expected), nil
	case PolicyDebate:
		return mergeDebate(contribs, expected)
	default:
		return nil, fmt.Errorf("aggregate: unknown policy %q", policy)
	}
}

// claims splits an output into normalized claim lines. Bullets and heading
// markers are stripped so the same claim matches across formatting styles.
func claims(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•# \t")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// normalize reduces a claim to a comparison key.
func normalize(claim string) string {
	s := strings.ToLower(strings.TrimSpace(claim))
	s = strings.TrimRight(s, ".!?")
	return strings.Join(strings.Fields(s), " ")
}
