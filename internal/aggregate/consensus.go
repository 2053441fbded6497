package aggregate

import (
	"fmt"
	"strings"
)

// mergeConsensus folds N outputs into one synthesized artifact with explicit
// agreement and divergence lists. Claims appearing in every contribution are
// agreements; claims appearing in some contributions are divergences and are
// kept in the artifact annotated with their sources.
func mergeConsensus(contribs []Contribution, expected int) *Merged {
	merged := &Merged{
		PartialConsensus: len(contribs) < expected,
	}

	// Track, per normalized claim, the first-seen text and the roles that
	// made it. First-seen order across the declared fold keeps the output
	// deterministic.
	type claimEntry struct {
		text  string
		roles []string
	}
	var order []string
	entries := make(map[string]*claimEntry)

	for _, c := range contribs {
		merged.Contributors = append(merged.Contributors, c.Role)
		seen := make(map[string]bool)
		for _, claim := range claims(c.Output.Text) {
			key := normalize(claim)
			if seen[key] {
				continue
			}
			seen[key] = true
			if e, ok := entries[key]; ok {
				e.roles = append(e.roles, c.Role)
			} else {
				entries[key] = &claimEntry{text: claim, roles: []string{c.Role}}
				order = append(order, key)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("## Consensus Synthesis\n\n")

	for _, key := range order {
		e := entries[key]
		if len(e.roles) == len(contribs) {
			merged.Agreements = append(merged.Agreements, e.text)
			sb.WriteString(e.text)
			sb.WriteString("\n")
		} else {
			annotated := fmt.Sprintf("%s [divergent: %s]", e.text, strings.Join(e.roles, ", "))
			merged.Divergences = append(merged.Divergences, annotated)
		}
	}

	if len(merged.Divergences) > 0 {
		sb.WriteString("\n## Points of Divergence\n\n")
		for _, d := range merged.Divergences {
			sb.WriteString("- ")
			sb.WriteString(d)
			sb.WriteString("\n")
		}
	}

	if merged.PartialConsensus {
		sb.WriteString(fmt.Sprintf("\nNote: consensus built from %d of %d expected contributions.\n",
			len(contribs), expected))
	}

	merged.Text = sb.String()
	return merged
}
