package aggregate

import (
	"fmt"
	"strings"
)

// mergeDebate treats exactly two declared inputs as opposing positions. The
// output presents both positions and their open disagreements without
// reconciling them; reconciliation, if any, is a later stage's job.
func mergeDebate(contribs []Contribution, expected int) (*Merged, error) {
	if expected != 2 {
		return nil, fmt.Errorf("aggregate: debate policy requires exactly 2 declared roles, got %d", expected)
	}

	merged := &Merged{
		PartialConsensus: len(contribs) < expected,
	}
	for _, c := range contribs {
		merged.Contributors = append(merged.Contributors, c.Role)
	}

	var sb strings.Builder
	sb.WriteString("## Debate Summary\n")

	for _, c := range contribs {
		sb.WriteString(fmt.Sprintf("\n### Position: %s\n\n", c.Role))
		sb.WriteString(strings.TrimSpace(c.Output.Text))
		sb.WriteString("\n")
	}

	if len(contribs) == 2 {
		// Claims made by exactly one side are open disagreements. Both
		// sides are walked in declared order to keep the lists stable.
		second := make(map[string]bool)
		for _, claim := range claims(contribs[1].Output.Text) {
			second[normalize(claim)] = true
		}
		for _, claim := range claims(contribs[0].Output.Text) {
			if second[normalize(claim)] {
				merged.Agreements = append(merged.Agreements, claim)
			} else {
				merged.Divergences = append(merged.Divergences,
					fmt.Sprintf("%s [%s only]", claim, contribs[0].Role))
			}
		}
		first := make(map[string]bool)
		for _, claim := range claims(contribs[0].Output.Text) {
			first[normalize(claim)] = true
		}
		for _, claim := range claims(contribs[1].Output.Text) {
			if !first[normalize(claim)] {
				merged.Divergences = append(merged.Divergences,
					fmt.Sprintf("%s [%s only]", claim, contribs[1].Role))
			}
		}

		if len(merged.Divergences) > 0 {
			sb.WriteString("\n### Open Disagreements\n\n")
			for _, d := range merged.Divergences {
				sb.WriteString("- ")
				sb.WriteString(d)
				sb.WriteString("\n")
			}
		}
	} else {
		sb.WriteString(fmt.Sprintf("\nNote: only the %s position is available; the opposing position did not contribute.\n",
			contribs[0].Role))
	}

	merged.Text = sb.String()
	return merged, nil
}
