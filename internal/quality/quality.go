// Package quality scores candidate artifacts along five fixed dimensions
// and decides continue-vs-stop for refinement loops. The assessor is backed
// by a critic agent capability and therefore shares its failure modes; the
// engine treats an unavailable assessor as fail-open.
package quality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nami-dev/nami/agent"
	"github.com/nami-dev/nami/internal/subagent"
)

// ErrAssessorUnavailable marks an assessment that could not be produced.
var ErrAssessorUnavailable = errors.New("quality assessor unavailable")

// Rubric configures an assessment.
type Rubric struct {
	// Threshold is the aggregate score (0-10) required to pass.
	Threshold float64

	// Model rebinds the critic to the named model. Empty uses the
	// provider default.
	Model string
}

// Score is an immutable quality assessment. Each dimension is scored
// independently in [0,10]; the aggregate is their unweighted mean.
type Score struct {
	Depth           float64 `json:"depth"`
	Accuracy        float64 `json:"accuracy"`
	Coherence       float64 `json:"coherence"`
	SourceDiversity float64 `json:"source_diversity"`
	Completeness    float64 `json:"completeness"`

	Aggregate float64 `json:"aggregate"`
	Passed    bool    `json:"passed"`

	// Critique is the assessor's feedback, fed back into the loop target
	// when a gate fails.
	Critique string `json:"critique,omitempty"`
}

// Assessor scores candidate artifacts.
type Assessor interface {
	Assess(ctx context.Context, artifact string, rubric Rubric) (*Score, error)
}

// Invoker is the subset of the subagent factory the assessor needs.
type Invoker interface {
	Build(roleID string, task agent.Task) (*subagent.Instance, error)
	Invoke(ctx context.Context, inst *subagent.Instance) *subagent.Instance
}

// CriticAssessor scores artifacts by invoking the critic role.
type CriticAssessor struct {
	invoker Invoker
}

// NewCriticAssessor creates an assessor backed by the given factory.
func NewCriticAssessor(invoker Invoker) *CriticAssessor {
	return &CriticAssessor{invoker: invoker}
}

const scoringRequest = `Score the artifact on five dimensions, each 0-10:
depth (thoroughness of treatment), accuracy (confidence that claims are
correct and sourced), coherence (structure and logical flow),
source_diversity (breadth of independent sources), completeness (does it
answer the research question).

Respond with a single JSON object:
{"depth": n, "accuracy": n, "coherence": n, "source_diversity": n, "completeness": n, "critique": "<specific, actionable feedback>"}`

// Assess invokes the critic and parses its verdict. Any capability failure
// or malformed verdict surfaces as ErrAssessorUnavailable; the caller
// decides disposition.
func (a *CriticAssessor) Assess(ctx context.Context, artifact string, rubric Rubric) (*Score, error) {
	inst, err := a.invoker.Build("critic", agent.Task{
		Topic: "Quality assessment of a research artifact",
		Inputs: map[string]string{
			"artifact":           artifact,
			"assessment request": scoringRequest,
		},
		Model: rubric.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssessorUnavailable, err)
	}

	inst = a.invoker.Invoke(ctx, inst)
	if inst.Failed() {
		return nil, fmt.Errorf("%w: %v", ErrAssessorUnavailable, inst.Err)
	}

	score, err := parseVerdict(inst.Output.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssessorUnavailable, err)
	}

	score.finalize(rubric)
	return score, nil
}

// parseVerdict extracts the score JSON from the critic's response.
func parseVerdict(text string) (*Score, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var score Score
	if err := json.Unmarshal([]byte(text), &score); err != nil {
		return nil, fmt.Errorf("verdict is not valid JSON: %v", err)
	}
	return &score, nil
}

// finalize clamps the dimensions, computes the aggregate, and applies the
// rubric threshold. Scores are immutable once finalized.
func (s *Score) finalize(rubric Rubric) {
	s.Depth = clamp(s.Depth)
	s.Accuracy = clamp(s.Accuracy)
	s.Coherence = clamp(s.Coherence)
	s.SourceDiversity = clamp(s.SourceDiversity)
	s.Completeness = clamp(s.Completeness)
	s.Aggregate = (s.Depth + s.Accuracy + s.Coherence + s.SourceDiversity + s.Completeness) / 5
	s.Passed = s.Aggregate >= rubric.Threshold
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}
