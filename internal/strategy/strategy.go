// Package strategy holds the declarative catalog of research workflow
// topologies. A strategy is data, not code: the workflow engine is one
// generic interpreter over StageSpec graphs, and new strategies are added
// by declaring new graphs here, never by extending the engine.
package strategy

import (
	"errors"
	"fmt"

	"github.com/nami-dev/nami/internal/aggregate"
)

// ErrUnknownStrategy is returned for strategy ids outside the catalog.
var ErrUnknownStrategy = errors.New("unknown strategy")

// TerminationMode controls how a strategy's iteration loop ends.
type TerminationMode string

const (
	// FixedCount runs each stage once; quality gates score but never loop.
	FixedCount TerminationMode = "fixed_count"

	// QualityGate loops back from failed gates until the quality threshold
	// is met or MaxIterations is reached.
	QualityGate TerminationMode = "quality_gate"
)

// ExecutionMode controls how a stage's roles are executed.
type ExecutionMode string

const (
	// Sequential stages run a single role.
	Sequential ExecutionMode = "sequential"

	// Parallel stages fan out one agent per role and wait for all of them
	// before aggregating.
	Parallel ExecutionMode = "parallel"
)

// StageSpec describes one step in a strategy graph.
type StageSpec struct {
	// Name uniquely identifies the stage within its strategy.
	Name string

	// Roles lists the role ids to instantiate, in fold order. One role
	// means a sequential step; several mean a parallel fan-out.
	Roles []string

	// Mode is Sequential or Parallel and must match len(Roles).
	Mode ExecutionMode

	// DependsOn names earlier stages whose outputs feed this stage.
	DependsOn []string

	// Aggregation names the policy merging parallel outputs. Required for
	// parallel stages; empty for sequential ones.
	Aggregation aggregate.Policy

	// QualityGate routes this stage's output through the quality assessor.
	QualityGate bool

	// LoopTarget names the earlier stage a failed gate re-enters. Empty
	// means the immediately preceding stage by convention.
	LoopTarget string
}

// Definition is one immutable strategy. Loaded at startup, shared read-only
// across concurrent runs.
type Definition struct {
	ID            int
	Name          string
	Description   string
	BestFor       string
	Stages        []StageSpec
	MaxIterations int
	Termination   TerminationMode
}

// FinalStage returns the name of the last stage, whose output becomes the
// session report.
func (d *Definition) FinalStage() string {
	return d.Stages[len(d.Stages)-1].Name
}

// Team returns all role ids across the definition's stages, in declaration
// order, without duplicates.
func (d *Definition) Team() []string {
	seen := make(map[string]bool)
	var team []string
	for _, st := range d.Stages {
		for _, r := range st.Roles {
			if !seen[r] {
				seen[r] = true
				team = append(team, r)
			}
		}
	}
	return team
}

// validate checks the structural invariants that make a definition safe to
// interpret: stage names unique, dependencies and loop targets resolve to
// earlier stages, execution mode matches role count, parallel stages name a
// valid aggregation policy.
func (d *Definition) validate() error {
	if d.ID < 1 {
		return fmt.Errorf("strategy %d: id must be positive", d.ID)
	}
	if len(d.Stages) == 0 {
		return fmt.Errorf("strategy %d: no stages", d.ID)
	}
	if d.MaxIterations < 1 {
		return fmt.Errorf("strategy %d: max iterations must be positive, got %d", d.ID, d.MaxIterations)
	}

	earlier := make(map[string]bool)
	for i, st := range d.Stages {
		if st.Name == "" {
			return fmt.Errorf("strategy %d: stage %d has no name", d.ID, i)
		}
		if earlier[st.Name] {
			return fmt.Errorf("strategy %d: duplicate stage %q", d.ID, st.Name)
		}
		if len(st.Roles) == 0 {
			return fmt.Errorf("strategy %d: stage %q has no roles", d.ID, st.Name)
		}
		switch st.Mode {
		case Sequential:
			if len(st.Roles) != 1 {
				return fmt.Errorf("strategy %d: sequential stage %q declares %d roles", d.ID, st.Name, len(st.Roles))
			}
		case Parallel:
			if len(st.Roles) < 2 {
				return fmt.Errorf("strategy %d: parallel stage %q declares %d roles", d.ID, st.Name, len(st.Roles))
			}
			if !st.Aggregation.Valid() {
				return fmt.Errorf("strategy %d: parallel stage %q has invalid aggregation %q", d.ID, st.Name, st.Aggregation)
			}
		default:
			return fmt.Errorf("strategy %d: stage %q has unknown mode %q", d.ID, st.Name, st.Mode)
		}
		for _, dep := range st.DependsOn {
			if !earlier[dep] {
				return fmt.Errorf("strategy %d: stage %q depends on %q which is not an earlier stage", d.ID, st.Name, dep)
			}
		}
		if st.QualityGate {
			if i == 0 {
				return fmt.Errorf("strategy %d: first stage %q cannot be a quality gate", d.ID, st.Name)
			}
			if st.LoopTarget != "" && !earlier[st.LoopTarget] {
				return fmt.Errorf("strategy %d: gate %q loops back to %q which is not an earlier stage", d.ID, st.Name, st.LoopTarget)
			}
		}
		earlier[st.Name] = true
	}
	return nil
}

// UnknownStrategyError reports a lookup outside the catalog.
type UnknownStrategyError struct {
	ID int
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %d: valid ids are 1-10", e.ID)
}

// Unwrap returns the base error for errors.Is compatibility.
func (e *UnknownStrategyError) Unwrap() error {
	return ErrUnknownStrategy
}
