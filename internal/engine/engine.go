// Package engine interprets strategy graphs. It is the central state
// machine of the system: one generic executor drives all ten strategies,
// sequencing stages, fanning out parallel groups under a bounded worker
// pool, folding outputs deterministically, and enforcing the iteration
// ceiling on quality-gated refinement loops.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nami-dev/nami/agent"
	"github.com/nami-dev/nami/internal/aggregate"
	tracing "github.com/nami-dev/nami/internal/observability"
	"github.com/nami-dev/nami/internal/quality"
	"github.com/nami-dev/nami/internal/strategy"
	"github.com/nami-dev/nami/internal/subagent"
	"github.com/nami-dev/nami/pkg/knowledge"
	metrics "github.com/nami-dev/nami/pkg/observability"
)

// Builder abstracts the subagent factory for the engine.
type Builder interface {
	Build(roleID string, task agent.Task) (*subagent.Instance, error)
	Invoke(ctx context.Context, inst *subagent.Instance) *subagent.Instance
}

// Options configures an Engine. The engine receives one immutable options
// value at construction and never reads ambient configuration.
type Options struct {
	// MaxConcurrentUnits bounds concurrent agent invocations across all
	// runs sharing this engine. Zero means 3.
	MaxConcurrentUnits int

	// QualityThreshold is the aggregate score a gated artifact must reach.
	// Zero means 7.0.
	QualityThreshold float64

	// Retriever optionally enriches task context. Nil omits enrichment.
	Retriever knowledge.Retriever
}

// Overrides carries per-run configuration. Zero values mean "use the
// strategy or engine default".
type Overrides struct {
	MaxIterations      int
	QualityThreshold   float64
	MaxConcurrentUnits int

	// Model rebinds every agent in the run to the named model.
	Model string
}

// Engine executes workflow runs. Safe for concurrent use: the registry is
// read-only, each run's state is owned by its driving goroutine, and the
// worker pool is the only shared mutable resource.
type Engine struct {
	registry  *strategy.Registry
	builder   Builder
	assessor  quality.Assessor
	retriever knowledge.Retriever
	pool      *semaphore.Weighted
	threshold float64
}

// New creates an engine over the given registry, factory, and assessor.
func New(registry *strategy.Registry, builder Builder, assessor quality.Assessor, opts Options) *Engine {
	units := opts.MaxConcurrentUnits
	if units <= 0 {
		units = 3
	}
	threshold := opts.QualityThreshold
	if threshold <= 0 {
		threshold = 7.0
	}
	return &Engine{
		registry:  registry,
		builder:   builder,
		assessor:  assessor,
		retriever: opts.Retriever,
		pool:      semaphore.NewWeighted(int64(units)),
		threshold: threshold,
	}
}

// run is the mutable state of one workflow execution. It is owned
// exclusively by the goroutine driving Run; no locking.
type run struct {
	id        string
	def       *strategy.Definition
	topic     string
	model     string
	outputs   map[string]string
	team      []string
	teamSeen  map[string]bool
	iteration int
	critique  string
	score     *quality.Score
	partial   bool
	below     bool
}

func (r *run) record(stage, text string) {
	r.outputs[stage] = text
}

func (r *run) invoked(roles ...string) {
	for _, role := range roles {
		if !r.teamSeen[role] {
			r.teamSeen[role] = true
			r.team = append(r.team, role)
		}
	}
}

// Run executes one strategy for one topic. It returns a SessionResult on
// normal completion (including below-threshold completion) and an error
// otherwise; abnormal stage failures are returned as a *FailureReport.
func (e *Engine) Run(ctx context.Context, strategyID int, topic string, ov Overrides) (*SessionResult, error) {
	def, err := e.registry.Get(strategyID)
	if err != nil {
		return nil, err
	}

	maxIter := def.MaxIterations
	if ov.MaxIterations > 0 {
		maxIter = ov.MaxIterations
	}
	threshold := e.threshold
	if ov.QualityThreshold > 0 {
		threshold = ov.QualityThreshold
	}
	pool := e.pool
	if ov.MaxConcurrentUnits > 0 {
		pool = semaphore.NewWeighted(int64(ov.MaxConcurrentUnits))
	}

	r := &run{
		id:        uuid.New().String(),
		def:       def,
		topic:     topic,
		model:     ov.Model,
		outputs:   make(map[string]string),
		teamSeen:  make(map[string]bool),
		iteration: 1,
	}
	started := time.Now()

	ctx, span := tracing.StartSpan(ctx, "engine.run",
		attribute.Int("strategy.id", strategyID),
		attribute.String("run.id", r.id),
	)
	defer span.End()

	log.Printf("[engine] run %s: strategy %d (%s), topic %q", r.id, def.ID, def.Name, topic)

	strategyLabel := fmt.Sprintf("%d", strategyID)
	for i := 0; i < len(def.Stages); {
		if ctx.Err() != nil {
			log.Printf("[engine] run %s: aborted before stage %q", r.id, def.Stages[i].Name)
			metrics.RecordRun(strategyLabel, string(StatusAborted), r.iteration, time.Since(started))
			return nil, fmt.Errorf("run aborted: %w", ctx.Err())
		}

		stage := def.Stages[i]
		stageStart := time.Now()

		text, partial, err := e.runStage(ctx, r, stage, pool)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[engine] run %s: aborted during stage %q", r.id, stage.Name)
				metrics.RecordRun(strategyLabel, string(StatusAborted), r.iteration, time.Since(started))
				return nil, fmt.Errorf("run aborted: %w", ctx.Err())
			}
			log.Printf("[engine] run %s: stage %q failed: %v", r.id, stage.Name, err)
			metrics.RecordRun(strategyLabel, string(StatusFailed), r.iteration, time.Since(started))
			return nil, &FailureReport{
				RunID:        r.id,
				Topic:        topic,
				StrategyID:   strategyID,
				Stage:        stage.Name,
				Cause:        err,
				StageOutputs: copyOutputs(r.outputs),
			}
		}
		metrics.RecordStage(strategyLabel, stage.Name, time.Since(stageStart))
		if partial {
			r.partial = true
		}

		if stage.QualityGate {
			advance, target := e.checkGate(ctx, r, stage, text, threshold, maxIter, strategyLabel)
			if !advance {
				i = stageIndex(def, target)
				continue
			}
		}

		r.record(stage.Name, text)
		i++
	}

	result := &SessionResult{
		RunID:            r.id,
		Topic:            topic,
		StrategyID:       strategyID,
		ReportText:       r.outputs[def.FinalStage()],
		Quality:          r.score,
		IterationsUsed:   r.iteration,
		AgentTeam:        r.team,
		StartedAt:        started,
		FinishedAt:       time.Now(),
		Status:           StatusComplete,
		BelowThreshold:   r.below,
		PartialConsensus: r.partial,
	}
	metrics.RecordRun(strategyLabel, string(StatusComplete), r.iteration, time.Since(started))
	log.Printf("[engine] run %s: complete, %d iterations, %d roles", r.id, r.iteration, len(r.team))
	return result, nil
}

// runStage executes one stage and returns its resolved text. The bool
// reports a partial merge. The returned text is not yet recorded; the
// caller records it after the gate check so a failed gate can discard it.
func (e *Engine) runStage(ctx context.Context, r *run, stage strategy.StageSpec, pool *semaphore.Weighted) (string, bool, error) {
	task := e.assembleTask(ctx, r, stage)

	if stage.Mode == strategy.Parallel {
		return e.runParallel(ctx, r, stage, pool, task)
	}

	role := stage.Roles[0]
	if err := pool.Acquire(ctx, 1); err != nil {
		return "", false, err
	}
	inst := e.invoke(ctx, role, task)
	pool.Release(1)

	r.invoked(role)
	if inst.Failed() {
		return "", false, fmt.Errorf("%w: stage %q: %w", ErrStageFailure, stage.Name, inst.Err)
	}
	return inst.Output.Text, false, nil
}

// runParallel fans out one agent per role, waits for the whole group, and
// folds the survivors in declared role order. A single surviving agent
// keeps the stage alive; only a fully failed group is a stage failure.
func (e *Engine) runParallel(ctx context.Context, r *run, stage strategy.StageSpec, pool *semaphore.Weighted, task agent.Task) (string, bool, error) {
	instances := make([]*subagent.Instance, len(stage.Roles))

	g, gctx := errgroup.WithContext(ctx)
	for idx, role := range stage.Roles {
		g.Go(func() error {
			if err := pool.Acquire(gctx, 1); err != nil {
				return err
			}
			defer pool.Release(1)
			instances[idx] = e.invoke(gctx, role, task)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", false, err
	}
	r.invoked(stage.Roles...)

	var contribs []aggregate.Contribution
	var failures []error
	for _, inst := range instances {
		if inst.Failed() {
			log.Printf("[engine] stage %q: role %s failed: %v", stage.Name, inst.Role.ID, inst.Err)
			failures = append(failures, fmt.Errorf("%s: %w", inst.Role.ID, inst.Err))
			continue
		}
		contribs = append(contribs, aggregate.Contribution{Role: inst.Role.ID, Output: inst.Output})
	}
	if len(contribs) == 0 {
		return "", false, fmt.Errorf("%w: stage %q: all %d agents failed: %w",
			ErrStageFailure, stage.Name, len(stage.Roles), errors.Join(failures...))
	}

	merged, err := aggregate.Merge(contribs, len(stage.Roles), stage.Aggregation)
	if err != nil {
		return "", false, fmt.Errorf("%w: stage %q: %v", ErrStageFailure, stage.Name, err)
	}
	return merged.Text, merged.PartialConsensus, nil
}

// invoke builds and resolves one agent instance, absorbing build errors
// into a failure-marked instance so parallel groups degrade per-agent.
func (e *Engine) invoke(ctx context.Context, role string, task agent.Task) *subagent.Instance {
	inst, err := e.builder.Build(role, task)
	if err != nil {
		return &subagent.Instance{
			Role: agent.RoleSpec{ID: role},
			Err:  fmt.Errorf("%w: %v", subagent.ErrCapabilityError, err),
		}
	}
	inst = e.builder.Invoke(ctx, inst)
	status := "ok"
	if inst.Failed() {
		status = "error"
	}
	metrics.RecordAgentInvocation(role, status, inst.Duration)
	return inst
}

// checkGate assesses the gate stage's pending output. It returns
// advance=true to record and move on, or advance=false with the loop
// target's name to re-enter. The assessor is fail-open: an unavailable
// critic skips refinement rather than stalling the run.
func (e *Engine) checkGate(ctx context.Context, r *run, stage strategy.StageSpec, text string, threshold float64, maxIter int, strategyLabel string) (bool, string) {
	score, err := e.assessor.Assess(ctx, text, quality.Rubric{Threshold: threshold, Model: r.model})
	if err != nil {
		log.Printf("[engine] run %s: assessor unavailable at gate %q, proceeding: %v", r.id, stage.Name, err)
		return true, ""
	}
	r.score = score
	metrics.RecordQuality(strategyLabel, score.Aggregate)

	if score.Passed {
		r.critique = ""
		return true, ""
	}

	if r.def.Termination == strategy.QualityGate && r.iteration < maxIter {
		r.iteration++
		r.critique = score.Critique
		target := stage.LoopTarget
		if target == "" {
			target = r.def.Stages[stageIndex(r.def, stage.Name)-1].Name
		}
		log.Printf("[engine] run %s: gate %q failed (%.1f < %.1f), iteration %d re-enters %q",
			r.id, stage.Name, score.Aggregate, threshold, r.iteration, target)
		return false, target
	}

	r.below = true
	log.Printf("[engine] run %s: gate %q failed (%.1f < %.1f), iteration ceiling reached, proceeding",
		r.id, stage.Name, score.Aggregate, threshold)
	return true, ""
}

func stageIndex(def *strategy.Definition, name string) int {
	for i, st := range def.Stages {
		if st.Name == name {
			return i
		}
	}
	return 0
}

// assembleTask builds the input payload for a stage: the topic, upstream
// stage outputs named by DependsOn, any pending critique, and optional
// knowledge-base snippets.
func (e *Engine) assembleTask(ctx context.Context, r *run, stage strategy.StageSpec) agent.Task {
	inputs := make(map[string]string, len(stage.DependsOn)+1)
	for _, dep := range stage.DependsOn {
		inputs[dep] = r.outputs[dep]
	}
	if r.critique != "" {
		inputs["critique"] = r.critique
	}

	var snippets []string
	if e.retriever != nil {
		var err error
		snippets, err = e.retriever.Retrieve(ctx, r.topic, 3)
		if err != nil {
			log.Printf("[engine] knowledge retrieval failed, continuing without: %v", err)
			snippets = nil
		}
	}

	return agent.Task{
		Topic:   r.topic,
		Inputs:  inputs,
		Context: snippets,
		Model:   r.model,
	}
}

func copyOutputs(outputs map[string]string) map[string]string {
	cp := make(map[string]string, len(outputs))
	for k, v := range outputs {
		cp[k] = v
	}
	return cp
}
