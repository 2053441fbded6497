// Package subagent builds and invokes the short-lived agent instances that
// execute workflow stages. Build is pure configuration assembly and never
// suspends; Invoke is the single place the system blocks on a model call.
package subagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/nami-dev/nami/agent"
	"github.com/nami-dev/nami/pkg/provider"
)

// Capability failure modes. Invoke never propagates these past its caller;
// it returns a failure-marked instance and the engine decides disposition.
var (
	// ErrCapabilityTimeout marks an invocation that exceeded its deadline.
	ErrCapabilityTimeout = errors.New("capability timeout")

	// ErrCapabilityError marks a backend error or empty output.
	ErrCapabilityError = errors.New("capability error")

	// ErrSchemaViolation marks output that did not match the role's
	// declared structured shape.
	ErrSchemaViolation = errors.New("schema violation")
)

// Instance is one agent bound to a role and task. Instances are created
// immediately before invocation and discarded after their output is folded
// into stage results; they are never reused across stages.
type Instance struct {
	ID   string
	Role agent.RoleSpec
	Task agent.Task

	// Output is set when the invocation succeeds.
	Output *agent.Output

	// Err marks a failed invocation; wraps one of the capability
	// failure sentinels.
	Err error

	// Duration is the wall-clock invocation time.
	Duration time.Duration
}

// Failed reports whether the instance resolved with a failure.
func (i *Instance) Failed() bool {
	return i.Err != nil
}

// Factory binds role specs to a provider and produces agent instances.
// One factory is shared by all runs; it owns the per-call deadline and the
// provider rate limit.
type Factory struct {
	provider    provider.Provider
	timeout     time.Duration
	temperature float64
	maxTokens   int
	limiter     *rate.Limiter
}

// Options configures a Factory.
type Options struct {
	// Timeout is the per-invocation deadline. Zero means no deadline.
	Timeout time.Duration

	// Temperature and MaxTokens are passed through to the provider.
	Temperature float64
	MaxTokens   int

	// InvokesPerMinute rate-limits provider calls. Zero means unlimited.
	InvokesPerMinute int
}

// NewFactory creates a factory bound to the given provider.
func NewFactory(p provider.Provider, opts Options) *Factory {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.InvokesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.InvokesPerMinute)/60.0), opts.InvokesPerMinute)
	}
	return &Factory{
		provider:    p,
		timeout:     opts.Timeout,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		limiter:     limiter,
	}
}

// Provider returns the bound provider.
func (f *Factory) Provider() provider.Provider {
	return f.provider
}

// Build assembles a pending instance for the given role and task. It is
// pure configuration work: catalog lookup plus binding, no I/O.
func (f *Factory) Build(roleID string, task agent.Task) (*Instance, error) {
	spec, ok := LookupRole(roleID)
	if !ok {
		return nil, fmt.Errorf("subagent: unknown role %q", roleID)
	}
	return &Instance{
		ID:   uuid.New().String(),
		Role: spec,
		Task: task,
	}, nil
}

// Invoke resolves a pending instance by calling the provider. All failure
// modes are absorbed into the returned instance's Err; Invoke itself only
// returns, never panics or raises.
func (f *Factory) Invoke(ctx context.Context, inst *Instance) *Instance {
	start := time.Now()
	defer func() { inst.Duration = time.Since(start) }()

	if err := f.limiter.Wait(ctx); err != nil {
		// Wait fails on cancellation too, not just deadline exhaustion.
		if errors.Is(err, context.Canceled) {
			inst.Err = fmt.Errorf("%w: %v", ErrCapabilityError, err)
		} else {
			inst.Err = fmt.Errorf("%w: %v", ErrCapabilityTimeout, err)
		}
		return inst
	}

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := f.provider.CreateCompletion(callCtx, provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: "system", Content: f.systemPrompt(inst.Role)},
			{Role: "user", Content: renderTask(inst.Task)},
		},
		Model:       inst.Task.Model,
		Temperature: f.temperature,
		MaxTokens:   f.maxTokens,
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			inst.Err = fmt.Errorf("%w: role %s: %v", ErrCapabilityTimeout, inst.Role.ID, err)
		case errors.Is(err, context.Canceled):
			inst.Err = fmt.Errorf("%w: role %s: %v", ErrCapabilityError, inst.Role.ID, err)
		default:
			inst.Err = fmt.Errorf("%w: role %s: %v", ErrCapabilityError, inst.Role.ID, err)
		}
		return inst
	}

	output, err := parseOutput(resp.Content, inst.Role.Format)
	if err != nil {
		inst.Err = err
		return inst
	}

	inst.Output = output
	return inst
}

// systemPrompt renders the role's instructions plus tool and format
// directives into a system message.
func (f *Factory) systemPrompt(role agent.RoleSpec) string {
	var sb strings.Builder
	sb.WriteString(role.Instructions)
	if len(role.Tools) > 0 {
		sb.WriteString("\n\nAvailable tools: ")
		sb.WriteString(strings.Join(role.Tools, ", "))
		sb.WriteString(".")
	}
	if role.Format == agent.FormatJSON {
		sb.WriteString("\n\nRespond with a single JSON object: " +
			`{"text": "<your findings>", "confidence": <0..1>, "sources": ["<url>", ...]}. ` +
			"No prose outside the JSON.")
	}
	return sb.String()
}

// renderTask serializes the task payload for the model. Upstream inputs are
// rendered in sorted key order so the prompt is stable across runs.
func renderTask(task agent.Task) string {
	var sb strings.Builder
	sb.WriteString("Topic: ")
	sb.WriteString(task.Topic)
	sb.WriteString("\n")

	if len(task.Inputs) > 0 {
		keys := make([]string, 0, len(task.Inputs))
		for k := range task.Inputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("\n--- %s ---\n%s\n", k, task.Inputs[k]))
		}
	}

	if len(task.Context) > 0 {
		sb.WriteString("\n--- reference material ---\n")
		for _, snippet := range task.Context {
			sb.WriteString(snippet)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// parseOutput converts raw model text into a structured Output according to
// the role's declared format.
func parseOutput(content string, format agent.OutputFormat) (*agent.Output, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty output", ErrCapabilityError)
	}

	if format != agent.FormatJSON {
		return &agent.Output{Text: content}, nil
	}

	// Models often wrap JSON in a fenced block; tolerate that.
	trimmed := content
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var out agent.Output
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, fmt.Errorf("%w: output is not valid JSON: %v", ErrSchemaViolation, err)
	}
	if out.Text == "" {
		return nil, fmt.Errorf("%w: structured output has no text field", ErrSchemaViolation)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %g outside [0,1]", ErrSchemaViolation, out.Confidence)
	}
	return &out, nil
}
