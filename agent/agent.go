package agent

import "context"

// Capability is the opaque unit of work behind every agent role.
// Implementations may call remote models, local models, or canned fixtures;
// the engine treats them all identically.
type Capability interface {
	// Invoke runs the role against the task and returns its structured
	// output. Blocking happens here and nowhere else in the system.
	Invoke(ctx context.Context, role RoleSpec, task Task) (*Output, error)

	// Name identifies the backing implementation (e.g. "openai", "mock").
	Name() string
}

// OutputFormat declares the shape a role's output must take.
type OutputFormat string

const (
	// FormatText accepts any non-empty text response.
	FormatText OutputFormat = "text"

	// FormatJSON requires the response to parse as a structured Output
	// document (text plus confidence and source metadata).
	FormatJSON OutputFormat = "json"
)

// RoleSpec configures one agent role. Specs are immutable catalog data;
// the same spec may be instantiated many times across runs.
type RoleSpec struct {
	// ID is the unique role identifier (lowercase, hyphenated).
	ID string

	// Description is a short summary used for delegation and display.
	Description string

	// Instructions is the role's system prompt.
	Instructions string

	// Tools names the tool capabilities the role may use. Tool invocation
	// is internal to the capability; the engine never observes it.
	Tools []string

	// Format is the required output shape. Empty means FormatText.
	Format OutputFormat
}

// Task is the input payload handed to a capability invocation.
type Task struct {
	// Topic is the research topic for the whole run.
	Topic string

	// Inputs carries upstream stage outputs keyed by stage name, in the
	// order the stage's dependencies were declared.
	Inputs map[string]string

	// Context holds optional retrieval-augmentation snippets. May be empty.
	Context []string

	// Model overrides the default model binding for this invocation.
	// Empty means the capability's configured default.
	Model string
}

// Output is the structured result of a capability invocation.
type Output struct {
	// Text is the produced artifact (findings, critique, report section).
	Text string `json:"text"`

	// Confidence is the agent's self-reported confidence in [0,1].
	// Zero when the role does not report confidence.
	Confidence float64 `json:"confidence,omitempty"`

	// Sources lists the source references backing the text.
	Sources []string `json:"sources,omitempty"`
}
