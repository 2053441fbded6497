package subagent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nami-dev/nami/agent"
	"github.com/nami-dev/nami/pkg/provider"
)

func TestBuildBindsRole(t *testing.T) {
	f := NewFactory(provider.NewMockProvider("mock"), Options{})

	inst, err := f.Build("writer", agent.Task{Topic: "tea"})
	require.NoError(t, err)
	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, "writer", inst.Role.ID)
	assert.Equal(t, "tea", inst.Task.Topic)
	assert.Nil(t, inst.Output)
	assert.False(t, inst.Failed())
}

func TestBuildUnknownRole(t *testing.T) {
	f := NewFactory(provider.NewMockProvider("mock"), Options{})

	_, err := f.Build("astrologer", agent.Task{Topic: "tea"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "astrologer")
}

func TestInvokePlainTextRole(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	mock.Responses = []*provider.CompletionResponse{{Content: "# Report\nFindings here."}}
	f := NewFactory(mock, Options{})

	inst, err := f.Build("writer", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(context.Background(), inst)
	require.False(t, inst.Failed(), "unexpected failure: %v", inst.Err)
	assert.Equal(t, "# Report\nFindings here.", inst.Output.Text)
	assert.Greater(t, inst.Duration, time.Duration(0))
}

func TestInvokeStructuredRole(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	mock.Responses = []*provider.CompletionResponse{{
		Content: "```json\n{\"text\": \"tea originated in china\", \"confidence\": 0.9, \"sources\": [\"https://example.org\"]}\n```",
	}}
	f := NewFactory(mock, Options{})

	inst, err := f.Build("researcher", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(context.Background(), inst)
	require.False(t, inst.Failed(), "unexpected failure: %v", inst.Err)
	assert.Equal(t, "tea originated in china", inst.Output.Text)
	assert.InDelta(t, 0.9, inst.Output.Confidence, 0.001)
	assert.Equal(t, []string{"https://example.org"}, inst.Output.Sources)
}

func TestInvokeSchemaViolation(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	mock.Responses = []*provider.CompletionResponse{{Content: "I found some things but forgot the format."}}
	f := NewFactory(mock, Options{})

	inst, err := f.Build("researcher", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(context.Background(), inst)
	require.True(t, inst.Failed())
	assert.ErrorIs(t, inst.Err, ErrSchemaViolation)
}

func TestInvokeBackendError(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	mock.Errors = []error{errors.New("upstream 500")}
	f := NewFactory(mock, Options{})

	inst, err := f.Build("writer", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(context.Background(), inst)
	require.True(t, inst.Failed())
	assert.ErrorIs(t, inst.Err, ErrCapabilityError)
}

func TestInvokeTimeout(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	mock.ResponseFn = func(req provider.CompletionRequest) (*provider.CompletionResponse, error) {
		return nil, context.DeadlineExceeded
	}
	f := NewFactory(mock, Options{Timeout: time.Millisecond})

	inst, err := f.Build("writer", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(context.Background(), inst)
	require.True(t, inst.Failed())
	assert.ErrorIs(t, inst.Err, ErrCapabilityTimeout)
}

func TestInvokeEmptyOutput(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	mock.Responses = []*provider.CompletionResponse{{Content: "   \n  "}}
	f := NewFactory(mock, Options{})

	inst, err := f.Build("writer", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(context.Background(), inst)
	require.True(t, inst.Failed())
	assert.ErrorIs(t, inst.Err, ErrCapabilityError)
}

func TestInvokeNeverPanicsPastCaller(t *testing.T) {
	// A cancelled context is absorbed into the instance like any other
	// capability failure.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFactory(provider.NewMockProvider("mock"), Options{})
	inst, err := f.Build("writer", agent.Task{Topic: "tea"})
	require.NoError(t, err)

	inst = f.Invoke(ctx, inst)
	assert.True(t, inst.Failed())
	assert.ErrorIs(t, inst.Err, ErrCapabilityError)
	assert.NotErrorIs(t, inst.Err, ErrCapabilityTimeout)
}

func TestInvokeRendersTaskPayload(t *testing.T) {
	mock := provider.NewMockProvider("mock")
	f := NewFactory(mock, Options{Temperature: 0.4, MaxTokens: 2048})

	inst, err := f.Build("writer", agent.Task{
		Topic:   "tea",
		Inputs:  map[string]string{"research": "tea is old", "critique": "cite sources"},
		Context: []string{"[notes.md] local notes"},
		Model:   "gpt-4o-mini",
	})
	require.NoError(t, err)
	f.Invoke(context.Background(), inst)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.InDelta(t, 0.4, req.Temperature, 0.001)
	assert.Equal(t, 2048, req.MaxTokens)

	require.Len(t, req.Messages, 2)
	system, user := req.Messages[0], req.Messages[1]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, user.Content, "Topic: tea")
	assert.Contains(t, user.Content, "--- research ---")
	assert.Contains(t, user.Content, "--- critique ---")
	assert.Contains(t, user.Content, "[notes.md] local notes")

	// Sorted key order keeps the prompt stable.
	assert.Less(t, strings.Index(user.Content, "--- critique ---"), strings.Index(user.Content, "--- research ---"))
}

func TestRoleCatalogCoversStrategyRoles(t *testing.T) {
	for _, id := range []string{
		"researcher", "researcher-1", "researcher-2", "researcher-3",
		"researcher-academic", "researcher-industry", "researcher-technical",
		"expert-academic", "expert-industry", "expert-technical",
		"live-researcher", "comparison-researcher",
		"mapper", "diver", "analyst", "synthesizer", "domain-synthesizer",
		"writer", "brief-writer", "recommender",
		"advocate", "skeptic", "judge", "critic",
	} {
		assert.True(t, KnownRole(id), "role %q missing from catalog", id)
		spec, ok := LookupRole(id)
		require.True(t, ok)
		assert.Equal(t, id, spec.ID)
		assert.NotEmpty(t, spec.Instructions)
	}
	assert.False(t, KnownRole("astrologer"))
}
