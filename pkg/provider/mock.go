package provider

import (
	"context"
	"sync"
)

// MockProvider is a scripted provider for testing.
type MockProvider struct {
	name string

	// Responses are returned in order for successive requests.
	Responses []*CompletionResponse

	// Errors are checked before Responses; a non-nil entry fails the call.
	Errors []error

	// ResponseFn, when set, computes the response per request and takes
	// precedence over the scripted slices.
	ResponseFn func(request CompletionRequest) (*CompletionResponse, error)

	// Calls records every request received.
	Calls []CompletionRequest

	mu           sync.Mutex
	currentIndex int
}

// NewMockProvider creates a new mock provider.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	return m.name
}

// CreateCompletion implements Provider.
func (m *MockProvider) CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, request)

	if m.ResponseFn != nil {
		return m.ResponseFn(request)
	}

	idx := m.currentIndex
	m.currentIndex++

	if idx < len(m.Errors) && m.Errors[idx] != nil {
		return nil, m.Errors[idx]
	}
	if idx < len(m.Responses) {
		return m.Responses[idx], nil
	}

	// Default canned response keeps tests short.
	return &CompletionResponse{Content: "mock response", Model: "mock"}, nil
}

// CallCount returns the number of requests received.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
