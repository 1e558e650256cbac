package backend

import (
	"context"
	"sync"
	"time"
)

// MockClient implements Client for testing. It can serve a queue of preset
// responses, fail a fixed number of times before succeeding, and records the
// wall-clock time of every Invoke so tests can assert backoff growth.
type MockClient struct {
	mu sync.Mutex

	responseText string
	responses    []string
	nextResponse int
	loop         bool

	failuresLeft int
	alwaysFail   bool
	failWith     *TransportError

	calls       int
	CallTimes   []time.Time
	LastPrompt  string
	LastParams  map[string]any
	PromptsSeen []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		responseText: "mock response",
		failWith:     NewTransportError(CategoryNetwork, "mock failure", nil),
	}
}

// SetResponse sets the default response returned on success.
func (m *MockClient) SetResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseText = text
}

// SetResponses queues responses to be returned in order. With loop set, the
// queue wraps around instead of falling back to the default response.
func (m *MockClient) SetResponses(responses []string, loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.nextResponse = 0
	m.loop = loop
}

// FailTimes makes the next n invocations fail before succeeding again.
func (m *MockClient) FailTimes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft = n
	m.alwaysFail = false
}

// AlwaysFail makes every invocation fail.
func (m *MockClient) AlwaysFail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alwaysFail = true
}

// FailWith sets the error returned on failure.
func (m *MockClient) FailWith(err *TransportError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Calls reports how many times Invoke ran.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClient) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewTransportError(CategoryTimeout, "context done before invoke", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.CallTimes = append(m.CallTimes, time.Now())
	m.LastPrompt = prompt
	m.LastParams = params
	m.PromptsSeen = append(m.PromptsSeen, prompt)

	if m.alwaysFail {
		return "", m.failWith
	}
	if m.failuresLeft > 0 {
		m.failuresLeft--
		return "", m.failWith
	}

	if len(m.responses) > 0 {
		if m.nextResponse >= len(m.responses) {
			if !m.loop {
				return m.responseText, nil
			}
			m.nextResponse = 0
		}
		resp := m.responses[m.nextResponse]
		m.nextResponse++
		return resp, nil
	}
	return m.responseText, nil
}
