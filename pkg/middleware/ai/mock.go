package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// MockClient implements the Client interface for testing.
//
// Streams a canned response word by word, optionally failing before the
// first fragment or part-way through the stream to exercise partial
// failure handling.
type MockClient struct {
	response     string
	responses    []string // Multiple responses for sequential calls
	callCount    int
	streamDelay  time.Duration
	shouldError  bool
	errorMessage string
	failAfter    int    // fail after this many fragments (0 = never)
	lastInput    string // prompt most recently passed to Chat, for assertions
}

// NewMockClient creates a new mock client with a single canned response.
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// NewMockClientWithResponses creates a mock client with multiple responses,
// returned in order across calls.
func NewMockClientWithResponses(responses []string) *MockClient {
	return &MockClient{responses: responses}
}

// NewMockClientWithError creates a mock client that fails before streaming.
func NewMockClientWithError(errorMessage string) *MockClient {
	return &MockClient{shouldError: true, errorMessage: errorMessage}
}

// WithStreamDelay sets the delay between streamed words.
func (m *MockClient) WithStreamDelay(delay time.Duration) *MockClient {
	m.streamDelay = delay
	return m
}

// WithFailAfter makes Chat fail after streaming n fragments.
//
// Simulates a provider dropping the connection mid-generation.
func (m *MockClient) WithFailAfter(n int, errorMessage string) *MockClient {
	m.failAfter = n
	m.errorMessage = errorMessage
	return m
}

// LastInput returns the prompt most recently passed to Chat.
func (m *MockClient) LastInput() string {
	return m.lastInput
}

var _ Client = (*MockClient)(nil)

// Chat implements the Client interface with simulated streaming.
func (m *MockClient) Chat(req *ragbase.Request, res *ragbase.Response, _ *ChatOptions) error {
	if m.shouldError {
		return fmt.Errorf("mock error: %s", m.errorMessage)
	}

	var input string
	if err := ragbase.Read(req, &input); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	m.lastInput = strings.TrimSpace(input)

	response := m.response
	if len(m.responses) > 0 {
		response = m.responses[m.callCount%len(m.responses)]
		m.callCount++
	}

	return m.streamResponse(req, res, response)
}

// streamResponse writes the response word by word, honoring the configured
// delay, context cancellation, and the fail-after fault injection point.
func (m *MockClient) streamResponse(req *ragbase.Request, res *ragbase.Response, response string) error {
	words := strings.Fields(response)
	for i, word := range words {
		select {
		case <-req.Context.Done():
			return req.Context.Err()
		default:
		}

		if m.failAfter > 0 && i == m.failAfter {
			return fmt.Errorf("mock stream error: %s", m.errorMessage)
		}

		fragment := word
		if i > 0 {
			fragment = " " + word
		}
		if _, err := res.Data.Write([]byte(fragment)); err != nil {
			return err
		}

		if m.streamDelay > 0 {
			time.Sleep(m.streamDelay)
		}
	}
	return nil
}
