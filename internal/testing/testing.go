// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"
)

// MockSink is a test double for the title sink that records every call.
type MockSink struct {
	mu         sync.Mutex
	SetCalls   []string
	ClearCalls int
	SetErr     error
	ClearErr   error
}

func (m *MockSink) SetTitle(ctx context.Context, slot int, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.SetCalls = append(m.SetCalls, payload)
	return nil
}

func (m *MockSink) ClearTitle(ctx context.Context, slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.ClearCalls++
	return nil
}

// LastSet returns the most recent payload pushed to the sink.
func (m *MockSink) LastSet() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SetCalls) == 0 {
		return ""
	}
	return m.SetCalls[len(m.SetCalls)-1]
}

// StaticIdle is an idle provider returning a fixed duration.
type StaticIdle struct {
	Idle time.Duration
	Err  error
}

func (s *StaticIdle) IdleTime() (time.Duration, error) {
	return s.Idle, s.Err
}

// RecordingNotifier captures user-visible messages.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []string
}

func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
}

func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Messages)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
