package api

import (
	"context"
	"io"
	"sync"

	"github.com/diogo/zaril/internal/models"
)

// MockStream is a FragmentStream that replays fixed fragments
type MockStream struct {
	Fragments []string
	// Err is returned after the fragments instead of io.EOF.
	Err error
	// Block makes Next wait for ctx after the fragments are exhausted.
	Block bool

	mu     sync.Mutex
	pos    int
	Closed bool
}

// Next implements FragmentStream
func (s *MockStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.pos < len(s.Fragments) {
		f := s.Fragments[s.pos]
		s.pos++
		s.mu.Unlock()
		return f, nil
	}
	s.mu.Unlock()

	if s.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

// Close implements FragmentStream
func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// IsClosed reports whether Close was called
func (s *MockStream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closed
}

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Mock return values
	Stream      FragmentStream
	StreamErr   error
	CompleteVal string
	CompleteErr error
	ModelsVal   []string
	ModelsErr   error
	Model       models.Model

	// Call recorders
	mu           sync.Mutex
	StreamCalls  int
	LastMessages []models.Message
	CloseCalled  bool
}

// Ensure MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)

func (m *MockClient) StreamChat(ctx context.Context, messages []models.Message) (FragmentStream, error) {
	m.mu.Lock()
	m.StreamCalls++
	m.LastMessages = append([]models.Message(nil), messages...)
	m.mu.Unlock()

	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	if m.Stream == nil {
		return &MockStream{}, nil
	}
	return m.Stream, nil
}

func (m *MockClient) Complete(ctx context.Context, messages []models.Message) (string, error) {
	m.mu.Lock()
	m.LastMessages = append([]models.Message(nil), messages...)
	m.mu.Unlock()
	return m.CompleteVal, m.CompleteErr
}

func (m *MockClient) ListModels(ctx context.Context) ([]string, error) {
	return m.ModelsVal, m.ModelsErr
}

func (m *MockClient) GetModel() models.Model {
	if m.Model.Name == "" {
		return models.DefaultModel
	}
	return m.Model
}

func (m *MockClient) SetModel(model models.Model) {
	m.Model = model
}

func (m *MockClient) Close() {
	m.CloseCalled = true
}

// Calls returns how many times StreamChat was called
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StreamCalls
}

// Messages returns the conversation passed to the last call
func (m *MockClient) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastMessages
}
