// Package session drives one request/response cycle against the completion
// service and applies the streamed reply to a transcript.Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/diogo/zaril/internal/api"
	"github.com/diogo/zaril/internal/models"
	"github.com/diogo/zaril/internal/transcript"
)

var (
	// ErrEmptyInput is returned when the submitted text is blank
	ErrEmptyInput = errors.New("input is empty")
	// ErrBusy is returned while a previous submission is still streaming
	ErrBusy = errors.New("a response is still being generated")
)

// Completer opens a streamed completion for a conversation
type Completer interface {
	StreamChat(ctx context.Context, messages []models.Message) (api.FragmentStream, error)
}

// Controller owns the request lifecycle of one Store
type Controller struct {
	store      *transcript.Store
	completer  Completer
	logger     *log.Logger
	onFragment func(string)
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger used for failures
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithFragmentHook registers fn to be called with every applied fragment,
// after the Store has been updated.
func WithFragmentHook(fn func(string)) Option {
	return func(c *Controller) {
		c.onFragment = fn
	}
}

// NewController creates a Controller for store
func NewController(store *transcript.Store, completer Completer, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		completer: completer,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the Store the controller writes to
func (c *Controller) Store() *transcript.Store {
	return c.store
}

// Submit sends input as the next user turn and streams the reply into the
// Store. It blocks until the stream ends, fails or ctx is cancelled.
//
// Failures are logged and returned; the transcript keeps whatever was
// received before the failure and gains no error text. The Store is never
// left busy when Submit returns.
func (c *Controller) Submit(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}
	if !c.store.TryBegin() {
		return ErrBusy
	}
	defer c.store.SetBusy(false)

	c.store.AppendUser(input)
	c.store.SetInput("")
	conversation := c.store.Snapshot().Messages

	c.store.AppendAssistantPlaceholder()
	defer c.store.CloseTail()

	start := time.Now()
	received, err := c.stream(ctx, conversation)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Printf("completion cancelled after %d bytes", received)
		} else {
			c.logger.Printf("completion failed after %d bytes (%v): %v", received, time.Since(start).Round(time.Millisecond), err)
		}
		return err
	}
	return nil
}

// stream copies fragments into the Store and returns how many bytes arrived
func (c *Controller) stream(ctx context.Context, conversation []models.Message) (int, error) {
	s, err := c.completer.StreamChat(ctx, conversation)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	received := 0
	for {
		fragment, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return received, nil
		}
		if err != nil {
			return received, err
		}

		if err := c.store.AppendDelta(fragment); err != nil {
			return received, fmt.Errorf("apply fragment: %w", err)
		}
		received += len(fragment)

		if c.onFragment != nil {
			c.onFragment(fragment)
		}
	}
}
