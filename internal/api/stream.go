package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/models"
)

// maxEventSize bounds a single server-sent event line
const maxEventSize = 1 << 20

// FragmentStream yields the text fragments of one streamed completion.
// Next returns io.EOF once the stream has ended normally.
type FragmentStream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Stream reads a server-sent event completion stream
type Stream struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	endpoint string

	finished bool
	err      error
	once     sync.Once
}

// NewStream wraps an SSE response body
func NewStream(body io.ReadCloser, endpoint string) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &Stream{
		body:     body,
		scanner:  scanner,
		endpoint: endpoint,
	}
}

// Next returns the next non-empty content fragment. Once Next has returned an
// error, every later call returns the same error.
func (s *Stream) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	fragment, err := s.next(ctx)
	if err != nil {
		s.err = err
	}
	return fragment, err
}

func (s *Stream) next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return "", apierrors.NewParseError("stream event too large", s.endpoint)
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					return "", ctxErr
				}
				return "", apierrors.FromTransport("stream", s.endpoint, err)
			}
			if s.finished {
				return "", io.EOF
			}
			return "", apierrors.NewNetworkErrorWithEndpoint("stream", s.endpoint, io.ErrUnexpectedEOF)
		}

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 || line[0] == ':' {
			continue
		}

		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			// event:, id: and retry: fields carry nothing we use
			continue
		}
		data = bytes.TrimSpace(data)

		if string(data) == models.StreamDone {
			return "", io.EOF
		}

		if !gjson.ValidBytes(data) {
			return "", apierrors.NewParseError("stream event is not valid JSON", s.endpoint)
		}

		if msg := gjson.GetBytes(data, PathErrorMessage); msg.Exists() {
			return "", apierrors.NewAPIErrorWithBody(0, s.endpoint, msg.String(), string(data))
		}

		if reason := gjson.GetBytes(data, PathFinishReason); reason.Exists() && reason.Type != gjson.Null {
			s.finished = true
		}

		if content := gjson.GetBytes(data, PathDeltaContent).String(); content != "" {
			return content, nil
		}
	}
}

// Close releases the response body. It is safe to call more than once.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		err = s.body.Close()
	})
	return err
}

// chatRequest is the body of a chat completions request
type chatRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	Stream   bool             `json:"stream"`
}

func (c *Client) buildPayload(messages []models.Message, stream bool) (*bytes.Reader, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}
	payload, err := json.Marshal(chatRequest{
		Model:    c.GetModel().Name,
		Messages: messages,
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

// StreamChat starts a streamed completion for the given conversation. The
// returned stream must be closed by the caller.
func (c *Client) StreamChat(ctx context.Context, messages []models.Message) (FragmentStream, error) {
	endpoint := c.baseURL + models.PathCompletions

	body, err := c.buildPayload(messages, true)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body, models.StreamHeaders())
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, "stream", endpoint)
	if err != nil {
		return nil, err
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "text/event-stream") {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewParseError(fmt.Sprintf("unexpected content type %q: %s", ct, raw), endpoint)
	}

	return NewStream(resp.Body, endpoint), nil
}
