package commands

import (
	"bytes"
	"sync"
	"testing"

	"github.com/diogo/zaril/internal/api"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/tui"
)

// isolate points the config at an empty home directory and resets the
// package-level flags after the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ZARIL_MODEL", "")
	t.Setenv("ZARIL_BASE_URL", "")

	oldModel, oldOutput, oldFile, oldNoStream := modelFlag, outputFlag, fileFlag, noStreamFlag
	t.Cleanup(func() {
		modelFlag, outputFlag, fileFlag, noStreamFlag = oldModel, oldOutput, oldFile, oldNoStream
	})
	modelFlag, outputFlag, fileFlag, noStreamFlag = "", "", "", false
}

type fakeTUI struct {
	calls     int
	ctrl      *session.Controller
	modelName string
	opts      []tui.ModelOption
	err       error
}

func (f *fakeTUI) RunChat(ctrl *session.Controller, modelName string, opts ...tui.ModelOption) error {
	f.calls++
	f.ctrl = ctrl
	f.modelName = modelName
	f.opts = opts
	return f.err
}

type testDeps struct {
	*Dependencies
	stderr *lockedBuffer
	copied []string
	client *api.MockClient
	chatUI *fakeTUI
}

func newTestDeps(client *api.MockClient) *testDeps {
	td := &testDeps{
		stderr: &lockedBuffer{},
		client: client,
		chatUI: &fakeTUI{},
	}
	td.Dependencies = &Dependencies{
		Client: client,
		TUI:    td.chatUI,
		Stderr: td.stderr,
		Clipboard: func(s string) error {
			td.copied = append(td.copied, s)
			return nil
		},
	}
	return td
}

// lockedBuffer is a bytes.Buffer safe for writers on other goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
