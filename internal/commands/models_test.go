package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/diogo/zaril/internal/api"
	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/models"
)

func TestModelsCmd(t *testing.T) {
	isolate(t)

	client := &api.MockClient{ModelsVal: []string{"whisper-large-v3", models.DefaultModel.Name, "gemma2-9b-it"}}
	deps := newTestDeps(client)
	cmd := NewModelsCmd(deps.Dependencies)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), out.String())
	}
	if strings.TrimSpace(lines[0]) != "gemma2-9b-it" {
		t.Errorf("models are not sorted: %q", lines)
	}
	if !strings.Contains(out.String(), "* "+models.DefaultModel.Name) {
		t.Errorf("current model not marked: %q", out.String())
	}
	if !client.CloseCalled {
		t.Error("client was not closed")
	}
}

func TestModelsCmd_Error(t *testing.T) {
	isolate(t)

	deps := newTestDeps(&api.MockClient{ModelsErr: apierrors.NewStatusError(503, "/models", "unavailable", "")})
	cmd := NewModelsCmd(deps.Dependencies)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(deps.stderr.String(), "503") {
		t.Errorf("stderr = %q, want the HTTP status", deps.stderr.String())
	}
}
