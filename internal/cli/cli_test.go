package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/config"
	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

type fakeRunner struct {
	docs []document.Document
	err  error
	got  retrieval.Request
}

func (f *fakeRunner) Retrieve(_ context.Context, req retrieval.Request) ([]document.Document, error) {
	f.got = req
	return f.docs, f.err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := "http:\n  port: 8080\nindex:\n  name: docs\nredis:\n  addrs: [localhost:6379]\n" +
		"embedding:\n  model: text-embedding-3-small\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, runner *fakeRunner, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	closed := false
	factory := func(context.Context, config.Config, *zap.Logger) (retrieval.Runner, func(), error) {
		return runner, func() { closed = true }, nil
	}
	cmd := newRootCmd(factory)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env", "test", "--config", writeConfig(t)}, args...))

	err := cmd.Execute()
	if runner != nil && runner.got.Queries != nil && !closed {
		t.Error("runner must be released")
	}
	return out.String(), err
}

func TestQuery_PrintsDocuments(t *testing.T) {
	runner := &fakeRunner{docs: []document.Document{
		document.New("alpha", map[string]any{"data_source": "b360"}),
		document.New("beta", nil),
	}}

	out, err := execute(t, runner,
		"query", "-q", "first", "-q", "second",
		"--scope", "set_number=abc", "-s", "member_id=42",
		"--retriever", "semantic", "--routed",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := retrieval.Request{
		Queries:   []string{"first", "second"},
		Scope:     scope.Scope{"set_number": "abc", "member_id": "42"},
		Retriever: "semantic",
		Routed:    true,
	}
	if diff := cmp.Diff(want, runner.got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}

	var got queryOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	wantOut := queryOutput{
		Documents: []documentOutput{
			{Content: "alpha", Metadata: map[string]any{"data_source": "b360"}},
			{Content: "beta", Metadata: map[string]any{}},
		},
		Count: 2,
	}
	if diff := cmp.Diff(wantOut, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_RequiresQuery(t *testing.T) {
	runner := &fakeRunner{}
	if _, err := execute(t, runner, "query"); err == nil {
		t.Fatal("expected error without -q")
	}
}

func TestQuery_BadScope(t *testing.T) {
	for _, arg := range []string{"noequals", "=value"} {
		if _, err := execute(t, &fakeRunner{}, "query", "-q", "x", "--scope", arg); err == nil {
			t.Errorf("expected error for --scope %q", arg)
		}
	}
}

func TestQuery_RetrievalError(t *testing.T) {
	runner := &fakeRunner{err: &domain.UnsupportedRetrieverError{Name: "bm25"}}
	_, err := execute(t, runner, "query", "-q", "x", "-r", "bm25")
	if !errors.Is(err, domain.ErrUnsupportedRetriever) {
		t.Fatalf("expected ErrUnsupportedRetriever, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "retrievectl dev") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestScopeFlag_String(t *testing.T) {
	var f scopeFlag
	for _, v := range []string{"b=2", "a=1", "c=x=y"} {
		if err := f.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.String(); got != "a=1,b=2,c=x=y" {
		t.Errorf("got %q", got)
	}
	if f.Type() != "key=value" {
		t.Errorf("unexpected type %q", f.Type())
	}
}
