package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domscope/idgen"
)

const page = `<div ref="a">Alpha</div>
<section scope-ref="s1"><p ref="b">Beta</p></section>
<div scope-ref><h1 ref="c">Gamma</h1></div>
<span ref="a">dup</span>`

func newTestService(t *testing.T) *Service {
	t.Helper()
	var seq idgen.Sequence
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, WithIDGenerator(seq.Generator("insp")))
}

func TestInspect_Tree(t *testing.T) {
	s := newTestService(t)
	rep, err := s.Inspect(context.Background(), &Request{HTML: page})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if rep.ID != "insp-0" {
		t.Errorf("report ID: got %q", rep.ID)
	}

	root := rep.Root
	if root.ID != "scope-0" || root.Tag != "" {
		t.Errorf("root: got id=%q tag=%q", root.ID, root.Tag)
	}
	if len(root.Refs) != 1 || root.Refs[0].Name != "a" || root.Refs[0].Text != "Alpha" {
		t.Fatalf("root refs: got %+v", root.Refs)
	}
	if len(root.Scopes) != 2 {
		t.Fatalf("root scopes: got %d, want 2", len(root.Scopes))
	}

	s1, anon := root.Scopes[0], root.Scopes[1]
	if s1.Name != "s1" || s1.Tag != "section" || s1.ID != "scope-1" {
		t.Errorf("first child: got %+v", s1)
	}
	if len(s1.Refs) != 1 || s1.Refs[0].Name != "b" || s1.Refs[0].Tag != "p" {
		t.Errorf("s1 refs: got %+v", s1.Refs)
	}
	if anon.Name != "$0" || anon.ID != "scope-2" {
		t.Errorf("second child: got %+v", anon)
	}
	if len(anon.Refs) != 1 || anon.Refs[0].Name != "c" {
		t.Errorf("anonymous refs: got %+v", anon.Refs)
	}

	if len(rep.Diagnostics) != 1 || !strings.Contains(rep.Diagnostics[0], `"a"`) {
		t.Errorf("diagnostics: got %v", rep.Diagnostics)
	}
}

func TestInspect_Deterministic(t *testing.T) {
	s := newTestService(t)
	a, err := s.Inspect(context.Background(), &Request{HTML: page})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Inspect(context.Background(), &Request{HTML: page})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("report IDs should differ")
	}
	a.ID, b.ID = "", ""
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Errorf("reports differ:\n%s\n%s", ja, jb)
	}
}

func TestInspect_Overrides(t *testing.T) {
	s := newTestService(t)
	rep, err := s.Inspect(context.Background(), &Request{
		HTML:           `<div><b data-ref="x">X</b><div data-scope=""><i data-ref="y">Y</i></div></div>`,
		RefAttr:        "data-ref",
		ScopeAttr:      "data-scope",
		AutoNamePrefix: "anon-",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Root.Refs) != 1 || rep.Root.Refs[0].Name != "x" {
		t.Errorf("refs: got %+v", rep.Root.Refs)
	}
	if len(rep.Root.Scopes) != 1 || rep.Root.Scopes[0].Name != "anon-0" {
		t.Fatalf("scopes: got %+v", rep.Root.Scopes)
	}
	if got := rep.Root.Scopes[0].Refs; len(got) != 1 || got[0].Name != "y" {
		t.Errorf("child refs: got %+v", got)
	}
}

func TestInspect_Markdown(t *testing.T) {
	s := newTestService(t)
	rep, err := s.Inspect(context.Background(), &Request{HTML: `<h1 ref="title">Hello</h1>`, Markdown: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := rep.Root.Refs[0].Markdown; got != "# Hello" {
		t.Errorf("markdown: got %q", got)
	}
}

func TestInspect_Sanitize(t *testing.T) {
	s := newTestService(t)
	rep, err := s.Inspect(context.Background(), &Request{
		HTML:     `<div ref="a" onclick="steal()">Safe<script>steal()</script></div>`,
		Sanitize: true,
		Markdown: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Root.Refs) != 1 || rep.Root.Refs[0].Name != "a" {
		t.Fatalf("refs: got %+v", rep.Root.Refs)
	}
	if strings.Contains(rep.Root.Refs[0].Markdown, "steal") {
		t.Errorf("script survived sanitising: %q", rep.Root.Refs[0].Markdown)
	}
}

func TestInspect_Annotation(t *testing.T) {
	s := newTestService(t)
	rep, err := s.Inspect(context.Background(), &Request{
		HTML:       page,
		Annotation: map[string]string{"a": "HTMLSpanElement"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rep.CheckError, `"a"`) {
		t.Errorf("check error: got %q", rep.CheckError)
	}

	rep, err = s.Inspect(context.Background(), &Request{
		HTML:       page,
		Annotation: map[string]string{"a": "HTMLDivElement"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.CheckError != "" {
		t.Errorf("check error: got %q", rep.CheckError)
	}
}

func TestInspect_InvalidInput(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	for name, req := range map[string]*Request{
		"nil":        nil,
		"empty":      {},
		"annotation": {HTML: page, Annotation: map[string]string{"a": "HTMLBogusElement"}},
		"ref attr":   {HTML: page, RefAttr: "bad attr"},
		"scope attr": {HTML: page, ScopeAttr: "9scope"},
	} {
		if _, err := s.Inspect(ctx, req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: got %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestInspect_Cancelled(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Inspect(ctx, &Request{HTML: page}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestRoutes(t *testing.T) {
	ts := httptest.NewServer(newTestService(t).Routes())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: got %d", resp.StatusCode)
	}

	body, _ := json.Marshal(Request{HTML: page})
	resp, err = http.Post(ts.URL+"/inspect", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inspect: got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	var rep Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if len(rep.Root.Scopes) != 2 {
		t.Errorf("scopes: got %d, want 2", len(rep.Root.Scopes))
	}
}

func TestRoutes_BadRequest(t *testing.T) {
	ts := httptest.NewServer(newTestService(t).Routes())
	t.Cleanup(ts.Close)

	for _, body := range []string{`{not json`, `{"html": ""}`} {
		resp, err := http.Post(ts.URL+"/inspect", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", body, resp.StatusCode)
		}
	}
}

func mcpSession(t *testing.T, s *Service) *mcp.ClientSession {
	t.Helper()
	impl := &mcp.Implementation{Name: "domscope-test", Version: "0.1.0"}
	srv := mcp.NewServer(impl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	session, err := mcp.NewClient(impl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestMCP_Inspect(t *testing.T) {
	session := mcpSession(t, newTestService(t))
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "domscope_inspect",
		Arguments: map[string]any{"html": page, "include_root": true},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if err := res.GetError(); err != nil {
		t.Fatalf("tool error: %v", err)
	}
	var rep Report
	if err := json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &rep); err != nil {
		t.Fatal(err)
	}
	if len(rep.Root.Scopes) != 2 {
		t.Errorf("scopes: got %d, want 2", len(rep.Root.Scopes))
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "domscope_inspect", Arguments: map[string]any{"html": ""}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.GetError() == nil {
		t.Fatal("empty html should be a tool error")
	}
}
