// CLAUDE:SUMMARY Inspection service — parses markup, builds the scope tree and reports refs/scopes/diagnostics.
// Package inspect reports the scope tree of a piece of markup: every scope,
// its references and child scopes, and the integrity warnings raised while
// collecting them. It backs the CLI, the HTTP routes and the MCP tool.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/hazyhaar/domscope/domscope"
	"github.com/hazyhaar/domscope/fragment"
	"github.com/hazyhaar/domscope/guard"
	"github.com/hazyhaar/domscope/idgen"
	"github.com/hazyhaar/domscope/render"
)

// ErrInvalidInput is returned for requests that cannot be inspected.
var ErrInvalidInput = errors.New("inspect: invalid input")

// Request describes markup to inspect and per-request overrides.
type Request struct {
	HTML           string            `json:"html" yaml:"html"`
	RefAttr        string            `json:"ref_attr,omitempty" yaml:"ref_attr,omitempty"`
	ScopeAttr      string            `json:"scope_attr,omitempty" yaml:"scope_attr,omitempty"`
	AutoNamePrefix string            `json:"auto_name_prefix,omitempty" yaml:"auto_name_prefix,omitempty"`
	IncludeRoot    bool              `json:"include_root,omitempty" yaml:"include_root,omitempty"`
	Sanitize       bool              `json:"sanitize,omitempty" yaml:"sanitize,omitempty"`
	Markdown       bool              `json:"markdown,omitempty" yaml:"markdown,omitempty"`
	Annotation     map[string]string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

// Report is the result of an inspection.
type Report struct {
	ID          string       `json:"id" yaml:"id"`
	Root        *ScopeReport `json:"root" yaml:"root"`
	Diagnostics []string     `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	CheckError  string       `json:"check_error,omitempty" yaml:"check_error,omitempty"`
}

// ScopeReport describes one scope of the tree.
type ScopeReport struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Tag    string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Refs   []RefReport    `json:"refs" yaml:"refs"`
	Scopes []*ScopeReport `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// RefReport describes one reference.
type RefReport struct {
	Name     string `json:"name" yaml:"name"`
	Tag      string `json:"tag" yaml:"tag"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	Markdown string `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// Service inspects markup. Safe for concurrent use: every call builds its
// own tree.
type Service struct {
	logger *slog.Logger
	opts   []domscope.Option
	md     *render.Renderer
	newID  idgen.Generator
}

// Option configures a Service.
type Option func(*Service)

// WithScopeOptions sets the base configuration applied before request overrides.
func WithScopeOptions(opts ...domscope.Option) Option {
	return func(s *Service) { s.opts = append(s.opts, opts...) }
}

// WithIDGenerator sets the generator of report IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Service) { s.newID = gen }
}

// New creates a Service.
func New(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		logger: logger,
		md:     render.New(),
		newID:  idgen.Prefixed("insp_", idgen.UUIDv7()),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) scopeOptions(req *Request) []domscope.Option {
	opts := append([]domscope.Option{domscope.WithLogger(s.logger)}, s.opts...)
	if req.RefAttr != "" {
		opts = append(opts, domscope.WithRefAttr(req.RefAttr))
	}
	if req.ScopeAttr != "" {
		opts = append(opts, domscope.WithScopeAttr(req.ScopeAttr))
	}
	if req.AutoNamePrefix != "" {
		opts = append(opts, domscope.WithAutoNamePrefix(req.AutoNamePrefix))
	}
	if req.IncludeRoot {
		opts = append(opts, domscope.WithIncludeRoot(true))
	}
	return opts
}

// Inspect parses req.HTML and reports its scope tree. Markup is parsed as a
// fragment; an annotation failure is reported in CheckError, not as an error.
func (s *Service) Inspect(ctx context.Context, req *Request) (*Report, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ann, err := domscope.ParseAnnotation(req.Annotation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	opts := s.scopeOptions(req)
	parse := fragment.Parse
	if req.Sanitize {
		parse = fragment.ParseSanitized
	}
	root, err := parse(req.HTML, opts...)
	if err != nil {
		return nil, err
	}

	scope, err := domscope.New(root, opts...)
	if err != nil {
		return nil, err
	}
	defer scope.Destroy()

	b := &builder{ctx: ctx, md: s.md, markdown: req.Markdown}
	rep := &Report{ID: s.newID()}
	if rep.Root, err = b.scope(scope, "", &rep.Diagnostics); err != nil {
		return nil, err
	}
	if len(req.Annotation) > 0 {
		if err := scope.CheckRefs(ann); err != nil {
			rep.CheckError = err.Error()
		}
	}
	return rep, nil
}

func validate(req *Request) error {
	if req == nil || req.HTML == "" {
		return fmt.Errorf("%w: html is required", ErrInvalidInput)
	}
	if int64(len(req.HTML)) > guard.MaxInput {
		return fmt.Errorf("%w: %w", ErrInvalidInput, guard.ErrTooLarge)
	}
	for _, name := range []string{req.RefAttr, req.ScopeAttr} {
		if name == "" {
			continue
		}
		if err := guard.ValidateAttrName(name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil
}

// builder walks a scope tree into reports. IDs come from a per-report
// sequence so that identical input yields identical IDs.
type builder struct {
	ctx      context.Context
	md       *render.Renderer
	markdown bool
	seq      idgen.Sequence
}

func (b *builder) scope(s *domscope.Scope, name string, diags *[]string) (*ScopeReport, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	rep := &ScopeReport{ID: b.seq.Next("scope"), Name: name, Refs: []RefReport{}}
	if root := s.Root(); root.Type == html.ElementNode {
		rep.Tag = root.Data
	}

	diagnostics, err := s.Diagnostics()
	if err != nil {
		return nil, err
	}
	for _, d := range diagnostics {
		*diags = append(*diags, fmt.Sprintf("%s: %s", rep.ID, d))
	}

	refs, err := s.Refs()
	if err != nil {
		return nil, err
	}
	refNames, err := s.RefNames()
	if err != nil {
		return nil, err
	}
	for _, refName := range refNames {
		ref, err := b.ref(refName, refs[refName])
		if err != nil {
			return nil, err
		}
		rep.Refs = append(rep.Refs, ref)
	}

	children, err := s.Scopes()
	if err != nil {
		return nil, err
	}
	names, err := s.ScopeNames()
	if err != nil {
		return nil, err
	}
	for _, childName := range names {
		child, err := b.scope(children[childName], childName, diags)
		if err != nil {
			return nil, err
		}
		rep.Scopes = append(rep.Scopes, child)
	}
	return rep, nil
}

func (b *builder) ref(name string, n *html.Node) (RefReport, error) {
	r := RefReport{Name: name, Tag: n.Data, Text: render.Text(n)}
	if b.markdown {
		md, err := b.md.Markdown(n)
		if err != nil {
			return r, fmt.Errorf("ref %q: %w", name, err)
		}
		r.Markdown = md
	}
	return r, nil
}
