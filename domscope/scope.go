// CLAUDE:SUMMARY Scope tree node — lazy population, child scopes, scoped queries, containment, destroy.
// Package domscope collects named element references from HTML trees while
// honouring nested scope boundaries.
//
// An element carrying the reference attribute ("ref" by default) is reachable
// by name from the nearest enclosing scope. An element carrying the scope
// attribute ("scope-ref") starts a nested scope: its descendants are hidden
// from the enclosing scope and collected by a child Scope instead.
//
//	<span ref="a"></span>
//	<div scope-ref="s"><span ref="a"></span></div>
//
// Usage:
//
//	s, err := domscope.New(root)
//	refs, err := s.Refs()     // {"a": first span}
//	kids, err := s.Scopes()   // {"s": Scope rooted at the div}
package domscope

import (
	"maps"

	"golang.org/x/net/html"
)

type state int

const (
	unpopulated state = iota
	populating
	populated
	destroyed
)

// Scope is one encapsulated region of an HTML tree. References and child
// scopes are collected on first access and re-collected by Update.
// A Scope is not safe for concurrent use.
type Scope struct {
	root  *html.Node
	cfg   *Config
	state state

	refs        Refs
	refOrder    []string
	scopes      map[string]*Scope
	scopeOrder  []string
	diagnostics []Diagnostic
}

// New returns a scope rooted at root. opts override the default configuration
// for this scope and every child scope created from it.
func New(root *html.Node, opts ...Option) (*Scope, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	cfg, err := Resolve(opts...)
	if err != nil {
		return nil, err
	}
	return newScope(root, cfg), nil
}

func newScope(root *html.Node, cfg *Config) *Scope {
	return &Scope{root: root, cfg: cfg}
}

// Root returns the root node, or nil once the scope is destroyed.
func (s *Scope) Root() *html.Node { return s.root }

// Config returns a copy of the resolved configuration. The configuration is
// shared read-only with child scopes; edits to the copy affect no scope.
// The zero Config is returned once the scope is destroyed.
func (s *Scope) Config() Config {
	if s.cfg == nil {
		return Config{}
	}
	return *s.cfg
}

// IsDestroyed reports whether Destroy was called.
func (s *Scope) IsDestroyed() bool { return s.state == destroyed }

func (s *Scope) ensure() error {
	switch s.state {
	case destroyed:
		return ErrDestroyed
	case populating:
		return ErrPopulating
	case unpopulated:
		return s.Update(nil)
	}
	return nil
}

// Refs returns a copy of the reference map.
func (s *Scope) Refs() (Refs, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return maps.Clone(s.refs), nil
}

// Scopes returns a copy of the child scope map.
func (s *Scope) Scopes() (map[string]*Scope, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return maps.Clone(s.scopes), nil
}

// RefNames returns the reference names in traversal order.
func (s *Scope) RefNames() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return append([]string(nil), s.refOrder...), nil
}

// ScopeNames returns the child scope names in collection order.
func (s *Scope) ScopeNames() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return append([]string(nil), s.scopeOrder...), nil
}

// Diagnostics returns the integrity warnings of the last collection.
func (s *Scope) Diagnostics() ([]Diagnostic, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return append([]Diagnostic(nil), s.diagnostics...), nil
}

// Update re-collects references and child scopes from the live tree. Child
// scopes are always rebuilt. visit, when not nil, is called for every element
// of the scope during the same pass.
func (s *Scope) Update(visit func(*html.Node)) error {
	switch s.state {
	case destroyed:
		return ErrDestroyed
	case populating:
		return ErrPopulating
	}

	prev := s.state
	s.state = populating
	defer func() {
		if s.state == populating {
			s.state = prev
		}
	}()

	c := collect(s.root, visit, s.cfg)
	scopes := make(map[string]*Scope, len(c.ScopeRefs))
	for name, n := range c.ScopeRefs {
		scopes[name] = newScope(n, s.cfg)
	}

	s.refs = c.Refs
	s.refOrder = c.refOrder
	s.scopes = scopes
	s.scopeOrder = c.scopeOrder
	s.diagnostics = c.Diagnostics
	s.state = populated
	return nil
}

// QuerySelector returns the first element matching query that belongs to
// this scope, or nil when there is none.
func (s *Scope) QuerySelector(query string) (*html.Node, error) {
	found, err := s.QuerySelectorAll(query)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// QuerySelectorAll returns the elements matching query that belong to this
// scope: descendants of the root, the roots of child scopes included, but
// nothing inside a child scope.
func (s *Scope) QuerySelectorAll(query string) ([]*html.Node, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	sel, ok := s.cfg.Host.(Selector)
	if !ok {
		return nil, ErrNoSelector
	}
	found, err := sel.QuerySelectorAll(s.root, query)
	if err != nil {
		return nil, err
	}
	var result []*html.Node
	for _, n := range found {
		if s.claims(n) {
			result = append(result, n)
		}
	}
	return result, nil
}

// Contains reports whether n belongs to this scope rather than to a nested
// one. The roots of child scopes belong to this scope. With onlyChildScopes
// the structural check against the root is skipped and only child scopes
// are consulted.
func (s *Scope) Contains(n *html.Node, onlyChildScopes bool) (bool, error) {
	if err := s.ensure(); err != nil {
		return false, err
	}
	if !onlyChildScopes && !contains(s.cfg.Host, s.root, n) {
		return false, nil
	}
	return s.claims(n), nil
}

func (s *Scope) claims(n *html.Node) bool {
	if n == nil {
		return false
	}
	for _, child := range s.scopes {
		if child.root == n {
			return true
		}
		if contains(s.cfg.Host, child.root, n) {
			return false
		}
	}
	return true
}

// Walk visits the elements of this scope without collecting anything.
// A nil visit only traverses.
func (s *Scope) Walk(visit func(*html.Node)) error {
	if s.state == destroyed {
		return ErrDestroyed
	}
	walk(s.root, visit, s.cfg)
	return nil
}

// IsScopeElement reports whether n declares a scope, named or anonymous.
func (s *Scope) IsScopeElement(n *html.Node) (bool, error) {
	if s.state == destroyed {
		return false, ErrDestroyed
	}
	_, ok := Classify(n, s.cfg)
	return ok, nil
}

// CheckRefs verifies the scope's references against ann.
func (s *Scope) CheckRefs(ann Annotation) error {
	if err := s.ensure(); err != nil {
		return err
	}
	return CheckRefs(s.refs, ann)
}

// Destroy releases the root and the collected state. Every later call
// except Destroy, Root and IsDestroyed fails with ErrDestroyed.
func (s *Scope) Destroy() {
	s.state = destroyed
	s.root = nil
	s.cfg = nil
	s.refs = nil
	s.refOrder = nil
	s.scopes = nil
	s.scopeOrder = nil
	s.diagnostics = nil
}
