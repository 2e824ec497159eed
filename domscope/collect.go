// CLAUDE:SUMMARY Single-pass collection of named references and child scope roots with anonymous naming.
package domscope

import (
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/net/html"
)

// RootRef is the reference name under which IncludeRoot exposes the root.
const RootRef = "root"

// Refs maps reference names to elements.
type Refs map[string]*html.Node

// DiagnosticKind classifies an integrity warning.
type DiagnosticKind string

const (
	DuplicateRef   DiagnosticKind = "duplicate-ref"
	DuplicateScope DiagnosticKind = "duplicate-scope"
)

// Diagnostic is a non-fatal integrity warning raised during collection.
type Diagnostic struct {
	Kind DiagnosticKind
	Name string
	Node *html.Node
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DuplicateRef:
		return fmt.Sprintf("reference %q is already used", d.Name)
	case DuplicateScope:
		return fmt.Sprintf("scope %q is already used", d.Name)
	}
	return fmt.Sprintf("%s %q", d.Kind, d.Name)
}

// Collection is the result of a single collection pass.
type Collection struct {
	Refs        Refs
	ScopeRefs   Refs
	Diagnostics []Diagnostic

	refOrder   []string
	scopeOrder []string
}

// RefNames returns the reference names in traversal order.
func (c *Collection) RefNames() []string {
	return append([]string(nil), c.refOrder...)
}

// ScopeNames returns the child scope names: explicit names in traversal
// order, then generated names in assignment order.
func (c *Collection) ScopeNames() []string {
	return append([]string(nil), c.scopeOrder...)
}

// Collect walks root once and gathers the references of root's scope along
// with the roots of its immediate child scopes. visit, when not nil, is
// called for every accepted element during the same pass.
func Collect(root *html.Node, visit func(*html.Node), opts ...Option) (*Collection, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	cfg, err := Resolve(opts...)
	if err != nil {
		return nil, err
	}
	return collect(root, visit, cfg), nil
}

func collect(root *html.Node, visit func(*html.Node), cfg *Config) *Collection {
	c := &Collection{
		Refs:      Refs{},
		ScopeRefs: Refs{},
	}
	var unnamed []*html.Node
	log := cfg.logger()

	walk(root, func(n *html.Node) {
		if name, ok := attr(n, cfg.RefAttr); ok && name != "" {
			if _, dup := c.Refs[name]; dup {
				c.warn(log, DuplicateRef, name, n)
			} else {
				c.addRef(name, n)
			}
		}

		if n != root {
			if name, ok := Classify(n, cfg); ok {
				switch _, dup := c.ScopeRefs[name]; {
				case name == "":
					unnamed = append(unnamed, n)
				case dup:
					c.warn(log, DuplicateScope, name, n)
					unnamed = append(unnamed, n)
				default:
					c.addScope(name, n)
				}
			}
		}

		if visit != nil {
			visit(n)
		}
	}, cfg)

	index := 0
	for _, n := range unnamed {
		name := cfg.AutoNamePrefix + strconv.Itoa(index)
		for c.ScopeRefs[name] != nil {
			index++
			name = cfg.AutoNamePrefix + strconv.Itoa(index)
		}
		c.addScope(name, n)
	}

	if cfg.IncludeRoot && cfg.Host.IsElement(root) {
		if _, ok := c.Refs[RootRef]; !ok {
			c.refOrder = append(c.refOrder, RootRef)
		}
		c.Refs[RootRef] = root
	}
	return c
}

func (c *Collection) addRef(name string, n *html.Node) {
	c.Refs[name] = n
	c.refOrder = append(c.refOrder, name)
}

func (c *Collection) addScope(name string, n *html.Node) {
	c.ScopeRefs[name] = n
	c.scopeOrder = append(c.scopeOrder, name)
}

func (c *Collection) warn(log *slog.Logger, kind DiagnosticKind, name string, n *html.Node) {
	c.Diagnostics = append(c.Diagnostics, Diagnostic{Kind: kind, Name: name, Node: n})
	log.Warn("domscope: "+string(kind), "name", name, "tag", n.Data)
}

// SelectNamedRefs collects the references of root's scope. With a non-nil
// annotation the result is narrowed to the annotated names (and the root
// reference, when included) and checked with CheckRefs.
func SelectNamedRefs(root *html.Node, ann Annotation, opts ...Option) (Refs, error) {
	c, err := Collect(root, nil, opts...)
	if err != nil {
		return nil, err
	}
	if ann == nil {
		return c.Refs, nil
	}
	refs := Refs{}
	for name, n := range c.Refs {
		if _, ok := ann[name]; ok || name == RootRef {
			refs[name] = n
		}
	}
	if err := CheckRefs(refs, ann); err != nil {
		return nil, err
	}
	return refs, nil
}
