// CLAUDE:SUMMARY Parses HTML markup into a detached fragment root, optionally sanitised with bluemonday.
// Package fragment turns HTML markup into a detached tree ready for
// domscope. The returned root is a document node standing in for a DOM
// DocumentFragment: it is not an element, so IncludeRoot never reports it.
package fragment

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/hazyhaar/domscope/domscope"
)

var (
	// ErrNilInput is returned by ParseReader for a nil reader.
	ErrNilInput = errors.New("fragment: input is nil")

	// ErrNoParser is returned when the configured host cannot parse markup.
	ErrNoParser = errors.New("fragment: host cannot parse fragments")
)

// Parse parses markup with the host resolved from opts.
func Parse(text string, opts ...domscope.Option) (*html.Node, error) {
	return ParseReader(strings.NewReader(text), opts...)
}

// ParseReader is Parse for a reader.
func ParseReader(r io.Reader, opts ...domscope.Option) (*html.Node, error) {
	if r == nil {
		return nil, ErrNilInput
	}
	cfg, err := domscope.Resolve(opts...)
	if err != nil {
		return nil, err
	}
	p, ok := cfg.Host.(domscope.FragmentParser)
	if !ok {
		return nil, ErrNoParser
	}
	nodes, err := p.ParseFragment(r)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		root.AppendChild(n)
	}
	return root, nil
}

// ParseSanitized strips scripts, event handlers and other unsafe markup
// before parsing. The reference and scope attributes of the resolved
// configuration survive sanitising.
func ParseSanitized(text string, opts ...domscope.Option) (*html.Node, error) {
	cfg, err := domscope.Resolve(opts...)
	if err != nil {
		return nil, err
	}
	return Parse(Policy(cfg).Sanitize(text), opts...)
}

// Policy returns the sanitising policy for cfg: bluemonday's UGC policy plus
// the attributes domscope reads.
func Policy(cfg *domscope.Config) *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs(cfg.RefAttr, cfg.ScopeAttr, "id").Globally()
	return p
}
