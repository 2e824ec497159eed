package domscope

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Host supplies the tree primitives walks run on. Navigation goes through the
// host rather than the node so that detached fragments and foreign trees can
// be walked with the same code.
type Host interface {
	Parent(n *html.Node) *html.Node
	FirstChild(n *html.Node) *html.Node
	NextSibling(n *html.Node) *html.Node
	IsElement(n *html.Node) bool
}

// Selector is implemented by hosts with a CSS selector engine.
type Selector interface {
	// QuerySelectorAll returns the descendants of root matching query, in
	// document order. root itself is never part of the result.
	QuerySelectorAll(root *html.Node, query string) ([]*html.Node, error)
}

// FragmentParser is implemented by hosts able to parse markup into detached nodes.
type FragmentParser interface {
	ParseFragment(r io.Reader) ([]*html.Node, error)
}

// HTMLHost is the x/net/html host. The zero value is ready to use.
type HTMLHost struct{}

// DefaultHost is the host of the built-in default configuration.
var DefaultHost Host = HTMLHost{}

func (HTMLHost) Parent(n *html.Node) *html.Node      { return n.Parent }
func (HTMLHost) FirstChild(n *html.Node) *html.Node  { return n.FirstChild }
func (HTMLHost) NextSibling(n *html.Node) *html.Node { return n.NextSibling }
func (HTMLHost) IsElement(n *html.Node) bool         { return n != nil && n.Type == html.ElementNode }

// QuerySelectorAll evaluates a selector group with cascadia.
func (HTMLHost) QuerySelectorAll(root *html.Node, query string) ([]*html.Node, error) {
	sel, err := cascadia.ParseGroup(query)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", query, err)
	}
	return cascadia.QueryAll(root, sel), nil
}

// ParseFragment parses markup in a <body> context.
func (HTMLHost) ParseFragment(r io.Reader) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(r, context)
}

// contains reports whether n lies in ancestor's subtree. Like the DOM
// method, a node contains itself.
func contains(h Host, ancestor, n *html.Node) bool {
	for p := n; p != nil; p = h.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// attr returns the value of key on n and whether it is present. The parser
// lowercases attribute names, so key is matched case-insensitively.
func attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
