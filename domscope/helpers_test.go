package domscope

import (
	"maps"
	"slices"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nestedHTML has two top-level refs and two named scopes, the second one
// holding two nested scopes of its own.
const nestedHTML = `
<span ref="a" id="a">a</span>
<span ref="b" id="b">b</span>

<div scope-ref="my-scope-1" id="s1">
	<span ref="a" id="s1a">a/1</span>
	<span ref="b" id="s1b">b/1</span>
</div>

<div scope-ref="my-scope-2" id="s2">
	<span ref="a" id="s2a">a/2</span>
	<span ref="b" id="s2b">b/2</span>
	<span id="foo">foo</span>

	<div scope-ref="my-scope" id="s21">
		<span ref="a" id="s21a">a/2/1</span>
		<span ref="b" id="s21b">b/2/1</span>
	</div>

	<div scope-ref="my-scope-2" id="s22">
		<span ref="a" id="s22a">a/2/2</span>
		<span ref="b" id="s22b">b/2/2</span>
	</div>
</div>
`

// parseBody parses markup as the content of <body> and returns the body.
func parseBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body>" + markup + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		t.Fatal("parse: no body")
	}
	return body
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// byID returns the element with the given id under root, failing the test when absent.
func byID(t *testing.T, root *html.Node, id string) *html.Node {
	t.Helper()
	n := findFirst(root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	if n == nil {
		t.Fatalf("no element with id %q", id)
	}
	return n
}

func idOf(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	v, _ := attr(n, "id")
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

