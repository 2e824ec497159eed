// CLAUDE:SUMMARY Plain-text and markdown rendering of referenced elements.
// Package render turns referenced elements into text for reports.
package render

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer converts element subtrees to markdown. Safe for concurrent use.
type Renderer struct {
	conv *converter.Converter
}

// New creates a Renderer with the commonmark and table plugins.
func New() *Renderer {
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Markdown renders n and its subtree as markdown.
func (r *Renderer) Markdown(n *html.Node) (string, error) {
	src, err := Outer(n)
	if err != nil {
		return "", err
	}
	md, err := r.conv.ConvertString(src)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// Outer serialises n and its subtree back to HTML.
func Outer(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text extracts the visible text of a subtree, one space between text runs.
// Script, style and template contents are skipped.
func Text(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}
