package domscope

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ElementType is the expected type of a reference, modelled on the DOM
// interface hierarchy (HTMLElement, HTMLSpanElement, ...).
type ElementType interface {
	TypeName() string
	IsInstance(n *html.Node) bool
}

// Annotation maps reference names to their expected type.
type Annotation map[string]ElementType

type elementType struct {
	name string
	html bool        // restrict to the HTML namespace
	tags []atom.Atom // empty: any tag
	tag  string      // custom element name
}

func (t *elementType) TypeName() string { return t.name }

func (t *elementType) IsInstance(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if t.html && n.Namespace != "" {
		return false
	}
	if t.tag != "" {
		return n.Data == t.tag
	}
	if len(t.tags) == 0 {
		return true
	}
	for _, a := range t.tags {
		if n.DataAtom == a {
			return true
		}
	}
	return false
}

func htmlType(name string, tags ...atom.Atom) ElementType {
	return &elementType{name: name, html: true, tags: tags}
}

// Element matches any element, whatever its namespace.
var Element ElementType = &elementType{name: "Element"}

// Built-in HTML element types.
var (
	HTMLElement          = htmlType("HTMLElement")
	HTMLAnchorElement    = htmlType("HTMLAnchorElement", atom.A)
	HTMLButtonElement    = htmlType("HTMLButtonElement", atom.Button)
	HTMLDivElement       = htmlType("HTMLDivElement", atom.Div)
	HTMLFormElement      = htmlType("HTMLFormElement", atom.Form)
	HTMLHeadingElement   = htmlType("HTMLHeadingElement", atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)
	HTMLImageElement     = htmlType("HTMLImageElement", atom.Img)
	HTMLInputElement     = htmlType("HTMLInputElement", atom.Input)
	HTMLLabelElement     = htmlType("HTMLLabelElement", atom.Label)
	HTMLLIElement        = htmlType("HTMLLIElement", atom.Li)
	HTMLOListElement     = htmlType("HTMLOListElement", atom.Ol)
	HTMLParagraphElement = htmlType("HTMLParagraphElement", atom.P)
	HTMLSelectElement    = htmlType("HTMLSelectElement", atom.Select)
	HTMLSpanElement      = htmlType("HTMLSpanElement", atom.Span)
	HTMLTableElement     = htmlType("HTMLTableElement", atom.Table)
	HTMLTemplateElement  = htmlType("HTMLTemplateElement", atom.Template)
	HTMLTextAreaElement  = htmlType("HTMLTextAreaElement", atom.Textarea)
	HTMLUListElement     = htmlType("HTMLUListElement", atom.Ul)
)

var typesByName = map[string]ElementType{}

func init() {
	for _, t := range []ElementType{
		Element, HTMLElement, HTMLAnchorElement, HTMLButtonElement, HTMLDivElement,
		HTMLFormElement, HTMLHeadingElement, HTMLImageElement, HTMLInputElement,
		HTMLLabelElement, HTMLLIElement, HTMLOListElement, HTMLParagraphElement,
		HTMLSelectElement, HTMLSpanElement, HTMLTableElement, HTMLTemplateElement,
		HTMLTextAreaElement, HTMLUListElement,
	} {
		typesByName[t.TypeName()] = t
	}
}

// Tag returns the type of elements named tag, for custom elements such as
// "my-widget". Known HTML tags map to the matching built-in type.
func Tag(tag string) ElementType {
	tag = strings.ToLower(tag)
	if a := atom.Lookup([]byte(tag)); a != 0 {
		for _, t := range typesByName {
			if et, ok := t.(*elementType); ok && len(et.tags) == 1 && et.tags[0] == a {
				return t
			}
		}
		return &elementType{name: tag, html: true, tags: []atom.Atom{a}}
	}
	return &elementType{name: tag, html: true, tag: tag}
}

// TypeOf normalises the accepted spellings of an expected type: an
// ElementType, an atom.Atom, an interface name ("HTMLSpanElement"), a tag
// name ("span", "my-widget") or an example element whose tag is used.
func TypeOf(v any) (ElementType, error) {
	switch t := v.(type) {
	case ElementType:
		return t, nil
	case atom.Atom:
		if t == 0 {
			return nil, fmt.Errorf("domscope: empty atom")
		}
		return Tag(t.String()), nil
	case string:
		if t == "" {
			return nil, fmt.Errorf("domscope: empty type name")
		}
		if et, ok := typesByName[t]; ok {
			return et, nil
		}
		if strings.HasPrefix(t, "HTML") && strings.HasSuffix(t, "Element") {
			return nil, fmt.Errorf("domscope: unknown element type %q", t)
		}
		return Tag(t), nil
	case *html.Node:
		if t == nil || t.Type != html.ElementNode {
			return nil, fmt.Errorf("domscope: example node is not an element")
		}
		return Tag(t.Data), nil
	}
	return nil, fmt.Errorf("domscope: unsupported element type %T", v)
}

// ParseAnnotation builds an annotation from type names.
func ParseAnnotation(types map[string]string) (Annotation, error) {
	ann := make(Annotation, len(types))
	for name, typ := range types {
		t, err := TypeOf(typ)
		if err != nil {
			return nil, fmt.Errorf("annotation %q: %w", name, err)
		}
		ann[name] = t
	}
	return ann, nil
}

// RefError reports a reference failing an annotation check.
type RefError struct {
	Name string
	Want string
	Got  string // empty when the reference is missing
	err  error
}

func (e *RefError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("domscope: missing reference %q", e.Name)
	}
	return fmt.Sprintf("domscope: reference %q must be an instance of %s (actual: <%s>)", e.Name, e.Want, e.Got)
}

func (e *RefError) Unwrap() error { return e.err }

// CheckRefs verifies that every annotated name is present in refs with the
// expected type. Names are checked in sorted order and the first failure is
// returned. References absent from the annotation are ignored.
func CheckRefs(refs Refs, ann Annotation) error {
	names := make([]string, 0, len(ann))
	for name := range ann {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		want := ann[name]
		n := refs[name]
		if n == nil {
			return &RefError{Name: name, Want: typeName(want), err: ErrMissingRef}
		}
		if want != nil && !want.IsInstance(n) {
			return &RefError{Name: name, Want: want.TypeName(), Got: n.Data, err: ErrRefType}
		}
	}
	return nil
}

func typeName(t ElementType) string {
	if t == nil {
		return "any"
	}
	return t.TypeName()
}
