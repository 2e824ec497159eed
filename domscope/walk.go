package domscope

import "golang.org/x/net/html"

// Walk visits, in document order, every element under root that belongs to
// root's scope. Elements nested inside a descendant boundary are skipped
// together with their subtree; the boundary element itself is visited.
// With IncludeRoot an element root is visited first. A nil visit only
// traverses.
func Walk(root *html.Node, visit func(*html.Node), opts ...Option) error {
	if root == nil {
		return ErrNilRoot
	}
	cfg, err := Resolve(opts...)
	if err != nil {
		return err
	}
	walk(root, visit, cfg)
	return nil
}

func walk(root *html.Node, visit func(*html.Node), cfg *Config) {
	if visit == nil {
		visit = func(*html.Node) {}
	}
	w := &walker{root: root, host: cfg.Host, cfg: cfg, visit: visit}
	if cfg.IncludeRoot && w.host.IsElement(root) {
		visit(root)
	}
	w.descend(root)
}

type walker struct {
	root  *html.Node
	host  Host
	cfg   *Config
	visit func(*html.Node)
}

func (w *walker) descend(n *html.Node) {
	for c := w.host.FirstChild(n); c != nil; c = w.host.NextSibling(c) {
		if !w.host.IsElement(c) || w.rejects(c) {
			continue
		}
		w.visit(c)
		w.descend(c)
	}
}

// rejects reports whether n sits directly under a boundary other than the
// walk root. Deeper nodes never need the check: their boundary ancestor's
// children were already rejected.
func (w *walker) rejects(n *html.Node) bool {
	p := w.host.Parent(n)
	if p == nil || p == w.root {
		return false
	}
	_, ok := Classify(p, w.cfg)
	return ok
}
