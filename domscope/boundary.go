package domscope

import "golang.org/x/net/html"

// Classify returns the scope name n declares. ok is false when n is not a
// boundary; ("", true) marks an anonymous boundary.
//
// With cfg.IsBoundary set its result is returned as is. Otherwise the
// cfg.ScopeAttr attribute decides: absent means no boundary, empty means
// anonymous, any other value is the scope name.
func Classify(n *html.Node, cfg *Config) (name string, ok bool) {
	if cfg.IsBoundary != nil {
		return cfg.IsBoundary(n, cfg)
	}
	return attr(n, cfg.ScopeAttr)
}
