package domscope

import "errors"

// Configuration errors.
var (
	// ErrNoHost is returned when no host is available after merging options with the default.
	ErrNoHost = errors.New("domscope: no host configured")

	// ErrNoSelector is returned by query methods when the host has no selector engine.
	ErrNoSelector = errors.New("domscope: host has no selector engine")
)

// Usage errors.
var (
	// ErrNilRoot is returned when a walk, collection or scope is requested on a nil root.
	ErrNilRoot = errors.New("domscope: root node is nil")

	// ErrDestroyed is returned by every Scope operation after Destroy.
	ErrDestroyed = errors.New("domscope: scope is already destroyed")

	// ErrPopulating is returned when a scope is read or updated from inside its own update pass.
	ErrPopulating = errors.New("domscope: scope is being populated")
)

// Validation errors, wrapped by *RefError.
var (
	ErrMissingRef = errors.New("domscope: missing reference")
	ErrRefType    = errors.New("domscope: reference has unexpected type")
)
