package domscope

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.RefAttr != "ref" || cfg.ScopeAttr != "scope-ref" {
		t.Errorf("attrs: got %q/%q, want ref/scope-ref", cfg.RefAttr, cfg.ScopeAttr)
	}
	if cfg.AutoNamePrefix != "$" {
		t.Errorf("prefix: got %q, want %q", cfg.AutoNamePrefix, "$")
	}
	if cfg.IncludeRoot {
		t.Error("IncludeRoot should default to false")
	}
	if cfg.IsBoundary != nil {
		t.Error("IsBoundary should default to nil")
	}
	if cfg.Host == nil {
		t.Error("Host should default to DefaultHost")
	}
}

func TestResolve_OverridesDoNotLeak(t *testing.T) {
	t.Cleanup(ResetDefault)

	cfg, err := Resolve(WithRefAttr("x-ref"), WithIncludeRoot(true))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.RefAttr != "x-ref" || !cfg.IncludeRoot {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if d := Default(); d.RefAttr != "ref" || d.IncludeRoot {
		t.Errorf("default mutated by override: %+v", d)
	}
}

func TestResolve_NoHost(t *testing.T) {
	_, err := Resolve(WithHost(nil))
	if !errors.Is(err, ErrNoHost) {
		t.Fatalf("error: got %v, want ErrNoHost", err)
	}
}

func TestResolve_NoDefaultHost(t *testing.T) {
	t.Cleanup(ResetDefault)
	SetDefault(WithHost(nil))

	if _, err := Resolve(); !errors.Is(err, ErrNoHost) {
		t.Fatalf("error: got %v, want ErrNoHost", err)
	}
	if _, err := Resolve(WithHost(HTMLHost{})); err != nil {
		t.Fatalf("per-call host should win: %v", err)
	}
}

func TestSetDefault_AffectsLaterResolves(t *testing.T) {
	t.Cleanup(ResetDefault)

	before, _ := Resolve()
	SetDefault(WithAutoNamePrefix("anon-"))
	after, _ := Resolve()

	if before.AutoNamePrefix != "$" {
		t.Errorf("earlier config changed: %q", before.AutoNamePrefix)
	}
	if after.AutoNamePrefix != "anon-" {
		t.Errorf("prefix: got %q, want %q", after.AutoNamePrefix, "anon-")
	}
}

func TestUseDataAttributes(t *testing.T) {
	t.Cleanup(ResetDefault)

	UseDataAttributes(true)
	UseDataAttributes(true)
	d := Default()
	if d.RefAttr != "data-ref" || d.ScopeAttr != "data-scope-ref" {
		t.Fatalf("enabled: got %q/%q", d.RefAttr, d.ScopeAttr)
	}

	UseDataAttributes(false)
	d = Default()
	if d.RefAttr != "ref" || d.ScopeAttr != "scope-ref" {
		t.Fatalf("disabled: got %q/%q", d.RefAttr, d.ScopeAttr)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domscope.yaml")
	data := "ref_attr: ref\nscope_attr: scope\ninclude_root: true\ndata_attributes: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := Resolve(fc.Options()...)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.RefAttr != "data-ref" || cfg.ScopeAttr != "data-scope" {
		t.Errorf("attrs: got %q/%q, want data-ref/data-scope", cfg.RefAttr, cfg.ScopeAttr)
	}
	if !cfg.IncludeRoot {
		t.Error("include_root should be applied")
	}
	if cfg.AutoNamePrefix != "$" {
		t.Errorf("absent prefix should keep default, got %q", cfg.AutoNamePrefix)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
