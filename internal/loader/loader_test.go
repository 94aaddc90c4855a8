package loader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func countingLoader(calls *int, attrs func(n int) map[string]any) LoaderFunc {
	return func(_ context.Context, name string) (*Module, error) {
		*calls++
		return &Module{Name: name, Path: []string{"/site/" + name}, Attrs: attrs(*calls)}, nil
	}
}

func TestImport_CachesModule(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register("guardrails.hub", countingLoader(&calls, func(int) map[string]any { return nil }))
	l := New(reg)

	first, err := l.Import(context.Background(), "guardrails.hub")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	second, err := l.Import(context.Background(), "guardrails.hub")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if first != second {
		t.Error("second Import should return the cached module")
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestImport_NotFound(t *testing.T) {
	l := New(NewRegistry())
	_, err := l.Import(context.Background(), "missing")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("error = %v, want ErrModuleNotFound", err)
	}
}

func TestImport_NilModule(t *testing.T) {
	reg := NewRegistry()
	reg.Register("empty", func(context.Context, string) (*Module, error) { return nil, nil })
	l := New(reg)

	if _, err := l.Import(context.Background(), "empty"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("Import() error = %v, want ErrModuleNotFound", err)
	}
	if _, err := l.Reload(context.Background(), "empty"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("Reload() error = %v, want ErrModuleNotFound", err)
	}
}

func TestReload_NilModule(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register("guardrails.hub", func(_ context.Context, name string) (*Module, error) {
		calls++
		if calls > 1 {
			return nil, nil
		}
		return &Module{Name: name}, nil
	})
	l := New(reg)

	if _, err := l.Import(context.Background(), "guardrails.hub"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if _, err := l.Reload(context.Background(), "guardrails.hub"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("Reload() error = %v, want ErrModuleNotFound", err)
	}
}

func TestImport_Fallback(t *testing.T) {
	reg := NewRegistry()
	reg.SetFallback(func(_ context.Context, name string) (*Module, error) {
		return &Module{Path: []string{"/usr/lib/python3/site-packages/" + name}}, nil
	})
	l := New(reg)

	m, err := l.Import(context.Background(), "pip")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if m.Name != "pip" {
		t.Errorf("Name = %q, want pip", m.Name)
	}
}

func TestReload_RefreshesInPlace(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register("guardrails.hub", countingLoader(&calls, func(n int) map[string]any {
		if n == 1 {
			return map[string]any{"A": true}
		}
		return map[string]any{"A": true, "TestValidator": true}
	}))
	l := New(reg)

	m, err := l.Import(context.Background(), "guardrails.hub")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if _, ok := m.Attr("TestValidator"); ok {
		t.Fatal("TestValidator should not be defined before reload")
	}

	reloaded, err := l.Reload(context.Background(), "guardrails.hub")
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if reloaded != m {
		t.Error("Reload should preserve module identity")
	}
	if _, ok := m.Attr("TestValidator"); !ok {
		t.Error("existing handle should observe the reloaded attributes")
	}
}

func TestReload_UsesModulesOwnLoader(t *testing.T) {
	reg := NewRegistry()
	original, replacement := 0, 0
	reg.Register("mod", countingLoader(&original, func(int) map[string]any { return nil }))
	l := New(reg)

	if _, err := l.Import(context.Background(), "mod"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	reg.Register("mod", countingLoader(&replacement, func(int) map[string]any { return nil }))

	if _, err := l.Reload(context.Background(), "mod"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if original != 2 || replacement != 0 {
		t.Errorf("original calls = %d, replacement calls = %d; want 2 and 0", original, replacement)
	}
}

func TestReload_NotCachedImports(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register("mod", countingLoader(&calls, func(int) map[string]any { return nil }))
	l := New(reg)

	m, err := l.Reload(context.Background(), "mod")
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if m == nil || calls != 1 {
		t.Fatalf("Reload() of uncached module: module=%v calls=%d", m, calls)
	}
	cached, _ := l.Import(context.Background(), "mod")
	if cached != m {
		t.Error("reloaded module should be cached")
	}
}

func TestReload_ErrorUnmodified(t *testing.T) {
	reg := NewRegistry()
	wantErr := errors.New("syntax error in module")
	fail := false
	reg.Register("mod", func(_ context.Context, name string) (*Module, error) {
		if fail {
			return nil, wantErr
		}
		return &Module{Name: name}, nil
	})
	l := New(reg)
	if _, err := l.Import(context.Background(), "mod"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	fail = true
	if _, err := l.Reload(context.Background(), "mod"); err != wantErr {
		t.Fatalf("Reload() error = %v, want %v", err, wantErr)
	}
}

func TestReload_ModulePutDirectlyInCache(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register("mod", countingLoader(&calls, func(int) map[string]any { return map[string]any{"X": 1} }))
	cache := NewMemoryCache()
	seeded := &Module{Name: "mod"}
	cache.Put("mod", seeded)
	l := New(reg, WithCache(cache))

	m, err := l.Reload(context.Background(), "mod")
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if m != seeded {
		t.Error("Reload should refresh the seeded module")
	}
	if _, ok := m.Attr("X"); !ok {
		t.Error("seeded module should have been refreshed")
	}
}

func TestModulePath(t *testing.T) {
	reg := NewRegistry()
	reg.Register("pip", func(_ context.Context, name string) (*Module, error) {
		return &Module{Name: name, Path: []string{filepath.Join("/usr", "lib", "site-packages", "pip"), "/other"}}, nil
	})
	reg.Register("plain", func(_ context.Context, name string) (*Module, error) {
		return &Module{Name: name}, nil
	})
	l := New(reg)

	got, err := l.ModulePath(context.Background(), "pip")
	if err != nil {
		t.Fatalf("ModulePath() error = %v", err)
	}
	if got != filepath.Join("/usr", "lib", "site-packages", "pip") {
		t.Errorf("ModulePath() = %q", got)
	}

	if _, err := l.ModulePath(context.Background(), "plain"); !errors.Is(err, ErrUnresolvableModulePath) {
		t.Errorf("error = %v, want ErrUnresolvableModulePath", err)
	}
	if _, err := l.ModulePath(context.Background(), "missing"); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("error = %v, want ErrModuleNotFound", err)
	}
}

func TestSitePackages(t *testing.T) {
	reg := NewRegistry()
	site := filepath.Join("/usr", "lib", "python3.11", "site-packages")
	reg.Register("pip", func(_ context.Context, name string) (*Module, error) {
		return &Module{Name: name, Path: []string{filepath.Join(site, "pip")}}, nil
	})

	got, err := New(reg).SitePackages(context.Background())
	if err != nil {
		t.Fatalf("SitePackages() error = %v", err)
	}
	if got != site {
		t.Errorf("SitePackages() = %q, want %q", got, site)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	m := &Module{Name: "a"}
	c.Put("a", m)
	if got, ok := c.Get("a"); !ok || got != m {
		t.Fatal("Get() after Put() should return the module")
	}
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get() after Invalidate() should miss")
	}
}
