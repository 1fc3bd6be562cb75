package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[index]
patterns = ["./app/..."]
tags = ["integration"]

[output]
path = "gen/index.json"
format = "json"
`)
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	nested := filepath.Join(root, "app", "orders")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, found, err := Load(nested)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if m.Root != root {
		t.Errorf("root = %q, want %q", m.Root, root)
	}
	want := Default()
	want.Index.Patterns = []string{"./app/..."}
	want.Index.Tags = []string{"integration"}
	want.Output.Path = "gen/index.json"
	want.Output.Format = FormatJSON
	if diff := cmp.Diff(want, m.Config); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
	if got := m.OutputPath(); got != filepath.Join(root, "gen", "index.json") {
		t.Errorf("output path = %q", got)
	}
	ns, err := m.Namespace()
	if err != nil {
		t.Fatalf("namespace: %v", err)
	}
	if diff := cmp.Diff([]string{"example.com/shop"}, ns); diff != "" {
		t.Errorf("namespace (-want +got):\n%s", diff)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	m, found, err := Load(dir)
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if diff := cmp.Diff(Default(), m.Config); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[index\n", "failed to parse TOML"},
		{"unknown key", "[output]\ncolour = true\n", "unknown keys: output.colour"},
		{"format", "[output]\nformat = \"yaml\"\n", "not one of go|json|msgpack"},
		{"package", "[output]\npackage = \"bus-gen\"\n", "not a Go identifier"},
		{"patterns", "[index]\npatterns = []\n", "patterns must not be empty"},
		{"jobs", "[index]\njobs = -1\n", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := Decode(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if !strings.HasPrefix(err.Error(), path) {
				t.Errorf("error must name the file: %v", err)
			}
		})
	}
}

func TestModulePathFromGoMod(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "// comment\nmodule example.com/m // trailing\n")
	got, err := ModulePath(filepath.Join(dir))
	if err != nil || got != "example.com/m" {
		t.Fatalf("ModulePath = %q, %v", got, err)
	}
}

func TestExplicitNamespace(t *testing.T) {
	m := &Manifest{Root: t.TempDir(), Config: Default()}
	m.Config.Index.Namespace = []string{"example.com/a", "example.com/b"}
	ns, err := m.Namespace()
	if err != nil || len(ns) != 2 {
		t.Fatalf("ns=%v err=%v", ns, err)
	}
}

func TestOutputImportPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/m\n")
	outside := filepath.Join(t.TempDir(), "index_gen.go")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"default", Default().Output.Path, "example.com/m/internal/busgen"},
		{"module root", "index_gen.go", "example.com/m"},
		{"nested", "gen/a/b/index_gen.go", "example.com/m/gen/a/b"},
		{"outside module", outside, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Root: root, Config: Default()}
			m.Config.Output.Path = tt.path
			got, err := m.OutputImportPath()
			if err != nil {
				t.Fatalf("OutputImportPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("OutputImportPath = %q, want %q", got, tt.want)
			}
		})
	}
}
