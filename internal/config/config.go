// Package config reads busindex.toml, the per-project settings of the
// generator, and fills in defaults from go.mod.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "busindex.toml"

// Output formats.
const (
	FormatGo      = "go"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Manifest is a decoded busindex.toml and where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Index  IndexConfig  `toml:"index"`
	Output OutputConfig `toml:"output"`
}

type IndexConfig struct {
	Patterns  []string `toml:"patterns"`
	Namespace []string `toml:"namespace"` // import-path prefixes; empty means the main module
	Tags      []string `toml:"tags"`
	Jobs      int      `toml:"jobs"`
}

type OutputConfig struct {
	Path    string `toml:"path"` // relative to the manifest root
	Package string `toml:"package"`
	Format  string `toml:"format"`
	Runtime string `toml:"runtime"` // import path of the subscriber runtime package
	Var     string `toml:"var"`
}

// Default returns the settings used when no manifest exists.
func Default() Config {
	return Config{
		Index: IndexConfig{Patterns: []string{"./..."}},
		Output: OutputConfig{
			Path:    "internal/busgen/subscriber_index_gen.go",
			Package: "busgen",
			Format:  FormatGo,
			Runtime: "busindex/subscriber",
			Var:     "SubscriberIndex",
		},
	}
}

// Find walks up from startDir looking for busindex.toml.
func Find(startDir string) (string, bool, error) {
	return findUp(startDir, FileName)
}

func findUp(startDir, name string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes the manifest. Without one it returns defaults rooted
// at startDir and found=false.
func Load(startDir string) (m *Manifest, found bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		return &Manifest{Root: root, Config: Default()}, false, nil
	}
	m, err = LoadFile(path)
	return m, err == nil, err
}

// LoadFile decodes an explicit manifest path.
func LoadFile(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg, err := Decode(abs)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// Decode reads path over the defaults and validates the result.
func Decode(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("index", "patterns") && len(cfg.Index.Patterns) == 0 {
		return Config{}, fmt.Errorf("%s: [index].patterns must not be empty", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that flags may also have set.
func (c Config) Validate() error {
	switch c.Output.Format {
	case FormatGo, FormatJSON, FormatMsgpack:
	default:
		return fmt.Errorf("[output].format %q is not one of go|json|msgpack", c.Output.Format)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("missing [output].path")
	}
	if c.Index.Jobs < 0 {
		return fmt.Errorf("[index].jobs must not be negative, got %d", c.Index.Jobs)
	}
	if c.Output.Format == FormatGo {
		if !isIdent(c.Output.Package) {
			return fmt.Errorf("[output].package %q is not a Go identifier", c.Output.Package)
		}
		if !isIdent(c.Output.Var) {
			return fmt.Errorf("[output].var %q is not a Go identifier", c.Output.Var)
		}
		if strings.TrimSpace(c.Output.Runtime) == "" {
			return errors.New("missing [output].runtime")
		}
	}
	return nil
}

// OutputPath resolves the artifact path against the manifest root.
func (m *Manifest) OutputPath() string {
	p := filepath.FromSlash(m.Config.Output.Path)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// Namespace returns the configured prefixes, or the module path of the
// nearest go.mod above the manifest root.
func (m *Manifest) Namespace() ([]string, error) {
	if len(m.Config.Index.Namespace) > 0 {
		return m.Config.Index.Namespace, nil
	}
	mod, err := ModulePath(m.Root)
	if err != nil {
		return nil, err
	}
	return []string{mod}, nil
}

// OutputImportPath returns the import path of the package the artifact is
// written to, or "" when the output directory is not inside a module.
func (m *Manifest) OutputImportPath() (string, error) {
	dir := filepath.Dir(m.OutputPath())
	gomod, ok, err := findUp(dir, "go.mod")
	if err != nil || !ok {
		return "", err
	}
	mod, err := readModulePath(gomod)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.Dir(gomod), dir)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", dir, gomod, err)
	}
	if rel == "." {
		return mod, nil
	}
	return path.Join(mod, filepath.ToSlash(rel)), nil
}

// ModulePath reads the module path of the nearest go.mod above dir.
func ModulePath(dir string) (string, error) {
	path, ok, err := findUp(dir, "go.mod")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no go.mod found above %s; set [index].namespace", dir)
	}
	return readModulePath(path)
}

func readModulePath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return "", fmt.Errorf("%s: missing module directive", path)
	}
	return f.Module.Mod.Path, nil
}

func isIdent(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
