package emit

import (
	"bytes"
	"fmt"
	"go/token"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"busindex/internal/index"
)

// GoRenderer writes Go source declaring a subscriber.Table variable.
type GoRenderer struct {
	Filename  string // used by the formatter only
	Package   string
	Runtime   string // import path of the subscriber package
	Var       string
	Generator string
}

// Render implements Renderer.
func (r GoRenderer) Render(t *index.Table) ([]byte, error) {
	im := newImportSet("reflect", r.Runtime)
	var body bytes.Buffer
	rt := im.name(r.Runtime)

	fmt.Fprintf(&body, "var %s = %s.Table{\n", r.Var, rt)
	for _, sub := range t.Subscribers {
		key := r.typeFor(im, sub.Type)
		fmt.Fprintf(&body, "%s: {\n", key)
		for _, e := range sub.Entries {
			fmt.Fprintf(&body, "{Declaring: %s, Name: %q, Event: %s, ThreadMode: %s.%s, Priority: %d, Sticky: %t},\n",
				r.typeFor(im, e.Declaring), e.Method, r.eventFor(im, e.Event),
				rt, e.ThreadMode.GoName(), e.Priority, e.Sticky)
		}
		body.WriteString("},\n")
	}
	body.WriteString("}\n")

	var src bytes.Buffer
	fmt.Fprintf(&src, "// Code generated by %s. DO NOT EDIT.\n\n", r.generator())
	fmt.Fprintf(&src, "package %s\n\n", r.Package)
	src.WriteString("import (\n")
	for _, spec := range im.specs(len(t.Subscribers) > 0) {
		src.WriteString(spec)
		src.WriteString("\n")
	}
	src.WriteString(")\n\n")
	src.Write(body.Bytes())

	filename := r.Filename
	if filename == "" {
		filename = "subscriber_index_gen.go"
	}
	out, err := imports.Process(filename, src.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return out, nil
}

func (r GoRenderer) generator() string {
	if fields := strings.Fields(r.Generator); len(fields) > 0 {
		return fields[0]
	}
	return "busindex"
}

func (r GoRenderer) typeFor(im *importSet, id index.TypeID) string {
	return fmt.Sprintf("reflect.TypeFor[*%s.%s]()", im.name(id.PkgPath), id.Name)
}

func (r GoRenderer) eventFor(im *importSet, e index.TypeExpr) string {
	return fmt.Sprintf("reflect.TypeFor[%s]()", expand(e.Text, func(i int) string {
		if i < 0 || i >= len(e.Pkgs) {
			return "_"
		}
		return im.name(e.Pkgs[i])
	}))
}

// expand replaces $N placeholders in text.
func expand(text string, name func(int) string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] != '$' {
			sb.WriteByte(text[i])
			continue
		}
		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(text[i+1 : j])
		if err != nil {
			sb.WriteByte(text[i])
			continue
		}
		sb.WriteString(name(n))
		i = j - 1
	}
	return sb.String()
}

// importSet allocates a unique local name per imported path.
type importSet struct {
	byPath map[string]string
	used   map[string]bool
	fixed  []string
}

func newImportSet(fixed ...string) *importSet {
	im := &importSet{byPath: make(map[string]string), used: make(map[string]bool), fixed: fixed}
	for _, p := range fixed {
		im.name(p)
	}
	return im
}

func (im *importSet) name(pkgPath string) string {
	if n, ok := im.byPath[pkgPath]; ok {
		return n
	}
	base := importName(pkgPath)
	n := base
	for i := 2; im.used[n] || token.IsKeyword(n); i++ {
		n = base + strconv.Itoa(i)
	}
	im.byPath[pkgPath] = n
	im.used[n] = true
	return n
}

// specs returns import lines sorted by path. A name that differs from the last
// path element is written as an explicit alias. reflect is only needed when
// the table has entries.
func (im *importSet) specs(needReflect bool) []string {
	paths := make([]string, 0, len(im.byPath))
	for p := range im.byPath {
		if p == "reflect" && !needReflect {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		n := im.byPath[p]
		if n == path.Base(p) {
			out = append(out, strconv.Quote(p))
		} else {
			out = append(out, n+" "+strconv.Quote(p))
		}
	}
	return out
}

// importName guesses the package name from an import path: the last element,
// skipping a major version suffix, with non-identifier runes dropped.
func importName(pkgPath string) string {
	base := path.Base(pkgPath)
	if isMajorVersion(base) && strings.Contains(pkgPath, "/") {
		base = path.Base(path.Dir(pkgPath))
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i] // yaml.v3
	}
	base = strings.TrimPrefix(base, "go-")
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if sb.Len() == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "pkg"
	}
	return sb.String()
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
