package directive

import (
	"fmt"
	"strings"

	"busindex/internal/source"
)

// Directive is a single `//namespace:name args...` comment line.
// Like //go: directives there is no space between the slashes and the namespace.
type Directive struct {
	Namespace string
	Name      string
	Args      []Arg
	Raw       string
	Loc       source.Location
}

// Arg is one whitespace-separated argument: `key=value` or a bare `key`.
type Arg struct {
	Key      string
	Value    string
	HasValue bool
}

// Qualified returns "namespace:name".
func (d Directive) Qualified() string {
	return d.Namespace + ":" + d.Name
}

// Lookup returns the last argument with the given key.
func (d Directive) Lookup(key string) (Arg, bool) {
	for i := len(d.Args) - 1; i >= 0; i-- {
		if d.Args[i].Key == key {
			return d.Args[i], true
		}
	}
	return Arg{}, false
}

// Parse reads a raw comment text (including the leading //).
// ok is false when the comment is not a directive at all; err is set when it
// looks like a directive of namespace ns but cannot be split into parts.
func Parse(text string, ns string) (d Directive, ok bool, err error) {
	if !strings.HasPrefix(text, "//") {
		return Directive{}, false, nil
	}
	body := strings.TrimPrefix(text, "//")
	if body == "" || body[0] == ' ' || body[0] == '\t' {
		return Directive{}, false, nil
	}
	head, rest, _ := strings.Cut(body, " ")
	namespace, name, found := strings.Cut(head, ":")
	if !found || namespace != ns {
		return Directive{}, false, nil
	}
	d = Directive{Namespace: namespace, Name: name, Raw: text}
	if name == "" {
		return d, true, fmt.Errorf("directive %q has no name", text)
	}
	for _, field := range strings.Fields(rest) {
		key, value, hasValue := strings.Cut(field, "=")
		if key == "" {
			return d, true, fmt.Errorf("directive %q: empty argument key in %q", text, field)
		}
		d.Args = append(d.Args, Arg{Key: key, Value: value, HasValue: hasValue})
	}
	return d, true, nil
}
