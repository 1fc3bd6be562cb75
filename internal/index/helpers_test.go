package index

import (
	"strings"

	"busindex/internal/diag"
	"busindex/internal/source"
)

const appPkg = "example.com/app"

func tid(name string) TypeID { return TypeID{PkgPath: appPkg, Name: name} }

func basicExpr(name string) TypeExpr {
	return TypeExpr{Key: name, Text: name, Name: name, Public: true}
}

func namedExpr(pkg, name string, public bool) TypeExpr {
	short := pkg[strings.LastIndexByte(pkg, '/')+1:]
	return TypeExpr{
		Key:    pkg + "." + name,
		Text:   "$0." + name,
		Pkgs:   []string{pkg},
		Name:   short + "." + name,
		Public: public,
	}
}

func node(name string, public bool, ancestor TypeID) TypeNode {
	return TypeNode{
		ID:       tid(name),
		Public:   public,
		Ancestor: ancestor,
		Loc:      source.Location{Path: "app/" + strings.ToLower(name) + ".go", Line: 1, Col: 6},
	}
}

func method(owner, name string, param TypeExpr) Candidate {
	return Candidate{
		Kind:     KindMethod,
		Owner:    tid(owner),
		Name:     name,
		Exported: true,
		Params:   []TypeExpr{param},
		Loc:      source.Location{Path: "app/" + strings.ToLower(owner) + ".go", Line: 10, Col: 1},
	}
}

type fixture struct {
	bag     *diag.Bag
	session *Session
}

func newFixture(h Hierarchy, prefixes ...string) *fixture {
	if len(prefixes) == 0 {
		prefixes = []string{appPkg}
	}
	bag := diag.NewBag(0)
	return &fixture{
		bag: bag,
		session: NewSession(Config{
			Hierarchy: h,
			Namespace: NewNamespace(prefixes...),
			Reporter:  diag.BagReporter{Bag: bag},
		}),
	}
}

func (f *fixture) codes(code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range f.bag.Items() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
