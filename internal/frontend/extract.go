package frontend

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"

	"busindex/internal/diag"
	"busindex/internal/directive"
	"busindex/internal/index"
	"busindex/internal/source"
)

// unit is what one worker extracts from one package.
type unit struct {
	pkgPath    string
	candidates []index.Candidate
	nodes      map[index.TypeID]index.TypeNode
	directives []directive.Directive
	bag        *diag.Bag
}

type extractor struct {
	pkg  *packages.Package
	fset *token.FileSet
	out  *unit
	rep  diag.Reporter
	r    reach
}

// extractPackage scans pkg's syntax for directives. It only reads pkg, so
// packages can be extracted concurrently.
func extractPackage(pkg *packages.Package, r reach) *unit {
	bag := diag.NewBag(0)
	x := &extractor{
		pkg:  pkg,
		fset: pkg.Fset,
		rep:  diag.BagReporter{Bag: bag},
		r:    r,
		out: &unit{
			pkgPath: pkg.PkgPath,
			nodes:   make(map[index.TypeID]index.TypeNode),
			bag:     bag,
		},
	}
	for _, file := range pkg.Syntax {
		x.file(file)
	}
	return x.out
}

func (x *extractor) loc(pos token.Pos) source.Location {
	if x.fset == nil {
		return source.NoLocation
	}
	return source.FromPosition(x.fset.Position(pos))
}

func (x *extractor) file(f *ast.File) {
	attached := make(map[*ast.CommentGroup]bool)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			attached[d.Doc] = true
			if sub, ok := x.subscribe(d.Doc); ok {
				x.out.candidates = append(x.out.candidates, x.funcCandidate(d, sub))
			}
		case *ast.GenDecl:
			attached[d.Doc] = true
			declSub, declOK := x.subscribe(d.Doc)
			for _, spec := range d.Specs {
				name, doc := specInfo(spec)
				attached[doc] = true
				sub, ok := x.subscribe(doc)
				if !ok {
					sub, ok = declSub, declOK
				}
				if ok && name != nil {
					x.out.candidates = append(x.out.candidates, index.Candidate{
						Kind:       index.KindOther,
						Name:       name.Name,
						Exported:   name.IsExported(),
						Annotation: sub.annotation,
						PayloadErr: sub.err,
						Loc:        x.loc(name.Pos()),
					})
				}
			}
		}
	}
	for _, cg := range f.Comments {
		if attached[cg] {
			continue
		}
		for _, c := range cg.List {
			d, ok, _ := directive.Parse(c.Text, directive.Namespace)
			if !ok {
				continue
			}
			diag.ReportWarning(x.rep, diag.DirDetached, x.loc(c.Slash),
				fmt.Sprintf("%s directive is not attached to a declaration and has no effect", d.Qualified())).Emit()
		}
	}
}

func specInfo(spec ast.Spec) (*ast.Ident, *ast.CommentGroup) {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Name, s.Doc
	case *ast.ValueSpec:
		if len(s.Names) > 0 {
			return s.Names[0], s.Doc
		}
		return nil, s.Doc
	}
	return nil, nil
}

type subscribeDirective struct {
	annotation index.Annotation
	err        error
}

// subscribe parses every directive in doc, records them, and returns the
// first subscribe directive.
func (x *extractor) subscribe(doc *ast.CommentGroup) (subscribeDirective, bool) {
	if doc == nil {
		return subscribeDirective{}, false
	}
	var (
		found subscribeDirective
		ok    bool
	)
	for _, c := range doc.List {
		d, isDirective, err := directive.Parse(c.Text, directive.Namespace)
		if !isDirective {
			continue
		}
		d.Loc = x.loc(c.Slash)
		if err != nil {
			diag.ReportError(x.rep, diag.DirMalformed, d.Loc, err.Error()).Emit()
			continue
		}
		x.out.directives = append(x.out.directives, d)
		if d.Name != directive.NameSubscribe {
			continue
		}
		if ok {
			diag.ReportWarning(x.rep, diag.DirMalformed, d.Loc,
				fmt.Sprintf("repeated %s directive is ignored", d.Qualified())).Emit()
			continue
		}
		payload, err := directive.DecodeSubscribe(d)
		found = subscribeDirective{
			annotation: index.Annotation{
				ThreadMode: payload.ThreadMode,
				Priority:   payload.Priority,
				Sticky:     payload.Sticky,
			},
			err: err,
		}
		ok = true
	}
	return found, ok
}

func (x *extractor) funcCandidate(d *ast.FuncDecl, sub subscribeDirective) index.Candidate {
	c := index.Candidate{
		Kind:       index.KindMethod,
		Name:       d.Name.Name,
		Exported:   d.Name.IsExported(),
		Annotation: sub.annotation,
		PayloadErr: sub.err,
		Loc:        x.loc(d.Name.Pos()),
	}
	if d.Recv == nil {
		c.Kind = index.KindFunc
	}

	var fn *types.Func
	if x.pkg.TypesInfo != nil {
		fn, _ = x.pkg.TypesInfo.Defs[d.Name].(*types.Func)
	}
	if fn == nil {
		// no type information: keep the arity so the count rule still applies
		c.Params = make([]index.TypeExpr, d.Type.Params.NumFields())
		return c
	}
	sig, _ := fn.Type().(*types.Signature)
	if sig == nil {
		return c
	}
	if recv := sig.Recv(); recv != nil {
		if n := namedOf(recv.Type()); n != nil {
			c.Owner = typeID(n.Origin().Obj())
			addChain(x.fset, n, x.out.nodes, x.r)
		}
	}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		c.Params = append(c.Params, typeExpr(params.At(i).Type(), x.r))
	}
	return c
}
