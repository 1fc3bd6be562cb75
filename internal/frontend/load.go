package frontend

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"busindex/internal/diag"
	"busindex/internal/directive"
	"busindex/internal/index"
	"busindex/internal/source"
	"busindex/internal/trace"
)

// ErrBrokenPackages is returned when loaded packages carry parse or type errors.
var ErrBrokenPackages = errors.New("packages contain errors")

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports |
	packages.NeedDeps | packages.NeedModule

// Options controls package loading.
type Options struct {
	Dir      string   // working directory for the go command
	Patterns []string // package patterns, default "./..."
	Tags     []string // build tags
	Env      []string // extra environment, appended to os.Environ by go/packages
	Jobs     int      // extraction workers, default GOMAXPROCS

	// OutputPkg is the import path of the package the generated table lives
	// in. Its own sources are not indexed, and types it may not import under
	// the internal rule count as non-public. Empty disables both.
	OutputPkg string
	// Overlay replaces file contents for the go command and the type checker,
	// keyed by absolute path.
	Overlay map[string][]byte
}

// Program is the loaded input of one indexing run.
type Program struct {
	Passes     []index.Pass // dependency order
	Hierarchy  index.MapHierarchy
	Directives *directive.Registry
	Module     string // main module path, when known
}

// Candidates returns the number of candidates across passes.
func (p *Program) Candidates() int {
	n := 0
	for _, pass := range p.Passes {
		n += len(pass.Candidates)
	}
	return n
}

// Load loads the packages matched by opts and extracts indexing input.
// Diagnostics go to rep in pass order. If any package is broken the partial
// Program is returned together with ErrBrokenPackages.
func Load(ctx context.Context, opts Options, rep diag.Reporter) (*Program, error) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
		Env:     opts.Env,
		Overlay: opts.Overlay,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	span := trace.Begin(tracer, trace.ScopePackage, "packages.Load", parent).
		WithExtra("patterns", strings.Join(patterns, " "))
	roots, err := packages.Load(cfg, patterns...)
	span.End("")
	if err != nil {
		trace.Error(tracer, trace.ScopePhase, "load", err, parent)
		return nil, fmt.Errorf("load packages: %w", err)
	}

	ordered, broken := orderPackages(roots, opts.OutputPkg, rep)
	prog := &Program{
		Hierarchy:  make(index.MapHierarchy),
		Directives: directive.NewRegistry(),
	}
	for _, pkg := range roots {
		if pkg.Module != nil && pkg.Module.Main {
			prog.Module = pkg.Module.Path
			break
		}
	}

	units, err := extractAll(ctx, ordered, opts.Jobs, reach{from: opts.OutputPkg}, parent)
	if err != nil {
		return nil, err
	}
	for i, u := range units {
		for _, d := range u.bag.Items() {
			rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
		for _, d := range u.directives {
			prog.Directives.Add(d)
		}
		for _, n := range u.nodes {
			prog.Hierarchy.Add(n)
		}
		prog.Passes = append(prog.Passes, index.Pass{
			Number:     i + 1,
			Label:      u.pkgPath,
			Candidates: u.candidates,
		})
	}

	for _, d := range prog.Directives.Unknown(directive.NameSubscribe) {
		diag.ReportWarning(rep, diag.DirUnknownName, d.Loc,
			fmt.Sprintf("unknown directive %s", d.Qualified())).Emit()
	}

	if broken > 0 {
		return prog, fmt.Errorf("%w: %d package(s)", ErrBrokenPackages, broken)
	}
	return prog, nil
}

// orderPackages returns the root packages other than skip, dependencies
// first, and reports errors of every visited package.
func orderPackages(roots []*packages.Package, skip string, rep diag.Reporter) ([]*packages.Package, int) {
	isRoot := make(map[*packages.Package]bool, len(roots))
	for _, p := range roots {
		isRoot[p] = true
	}
	var (
		ordered []*packages.Package
		broken  int
	)
	packages.Visit(roots, nil, func(p *packages.Package) {
		if len(p.Errors) > 0 {
			broken++
			for _, e := range p.Errors {
				diag.ReportError(rep, diag.IOPackageErrors, parsePos(e.Pos),
					fmt.Sprintf("%s: %s", p.PkgPath, e.Msg)).Emit()
			}
		}
		if isRoot[p] && (skip == "" || p.PkgPath != skip) {
			ordered = append(ordered, p)
		}
	})
	return ordered, broken
}

func extractAll(ctx context.Context, pkgs []*packages.Package, jobs int, r reach, parent uint64) ([]*unit, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)

	// each goroutine owns one slot
	units := make([]*unit, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(pkgs)))
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopePackage, "pkg:"+pkg.PkgPath, parent)
			units[i] = extractPackage(pkg, r)
			span.WithExtra("candidates", strconv.Itoa(len(units[i].candidates))).End("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// parsePos turns a packages.Error position ("file:line:col", "file:line",
// "file" or "-") into a Location.
func parsePos(pos string) source.Location {
	if pos == "" || pos == "-" {
		return source.NoLocation
	}
	var nums []uint32
	rest := pos
	for len(nums) < 2 {
		i := strings.LastIndexByte(rest, ':')
		if i < 0 {
			break
		}
		n, err := strconv.ParseUint(rest[i+1:], 10, 32)
		if err != nil {
			break
		}
		nums = append(nums, uint32(n))
		rest = rest[:i]
	}
	loc := source.Location{Path: rest}
	switch len(nums) {
	case 2:
		loc.Line, loc.Col = nums[1], nums[0]
	case 1:
		loc.Line = nums[0]
	}
	return loc
}
