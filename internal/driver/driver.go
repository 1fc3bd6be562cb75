// Package driver runs the indexing pipeline: configuration, package loading,
// the indexing session and artifact emission.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"busindex/internal/config"
	"busindex/internal/diag"
	"busindex/internal/emit"
	"busindex/internal/frontend"
	"busindex/internal/index"
	"busindex/internal/observ"
	"busindex/internal/source"
	"busindex/internal/trace"
	"busindex/internal/version"
)

// Options override the manifest. Zero values keep the manifest setting.
type Options struct {
	Dir            string // where to look for busindex.toml, default "."
	ConfigPath     string // explicit manifest, skips the upward search
	Patterns       []string
	Tags           []string
	Namespace      []string
	Output         string
	Format         string
	Jobs           int
	MaxDiagnostics int
	Observer       PhaseObserver
}

// Result is everything a command needs to report on a run.
type Result struct {
	Bag        *diag.Bag
	Manifest   *config.Manifest
	Namespace  index.Namespace
	Table      *index.Table   // nil when the session faulted
	Skipped    []index.TypeID // types left to the reflective fallback
	State      index.State
	OutputPath string
	Artifact   []byte // rendered artifact; nil when nothing was emitted
	Timer      *observ.Timer
}

// Emitted reports whether the run produced an artifact.
func (r *Result) Emitted() bool {
	return r.State == index.StateDone && r.Artifact != nil
}

// Generate indexes the project and writes the artifact to disk.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	return run(ctx, "generate", opts, func(r emit.Renderer, path string) artifactEmitter {
		return &emit.FileEmitter{Renderer: r, Path: path}
	})
}

// Check indexes the project and renders the artifact in memory only.
func Check(ctx context.Context, opts Options) (*Result, error) {
	return run(ctx, "check", opts, func(r emit.Renderer, _ string) artifactEmitter {
		return &emit.MemoryEmitter{Renderer: r}
	})
}

type artifactEmitter interface {
	index.Emitter
	Bytes() []byte
}

func run(ctx context.Context, kind string, opts Options, newEmitter func(emit.Renderer, string) artifactEmitter) (*Result, error) {
	res := &Result{
		Bag:   diag.NewBag(opts.MaxDiagnostics),
		Timer: observ.NewTimer(),
		State: index.StateIdle,
	}
	ctx, root := trace.Start(ctx, trace.ScopeDriver, "busindex "+kind)
	rep := diag.MultiReporter{diag.BagReporter{Bag: res.Bag}, traceReporter{ctx: ctx}}
	defer func() {
		root.WithExtra("state", res.State.String()).End("")
		appendTimingDiagnostic(res.Bag, kind, res.OutputPath, res.Timer)
	}()

	p := phases{ctx: ctx, timer: res.Timer, observer: opts.Observer}

	// config
	var (
		renderer emit.Renderer
		target   outputTarget
	)
	err := p.run("config", func(context.Context) error {
		m, err := loadManifest(opts)
		if err != nil {
			return err
		}
		res.Manifest = m
		res.OutputPath = m.OutputPath()
		renderer, err = emit.NewRenderer(emit.Options{
			Format:    m.Config.Output.Format,
			Path:      res.OutputPath,
			Package:   m.Config.Output.Package,
			Runtime:   m.Config.Output.Runtime,
			Var:       m.Config.Output.Var,
			Generator: version.Generator(),
		})
		if err != nil {
			return err
		}
		target, err = resolveTarget(m, renderer)
		return err
	})
	if err != nil {
		diag.ReportError(rep, diag.CfgInvalid, source.NoLocation, err.Error()).Emit()
		return res, err
	}
	m := res.Manifest

	// load
	var prog *frontend.Program
	err = p.run("load", func(ctx context.Context) error {
		var err error
		prog, err = frontend.Load(ctx, frontend.Options{
			Dir:       m.Root,
			Patterns:  m.Config.Index.Patterns,
			Tags:      m.Config.Index.Tags,
			Jobs:      m.Config.Index.Jobs,
			OutputPkg: target.pkgPath,
			Overlay:   target.overlay,
		}, rep)
		return err
	})
	if err != nil {
		if !errors.Is(err, frontend.ErrBrokenPackages) {
			diag.ReportError(rep, diag.IOLoadPackage, source.NoLocation, err.Error()).Emit()
		}
		return res, err
	}
	res.Timer.Count("packages", len(prog.Passes))
	res.Timer.Count("candidates", prog.Candidates())
	res.Namespace = resolveNamespace(m, prog, rep)
	prog.PreferAncestors(res.Namespace, rep)

	session := index.NewSession(index.Config{
		Hierarchy: prog.Hierarchy,
		Namespace: res.Namespace,
		Reporter:  rep,
	})
	defer func() { res.State = session.State() }()

	// collect
	err = p.run("collect", func(ctx context.Context) error {
		tracer := trace.FromContext(ctx)
		parent := trace.CurrentSpan(ctx).SpanID
		for _, pass := range prog.Passes {
			span := trace.Begin(tracer, trace.ScopePackage, "pass:"+pass.Label, parent).
				WithExtra("candidates", strconv.Itoa(len(pass.Candidates)))
			err := session.Collect(pass)
			span.End("")
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Timer.Count("declarations", session.Registry().Count())

	// resolve
	err = p.run("resolve", func(context.Context) error {
		table, err := session.Finalize()
		res.Table = table
		return err
	})
	if err != nil {
		return res, err
	}
	res.Skipped = session.Skipped().Types()
	res.Timer.Count("subscribers", res.Table.Len())
	res.Timer.Count("skipped", len(res.Skipped))
	if session.State() == index.StateDone {
		// nothing annotated: no artifact
		return res, nil
	}

	// emit
	em := newEmitter(renderer, res.OutputPath)
	err = p.run("emit", func(ctx context.Context) error {
		return session.Emit(ctx, em)
	})
	if err != nil {
		return res, err
	}
	res.Artifact = em.Bytes()
	return res, session.Close()
}

// phases runs pipeline phases with timing, tracing and observer callbacks.
type phases struct {
	ctx      context.Context
	timer    *observ.Timer
	observer PhaseObserver
}

func (p phases) run(name string, fn func(context.Context) error) error {
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	ctx, span := trace.Start(p.ctx, trace.ScopePhase, name)
	start := time.Now()
	idx := p.timer.Begin(name)

	err := fn(ctx)
	if err == nil {
		err = ctx.Err()
	}

	note := ""
	if err != nil {
		note = "failed"
		trace.Error(trace.FromContext(ctx), trace.ScopePhase, name, err, span.ID())
	}
	p.timer.End(idx, note)
	span.End(note)
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Err: err})
	}
	return err
}

func loadManifest(opts Options) (*config.Manifest, error) {
	var (
		m   *config.Manifest
		err error
	)
	if opts.ConfigPath != "" {
		m, err = config.LoadFile(opts.ConfigPath)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		m, _, err = config.Load(dir)
	}
	if err != nil {
		return nil, err
	}
	c := &m.Config
	if len(opts.Patterns) > 0 {
		c.Index.Patterns = opts.Patterns
	}
	if len(opts.Tags) > 0 {
		c.Index.Tags = opts.Tags
	}
	if len(opts.Namespace) > 0 {
		c.Index.Namespace = opts.Namespace
	}
	if opts.Output != "" {
		c.Output.Path = opts.Output
	}
	if opts.Format != "" {
		c.Output.Format = opts.Format
	}
	if opts.Jobs > 0 {
		c.Index.Jobs = opts.Jobs
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return m, nil
}

// outputTarget describes the package a Go artifact is written into.
type outputTarget struct {
	pkgPath string            // import path, empty when unknown or not Go
	overlay map[string][]byte // stub standing in for a stale artifact
}

// resolveTarget locates the output package of a Go artifact. An artifact
// already on disk may name types that no longer exist, which would keep its
// package from type-checking, so the loader sees an empty table instead.
func resolveTarget(m *config.Manifest, r emit.Renderer) (outputTarget, error) {
	var t outputTarget
	if m.Config.Output.Format != config.FormatGo {
		return t, nil
	}
	pkgPath, err := m.OutputImportPath()
	if err != nil {
		return t, err
	}
	t.pkgPath = pkgPath

	path := m.OutputPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return t, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	stub, err := r.Render(&index.Table{})
	if err != nil {
		return t, err
	}
	t.overlay = map[string][]byte{path: stub}
	return t, nil
}

// resolveNamespace prefers the configured prefixes, then go.mod, then the main
// module reported by the go command. Without any of them every package counts
// as application code.
func resolveNamespace(m *config.Manifest, prog *frontend.Program, rep diag.Reporter) index.Namespace {
	prefixes, err := m.Namespace()
	if err == nil {
		return index.NewNamespace(prefixes...)
	}
	if prog.Module != "" {
		return index.NewNamespace(prog.Module)
	}
	diag.ReportWarning(rep, diag.CfgNamespace, source.NoLocation,
		fmt.Sprintf("%v; ancestor walks will not stop at module boundaries", err)).Emit()
	return index.NewNamespace()
}

// traceReporter mirrors error diagnostics into the trace, so a ring dump after
// a fault shows what went wrong.
type traceReporter struct{ ctx context.Context }

func (r traceReporter) Report(code diag.Code, sev diag.Severity, primary source.Location, msg string, _ []diag.Note) {
	if sev < diag.SevError {
		return
	}
	detail := msg
	if primary.IsValid() {
		detail = primary.String() + ": " + msg
	}
	trace.Point(trace.FromContext(r.ctx), trace.ScopeDriver, code.ID(), detail, trace.CurrentSpan(r.ctx).SpanID)
}

// ReadArtifact returns the current artifact on disk, or nil when absent.
func ReadArtifact(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
