package emit

import (
	"context"
	"fmt"
	"path/filepath"

	"busindex/internal/config"
	"busindex/internal/index"
)

// Renderer turns a merged table into artifact bytes.
type Renderer interface {
	Render(t *index.Table) ([]byte, error)
}

// Options select and parameterize a renderer.
type Options struct {
	Format    string // config.FormatGo, FormatJSON or FormatMsgpack
	Path      string
	Package   string
	Runtime   string
	Var       string
	Generator string // e.g. "busindex v0.4.0"
}

// NewRenderer builds the renderer for opts.Format.
func NewRenderer(opts Options) (Renderer, error) {
	switch opts.Format {
	case config.FormatGo, "":
		return GoRenderer{
			Filename:  filepath.Base(opts.Path),
			Package:   opts.Package,
			Runtime:   opts.Runtime,
			Var:       opts.Var,
			Generator: opts.Generator,
		}, nil
	case config.FormatJSON:
		return JSONRenderer{Generator: opts.Generator}, nil
	case config.FormatMsgpack:
		return MsgpackRenderer{Generator: opts.Generator}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", opts.Format)
}

// FileEmitter renders the table and atomically writes it to Path.
type FileEmitter struct {
	Renderer Renderer
	Path     string

	data []byte
}

// Emit implements index.Emitter.
func (e *FileEmitter) Emit(ctx context.Context, t *index.Table) error {
	data, err := e.Renderer.Render(t)
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(ctx, e.Path, data, 0o644); err != nil {
		return err
	}
	e.data = data
	return nil
}

// Bytes returns the last artifact written.
func (e *FileEmitter) Bytes() []byte { return e.data }

// MemoryEmitter renders into memory; check compares its output with disk.
type MemoryEmitter struct {
	Renderer Renderer
	Data     []byte
}

// Emit implements index.Emitter.
func (e *MemoryEmitter) Emit(_ context.Context, t *index.Table) error {
	data, err := e.Renderer.Render(t)
	if err != nil {
		return err
	}
	e.Data = data
	return nil
}

// Bytes returns the rendered artifact.
func (e *MemoryEmitter) Bytes() []byte { return e.Data }
