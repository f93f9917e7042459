// Package export renders a paper's settled concept graph to an image file.
//
// Export drives the same driver as the live view, but on a Manual scheduler
// fired until the layout settles, so the written image is the final frame.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/driver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/layout"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
)

// Formats lists the supported output formats.
var Formats = []string{"png", "svg"}

// ErrFormat is returned for an output format other than png or svg.
var ErrFormat = errors.New("unsupported format")

// ErrCancelled is returned when the context ends before the graph loaded.
var ErrCancelled = errors.New("export cancelled")

// Options controls one export.
type Options struct {
	Dir      string
	Format   string
	Viewport render.Viewport
	Params   layout.Params
	Caption  bool
	Logger   *zap.Logger
}

// Result describes a written image.
type Result struct {
	Path        string
	Concepts    int
	Connections int
	Iterations  int
}

// surface is a render target that can be written out.
type surface interface {
	render.Surface
	encode(w io.Writer) error
}

type rasterFile struct{ *render.Raster }

func (r rasterFile) encode(w io.Writer) error { return r.EncodePNG(w) }

type vectorFile struct{ *render.Vector }

func (v vectorFile) encode(w io.Writer) error { return v.Encode(w) }

func newSurface(format string) (surface, error) {
	switch strings.ToLower(format) {
	case "png":
		return rasterFile{render.NewRaster()}, nil
	case "svg":
		return vectorFile{render.NewVector()}, nil
	}
	return nil, fmt.Errorf("%w: %q (want %s)", ErrFormat, format, strings.Join(Formats, " or "))
}

// Paper fetches paperID through f, runs the layout to its budget and writes
// the final frame to Dir. An empty graph still produces an image.
func Paper(ctx context.Context, f driver.Fetcher, paperID string, opts Options) (Result, error) {
	s, err := newSurface(opts.Format)
	if err != nil {
		return Result{}, err
	}
	if !opts.Viewport.Valid() {
		return Result{}, fmt.Errorf("invalid viewport %gx%g", opts.Viewport.Width, opts.Viewport.Height)
	}
	if opts.Params == (layout.Params{}) {
		opts.Params = layout.DefaultParams()
	}

	renderer := render.NewRenderer()
	renderer.Caption = opts.Caption
	sched := &driver.Manual{}
	d := driver.New(f, sched, s, opts.Viewport, driver.Options{
		Params:        opts.Params,
		TicksPerFrame: max(opts.Params.MaxIterations, 1),
		Renderer:      renderer,
		Logger:        opts.Logger,
	})
	defer d.Close()
	stop := context.AfterFunc(ctx, d.Close)
	defer stop()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	d.SetSubject(paperID)
	d.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	snap := d.Snapshot()
	if snap.Err != nil {
		return Result{}, snap.Err
	}
	if snap.State != driver.Active {
		return Result{}, ErrCancelled
	}
	for !d.Snapshot().Settled && sched.Fire() {
	}
	// one more frame so a zero budget still draws
	if !sched.Fire() {
		return Result{}, ErrCancelled
	}
	snap = d.Snapshot()
	if snap.Model == nil {
		return Result{}, ErrCancelled
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return Result{}, err
	}
	path := filepath.Join(opts.Dir, FileName(paperID, opts.Format))
	out, err := os.Create(path)
	if err != nil {
		return Result{}, err
	}
	if err := s.encode(out); err != nil {
		out.Close()
		return Result{}, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return Result{}, err
	}

	stats := snap.Model.GetStats()
	return Result{
		Path:        path,
		Concepts:    stats.Concepts,
		Connections: stats.Connections,
		Iterations:  snap.Iterations,
	}, nil
}

// FileName is the image name for paperID.
func FileName(paperID, format string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_", " ", "_")
	return r.Replace(paperID) + "." + strings.ToLower(format)
}
