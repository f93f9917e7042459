// Package driver runs the fetch, simulate and render lifecycle for one view.
//
// A Driver moves between Idle, Loading and Active as subjects are set and
// fetches resolve. While Active it owns a frame loop: each frame advances
// the simulation by a bounded batch of ticks and draws one frame. Stale
// fetches and frames of a torn-down loop never touch the view.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/layout"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
)

// State is the lifecycle state of a Driver.
type State int

const (
	Idle State = iota
	Loading
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher acquires the graph model of a subject.
type Fetcher interface {
	Graph(ctx context.Context, subjectID string) (*graph.Model, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, subjectID string) (*graph.Model, error)

func (f FetcherFunc) Graph(ctx context.Context, subjectID string) (*graph.Model, error) {
	return f(ctx, subjectID)
}

// Options tunes a Driver. Zero values get defaults.
type Options struct {
	Params        layout.Params
	TicksPerFrame int
	Renderer      *render.Renderer
	Logger        *zap.Logger
	// OnStateChange is called after every transition, outside the driver's
	// lock.
	OnStateChange func(State)
}

// Snapshot is a read-only copy of the driver's view state.
type Snapshot struct {
	State      State
	Subject    string
	Empty      bool
	Err        error
	Model      *graph.Model
	Layout     *layout.State
	Iterations int
	Settled    bool
	Frames     int
}

// Driver binds a fetcher, a scheduler and a surface. All methods are safe
// for concurrent use.
type Driver struct {
	fetcher  Fetcher
	sched    Scheduler
	surface  render.Surface
	renderer *render.Renderer
	params   layout.Params
	ticks    int
	log      *zap.Logger
	onState  func(State)

	mu      sync.Mutex
	vp      render.Viewport
	state   State
	subject string
	empty   bool
	err     error
	gen     uint64
	loop    uint64
	handle  Handle
	cancel  context.CancelFunc
	sim     *layout.Simulation
	frames  int
	closed  bool
	pending sync.WaitGroup
}

// New returns an Idle driver and sizes surface for vp.
func New(f Fetcher, s Scheduler, surface render.Surface, vp render.Viewport, opts Options) *Driver {
	if opts.Params == (layout.Params{}) {
		opts.Params = layout.DefaultParams()
	}
	if opts.TicksPerFrame < 1 {
		opts.TicksPerFrame = 1
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	d := &Driver{
		fetcher:  f,
		sched:    s,
		surface:  surface,
		renderer: opts.Renderer,
		params:   opts.Params,
		ticks:    opts.TicksPerFrame,
		log:      opts.Logger.Named("driver"),
		onState:  opts.OnStateChange,
		vp:       vp,
	}
	d.renderer.Configure(surface, vp)
	return d
}

// SetSubject switches the view to subjectID. The current loop and any
// in-flight fetch are abandoned first. Setting the subject already loading
// or shown does nothing; an empty id returns the driver to Idle.
func (d *Driver) SetSubject(subjectID string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if subjectID == d.subject && (d.state == Loading || d.state == Active) {
		d.mu.Unlock()
		return
	}

	d.teardownLocked()
	d.subject = subjectID
	d.empty = false
	d.err = nil
	if subjectID == "" {
		changed := d.transitionLocked(Idle)
		d.mu.Unlock()
		d.notify(changed, Idle)
		return
	}

	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	changed := d.transitionLocked(Loading)
	d.pending.Add(1)
	d.mu.Unlock()

	d.log.Debug("fetching graph", zap.String("subject", subjectID), zap.Uint64("gen", gen))
	d.notify(changed, Loading)
	go d.fetch(ctx, gen, subjectID)
}

// Reload fetches the current subject again, even when it is already shown.
func (d *Driver) Reload() {
	d.mu.Lock()
	subject := d.subject
	if subject != "" && !d.closed {
		d.teardownLocked()
		d.state = Idle
	}
	d.mu.Unlock()
	if subject != "" {
		d.SetSubject(subject)
	}
}

func (d *Driver) fetch(ctx context.Context, gen uint64, subjectID string) {
	defer d.pending.Done()

	m, err := d.fetcher.Graph(ctx, subjectID)

	d.mu.Lock()
	if d.closed || gen != d.gen || subjectID != d.subject {
		d.mu.Unlock()
		d.log.Debug("discarding graph", zap.String("subject", subjectID), zap.Uint64("gen", gen),
			zap.Error(graph.ErrStaleResult))
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	if err == nil && m != nil && m.SubjectID() != subjectID {
		err = fmt.Errorf("%w: %w: backend answered for %q", graph.ErrFetchFailed, graph.ErrStaleResult, m.SubjectID())
		m = nil
	}

	if err != nil || m == nil {
		if err == nil {
			err = fmt.Errorf("%w: no model", graph.ErrFetchFailed)
		} else if !errors.Is(err, graph.ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", graph.ErrFetchFailed, err)
		}
		d.err = err
		d.empty = true
		changed := d.transitionLocked(Idle)
		d.mu.Unlock()
		d.log.Warn("graph fetch failed", zap.String("subject", subjectID), zap.Error(err))
		d.notify(changed, Idle)
		return
	}

	if m.IsEmpty() {
		d.empty = true
		d.log.Info("graph has no concepts", zap.String("subject", subjectID), zap.Error(graph.ErrDegenerateGraph))
	}
	d.sim = layout.NewSimulation(m, d.vp.Width, d.vp.Height, d.params)
	d.loop++
	token := d.loop
	d.handle = d.sched.Start(func() { d.frame(token) })
	changed := d.transitionLocked(Active)
	stats := m.GetStats()
	d.mu.Unlock()

	d.log.Debug("graph loaded", zap.String("subject", subjectID),
		zap.Int("concepts", stats.Concepts), zap.Int("connections", stats.Connections))
	d.notify(changed, Active)
}

// frame is one callback of loop token. A frame of a torn-down loop returns
// before touching anything.
func (d *Driver) frame(token uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if token != d.loop || d.sim == nil {
		return
	}
	d.sim.Advance(d.ticks)
	d.renderer.Draw(d.surface, d.vp, d.sim.Model(), d.sim.State())
	d.frames++
}

// Resize informs the driver of a new logical size or pixel ratio. The
// surface is reconfigured and the live layout is mapped onto the new
// bounds; the iteration budget is kept.
func (d *Driver) Resize(vp render.Viewport) {
	if !vp.Valid() {
		d.log.Debug("ignoring empty viewport", zap.Float64("width", vp.Width), zap.Float64("height", vp.Height))
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if vp == d.vp {
		return
	}
	d.vp = vp
	d.renderer.Configure(d.surface, vp)
	if d.sim != nil {
		d.sim.Resize(vp.Width, vp.Height)
	}
}

// Close tears the view down. The frame loop is cancelled and in-flight
// fetches are discarded when they resolve.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.teardownLocked()
	changed := d.transitionLocked(Idle)
	d.mu.Unlock()
	d.notify(changed, Idle)
}

// Wait blocks until every fetch started so far has resolved.
func (d *Driver) Wait() {
	d.pending.Wait()
}

func (d *Driver) teardownLocked() {
	d.loop++
	if d.handle != nil {
		d.handle.Stop()
		d.handle = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sim = nil
}

func (d *Driver) transitionLocked(s State) bool {
	if d.state == s {
		return false
	}
	d.log.Debug("state", zap.Stringer("from", d.state), zap.Stringer("to", s), zap.String("subject", d.subject))
	d.state = s
	return true
}

func (d *Driver) notify(changed bool, s State) {
	if changed && d.onState != nil {
		d.onState(s)
	}
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Loading reports whether a fetch is outstanding for the current subject.
func (d *Driver) Loading() bool {
	return d.State() == Loading
}

// Empty reports whether the current subject has nothing to show, either
// because its fetch failed or because it has no concepts.
func (d *Driver) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.empty
}

// Subject returns the current subject id.
func (d *Driver) Subject() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.subject
}

// Err returns the error of the last failed fetch of the current subject.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Snapshot copies the current view state.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := Snapshot{
		State:   d.state,
		Subject: d.subject,
		Empty:   d.empty,
		Err:     d.err,
		Frames:  d.frames,
	}
	if d.sim != nil {
		snap.Model = d.sim.Model()
		snap.Layout = d.sim.State().Clone()
		snap.Iterations = d.sim.Iterations()
		snap.Settled = d.sim.Settled()
	}
	return snap
}
