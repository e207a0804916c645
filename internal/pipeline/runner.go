package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"panelcomp/block"
	"panelcomp/compose"
	"panelcomp/internal/logging"
	"panelcomp/sink"
	"panelcomp/source"
)

// Runner reads one panel from its source, fits and transforms it through the
// composed pipeline and pushes the result to every sink.
type Runner struct {
	source   source.Adapter
	pipeline *compose.Pipeline
	sinks    []sink.Adapter
	clients  []io.Closer

	mu     sync.Mutex
	closed bool
}

func NewRunner() *Runner { return &Runner{} }

func (r *Runner) AddSink(s sink.Adapter)          { r.sinks = append(r.sinks, s) }
func (r *Runner) SetSource(s source.Adapter)      { r.source = s }
func (r *Runner) SetPipeline(p *compose.Pipeline) { r.pipeline = p }
func (r *Runner) AddClient(c io.Closer)           { r.clients = append(r.clients, c) }
func (r *Runner) Pipeline() *compose.Pipeline     { return r.pipeline }

/*──────── block routing ───────*/
func (r *Runner) pushBlock(b block.Block) error {
	for _, s := range r.sinks {
		if err := s.Push(b); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the pipeline once. The source is read in full; panels have no
// streaming form.
func (r *Runner) Run(ctx context.Context) (block.Block, error) {
	if r.source == nil {
		return nil, errors.New("runner: no source configured")
	}
	if r.pipeline == nil {
		return nil, errors.New("runner: no pipeline configured")
	}
	log := logging.For("runner")

	start := time.Now()
	x, err := r.source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("runner: read: %w", err)
	}
	log.Info("panel loaded", "instances", x.NRows(), "columns", x.NCols())

	out, err := r.pipeline.FitTransform(ctx, x, nil)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	if err := r.pushBlock(out); err != nil {
		return nil, fmt.Errorf("runner: sink: %w", err)
	}
	rows, cols := out.Rows(), out.Cols()
	log.Info("pipeline done", "rows", rows, "cols", cols, "elapsed", time.Since(start))
	return out, nil
}

// Close releases the source, the sinks and any remote unit clients. It is
// safe to call more than once.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, s := range r.sinks {
		errs = append(errs, s.Close())
	}
	for _, c := range r.clients {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
