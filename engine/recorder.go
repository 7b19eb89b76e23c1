package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ftahirops/xtrend/model"
)

// ErrReplayFinished is returned by Player.Collect once every frame was served.
var ErrReplayFinished = errors.New("replay finished")

// recordFrame is one tick as written to disk: the raw reading at the top
// level, so a plain metrics document is also a valid frame, plus the report
// produced from it.
type recordFrame struct {
	model.RawMetrics
	Report *model.Report `json:"report,omitempty"`
}

// Recorder wraps a ticker and records every successful tick as a JSON line.
type Recorder struct {
	inner  Ticker
	writer *json.Encoder
	mu     sync.Mutex
	err    error
}

// NewRecorder creates a recorder that writes JSON lines to w.
func NewRecorder(inner Ticker, w io.Writer) *Recorder {
	return &Recorder{
		inner:  inner,
		writer: json.NewEncoder(w),
	}
}

// Base returns the underlying engine.
func (r *Recorder) Base() *Engine {
	return r.inner.Base()
}

// Tick runs the inner tick and records the result. A write failure does not
// fail the tick; it is kept and reported by Err.
func (r *Recorder) Tick(ctx context.Context) (*model.Report, error) {
	rep, err := r.inner.Tick(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if werr := r.writer.Encode(recordFrame{
		RawMetrics: model.RawFromSnapshot(rep.Snapshot),
		Report:     rep,
	}); werr != nil && r.err == nil {
		r.err = fmt.Errorf("record frame: %w", werr)
	}
	return rep, nil
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Player replays recorded frames as a metric source. It also accepts plain
// metric documents, one JSON object per line or concatenated.
type Player struct {
	frames []recordFrame
	idx    int
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewPlayer reads every frame from r. A malformed frame fails the whole load.
func NewPlayer(r io.Reader) (*Player, error) {
	dec := json.NewDecoder(r)
	var frames []recordFrame
	for {
		var frame recordFrame
		if err := dec.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode frame %d: %w", len(frames)+1, err)
		}
		frames = append(frames, frame)
	}
	p := &Player{frames: frames, done: make(chan struct{})}
	if len(frames) == 0 {
		p.finish()
	}
	return p, nil
}

func (p *Player) Name() string { return "replay" }

// Collect serves the next recorded reading.
func (p *Player) Collect(ctx context.Context) (model.RawMetrics, error) {
	if err := ctx.Err(); err != nil {
		return model.RawMetrics{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.frames) {
		p.finish()
		return model.RawMetrics{}, ErrReplayFinished
	}
	f := p.frames[p.idx]
	p.idx++
	if p.idx == len(p.frames) {
		p.finish()
	}
	return f.RawMetrics, nil
}

// Done is closed once the last frame has been served.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

func (p *Player) finish() {
	if !p.closed {
		p.closed = true
		close(p.done)
	}
}

// Len returns the number of frames available.
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// Index returns the next frame index.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}

// Recorded returns the report stored with frame i, if the file had one.
func (p *Player) Recorded(i int) (*model.Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.frames) || p.frames[i].Report == nil {
		return nil, false
	}
	return p.frames[i].Report, true
}
