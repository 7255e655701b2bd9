package loop

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/crneirav-code/juegoBE/game/engine"
)

var ErrRunnerStopped = errors.New("round loop stopped")

// Ticker delivers pursuit ticks to the loop
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker
func NewTimeTicker(d time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(d)}
}

// UpdateFunc receives a snapshot after every change to the round
type UpdateFunc func(state *engine.GameState)

// InputKind identifies a request handled by the loop
type InputKind int

const (
	InputStart InputKind = iota
	InputCommand
	InputBulk
	InputTick
	InputReset
	InputSnapshot
	InputRestore
)

func (k InputKind) String() string {
	switch k {
	case InputStart:
		return "start"
	case InputCommand:
		return "command"
	case InputBulk:
		return "bulk"
	case InputTick:
		return "tick"
	case InputReset:
		return "reset"
	case InputSnapshot:
		return "snapshot"
	case InputRestore:
		return "restore"
	}
	return "unknown"
}

// Input is one request fed into the loop
type Input struct {
	Kind       InputKind
	Direction  engine.Direction
	Directions []engine.Direction
	Config     *engine.GameConfig
	State      *engine.GameState
}

// Reply carries the result of an Input back to the caller
type Reply struct {
	State   *engine.GameState
	Results []engine.MoveResult
	Applied bool
	Err     error
}

type request struct {
	input Input
	reply chan Reply
}

// Option customizes a Runner
type Option func(*Runner)

// WithTicker replaces the wall-clock ticker, mainly for tests
func WithTicker(factory TickerFactory) Option {
	return func(r *Runner) {
		r.newTicker = factory
	}
}

// WithUpdateHandler registers the observer notified after each change
func WithUpdateHandler(fn UpdateFunc) Option {
	return func(r *Runner) {
		r.onUpdate = fn
	}
}

// WithManualTicks disables the automatic ticker; ticks arrive only as InputTick
func WithManualTicks() Option {
	return func(r *Runner) {
		r.manual = true
	}
}

// WithLogger sets the log entry used by the loop
func WithLogger(entry *log.Entry) Option {
	return func(r *Runner) {
		r.logger = entry
	}
}

// Runner owns a GameEngine and applies commands and ticks to it from a
// single goroutine. The pursuit ticker runs only while a round is active.
type Runner struct {
	engine    *engine.GameEngine
	newTicker TickerFactory
	onUpdate  UpdateFunc
	manual    bool
	logger    *log.Entry

	ticker   Ticker
	requests chan request
	quit     chan struct{}
	done     chan struct{}
}

// NewRunner creates a runner for e. Call Run or Start to begin processing.
func NewRunner(e *engine.GameEngine, opts ...Option) *Runner {
	r := &Runner{
		engine:    e,
		newTicker: NewTimeTicker,
		logger:    log.NewEntry(log.StandardLogger()),
		requests:  make(chan request),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs the loop on its own goroutine
func (r *Runner) Start(ctx context.Context) {
	go r.Run(ctx)
}

// Stop ends the loop and waits for it to exit. It is safe to call more than once.
func (r *Runner) Stop() {
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
	<-r.done
}

// Done is closed once the loop has exited
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run processes requests and ticks until ctx is cancelled or Stop is called
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	defer r.stopTicker()

	r.logger.WithField("config", r.engine.GetConfig().Name).Debug("round loop started")
	// A restored engine may already be mid-round
	r.syncTicker(false)
	for {
		var tickC <-chan time.Time
		if r.ticker != nil {
			tickC = r.ticker.C()
		}

		select {
		case <-ctx.Done():
			r.logger.Debug("round loop cancelled")
			return
		case <-r.quit:
			r.logger.Debug("round loop stopped")
			return
		case req := <-r.requests:
			req.reply <- r.apply(req.input)
		case <-tickC:
			before := r.engine.Phase()
			if r.engine.Tick() {
				r.logTransition(before)
				r.publish()
			}
			r.syncTicker(false)
		}
	}
}

// apply is the single update function for every input
func (r *Runner) apply(in Input) Reply {
	before := r.engine.Phase()
	var reply Reply
	switch in.Kind {
	case InputStart:
		if in.Config != nil {
			if _, err := r.engine.StartRoundWith(in.Config); err != nil {
				return Reply{Err: err}
			}
		} else {
			r.engine.StartRound()
		}
		reply.Applied = true
		r.syncTicker(true)
		r.logger.WithFields(log.Fields{
			"round":  r.engine.RoundID(),
			"config": r.engine.GetConfig().Name,
		}).Info("round started")

	case InputCommand:
		result := r.engine.Command(in.Direction)
		reply.Results = []engine.MoveResult{result}
		reply.Applied = result.Accepted
		r.syncTicker(false)

	case InputBulk:
		reply.Results = r.engine.BulkMove(in.Directions)
		for _, res := range reply.Results {
			if res.Accepted {
				reply.Applied = true
				break
			}
		}
		r.syncTicker(false)

	case InputTick:
		reply.Applied = r.engine.Tick()
		r.syncTicker(false)

	case InputReset:
		r.engine.Reset()
		reply.Applied = true
		r.syncTicker(false)

	case InputSnapshot:

	case InputRestore:
		if err := r.engine.SetState(in.State); err != nil {
			return Reply{Err: err}
		}
		reply.Applied = true
		r.syncTicker(true)

	default:
		return Reply{Err: errors.New("unknown input kind")}
	}

	reply.State = r.engine.GetState()
	if in.Kind != InputSnapshot && (reply.Applied || len(reply.Results) > 0) {
		r.logTransition(before)
		r.publish()
	}
	return reply
}

// syncTicker keeps the ticker running exactly while the round is active.
// restart replaces a running ticker so ticks of a previous round are dropped.
func (r *Runner) syncTicker(restart bool) {
	active := r.engine.Phase() == engine.PhaseActive
	if restart || !active {
		r.stopTicker()
	}
	if active && r.ticker == nil && !r.manual {
		r.ticker = r.newTicker(r.engine.TickInterval())
	}
}

func (r *Runner) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

func (r *Runner) publish() {
	if r.onUpdate != nil {
		r.onUpdate(r.engine.GetState())
	}
}

func (r *Runner) logTransition(before engine.Phase) {
	if before != engine.PhaseActive || r.engine.Phase() != engine.PhaseConcluded {
		return
	}
	r.logger.WithFields(log.Fields{
		"round":   r.engine.RoundID(),
		"outcome": r.engine.Outcome(),
		"moves":   r.engine.GetMoves(),
	}).Info("round concluded")
}

// Submit sends an input to the loop and waits for its reply
func (r *Runner) Submit(ctx context.Context, in Input) (Reply, error) {
	req := request{input: in, reply: make(chan Reply, 1)}

	select {
	case r.requests <- req:
	case <-r.done:
		return Reply{}, ErrRunnerStopped
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply, reply.Err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// StartRound begins a new round. A non-nil config replaces the current one.
func (r *Runner) StartRound(ctx context.Context, config *engine.GameConfig) (*engine.GameState, error) {
	reply, err := r.Submit(ctx, Input{Kind: InputStart, Config: config})
	return reply.State, err
}

// Move applies one directional command
func (r *Runner) Move(ctx context.Context, direction engine.Direction) (engine.MoveResult, *engine.GameState, error) {
	reply, err := r.Submit(ctx, Input{Kind: InputCommand, Direction: direction})
	if err != nil {
		return engine.MoveResult{}, nil, err
	}
	return reply.Results[0], reply.State, nil
}

// BulkMove applies commands in order, stopping once the round concludes
func (r *Runner) BulkMove(ctx context.Context, directions []engine.Direction) ([]engine.MoveResult, *engine.GameState, error) {
	reply, err := r.Submit(ctx, Input{Kind: InputBulk, Directions: directions})
	return reply.Results, reply.State, err
}

// Tick advances the pursuers once outside the ticker schedule
func (r *Runner) Tick(ctx context.Context) (bool, *engine.GameState, error) {
	reply, err := r.Submit(ctx, Input{Kind: InputTick})
	return reply.Applied, reply.State, err
}

// Reset abandons the current round
func (r *Runner) Reset(ctx context.Context) (*engine.GameState, error) {
	reply, err := r.Submit(ctx, Input{Kind: InputReset})
	return reply.State, err
}

// Snapshot returns the current state without changing it
func (r *Runner) Snapshot(ctx context.Context) (*engine.GameState, error) {
	reply, err := r.Submit(ctx, Input{Kind: InputSnapshot})
	return reply.State, err
}

// Restore loads a snapshot; an active snapshot resumes ticking
func (r *Runner) Restore(ctx context.Context, state *engine.GameState) error {
	_, err := r.Submit(ctx, Input{Kind: InputRestore, State: state})
	return err
}
