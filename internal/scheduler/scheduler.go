package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a single fetch when no timeout is configured.
const DefaultFetchTimeout = 15 * time.Second

// Scheduler drives the polling tasks of mounted pages.
type Scheduler struct {
	logger       *zap.Logger
	fetchTimeout time.Duration
	hooks        Hooks
}

type Option func(*Scheduler)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFetchTimeout sets the per-fetch deadline. Zero disables it.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.fetchTimeout = d }
}

func WithHooks(h Hooks) Option {
	return func(s *Scheduler) { s.hooks = h }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:       zap.NewNop(),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mount starts one loop per task. Each loop fetches immediately, then
// follows its cadence until the page is torn down.
func (s *Scheduler) Mount(page string, tasks []Task) *Page {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Page{
		name:   page,
		s:      s,
		ctx:    ctx,
		cancel: cancel,
		loops:  make(map[string]*loop, len(tasks)),
		logger: s.logger.With(zap.String("page", page)),
	}
	for _, t := range tasks {
		l := &loop{task: t, trigger: make(chan struct{}, 1)}
		p.loops[t.Name] = l
		p.order = append(p.order, t.Name)
	}

	p.logger.Debug("page mounted", zap.Int("tasks", len(tasks)))
	for _, name := range p.order {
		p.wg.Add(1)
		go p.run(p.loops[name])
	}
	return p
}

// Page is the set of polling loops bound to one mounted page.
type Page struct {
	name   string
	s      *Scheduler
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	loops  map[string]*loop
	order  []string
	logger *zap.Logger

	down atomic.Bool
}

type loop struct {
	task    Task
	state   atomic.Int32
	outcome atomic.Int32
	runs    atomic.Int64
	trigger chan struct{}
}

func (l *loop) setState(s State) { l.state.Store(int32(s)) }

func (p *Page) Name() string { return p.name }

// Tasks lists the task names in mount order.
func (p *Page) Tasks() []string {
	return append([]string(nil), p.order...)
}

// State returns the current state of task.
func (p *Page) State(task string) (State, error) {
	l, ok := p.loops[task]
	if !ok {
		return StateIdle, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	return State(l.state.Load()), nil
}

// LastOutcome returns StateSucceeded or StateFailed for the last completed
// cycle of task, or StateIdle if none completed yet.
func (p *Page) LastOutcome(task string) State {
	if l, ok := p.loops[task]; ok {
		return State(l.outcome.Load())
	}
	return StateIdle
}

// Runs returns how many cycles of task have started.
func (p *Page) Runs(task string) int64 {
	if l, ok := p.loops[task]; ok {
		return l.runs.Load()
	}
	return 0
}

// Trigger asks for an immediate extra cycle of task. Requests made while a
// cycle is pending or running coalesce into one; cycles never overlap.
func (p *Page) Trigger(task string) error {
	if p.down.Load() {
		return ErrTornDown
	}
	l, ok := p.loops[task]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	select {
	case l.trigger <- struct{}{}:
	default:
	}
	return nil
}

// TriggerAll triggers every task of the page.
func (p *Page) TriggerAll() {
	for _, name := range p.order {
		_ = p.Trigger(name)
	}
}

// Teardown stops every loop and waits for them to exit. In-flight fetches
// are cancelled and their outcome discarded. No cycle starts after Teardown
// returns; calling it again is a no-op.
func (p *Page) Teardown() {
	if !p.down.CompareAndSwap(false, true) {
		p.wg.Wait()
		return
	}
	p.cancel()
	p.wg.Wait()
	p.logger.Debug("page torn down")
}

func (p *Page) run(l *loop) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			return
		}
		started := time.Now()
		p.cycle(l)
		if p.ctx.Err() != nil {
			return
		}

		if l.task.Cadence.OneShot() {
			l.setState(StateTerminal)
			select {
			case <-p.ctx.Done():
				return
			case <-l.trigger:
			}
			continue
		}

		l.setState(StateIdle)
		wait := l.task.Cadence.Interval - time.Since(started)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-p.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-l.trigger:
			timer.Stop()
		}
	}
}

func (p *Page) cycle(l *loop) {
	l.runs.Add(1)
	l.setState(StateFetching)

	ctx := p.ctx
	if p.s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.s.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	err := safeRun(ctx, l.task.Run)
	took := time.Since(start)

	if p.ctx.Err() != nil {
		// torn down mid-flight, outcome is discarded
		return
	}

	if err != nil {
		l.setState(StateFailed)
		l.outcome.Store(int32(StateFailed))
		p.logger.Warn("task cycle failed",
			zap.String("task", l.task.Name),
			zap.Duration("took", took),
			zap.Error(err),
		)
	} else {
		l.setState(StateSucceeded)
		l.outcome.Store(int32(StateSucceeded))
		p.logger.Debug("task cycle done",
			zap.String("task", l.task.Name),
			zap.Duration("took", took),
		)
	}
	if p.s.hooks.OnCycle != nil {
		p.s.hooks.OnCycle(p.name, l.task.Name, took, err)
	}
}

func safeRun(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	if run == nil {
		return nil
	}
	return run(ctx)
}
