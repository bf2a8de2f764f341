package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// executor performs one effect. It returns the event the effect produced,
// or nil for effects that only have side effects.
type executor func(ctx context.Context, s State, e Effect) Event

// flow owns the state of one screen's attempts and runs them through the
// machine. Orchestrator and TopUp wrap it.
type flow struct {
	kind    domain.AttemptKind
	machine Machine
	exec    executor
	log     *slog.Logger
	now     func() time.Time
	newID   func() string

	mu    sync.Mutex
	state State
	busy  bool // set from the guard until the attempt settles

	// held while listeners run, never acquired with mu held
	notifyMu  sync.Mutex
	listeners map[int]func(domain.PaymentAttempt)
	nextSubID int
}

func newFlow(kind domain.AttemptKind, log *slog.Logger) *flow {
	f := &flow{
		kind:      kind,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
		listeners: make(map[int]func(domain.PaymentAttempt)),
	}
	f.state = NewState("", kind, "", decimal.Zero, f.now())
	return f
}

// claim is the double-submit guard. It fails while an attempt is running or
// after one succeeded and has not been reset.
func (f *flow) claim() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.state.Attempt.Phase
	if f.busy || p.IsProcessing() || p == domain.PhaseSuccess {
		return State{}, ErrAttemptInProgress
	}
	f.busy = true
	return f.state, nil
}

func (f *flow) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// apply feeds ev to the machine and stamps the result. Nothing is
// published until commit.
func (f *flow) apply(ctx context.Context, s State, ev Event) (State, []Effect, error) {
	next, effects, err := f.machine.Apply(s, ev)
	if err != nil {
		f.log.ErrorContext(ctx, "rejected transition", "attempt_id", s.Attempt.ID, "event", fmt.Sprintf("%T", ev), "error", err)
		return s, nil, err
	}
	next.Attempt.UpdatedAt = f.now()
	return next, effects, nil
}

// launch publishes s and drives the attempt in the background. The guard
// taken by claim is released once the attempt settles.
func (f *flow) launch(ctx context.Context, s State, effects []Effect) <-chan domain.PaymentAttempt {
	done := make(chan domain.PaymentAttempt, 1)
	f.commit(ctx, s)
	go func() {
		final := f.drive(ctx, s, effects)
		f.release()
		done <- final.Attempt
		close(done)
	}()
	return done
}

func settledChan(a domain.PaymentAttempt) <-chan domain.PaymentAttempt {
	done := make(chan domain.PaymentAttempt, 1)
	done <- a
	close(done)
	return done
}

// drive runs effects until the attempt settles. Side effects of a
// transition run before its new phase is published, so a success is only
// visible once the cart has been cleared. Remote calls run after it.
func (f *flow) drive(ctx context.Context, s State, effects []Effect) State {
	for {
		var pending Event
		committed := false
		for _, e := range effects {
			if e.AwaitsResult() && !committed {
				f.commit(ctx, s)
				committed = true
			}
			if ev := f.exec(ctx, s, e); ev != nil {
				pending = ev
			}
		}
		if !committed {
			f.commit(ctx, s)
		}
		if pending == nil {
			return s
		}

		next, more, err := f.apply(ctx, s, pending)
		if err != nil {
			next, more, _ = f.apply(ctx, s, Failed{Message: fallbackFor(f.kind), Kind: domain.ErrorKindRemote})
		}
		s, effects = next, more
	}
}

func (f *flow) commit(ctx context.Context, s State) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	prev := f.state.Attempt
	f.state = s
	f.mu.Unlock()

	if samePhase(prev, s.Attempt) {
		return
	}
	f.log.InfoContext(ctx, "payment phase changed",
		"kind", s.Attempt.Kind,
		"attempt_id", s.Attempt.ID,
		"phase", s.Attempt.Phase,
		"order_id", s.Attempt.OrderID,
	)
	for _, fn := range f.listeners {
		fn(s.Attempt)
	}
}

func samePhase(a, b domain.PaymentAttempt) bool {
	return a.ID == b.ID && a.Phase == b.Phase && a.Error == b.Error
}

func (f *flow) current() domain.PaymentAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Attempt
}

func (f *flow) retry() (domain.PaymentAttempt, error) {
	s, err := f.claim()
	if err != nil {
		return f.current(), err
	}
	defer f.release()

	next, _, err := f.apply(context.Background(), s, Retry{})
	if err != nil {
		return s.Attempt, err
	}
	f.commit(context.Background(), next)
	return next.Attempt, nil
}

func (f *flow) reset() error {
	s, err := f.claimForReset()
	if err != nil {
		return err
	}
	defer f.release()
	if s.Attempt.ID == "" && s.Attempt.Phase == domain.PhaseIdle {
		return nil
	}
	f.commit(context.Background(), NewState("", f.kind, "", decimal.Zero, f.now()))
	return nil
}

// claimForReset is claim without the success check: a finished attempt may
// always be discarded.
func (f *flow) claimForReset() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy || f.state.Attempt.Phase.IsProcessing() {
		return State{}, ErrAttemptInProgress
	}
	f.busy = true
	return f.state, nil
}

func (f *flow) subscribe(fn func(domain.PaymentAttempt)) func() {
	f.notifyMu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.listeners[id] = fn
	f.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.notifyMu.Lock()
			delete(f.listeners, id)
			f.notifyMu.Unlock()
		})
	}
}

// callContext bounds one backend call.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
