package gateway

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionExists   = errors.New("a payment session is already open for this order")
	ErrSessionNotFound = errors.New("no open payment session for this order")
)

// Session is an open checkout waiting for the presentation layer.
type Session struct {
	Options  Options   `json:"options"`
	OpenedAt time.Time `json:"openedAt"`
}

type outcome struct {
	result *Result
	err    error
}

type pending struct {
	session Session
	done    chan outcome
}

// Bridge hands checkout sessions to the presentation layer, which runs the
// native gateway UI and reports back through Complete or Fail. Open blocks
// until then.
type Bridge struct {
	mu       sync.Mutex
	sessions map[string]*pending
	notify   func(Session)
}

// NewBridge returns a bridge; notify, if set, is called when a session opens.
func NewBridge(notify func(Session)) *Bridge {
	return &Bridge{sessions: make(map[string]*pending), notify: notify}
}

func (b *Bridge) Open(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &pending{
		session: Session{Options: opts, OpenedAt: time.Now()},
		done:    make(chan outcome, 1),
	}

	b.mu.Lock()
	if _, exists := b.sessions[opts.OrderID]; exists {
		b.mu.Unlock()
		return nil, ErrSessionExists
	}
	b.sessions[opts.OrderID] = p
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if b.sessions[opts.OrderID] == p {
			delete(b.sessions, opts.OrderID)
		}
		b.mu.Unlock()
	}()

	if b.notify != nil {
		b.notify(p.session)
	}

	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, &Error{Code: CodeCancelled, Description: CancelledDescription, Reason: ctx.Err().Error()}
	}
}

func (b *Bridge) Complete(orderID string, res Result) error {
	if res.OrderID == "" {
		res.OrderID = orderID
	}
	return b.resolve(orderID, outcome{result: &res})
}

func (b *Bridge) Fail(orderID string, gwErr *Error) error {
	if gwErr == nil {
		gwErr = &Error{Code: CodeCancelled, Description: CancelledDescription}
	}
	return b.resolve(orderID, outcome{err: gwErr})
}

func (b *Bridge) resolve(orderID string, o outcome) error {
	b.mu.Lock()
	p, ok := b.sessions[orderID]
	if ok {
		delete(b.sessions, orderID)
	}
	b.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	p.done <- o
	return nil
}

// Pending lists sessions waiting for the user.
func (b *Bridge) Pending() []Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Session, 0, len(b.sessions))
	for _, p := range b.sessions {
		out = append(out, p.session)
	}
	return out
}
