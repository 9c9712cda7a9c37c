package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNameTaken       = errors.New("session: name already attached")
	ErrUnknownName     = errors.New("session: no receiver with that name")
	ErrUnknownID       = errors.New("session: no receiver with that id")
	ErrNoPendingSend   = errors.New("session: no send awaiting a reply")
	ErrMessageTooLarge = errors.New("session: message larger than receive buffer")
	ErrNegativeProxy   = errors.New("session: proxy must not be negative")
	ErrClosed          = errors.New("session: port closed")
)

const inboxDepth = 16

// Hub is an in-process Transport: every attached Port can locate, send to
// and trigger every other Port by name.
type Hub struct {
	mu    sync.Mutex
	ports map[int]*Port
	names map[string]int
	next  int
}

func NewHub() *Hub {
	return &Hub{ports: make(map[int]*Port), names: make(map[string]int)}
}

// Attach registers name and returns its Port.
func (h *Hub) Attach(name string) (*Port, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.names[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	p := &Port{
		hub:     h,
		id:      h.next,
		name:    name,
		inbox:   make(chan envelope, inboxDepth),
		done:    make(chan struct{}),
		pending: make(map[int]pendingSend),
	}
	h.next++
	h.ports[p.id] = p
	h.names[name] = p.id
	return p, nil
}

func (h *Hub) port(id int) (*Port, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.ports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return p, nil
}

type envelope struct {
	from      int
	payload   []byte
	reply     chan result
	replyCap  int
	proxy     int
	triggered bool
}

// pendingSend is a received message still waiting for its reply.
type pendingSend struct {
	reply    chan result
	capacity int
}

type result struct {
	data []byte
	err  error
}

// Port is one process's attachment to a Hub. It implements Transport.
type Port struct {
	hub   *Hub
	id    int
	name  string
	inbox chan envelope
	done  chan struct{}

	mu      sync.Mutex
	pending map[int]pendingSend
	closed  bool
}

func (p *Port) ID() int { return p.id }

// Close detaches the port. Senders still waiting on it get ErrClosed.
func (p *Port) Close() {
	p.hub.mu.Lock()
	delete(p.hub.ports, p.id)
	delete(p.hub.names, p.name)
	p.hub.mu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
	for from, ps := range p.pending {
		ps.reply <- result{err: ErrClosed}
		delete(p.pending, from)
	}
	for {
		select {
		case env := <-p.inbox:
			if env.reply != nil {
				env.reply <- result{err: ErrClosed}
			}
		default:
			return
		}
	}
}

func (p *Port) Locate(ctx context.Context, name string) (int, error) {
	p.hub.mu.Lock()
	defer p.hub.mu.Unlock()
	id, ok := p.hub.names[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return id, nil
}

func (p *Port) deliver(ctx context.Context, target *Port, env envelope) error {
	select {
	case target.inbox <- env:
		return nil
	case <-target.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Port) Send(ctx context.Context, id int, out, in []byte) (int, error) {
	target, err := p.hub.port(id)
	if err != nil {
		return -1, err
	}
	reply := make(chan result, 1)
	env := envelope{from: p.id, payload: append([]byte(nil), out...), reply: reply, replyCap: len(in)}
	if err := p.deliver(ctx, target, env); err != nil {
		return -1, err
	}
	select {
	case r := <-reply:
		if r.err != nil {
			return -1, r.err
		}
		if len(r.data) > len(in) {
			return -1, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(r.data), len(in))
		}
		return copy(in, r.data), nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

func (p *Port) Receive(ctx context.Context, in []byte) (Arrival, error) {
	select {
	case env := <-p.inbox:
		if env.triggered {
			return Arrival{Sender: env.from, Proxy: env.proxy, Triggered: true}, nil
		}
		if len(env.payload) > len(in) {
			err := fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(env.payload), len(in))
			env.reply <- result{err: err}
			return Arrival{}, err
		}
		n := copy(in, env.payload)
		p.mu.Lock()
		p.pending[env.from] = pendingSend{reply: env.reply, capacity: env.replyCap}
		p.mu.Unlock()
		return Arrival{Size: n, Sender: env.from}, nil
	case <-p.done:
		return Arrival{}, ErrClosed
	case <-ctx.Done():
		return Arrival{}, ctx.Err()
	}
}

// Reply answers sender. A reply larger than the sender's receive buffer
// fails on both ends.
func (p *Port) Reply(ctx context.Context, sender int, out []byte) (int, error) {
	p.mu.Lock()
	ps, ok := p.pending[sender]
	delete(p.pending, sender)
	p.mu.Unlock()
	if !ok {
		return -1, fmt.Errorf("%w: sender %d", ErrNoPendingSend, sender)
	}
	if len(out) > ps.capacity {
		err := fmt.Errorf("%w: reply %d > %d", ErrMessageTooLarge, len(out), ps.capacity)
		ps.reply <- result{err: err}
		return -1, err
	}
	ps.reply <- result{data: append([]byte(nil), out...)}
	return len(out), nil
}

func (p *Port) Trigger(ctx context.Context, id int, proxy int) error {
	if proxy < 0 {
		return ErrNegativeProxy
	}
	target, err := p.hub.port(id)
	if err != nil {
		return err
	}
	return p.deliver(ctx, target, envelope{from: p.id, proxy: proxy, triggered: true})
}
