// Package session connects a simmsg.Marshaller to a message transport.
//
// The transport moves opaque byte buffers between named processes; the
// Endpoint owns the buffer discipline around each call: the incoming buffer
// is reset to capacity before anything can arrive, and the outgoing buffer
// is cleared once it has been handed off.
package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rawbytedev/simmsg"
)

// Arrival describes what Receive delivered. A trigger carries a proxy value
// and no message bytes.
type Arrival struct {
	Size      int
	Sender    int
	Proxy     int
	Triggered bool
}

// Transport is the blocking point-to-point message service.
type Transport interface {
	// Locate resolves a receiver name to a connection id.
	Locate(ctx context.Context, name string) (int, error)
	// Send delivers out to id and blocks until the reply is copied into in.
	Send(ctx context.Context, id int, out, in []byte) (int, error)
	// Receive blocks until a message or trigger arrives, copying any
	// message into in.
	Receive(ctx context.Context, in []byte) (Arrival, error)
	// Reply answers the pending Send of sender with out.
	Reply(ctx context.Context, sender int, out []byte) (int, error)
	// Trigger delivers a proxy value to id without waiting.
	Trigger(ctx context.Context, id int, proxy int) error
}

// Endpoint pairs a Marshaller with a Transport. Like the Marshaller it is
// meant for a single conversation at a time.
type Endpoint struct {
	*simmsg.Marshaller
	transport Transport
	capacity  int
	log       zerolog.Logger
}

// NewEndpoint wraps m. capacity is the largest message this endpoint
// accepts, in either direction of a reply.
func NewEndpoint(m *simmsg.Marshaller, t Transport, capacity int, log *zerolog.Logger) *Endpoint {
	e := &Endpoint{Marshaller: m, transport: t, capacity: capacity, log: zerolog.Nop()}
	if log != nil {
		e.log = log.With().Str("component", "session").Logger()
	}
	m.ResetIncoming(capacity)
	m.ResetOutgoing()
	return e
}

func (e *Endpoint) Locate(ctx context.Context, name string) (int, error) {
	id, err := e.transport.Locate(ctx, name)
	if err != nil {
		e.log.Warn().Err(err).Str("name", name).Msg("locate failed")
		return -1, err
	}
	e.log.Debug().Str("name", name).Int("id", id).Msg("located")
	return id, nil
}

// Send delivers the outgoing buffer to id and waits for the reply, which
// is left in the incoming buffer. The outgoing buffer is cleared either way.
func (e *Endpoint) Send(ctx context.Context, id int) (int, error) {
	e.ResetIncoming(e.capacity)
	out := e.ReadOutgoing()
	n, err := e.transport.Send(ctx, id, out, e.IncomingBuffer())
	e.ResetOutgoing()
	if err != nil {
		e.log.Warn().Err(err).Int("id", id).Msg("send failed")
		return -1, err
	}
	e.log.Debug().Int("id", id).Int("sent", len(out)).Int("replied", n).Msg("send complete")
	return n, nil
}

// Receive waits for the next message or trigger. Message bytes land in the
// incoming buffer.
func (e *Endpoint) Receive(ctx context.Context) (Arrival, error) {
	e.ResetIncoming(e.capacity)
	a, err := e.transport.Receive(ctx, e.IncomingBuffer())
	if err != nil {
		e.log.Warn().Err(err).Msg("receive failed")
		return Arrival{}, err
	}
	e.log.Debug().Int("sender", a.Sender).Int("size", a.Size).Bool("triggered", a.Triggered).Msg("received")
	return a, nil
}

// Reply answers sender with the outgoing buffer and clears it.
func (e *Endpoint) Reply(ctx context.Context, sender int) (int, error) {
	n, err := e.transport.Reply(ctx, sender, e.ReadOutgoing())
	e.ResetOutgoing()
	if err != nil {
		e.log.Warn().Err(err).Int("sender", sender).Msg("reply failed")
		return -1, err
	}
	return n, nil
}

// Trigger sends a proxy value to id.
func (e *Endpoint) Trigger(ctx context.Context, id, proxy int) error {
	if err := e.transport.Trigger(ctx, id, proxy); err != nil {
		e.log.Warn().Err(err).Int("id", id).Msg("trigger failed")
		return err
	}
	return nil
}
