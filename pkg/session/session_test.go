package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/simmsg"
)

func attach(t *testing.T, hub *Hub, name string, opts simmsg.Options) *Endpoint {
	t.Helper()
	port, err := hub.Attach(name)
	require.NoError(t, err)
	t.Cleanup(port.Close)
	return NewEndpoint(simmsg.New(opts), port, 256, nil)
}

func TestSendReceiveReplyAcrossDataModels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub := NewHub()

	// the receiver is a 32-bit process; the sender talks to it in ILP32
	receiver := attach(t, hub, "receiver", simmsg.Options{
		OutgoingProfile: simmsg.ILP32,
		IncomingProfile: simmsg.ILP32,
	})
	sender := attach(t, hub, "sender", simmsg.Options{
		OutgoingProfile: simmsg.ILP32,
		IncomingProfile: simmsg.ILP32,
	})

	served := make(chan error, 1)
	go func() {
		a, err := receiver.Receive(ctx)
		if err != nil {
			served <- err
			return
		}
		vals, err := receiver.UnpackAll(simmsg.Binary, "hl5s")
		if err != nil {
			served <- err
			return
		}
		if err := receiver.Pack(simmsg.Binary, "hs", vals[0], "ok:"+vals[2].(string)); err != nil {
			served <- err
			return
		}
		_, err = receiver.Reply(ctx, a.Sender)
		served <- err
	}()

	id, err := sender.Locate(ctx, "receiver")
	require.NoError(t, err)
	require.NoError(t, sender.Pack(simmsg.Binary, "hls", 12, 1<<30, "hello"))
	n, err := sender.Send(ctx, id)
	require.NoError(t, err)
	require.NoError(t, <-served)

	assert.Equal(t, 0, sender.OutgoingLen(), "outgoing is cleared after send")
	assert.Equal(t, 0, receiver.OutgoingLen(), "outgoing is cleared after reply")
	assert.Equal(t, 10, n)

	vals, err := sender.UnpackAll(simmsg.Binary, "h8s")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(12), "ok:hello"}, vals)
}

func TestTriggerDeliversProxy(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub := NewHub()
	receiver := attach(t, hub, "poller", simmsg.Options{})
	sender := attach(t, hub, "trigger", simmsg.Options{})

	id, err := sender.Locate(ctx, "poller")
	require.NoError(t, err)
	require.NoError(t, sender.Trigger(ctx, id, 42))

	a, err := receiver.Receive(ctx)
	require.NoError(t, err)
	assert.True(t, a.Triggered)
	assert.Equal(t, 42, a.Proxy)
	assert.Zero(t, a.Size)

	assert.ErrorIs(t, sender.Trigger(ctx, id, -1), ErrNegativeProxy)
}

func TestErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	hub := NewHub()
	ep := attach(t, hub, "lonely", simmsg.Options{})

	_, err := hub.Attach("lonely")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = ep.Locate(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUnknownName)

	require.NoError(t, ep.Pack(simmsg.Binary, "i", 1))
	_, err = ep.Send(ctx, 999)
	assert.ErrorIs(t, err, ErrUnknownID)
	assert.Equal(t, 0, ep.OutgoingLen())

	_, err = ep.Reply(ctx, 3)
	assert.ErrorIs(t, err, ErrNoPendingSend)
}

func TestOversizedMessageIsRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub := NewHub()
	port, err := hub.Attach("small")
	require.NoError(t, err)
	defer port.Close()
	small := NewEndpoint(simmsg.New(simmsg.Options{}), port, 4, nil)
	big := attach(t, hub, "big", simmsg.Options{})

	received := make(chan error, 1)
	go func() {
		_, err := small.Receive(ctx)
		received <- err
	}()

	require.NoError(t, big.Pack(simmsg.Binary, "D", []float64{1, 2}))
	_, err = big.Send(ctx, port.ID())
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.ErrorIs(t, <-received, ErrMessageTooLarge)
}

func TestOversizedReplyFailsBothEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub := NewHub()
	server := attach(t, hub, "server", simmsg.Options{})
	port, err := hub.Attach("tiny")
	require.NoError(t, err)
	defer port.Close()
	client := NewEndpoint(simmsg.New(simmsg.Options{}), port, 4, nil)

	replied := make(chan error, 1)
	go func() {
		a, err := server.Receive(ctx)
		if err != nil {
			replied <- err
			return
		}
		if err := server.Pack(simmsg.Binary, "D", []float64{1, 2}); err != nil {
			replied <- err
			return
		}
		_, err = server.Reply(ctx, a.Sender)
		replied <- err
	}()

	id, err := client.Locate(ctx, "server")
	require.NoError(t, err)
	require.NoError(t, client.Pack(simmsg.Binary, "h", 1))
	_, err = client.Send(ctx, id)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.ErrorIs(t, <-replied, ErrMessageTooLarge)
	assert.Zero(t, server.OutgoingLen(), "outgoing is cleared after a failed reply")
}

func TestReceiveHonoursContext(t *testing.T) {
	hub := NewHub()
	ep := attach(t, hub, "idle", simmsg.Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ep.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
