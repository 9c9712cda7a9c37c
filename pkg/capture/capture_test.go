package capture

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/simmsg"
)

func TestWriteReadReplay(t *testing.T) {
	sender := simmsg.New(simmsg.Options{OutgoingProfile: simmsg.ILP32, OutgoingOrder: simmsg.BigEndian})
	require.NoError(t, sender.Pack(simmsg.Binary, "hlsD", 7, 1234567, "hi", []float64{1.5, -2.25}))

	var stream bytes.Buffer
	w := NewWriter(&stream)
	frame := FromMarshaller(sender, simmsg.Outgoing, simmsg.Binary, "hl2s2D")
	require.NoError(t, w.Write(frame))
	require.NoError(t, w.Write(frame))

	r := NewReader(&stream)
	got, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, frame, got)
	assert.Equal(t, "ILP32", got.Profile)
	assert.Equal(t, "big", got.ByteOrder)

	_, err = r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)

	receiver := simmsg.New(simmsg.Options{})
	mode, err := Replay(receiver, got)
	require.NoError(t, err)
	assert.Equal(t, simmsg.Binary, mode)
	assert.Equal(t, simmsg.ILP32.Long, receiver.Profile(simmsg.Incoming).Long)

	vals, err := receiver.UnpackAll(mode, got.Schema)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7), int64(1234567), "hi", []float64{1.5, -2.25}}, vals)
}

func TestReadRejectsCorruption(t *testing.T) {
	var stream bytes.Buffer
	m := simmsg.New(simmsg.Options{})
	require.NoError(t, m.Pack(simmsg.Character, "i", 1))
	require.NoError(t, NewWriter(&stream).Write(FromMarshaller(m, simmsg.Outgoing, simmsg.Character, "i")))
	raw := stream.Bytes()

	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-6] ^= 0xFF
	_, err := NewReader(bytes.NewReader(flipped)).Read()
	assert.ErrorIs(t, err, ErrCRCMismatch)

	badMagic := append([]byte(nil), raw...)
	badMagic[0] = 'X'
	_, err = NewReader(bytes.NewReader(badMagic)).Read()
	assert.ErrorIs(t, err, ErrBadMagic)

	badVersion := append([]byte(nil), raw...)
	badVersion[2] = 9
	_, err = NewReader(bytes.NewReader(badVersion)).Read()
	assert.ErrorIs(t, err, ErrBadVersion)

	_, err = NewReader(bytes.NewReader(raw[:len(raw)-2])).Read()
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = NewReader(bytes.NewReader(raw[:3])).Read()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReplayRejectsBadSettings(t *testing.T) {
	m := simmsg.New(simmsg.Options{})
	_, err := Replay(m, Frame{Mode: "morse", IntWidth: 4, LongWidth: 8})
	assert.ErrorIs(t, err, ErrBadFrameFields)
	_, err = Replay(m, Frame{Mode: "binary", IntWidth: 0, LongWidth: 8})
	assert.ErrorIs(t, err, ErrBadFrameFields)
	_, err = Replay(m, Frame{Mode: "binary", IntWidth: 4, LongWidth: 8, ByteOrder: "sideways"})
	assert.ErrorIs(t, err, ErrBadFrameFields)
}

func TestReadRejectsUndecodableBody(t *testing.T) {
	// a well framed record whose body is not a CBOR frame
	raw := encodeRecord(nil, []byte{0xff, 0x00})
	_, err := NewReader(bytes.NewReader(raw)).Read()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCRCMismatch)

	var stream bytes.Buffer
	require.NoError(t, NewWriter(&stream).Write(Frame{Mode: "binary", IntWidth: 4, LongWidth: 8, Payload: []byte{1, 2}}))
	got, err := NewReader(&stream).Read()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got.Payload)
}
