package simmsg

// outBuffer grows by appending; its length is the write cursor.
type outBuffer struct {
	data  []byte
	order ByteOrder
}

// inBuffer has a fixed capacity set by ResetIncoming and a read cursor
// that never passes the end.
type inBuffer struct {
	data   []byte
	cursor int
	order  ByteOrder
}

// ResetOutgoing empties the outgoing buffer.
func (m *Marshaller) ResetOutgoing() {
	m.out.data = m.out.data[:0]
}

// ResetIncoming reinitializes the incoming buffer to capacity zero bytes
// and rewinds the read cursor. The transport calls it before each receive.
func (m *Marshaller) ResetIncoming(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if cap(m.in.data) >= capacity {
		m.in.data = m.in.data[:capacity]
		clear(m.in.data)
	} else {
		m.in.data = make([]byte, capacity)
	}
	m.in.cursor = 0
}

// CrossCopy copies the outgoing buffer into the incoming buffer and rewinds
// the read cursor, so a message can be unpacked by the process that built it.
func (m *Marshaller) CrossCopy() {
	m.in.data = append(m.in.data[:0], m.out.data...)
	m.in.cursor = 0
}

// LoadOutgoing replaces the outgoing buffer with a copy of b. The bytes are
// not interpreted.
func (m *Marshaller) LoadOutgoing(b []byte) {
	m.out.data = append(m.out.data[:0], b...)
}

// ReadOutgoing returns a copy of the outgoing buffer.
func (m *Marshaller) ReadOutgoing() []byte {
	return append([]byte(nil), m.out.data...)
}

// ReadIncoming returns a copy of the incoming buffer.
func (m *Marshaller) ReadIncoming() []byte {
	return append([]byte(nil), m.in.data...)
}

// IncomingBuffer exposes the incoming buffer for a transport to receive
// into. It is only valid until the next ResetIncoming or CrossCopy.
func (m *Marshaller) IncomingBuffer() []byte {
	return m.in.data
}

// OutgoingLen is the write cursor of the outgoing buffer.
func (m *Marshaller) OutgoingLen() int { return len(m.out.data) }

// IncomingCursor is the read cursor of the incoming buffer.
func (m *Marshaller) IncomingCursor() int { return m.in.cursor }

// IncomingCap is the size of the incoming buffer.
func (m *Marshaller) IncomingCap() int { return len(m.in.data) }
