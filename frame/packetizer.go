package frame

// packetizer accumulates pixel units into frames of at most limit payload
// bytes. A unit is never split across frames.
type packetizer struct {
	op     Opcode
	limit  int
	frames []Frame
	buf    []byte
	origin [2]byte
}

func newPacketizer(op Opcode, limit uint8, size int) *packetizer {
	n := 0
	if limit > 0 {
		n = (size + int(limit) - 1) / int(limit)
	}
	return &packetizer{
		op:     op,
		limit:  int(limit),
		frames: make([]Frame, 0, n),
		buf:    make([]byte, 0, limit),
	}
}

// add appends one unit located at (a, b). When the unit does not fit the
// current frame, the frame is flushed and the unit starts a new one tagged
// with (a, b).
func (p *packetizer) add(a, b byte, unit ...byte) {
	if len(p.buf)+len(unit) > p.limit {
		p.flush()
	}
	if len(p.buf) == 0 {
		p.origin = [2]byte{a, b}
	}
	p.buf = append(p.buf, unit...)
}

func (p *packetizer) flush() {
	if len(p.buf) == 0 {
		return
	}
	p.frames = append(p.frames, Frame{
		Opcode:    p.op,
		MaxLength: uint8(p.limit),
		Origin:    p.origin,
		Payload:   p.buf,
	})
	p.buf = make([]byte, 0, p.limit)
}

// done flushes the trailing partial frame and returns all frames.
func (p *packetizer) done() []Frame {
	p.flush()
	return p.frames
}
