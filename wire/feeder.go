package wire

import "encoding/binary"

// MaxFrameSize is the design ceiling on a single frame's payload length.
const MaxFrameSize = 1 << 20 // 1 MiB

type feederState uint8

const (
	awaitingLength feederState = iota
	awaitingBody
)

// Feeder turns an arbitrarily-chunked byte stream into a sequence of
// Packets. It retains any unconsumed bytes between calls, so a caller may
// feed it one byte at a time or a whole TCP read at once and get the same
// sequence of decoded packets out.
type Feeder struct {
	registry *Registry
	buf      []byte
	state    feederState
	bodyLen  uint32
}

// NewFeeder returns a Feeder that resolves incoming command ids against
// registry.
func NewFeeder(registry *Registry) *Feeder {
	return &Feeder{registry: registry, state: awaitingLength}
}

// Feed appends chunk to the internal buffer and attempts to produce at
// most one Packet. It returns (nil, nil) when more bytes are needed.
//
// Two error shapes can come back: a validation error (IsValidation) means
// a well-framed but malformed body was consumed and discarded — framing
// stays synchronized, so the caller should log it and keep reading. A
// framing error (IsFraming) means the length prefix itself exceeded
// MaxFrameSize; the caller must abort the connection, since framing can
// no longer be trusted.
func (f *Feeder) Feed(chunk []byte) (*Packet, error) {
	f.buf = append(f.buf, chunk...)

	for {
		switch f.state {
		case awaitingLength:
			if len(f.buf) < 4 {
				return nil, nil
			}
			n := binary.LittleEndian.Uint32(f.buf[:4])
			if n > MaxFrameSize {
				return nil, newFraming(CodeFramingTooLarge, "frame length %d exceeds maximum %d", n, MaxFrameSize)
			}
			f.buf = f.buf[4:]
			f.bodyLen = n
			f.state = awaitingBody

		case awaitingBody:
			if uint32(len(f.buf)) < f.bodyLen {
				return nil, nil
			}
			body := f.buf[:f.bodyLen]
			f.buf = f.buf[f.bodyLen:]
			f.state = awaitingLength

			return f.unpackBody(body)
		}
	}
}

func (f *Feeder) unpackBody(body []byte) (*Packet, error) {
	if len(body) < 1 {
		return nil, newValidation(CodeValidationTruncated, "empty frame body")
	}
	spec, ok := f.registry.ByID(body[0])
	if !ok {
		return nil, newValidation(CodeValidationUnknownCommand, "unknown command id %d", body[0])
	}
	return Unpack(spec, body)
}
