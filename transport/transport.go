package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/reactor"
)

// chunkSize matches the spec's edge-triggered read size: large enough to
// amortize syscalls, small enough to keep per-read allocations bounded.
const chunkSize = 1024

// Context is the read-only connection identity a Protocol may need:
// where the socket is and how to close it. It is never used to reach into
// the Transport's buffers.
type Context interface {
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	Close() error
}

// Reader is the inbound half a Transport drives: DataReceived is invoked
// once per framing-relevant chunk, on the reactor loop goroutine.
type Reader interface {
	DataReceived(data []byte)
}

// Writer is the side a Protocol uses to queue outbound bytes. Write only
// appends; it never blocks on the socket.
type Writer interface {
	Write(data []byte) (int, error)
}

// Protocol is the application-logic layer a Transport drives. Exactly one
// Protocol is created per accepted connection.
type Protocol interface {
	Reader
	// ConnectionMade is called once, after the Transport is ready to
	// write, and before any DataReceived call.
	ConnectionMade(t *Transport)
	// ConnectionLost is called exactly once, however the connection
	// ended; reason is nil on a clean close.
	ConnectionLost(reason error)
}

// Transport owns one accepted socket and the outbound buffer queued for
// it. It holds a back-reference to its Protocol used only to deliver
// incoming data and lifecycle notifications — ownership flows Protocol -> Transport,
// never the other way, so there is no cycle to break at cleanup.
type Transport struct {
	conn     net.Conn
	protocol Protocol
	loop     *reactor.Loop
	log      logger.Logger
	onState  StateFunc

	mu     sync.Mutex
	closed atomic.Bool

	writeCh chan []byte
	doneCh  chan struct{}
	flushCh chan struct{}
	flushed chan struct{}
}

func newTransport(conn net.Conn, loop *reactor.Loop, log logger.Logger, onState StateFunc) *Transport {
	t := &Transport{
		conn:    conn,
		loop:    loop,
		log:     log,
		onState: onState,
		writeCh: make(chan []byte, 64),
		doneCh:  make(chan struct{}),
		flushCh: make(chan struct{}),
		flushed: make(chan struct{}),
	}
	go t.writeLoop()
	return t
}

// LocalAddr returns the socket's local address.
func (t *Transport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

// RemoteAddr returns the socket's remote address.
func (t *Transport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

// Write appends data to the outbound queue. It returns immediately; the
// bytes are flushed by a dedicated writer goroutine, matching the spec's
// "write only appends, never sends directly" contract without requiring a
// literal WRITABLE-readiness poll, since net.Conn.Write already blocks
// only the writer goroutine, never the loop.
func (t *Transport) Write(data []byte) (int, error) {
	if t.closed.Load() {
		return 0, net.ErrClosed
	}
	cp := append([]byte(nil), data...)
	select {
	case t.writeCh <- cp:
		return len(data), nil
	case <-t.doneCh:
		return 0, net.ErrClosed
	}
}

func (t *Transport) writeLoop() {
	defer close(t.flushed)
	for {
		select {
		case chunk := <-t.writeCh:
			if _, err := t.conn.Write(chunk); err != nil {
				t.abort(err)
				return
			}
			t.report(StateWrite)
		case <-t.doneCh:
			return
		case <-t.flushCh:
			t.drainWrites()
			return
		}
	}
}

// drainWrites flushes whatever is already queued in writeCh before a clean
// Close. It never blocks waiting for more: only what was queued before the
// flush was requested gets sent.
func (t *Transport) drainWrites() {
	for {
		select {
		case chunk := <-t.writeCh:
			if _, err := t.conn.Write(chunk); err != nil {
				return
			}
			t.report(StateWrite)
		default:
			return
		}
	}
}

// readLoop drains the socket until EOF or error, handing every chunk to
// the protocol on the reactor loop goroutine so a single connection's
// bytes are always processed in arrival order.
func (t *Transport) readLoop() {
	buf := make([]byte, chunkSize)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			t.report(StateRead)
			done := make(chan struct{})
			t.loop.CallSoonThreadsafe(func(*reactor.Loop) {
				t.report(StateHandler)
				t.protocol.DataReceived(chunk)
				close(done)
			})
			<-done
		}
		if err != nil {
			t.abort(err)
			return
		}
	}
}

// abort tears the transport down immediately: closes the socket, notifies
// the protocol exactly once, and is safe to call more than once or
// concurrently with Close. Used for read/write errors, where the socket is
// already broken and there is nothing left worth flushing.
func (t *Transport) abort(reason error) {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}
	close(t.doneCh)
	_ = t.conn.Close()
	t.report(StateClose)
	if t.protocol != nil {
		t.protocol.ConnectionLost(reason)
	}
}

// Close ends the connection cleanly: it first flushes whatever the
// protocol has already queued on Write (e.g. a reply sent just before
// closing, as QUIT and FINISH do), then closes the socket. Without the
// flush, writeLoop's select between a pending write and doneCh closing
// could pick doneCh and drop the final reply.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(t.flushCh)
	<-t.flushed
	close(t.doneCh)
	_ = t.conn.Close()
	t.report(StateClose)
	if t.protocol != nil {
		t.protocol.ConnectionLost(nil)
	}
	return nil
}

func (t *Transport) report(state ConnState) {
	if t.onState == nil {
		return
	}
	t.onState(t.conn.LocalAddr(), t.conn.RemoteAddr(), state)
}
