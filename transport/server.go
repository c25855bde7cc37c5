package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/reactor"
)

// backlog mirrors the spec's listen backlog; Go's net package does not
// expose SO_REUSEADDR/backlog tuning directly, net.Listen already sets
// SO_REUSEADDR on the platforms this targets.
const backlog = 5

// Factory accepts connections on a single listening socket and tracks the
// set of live Transports, one per accepted connection. Clients are
// removed automatically when their Transport aborts.
type Factory struct {
	log         logger.Logger
	loop        *reactor.Loop
	newProtocol func() Protocol
	onState     StateFunc

	listener net.Listener

	mu      sync.Mutex
	clients map[*Transport]struct{}

	running atomic.Bool
}

// NewFactory returns a Factory whose accepted connections are driven by
// loop and whose application logic is newProtocol() per connection.
func NewFactory(loop *reactor.Loop, log logger.Logger, newProtocol func() Protocol) *Factory {
	return &Factory{
		log:         log,
		loop:        loop,
		newProtocol: newProtocol,
		clients:     make(map[*Transport]struct{}),
	}
}

// OnState installs an observer called on every connection's lifecycle
// transition. Must be called before Listen.
func (f *Factory) OnState(fn StateFunc) {
	f.onState = fn
}

// RegisterServer binds the listening socket at addr without yet accepting
// connections.
func (f *Factory) RegisterServer(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return newTransportError(CodeDialFailed, "listen %s: %v", addr, err)
	}
	f.listener = ln
	return nil
}

// Addr returns the bound listening address, useful when RegisterServer
// was called with port 0.
func (f *Factory) Addr() net.Addr {
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Listen accepts connections until ctx is cancelled or Shutdown is
// called. It blocks; callers typically run it in its own goroutine.
func (f *Factory) Listen(ctx context.Context) error {
	if f.listener == nil {
		return newTransportError(CodeNotRegistered, "RegisterServer must be called before Listen")
	}
	f.running.Store(true)
	defer f.running.Store(false)

	go func() {
		<-ctx.Done()
		_ = f.listener.Close()
	}()

	for {
		conn, err := f.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		f.handle(conn)
	}
}

func (f *Factory) handle(conn net.Conn) {
	t := newTransport(conn, f.loop, f.log, f.onState)
	proto := f.newProtocol()
	t.protocol = proto

	f.mu.Lock()
	f.clients[t] = struct{}{}
	f.mu.Unlock()

	t.report(StateNew)

	f.loop.CallSoonThreadsafe(func(*reactor.Loop) {
		proto.ConnectionMade(t)
	})

	go t.readLoop()
	go f.waitForClose(t)
}

// waitForClose removes t from the client set once its connection ends.
func (f *Factory) waitForClose(t *Transport) {
	<-t.doneCh
	f.mu.Lock()
	delete(f.clients, t)
	f.mu.Unlock()
}

// Broadcast sends data to a snapshot of the currently connected clients,
// so a handler iterating the result may freely disconnect clients (e.g.
// on QUIT) without corrupting the iteration.
func (f *Factory) Broadcast(data []byte) {
	for _, t := range f.Snapshot() {
		_, _ = t.Write(data)
	}
}

// Snapshot returns the currently connected transports.
func (f *Factory) Snapshot() []*Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Transport, 0, len(f.clients))
	for t := range f.clients {
		out = append(out, t)
	}
	return out
}

// OpenConnections returns the number of currently connected clients.
func (f *Factory) OpenConnections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// IsRunning reports whether Listen is currently accepting connections.
func (f *Factory) IsRunning() bool {
	return f.running.Load()
}

// Shutdown closes the listening socket and every client connection.
func (f *Factory) Shutdown(ctx context.Context) error {
	if f.listener != nil {
		_ = f.listener.Close()
	}
	for _, t := range f.Snapshot() {
		_ = t.Close()
	}
	return nil
}
