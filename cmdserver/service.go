package cmdserver

import (
	"context"
	"net"

	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/metrics"
	"github.com/lud4ik/cmdnet/protocol"
	"github.com/lud4ik/cmdnet/reactor"
	"github.com/lud4ik/cmdnet/session"
	"github.com/lud4ik/cmdnet/transport"
	"github.com/lud4ik/cmdnet/wire"
)

// service owns every piece of server-side state: the reactor loop, the
// accept-loop factory, the packet registry and the session generator. Its
// exported name is Service; the lower-case alias lets cmdserver's other
// files, which hold a *service back-reference, refer to it without
// repeating the package name.
type service = Service

// Service runs the command server: it accepts connections, assigns
// sessions, dispatches commands and shuts down cleanly on FINISH.
type Service struct {
	log      logger.Logger
	metrics  *metrics.Metrics
	registry *wire.Registry
	gen      session.Generator

	loop    *reactor.Loop
	factory *transport.Factory

	finished chan struct{}
}

// NewService declares the packet registry, builds the reactor loop and
// binds the listening socket at addr, without yet accepting connections.
func NewService(addr string, log logger.Logger, m *metrics.Metrics, gen session.Generator) (*Service, error) {
	reg, err := protocol.NewRegistry()
	if err != nil {
		return nil, err
	}

	s := &Service{
		log:      log,
		metrics:  m,
		registry: reg,
		gen:      gen,
		finished: make(chan struct{}, 1),
	}

	s.loop = reactor.New(log)
	s.factory = transport.NewFactory(s.loop, log, s.newProtocol)
	s.factory.OnState(func(local, remote net.Addr, state transport.ConnState) {
		log.Debug("connection state", logger.Fields{"local": local, "remote": remote, "state": state.String()})
	})

	if err := s.factory.RegisterServer(addr); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) newProtocol() transport.Protocol {
	return &serverProtocol{svc: s}
}

func (s *Service) sessions() string {
	if s.gen != nil {
		return s.gen()
	}
	return session.Fresh()
}

// Addr returns the bound listening address.
func (s *Service) Addr() net.Addr {
	return s.factory.Addr()
}

func (s *Service) triggerFinish() {
	select {
	case s.finished <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, the listener fails, or a client
// sends FINISH, then shuts everything down and returns.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- s.loop.Run(ctx) }()

	listenDone := make(chan error, 1)
	go func() { listenDone <- s.factory.Listen(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
	case <-s.finished:
		s.log.Info("shutting down after FINISH", nil)
	case err := <-listenDone:
		if err != nil {
			s.log.Error("listener stopped unexpectedly", logger.Fields{"err": err})
			runErr = err
		}
	}

	cancel()
	_ = s.factory.Shutdown(context.Background())
	s.loop.Stop()
	<-loopDone

	return runErr
}
