// Package cmdserver implements the server side of the command protocol:
// the five client-to-server commands, session assignment, broadcast
// semantics and shutdown, driven by the reactor loop and transport layer.
package cmdserver

import (
	"time"

	cerrors "github.com/lud4ik/cmdnet/errors"
	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/protocol"
	"github.com/lud4ik/cmdnet/reactor"
	"github.com/lud4ik/cmdnet/transport"
	"github.com/lud4ik/cmdnet/wire"
)

// DelayDuration is the fixed delay for DELAY -> DELAYED, per the spec's
// literal example (t0+5s). A var, not a const, so tests can shrink it.
var DelayDuration = 5 * time.Second

// serverProtocol is the transport.Protocol implementation created once
// per accepted connection.
type serverProtocol struct {
	svc     *service
	t       *transport.Transport
	feeder  *wire.Feeder
	session string
}

// ConnectionMade only assigns a session and initializes the feeder; the
// CONNECTED reply is emitted by onConnect, not here (a raw TCP accept is
// not a CONNECT command).
func (p *serverProtocol) ConnectionMade(t *transport.Transport) {
	p.t = t
	p.feeder = wire.NewFeeder(p.svc.registry)
	p.session = p.svc.sessions()

	p.svc.metrics.ConnectionsOpen.Inc()
	p.svc.log.Info("client connected", logger.Fields{"session": p.session, "remote": t.RemoteAddr()})
}

func (p *serverProtocol) DataReceived(data []byte) {
	chunk := data
	for {
		pkt, err := p.feeder.Feed(chunk)
		chunk = nil

		if err != nil {
			p.handleFeedError(err)
			if cerr, ok := err.(cerrors.Error); ok && wire.IsFraming(cerr) {
				return
			}
			continue
		}
		if pkt == nil {
			return
		}

		p.dispatch(pkt)
	}
}

func (p *serverProtocol) handleFeedError(err error) {
	cerr, ok := err.(cerrors.Error)
	if !ok {
		p.svc.log.Error("unrecognized feeder error, aborting connection", logger.Fields{"session": p.session, "err": err})
		_ = p.t.Close()
		return
	}

	switch {
	case wire.IsFraming(cerr):
		p.svc.log.Warning("frame exceeds maximum size, aborting connection", logger.Fields{"session": p.session, "err": cerr.Error()})
		_ = p.t.Close()
	case wire.IsValidation(cerr):
		p.svc.metrics.FramesDropped.Inc()
		p.svc.log.Warning("dropped malformed frame", logger.Fields{"session": p.session, "err": cerr.Error()})
	default:
		p.svc.log.Error("unexpected wire error, aborting connection", logger.Fields{"session": p.session, "err": cerr.Error()})
		_ = p.t.Close()
	}
}

func (p *serverProtocol) dispatch(pkt *wire.Packet) {
	p.svc.log.Debug("dispatching command", logger.Fields{"session": p.session, "command": pkt.Spec.Name})
	p.svc.metrics.CommandsTotal.WithLabelValues(pkt.Spec.Name).Inc()

	switch pkt.Spec.ID {
	case protocol.IDConnect:
		p.onConnect()
	case protocol.IDPing:
		p.onPing()
	case protocol.IDPingD:
		p.onPingD(pkt)
	case protocol.IDDelay:
		p.onDelay(pkt)
	case protocol.IDQuit:
		p.onQuit()
	case protocol.IDFinish:
		p.onFinish()
	default:
		p.svc.log.Warning("no handler for command", logger.Fields{"session": p.session, "command": pkt.Spec.Name})
	}
}

func (p *serverProtocol) onConnect() {
	reply, err := wire.New(&protocol.Connected, map[string]interface{}{"session": p.session})
	if err != nil {
		p.svc.log.Error("failed to build Connected reply", logger.Fields{"err": err})
		return
	}
	p.svc.log.Info("connect", logger.Fields{"session": p.session})
	p.broadcast(reply)
}

func (p *serverProtocol) onPing() {
	reply, err := wire.New(&protocol.Pong, nil)
	if err != nil {
		p.svc.log.Error("failed to build Pong reply", logger.Fields{"err": err})
		return
	}
	p.reply(reply)
}

func (p *serverProtocol) onPingD(pkt *wire.Packet) {
	reply, err := wire.New(&protocol.PongD, map[string]interface{}{"data": pkt.Str("data")})
	if err != nil {
		p.svc.log.Error("failed to build PongD reply", logger.Fields{"err": err})
		return
	}
	p.reply(reply)
}

func (p *serverProtocol) onDelay(pkt *wire.Packet) {
	data := pkt.Str("data")
	p.svc.loop.CallLater(DelayDuration, func(*reactor.Loop) {
		reply, err := wire.New(&protocol.Delayed, map[string]interface{}{"data": data})
		if err != nil {
			p.svc.log.Error("failed to build Delayed reply", logger.Fields{"err": err})
			return
		}
		p.reply(reply)
	})
}

func (p *serverProtocol) onQuit() {
	reply, err := wire.New(&protocol.AckQuit, map[string]interface{}{"session": p.session})
	if err != nil {
		p.svc.log.Error("failed to build AckQuit reply", logger.Fields{"err": err})
		return
	}
	p.svc.log.Info("quit", logger.Fields{"session": p.session})
	p.broadcast(reply)
	_ = p.t.Close()
}

func (p *serverProtocol) onFinish() {
	reply, err := wire.New(&protocol.AckFinish, nil)
	if err != nil {
		p.svc.log.Error("failed to build AckFinish reply", logger.Fields{"err": err})
		return
	}
	p.svc.log.Info("finish", logger.Fields{"session": p.session})
	p.broadcast(reply)
	p.svc.triggerFinish()
}

func (p *serverProtocol) ConnectionLost(reason error) {
	p.svc.metrics.ConnectionsOpen.Dec()
	fields := logger.Fields{"session": p.session}
	if reason != nil {
		fields["reason"] = reason.Error()
	}
	p.svc.log.Info("client disconnected", fields)
}

func (p *serverProtocol) reply(pkt *wire.Packet) {
	b, err := pkt.Pack()
	if err != nil {
		p.svc.log.Error("failed to pack reply", logger.Fields{"err": err})
		return
	}
	if _, err := p.t.Write(b); err != nil {
		p.svc.log.Warning("failed to write reply", logger.Fields{"session": p.session, "err": err})
	}
}

func (p *serverProtocol) broadcast(pkt *wire.Packet) {
	b, err := pkt.Pack()
	if err != nil {
		p.svc.log.Error("failed to pack broadcast", logger.Fields{"err": err})
		return
	}
	p.svc.factory.Broadcast(b)
}
