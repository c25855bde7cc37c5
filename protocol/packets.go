// Package protocol declares the command/reply packet classes shared by
// the server and the client: the one registry both sides must agree on.
package protocol

import "github.com/lud4ik/cmdnet/wire"

// maxDataSize bounds the DELAY/PINGD/DELAYED "data" field. The spec
// leaves this implementation-defined; MaxFrameSize minus framing
// overhead is the only hard ceiling, but a much smaller bound catches
// runaway clients earlier.
const maxDataSize = 64 * 1024

// maxSessionSize bounds the session field; session.Fresh always produces
// exactly 32 hex characters, but the field itself does not assume that.
const maxSessionSize = 256

// Command ids, stable across the wire.
const (
	IDConnect = 1
	IDPing    = 2
	IDPingD   = 3
	IDDelay   = 4
	IDQuit    = 5
	IDFinish  = 6

	IDConnected = 7
	IDPong      = 8
	IDPongD     = 9
	IDDelayed   = 10
	IDAckQuit   = 11
	IDAckFinish = 12
)

// Specs are the declared packet classes, exported so cmdserver/cmdclient
// can build Packets against them without re-declaring the schema.
var (
	Connect  wire.Spec
	Ping     wire.Spec
	PingD    wire.Spec
	Delay    wire.Spec
	Quit     wire.Spec
	Finish   wire.Spec

	Connected wire.Spec
	Pong      wire.Spec
	PongD     wire.Spec
	Delayed   wire.Spec
	AckQuit   wire.Spec
	AckFinish wire.Spec
)

// NewRegistry declares every packet class, registers it, freezes the
// registry and returns it. Both the server and the client call this once
// at startup, before accepting or sending anything, so a schema mistake
// surfaces immediately as a fatal error rather than mid-session.
func NewRegistry() (*wire.Registry, error) {
	reg := wire.NewRegistry()

	dataField := wire.Field{Name: "data", Kind: wire.KindString, MaxSize: maxDataSize}
	sessionField := wire.Field{Name: "session", Kind: wire.KindString, MaxSize: maxSessionSize}

	specs := []struct {
		dst  *wire.Spec
		name string
		id   byte
		flds []wire.Field
	}{
		{&Connect, "Connect", IDConnect, nil},
		{&Ping, "Ping", IDPing, nil},
		{&PingD, "PingD", IDPingD, []wire.Field{dataField}},
		{&Delay, "Delay", IDDelay, []wire.Field{dataField}},
		{&Quit, "Quit", IDQuit, nil},
		{&Finish, "Finish", IDFinish, nil},

		{&Connected, "Connected", IDConnected, []wire.Field{sessionField}},
		{&Pong, "Pong", IDPong, nil},
		{&PongD, "PongD", IDPongD, []wire.Field{dataField}},
		{&Delayed, "Delayed", IDDelayed, []wire.Field{dataField}},
		{&AckQuit, "AckQuit", IDAckQuit, []wire.Field{sessionField}},
		{&AckFinish, "AckFinish", IDAckFinish, nil},
	}

	for _, s := range specs {
		spec, err := wire.NewSpec(s.name, s.id, s.flds...)
		if err != nil {
			return nil, err
		}
		registered, err := reg.Register(spec)
		if err != nil {
			return nil, err
		}
		*s.dst = *registered
	}

	reg.Freeze()
	return reg, nil
}
