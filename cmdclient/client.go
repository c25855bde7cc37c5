// Package cmdclient implements the synchronous command client: connect,
// send one packet, block for a whole reply frame, dispatch by packet
// class name.
package cmdclient

import (
	"fmt"
	"net"
	"strings"
	"time"

	cerrors "github.com/lud4ik/cmdnet/errors"
	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/protocol"
	"github.com/lud4ik/cmdnet/transport"
	"github.com/lud4ik/cmdnet/wire"
)

// Timeout bounds the connect and read deadlines, per the spec's 10s
// client socket timeout.
const Timeout = 10 * time.Second

// readChunkSize mirrors the server's CHUNK_SIZE for symmetry; the client
// has no edge-triggered poller to drain, a single blocking Read per loop
// iteration already yields the same "whatever is available now" chunk.
const readChunkSize = 1024

// Client owns one connection and its Feeder.
type Client struct {
	log    logger.Logger
	conn   net.Conn
	feeder *wire.Feeder
	reg    *wire.Registry
}

// Dial connects to addr and prepares the packet registry. It does not
// send anything.
func Dial(addr string, log logger.Logger) (*Client, error) {
	reg, err := protocol.NewRegistry()
	if err != nil {
		return nil, err
	}

	conn, err := transport.Dial(addr, Timeout, func(local, remote net.Addr, state transport.ConnState) {
		log.Debug("connection state", logger.Fields{"local": local, "remote": remote, "state": state.String()})
	})
	if err != nil {
		return nil, err
	}

	return &Client{log: log, conn: conn, feeder: wire.NewFeeder(reg), reg: reg}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send packs and writes one packet.
func (c *Client) Send(pkt *wire.Packet) error {
	b, err := pkt.Pack()
	if err != nil {
		return err
	}
	_, err = c.conn.Write(b)
	return err
}

// Receive blocks until one whole reply frame has been assembled,
// discarding any frames that fail validation (consistent with the
// server's drop-and-continue policy) and surfacing a framing error if the
// peer sends an oversize length prefix.
func (c *Client) Receive() (*wire.Packet, error) {
	buf := make([]byte, readChunkSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(Timeout)); err != nil {
		return nil, err
	}

	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return nil, err
		}

		chunk := buf[:n]
		for {
			pkt, ferr := c.feeder.Feed(chunk)
			chunk = nil

			if ferr != nil {
				if cerr, ok := ferr.(cerrors.Error); ok && wire.IsFraming(cerr) {
					return nil, cerr
				}
				c.log.Warning("dropped malformed reply frame", logger.Fields{"err": ferr})
				continue
			}
			if pkt != nil {
				return pkt, nil
			}
			break
		}
	}
}

// BuildCommand constructs the packet named by keyword ("ping", "pingd",
// "delay", "quit", "finish", "connect"), applying data to packet classes
// that carry a "data" field.
func BuildCommand(keyword, data string) (*wire.Packet, error) {
	var spec *wire.Spec
	values := map[string]interface{}{}

	switch strings.ToLower(keyword) {
	case "connect":
		spec = &protocol.Connect
	case "ping":
		spec = &protocol.Ping
	case "pingd":
		spec = &protocol.PingD
		values["data"] = data
	case "delay":
		spec = &protocol.Delay
		values["data"] = data
	case "quit":
		spec = &protocol.Quit
	case "finish":
		spec = &protocol.Finish
	default:
		return nil, fmt.Errorf("unknown command %q", keyword)
	}

	return wire.New(spec, values)
}

// IsShutdownReply reports whether pkt is the kind of reply after which
// the client should stop: ACKQUIT or ACKFINISH.
func IsShutdownReply(pkt *wire.Packet) bool {
	return pkt.Spec.ID == protocol.IDAckQuit || pkt.Spec.ID == protocol.IDAckFinish
}

// Describe renders a reply as a single human-readable line, in the spirit
// of the original client's ">>> " reply prompt.
func Describe(pkt *wire.Packet) string {
	switch pkt.Spec.ID {
	case protocol.IDConnected:
		return fmt.Sprintf(">>> connected: session=%s", pkt.Str("session"))
	case protocol.IDPong:
		return ">>> pong"
	case protocol.IDPongD:
		return fmt.Sprintf(">>> pongd: data=%s", pkt.Str("data"))
	case protocol.IDDelayed:
		return fmt.Sprintf(">>> delayed: data=%s", pkt.Str("data"))
	case protocol.IDAckQuit:
		return fmt.Sprintf(">>> ackquit: session=%s", pkt.Str("session"))
	case protocol.IDAckFinish:
		return ">>> ackfinish"
	default:
		return fmt.Sprintf(">>> %s", pkt.Spec.Name)
	}
}
