package transport

import (
	"net"
	"time"
)

// Dial opens a synchronous connection with the given overall timeout,
// used by the command client: unlike the server side, the client has no
// reactor loop and deals with its single socket directly.
func Dial(addr string, timeout time.Duration, onState StateFunc) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, newTransportError(CodeDialFailed, "dial %s: %v", addr, err)
	}
	if onState != nil {
		onState(conn.LocalAddr(), conn.RemoteAddr(), StateDial)
	}
	return conn, nil
}
