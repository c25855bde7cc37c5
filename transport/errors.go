package transport

import (
	"fmt"

	cerrors "github.com/lud4ik/cmdnet/errors"
)

const (
	// CodeDialFailed marks a socket that could not be opened: a client-side
	// connect in Dial, or binding the listener in RegisterServer.
	CodeDialFailed cerrors.CodeError = cerrors.MinPkgTransport + iota + 1
	// CodeNotRegistered marks Listen called before RegisterServer.
	CodeNotRegistered
)

func init() {
	cerrors.RegisterIdFctMessage(cerrors.MinPkgTransport, message)
}

func message(code cerrors.CodeError) string {
	switch code {
	case CodeDialFailed:
		return "failed to dial remote address"
	case CodeNotRegistered:
		return "RegisterServer must be called before Listen"
	}
	return cerrors.NullMessage
}

func newTransportError(code cerrors.CodeError, format string, args ...interface{}) cerrors.Error {
	return cerrors.New(code, fmt.Sprintf(format, args...))
}
