package reactor

import (
	"fmt"

	cerrors "github.com/lud4ik/cmdnet/errors"
)

const (
	// CodeExecutorFailed marks a run_in_executor job that returned an error.
	CodeExecutorFailed cerrors.CodeError = cerrors.MinPkgReactor + iota + 1
)

func init() {
	cerrors.RegisterIdFctMessage(cerrors.MinPkgReactor, message)
}

func message(code cerrors.CodeError) string {
	switch code {
	case CodeExecutorFailed:
		return "executor job returned an error"
	}
	return cerrors.NullMessage
}

func newExecutorError(format string, args ...interface{}) cerrors.Error {
	return cerrors.New(CodeExecutorFailed, fmt.Sprintf(format, args...))
}
