package dispatcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Error codes for invocations that cannot be dispatched.
const (
	CodeUnknownMethod    = "UNKNOWN_METHOD"
	CodeInvalidArguments = "INVALID_ARGUMENTS"
)

// DispatchError reports a malformed invocation. It is always fatal to the process.
type DispatchError struct {
	Code    string
	Method  string
	Message string
}

func (e *DispatchError) Error() string {
	return e.Code + ": " + e.Message
}

// IsDispatchError reports whether err carries a DispatchError with the given code.
func IsDispatchError(err error, code string) bool {
	var de *DispatchError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

func unknownMethod(method string) error {
	return errors.WithStack(&DispatchError{
		Code:    CodeUnknownMethod,
		Method:  method,
		Message: fmt.Sprintf("Unknown method: %s", method),
	})
}

func invalidArguments(method string, got int, accepted []int) error {
	want := make([]string, len(accepted))
	for i, n := range accepted {
		want[i] = strconv.Itoa(n)
	}
	return errors.WithStack(&DispatchError{
		Code:    CodeInvalidArguments,
		Method:  method,
		Message: fmt.Sprintf("Invalid arguments for %s: got %d, accepts %s", method, got, strings.Join(want, " or ")),
	})
}
