package facility

// Error codes reported by facility implementations.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnsupported   = "UNSUPPORTED"
	CodeInternalError = "INTERNAL_ERROR"
)

// Error is a typed facility failure.
type Error struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Code + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new facility Error.
func NewError(op, code, message string, err error) *Error {
	return &Error{Op: op, Code: code, Message: message, Err: err}
}
