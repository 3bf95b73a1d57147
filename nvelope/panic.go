package nvelope

import (
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"
)

// LogFlusher is implemented by loggers that buffer.  A panic
// flushes them before the error is returned.
type LogFlusher interface {
	Flush()
}

// PanicError is what a recovered panic becomes.  It has no
// ReturnCode so it is a 500.
type PanicError struct {
	Value interface{}
	Stack string
}

func (err PanicError) Error() string {
	return fmt.Sprintf("panic: %v", err.Value)
}

// SetErrorOnPanic must be deferred.  If the function it is deferred
// in panics, *ep is set to a PanicError carrying the stack.
func SetErrorOnPanic(ep *error, log BasicLogger) {
	r := recover()
	if r == nil {
		return
	}
	*ep = recovered(r, log)
}

func recovered(r interface{}, log BasicLogger) error {
	pe := PanicError{
		Value: r,
		Stack: string(debug.Stack()),
	}
	log.Error("Recovered from panic", map[string]interface{}{
		"panic": fmt.Sprint(r),
		"stack": pe.Stack,
	})
	if flusher, ok := log.(LogFlusher); ok {
		flusher.Flush()
	}
	return errors.WithStack(pe)
}

// CatchPanic runs inner.  A panic inside inner comes back as an
// error and a nil Response.
func CatchPanic(log BasicLogger, inner func() (Response, error)) (model Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			model, err = nil, recovered(r, log)
		}
	}()
	return inner()
}

// RecoverInterface is the value given to panic, or nil if err
// did not come from a recovered panic.
func RecoverInterface(err error) interface{} {
	var pe PanicError
	if errors.As(err, &pe) {
		return pe.Value
	}
	return nil
}

// RecoverStack is the stack at the time of the panic, or "" if err
// did not come from a recovered panic.
func RecoverStack(err error) string {
	var pe PanicError
	if errors.As(err, &pe) {
		return pe.Stack
	}
	return ""
}
