package nvelope

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// DeferredWriter buffers the status, headers, and body of a response
// so that they can be inspected or replaced before anything
// is sent.  Nothing reaches the underlying writer until Flush.
type DeferredWriter struct {
	base        http.ResponseWriter
	header      http.Header
	resetHeader http.Header
	buffer      []byte
	status      int
	flushed     bool
}

var _ http.ResponseWriter = &DeferredWriter{}

// NewDeferredWriter wraps w.  The current headers of w are the
// starting point for the deferred headers.
func NewDeferredWriter(w http.ResponseWriter) *DeferredWriter {
	return &DeferredWriter{
		base:        w,
		header:      w.Header().Clone(),
		resetHeader: w.Header().Clone(),
		buffer:      make([]byte, 0, 4*1024),
	}
}

// UnderlyingWriter returns the writer that was wrapped
func (w *DeferredWriter) UnderlyingWriter() http.ResponseWriter {
	return w.base
}

// Header is the deferred header.  Until Flush, it is separate from
// the header of the underlying writer.
func (w *DeferredWriter) Header() http.Header {
	if w.flushed {
		return w.base.Header()
	}
	return w.header
}

// Write appends to the buffer.  After Flush it writes through.
func (w *DeferredWriter) Write(b []byte) (int, error) {
	if w.flushed {
		return w.base.Write(b)
	}
	w.buffer = append(w.buffer, b...)
	return len(b), nil
}

// WriteHeader records the status code.  After Flush it writes through.
func (w *DeferredWriter) WriteHeader(statusCode int) {
	if w.flushed {
		w.base.WriteHeader(statusCode)
		return
	}
	w.status = statusCode
}

// Status returns the status code written so far, 200 if
// none has been written.
func (w *DeferredWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Len is the size of the buffered body.
func (w *DeferredWriter) Len() int {
	return len(w.buffer)
}

// Done is true once Flush has been called.
func (w *DeferredWriter) Done() bool {
	return w.flushed
}

// Reset discards buffered output, the status, and any header
// changes since the last PreserveHeader.
func (w *DeferredWriter) Reset() {
	w.buffer = w.buffer[:0]
	w.status = 0
	w.header = w.resetHeader.Clone()
}

// PreserveHeader makes the current header the state that Reset
// returns to.
func (w *DeferredWriter) PreserveHeader() {
	w.resetHeader = w.header.Clone()
}

// Flush sends the buffered header, status, and body to the
// underlying writer.  Short writes are retried.
func (w *DeferredWriter) Flush() error {
	if w.flushed {
		return nil
	}
	w.flushed = true
	base := w.base.Header()
	for k := range base {
		if _, ok := w.header[k]; !ok {
			delete(base, k)
		}
	}
	for k, v := range w.header {
		base[k] = v
	}
	if w.status != 0 {
		w.base.WriteHeader(w.status)
	}
	b := w.buffer
	for len(b) > 0 {
		n, err := w.base.Write(b)
		b = b[n:]
		if err != nil {
			if errors.Is(err, io.ErrShortWrite) {
				continue
			}
			return errors.Wrap(err, "flush deferred writer")
		}
	}
	return nil
}
