package nvelope

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Middleware is the wrapping middleware pattern used by most Go
// http packages.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// CombineMiddleware composes middleware so that the first one
// listed is the outermost.
func CombineMiddleware(m ...Middleware) Middleware {
	switch len(m) {
	case 0:
		return func(h http.HandlerFunc) http.HandlerFunc {
			return h
		}
	case 1:
		return m[0]
	default:
		combined := m[len(m)-1]
		for i := len(m) - 2; i >= 0; i-- {
			f := m[i]
			c := combined
			combined = func(h http.HandlerFunc) http.HandlerFunc {
				return f(c(h))
			}
		}
		return combined
	}
}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// RequestID makes sure that every request has an id.  An
// id sent by the client is kept; otherwise a random UUID is used.
// The id is echoed in the response.
func RequestID(inner http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		inner(w, r)
	}
}

// AccessLog logs one line per request after it completes.
func AccessLog(log BasicLogger) Middleware {
	return func(inner http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			dw := NewDeferredWriter(w)
			inner(dw, r)
			err := dw.Flush()
			fields := map[string]interface{}{
				"method":     r.Method,
				"uri":        r.URL.String(),
				"status":     dw.Status(),
				"bytes":      dw.Len(),
				"duration":   time.Since(start).String(),
				"request_id": r.Header.Get(RequestIDHeader),
			}
			if err != nil {
				fields["error"] = err.Error()
				log.Warn("Cannot write response", fields)
				return
			}
			Info(log, "request", fields)
		}
	}
}

// StatusPages gives a problem details body to error responses
// that were sent without one, such as the router's own 404 and 405
// responses.
func StatusPages(encoders Encoders, log BasicLogger) Middleware {
	return func(inner http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			dw := NewDeferredWriter(w)
			inner(dw, r)
			if status := dw.Status(); status >= 400 && dw.Len() == 0 {
				encoders.Pick(r).Encode(dw, r, log, NewProblem(status), nil)
			}
			if err := dw.Flush(); err != nil {
				log.Warn("Cannot write response", map[string]interface{}{
					"error":  err.Error(),
					"method": r.Method,
					"uri":    r.URL.String(),
				})
			}
		}
	}
}
