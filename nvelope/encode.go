package nvelope

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v2"
)

// EncodeJSON is a JSON encoder manufactured by MakeResponseEncoder with default options.
var EncodeJSON = MakeResponseEncoder("JSON", "application/json", json.Marshal,
	WithProblemContentType(ProblemContentType))

// EncodeYAML is a YAML encoder manufactured by MakeResponseEncoder with default options.
var EncodeYAML = MakeResponseEncoder("YAML", "application/yaml", yaml.Marshal,
	WithAccepts("application/x-yaml", "text/yaml"))

type encoderOptions struct {
	errorEncoder       func(BasicLogger, error) Response
	apiEnforcer        func(enc []byte, r *http.Request) error
	problemContentType string
	accepts            []string
}

// ResponseEncoderFuncArg is a functional argument for MakeResponseEncoder
type ResponseEncoderFuncArg func(*encoderOptions)

// WithErrorEncoder specifies how to turn error returns into responses.
// The default is ProblemFromError(false).  Error encoding is not
// allowed to return error itself nor is it allowed to panic.
func WithErrorEncoder(errorEncoder func(BasicLogger, error) Response) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.errorEncoder = errorEncoder
	}
}

// WithDetailedErrors includes error text and panic stacks in the
// problem details of 5xx responses.  Meant for development mode only.
func WithDetailedErrors(detailed bool) ResponseEncoderFuncArg {
	return WithErrorEncoder(ProblemFromError(detailed))
}

// WithAPIEnforcer specifies
// a function that can check if the encoded API response is valid
// for the endpoint that is generating the response.  The default is
// not to verify API conformance.
func WithAPIEnforcer(apiEnforcer func(enc []byte, r *http.Request) error) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.apiEnforcer = apiEnforcer
	}
}

// WithProblemContentType overrides the Content-Type sent with problem
// details.  The default is the encoder's own content type.
func WithProblemContentType(contentType string) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.problemContentType = contentType
	}
}

// WithAccepts adds media types, beyond the encoder's own content type,
// that select this encoder when they appear in an Accept header.
func WithAccepts(mediaTypes ...string) ResponseEncoderFuncArg {
	return func(o *encoderOptions) {
		o.accepts = append(o.accepts, mediaTypes...)
	}
}

// ProblemFromError is the default error encoder.  The
// status comes from GetReturnCode.  Client errors include the error
// text as the detail.  Server errors only do when detailed is true.
func ProblemFromError(detailed bool) func(BasicLogger, error) Response {
	return func(_ BasicLogger, err error) Response {
		code := GetReturnCode(err)
		p := NewProblem(code)
		if code < 500 || detailed {
			p.Detail = err.Error()
		}
		if detailed {
			if stack := RecoverStack(err); stack != "" {
				p.Detail += "\n\n" + stack
			}
		}
		return p
	}
}

// ResponseEncoder turns endpoint return values into HTTP responses.
type ResponseEncoder struct {
	name        string
	contentType string
	marshaller  func(interface{}) ([]byte, error)
	o           encoderOptions
}

// MakeResponseEncoder generates an encoder for API responses.
//
// The encoder expects to receive the return values of the handler
// chain: a Response and an error.  If the error is not nil, then the
// response becomes the encoded error.
func MakeResponseEncoder(
	name string,
	contentType string,
	marshaller func(interface{}) ([]byte, error),
	encoderFuncArgs ...ResponseEncoderFuncArg,
) *ResponseEncoder {
	e := &ResponseEncoder{
		name:        name,
		contentType: contentType,
		marshaller:  marshaller,
		o: encoderOptions{
			errorEncoder:       ProblemFromError(false),
			apiEnforcer:        func(_ []byte, _ *http.Request) error { return nil },
			problemContentType: contentType,
		},
	}
	for _, fa := range encoderFuncArgs {
		fa(&e.o)
	}
	return e
}

// With returns a copy of the encoder with additional options applied.
func (e *ResponseEncoder) With(encoderFuncArgs ...ResponseEncoderFuncArg) *ResponseEncoder {
	c := *e
	c.o.accepts = append([]string(nil), e.o.accepts...)
	for _, fa := range encoderFuncArgs {
		fa(&c.o)
	}
	return &c
}

// Name is the name given to MakeResponseEncoder.
func (e *ResponseEncoder) Name() string { return e.name }

// ContentType is the Content-Type sent with ordinary responses.
func (e *ResponseEncoder) ContentType() string { return e.contentType }

func (e *ResponseEncoder) accepts(accept string) bool {
	if strings.Contains(accept, e.contentType) {
		return true
	}
	for _, mt := range e.o.accepts {
		if strings.Contains(accept, mt) {
			return true
		}
	}
	return false
}

// Encode writes model or err to w.  A nil model with a nil error
// is sent as a 204.
func (e *ResponseEncoder) Encode(w http.ResponseWriter, r *http.Request, log BasicLogger, model Response, err error) {
	if err != nil {
		if GetReturnCode(err) >= 500 {
			log.Error("Endpoint failed",
				map[string]interface{}{
					"error":  err.Error(),
					"method": r.Method,
					"uri":    r.URL.String(),
				})
		}
		model = e.o.errorEncoder(log, err)
	}
	code := http.StatusOK
	contentType := e.contentType
	var header http.Header
	body := model
	switch m := model.(type) {
	case nil:
		code = http.StatusNoContent
	case Result:
		code, header, body = m.Code, m.Header, m.Body
	case *Result:
		code, header, body = m.Code, m.Header, m.Body
	case *Problem:
		code = m.StatusCode()
		contentType = e.o.problemContentType
	case Problem:
		code = m.StatusCode()
		contentType = e.o.problemContentType
	}
	for k, v := range header {
		w.Header()[k] = v
	}
	if body == nil {
		w.WriteHeader(code)
		return
	}
	enc, err := e.marshaller(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fmt.Sprintf("Cannot marshal model: %s", err)))
		log.Error("Cannot marshal response",
			map[string]interface{}{
				"error":  err.Error(),
				"method": r.Method,
				"uri":    r.URL.String(),
			})
		return
	}
	err = e.o.apiEnforcer(enc, r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		log.Error("Invalid API response",
			map[string]interface{}{
				"error":  err.Error(),
				"method": r.Method,
				"uri":    r.URL.String(),
			})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	_, err = w.Write(enc)
	if err != nil {
		log.Warn("Cannot write response",
			map[string]interface{}{
				"error":  err.Error(),
				"method": r.Method,
				"uri":    r.URL.String(),
			})
	}
}

// Encoders picks a ResponseEncoder based on the Accept header
// of a request.  The first encoder is the default.
type Encoders []*ResponseEncoder

// Pick returns the first encoder that matches the Accept
// header or the first encoder if none match.
func (es Encoders) Pick(r *http.Request) *ResponseEncoder {
	if len(es) == 0 {
		return EncodeJSON
	}
	accept := r.Header.Get("Accept")
	if accept != "" {
		for _, e := range es {
			if e.accepts(accept) {
				return e
			}
		}
	}
	return es[0]
}

// With applies options to every encoder.
func (es Encoders) With(encoderFuncArgs ...ResponseEncoderFuncArg) Encoders {
	n := make(Encoders, len(es))
	for i, e := range es {
		n[i] = e.With(encoderFuncArgs...)
	}
	return n
}
