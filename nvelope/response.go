package nvelope

import (
	"net/http"
)

// Response is an empty interface that is the expected return value
// from endpoints.
type Response interface{}

// Result is a Response that chooses its own status code and
// headers.  A nil Body sends no body.
type Result struct {
	Code   int
	Header http.Header
	Body   interface{}
}

// OK is a 200 with a body.
func OK(body interface{}) Result {
	return Result{Code: http.StatusOK, Body: body}
}

// Created is a 201 with a Location header and a body.
func Created(location string, body interface{}) Result {
	h := make(http.Header)
	h.Set("Location", location)
	return Result{Code: http.StatusCreated, Header: h, Body: body}
}

// NoContent is a 204.
func NoContent() Result {
	return Result{Code: http.StatusNoContent}
}

// ProblemContentType is sent with JSON-encoded problem details.
const ProblemContentType = "application/problem+json"

// Problem is an RFC 7807 problem details body.  Errors is only used
// for validation problems: it maps field names to messages.
type Problem struct {
	Type   string              `json:"type,omitempty" yaml:"type,omitempty"`
	Title  string              `json:"title,omitempty" yaml:"title,omitempty"`
	Status int                 `json:"status,omitempty" yaml:"status,omitempty"`
	Detail string              `json:"detail,omitempty" yaml:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

var problemTypes = map[int]string{
	http.StatusBadRequest:           "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:         "https://tools.ietf.org/html/rfc9110#section-15.5.2",
	http.StatusForbidden:            "https://tools.ietf.org/html/rfc9110#section-15.5.4",
	http.StatusNotFound:             "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusMethodNotAllowed:     "https://tools.ietf.org/html/rfc9110#section-15.5.6",
	http.StatusConflict:             "https://tools.ietf.org/html/rfc9110#section-15.5.10",
	http.StatusUnsupportedMediaType: "https://tools.ietf.org/html/rfc9110#section-15.5.16",
	http.StatusInternalServerError:  "https://tools.ietf.org/html/rfc9110#section-15.6.1",
}

// NewProblem builds the standard problem details for a status code.
func NewProblem(code int) *Problem {
	return &Problem{
		Type:   problemTypes[code],
		Title:  http.StatusText(code),
		Status: code,
	}
}

// NotFoundProblem is a 404 with a standard problem details body.
func NotFoundProblem() *Problem {
	return NewProblem(http.StatusNotFound)
}

// ValidationProblem is a 400 whose problem details carry
// field-level messages.
func ValidationProblem(errors map[string][]string) *Problem {
	p := NewProblem(http.StatusBadRequest)
	p.Title = "One or more validation errors occurred."
	p.Errors = errors
	return p
}

// StatusCode returns the status to send.  A zero Status is a 500.
func (p *Problem) StatusCode() int {
	if p.Status == 0 {
		return http.StatusInternalServerError
	}
	return p.Status
}

// StatusOf reports the status code that the encoder will send for
// a model and error pair.
func StatusOf(model Response, err error) int {
	if err != nil {
		return GetReturnCode(err)
	}
	switch m := model.(type) {
	case nil:
		return http.StatusNoContent
	case Result:
		return m.Code
	case *Result:
		return m.Code
	case *Problem:
		return m.StatusCode()
	case Problem:
		return m.StatusCode()
	default:
		return http.StatusOK
	}
}
