package nfilter

import (
	"strings"
	"sync/atomic"

	"github.com/muir/fruitstand/nvelope"

	"github.com/pkg/errors"
)

// Handler is an endpoint, or the rest of a chain as seen by an
// interceptor.
type Handler func(c *Context) (nvelope.Response, error)

// Interceptor is one link in a chain.  It must either return without
// calling next or call next exactly once and return its result.
type Interceptor interface {
	Intercept(c *Context, next Handler) (nvelope.Response, error)
}

// Filter is what gets attached to an endpoint.  Build is called once
// per endpoint at registration time.  Returning nil or PassThrough
// leaves the link out of the chain.
type Filter interface {
	Build(d *Descriptor) Interceptor
}

// ErrNextCalledTwice is returned to an interceptor that calls its
// continuation a second time.  The downstream chain does not run again.
var ErrNextCalledTwice = errors.New("nfilter: next called more than once")

// InterceptorFunc is an inline interceptor.
type InterceptorFunc func(c *Context, next Handler) (nvelope.Response, error)

var (
	_ Interceptor = InterceptorFunc(nil)
	_ Filter      = InterceptorFunc(nil)
)

func (f InterceptorFunc) Intercept(c *Context, next Handler) (nvelope.Response, error) {
	return f(c, next)
}

func (f InterceptorFunc) Build(*Descriptor) Interceptor { return f }

type passThrough struct{}

func (passThrough) Intercept(c *Context, next Handler) (nvelope.Response, error) {
	return next(c)
}

func (p passThrough) Build(*Descriptor) Interceptor { return p }

// PassThrough performs no check and always forwards.
var PassThrough Interceptor = passThrough{}

// NamedInterceptor is a reusable interceptor with a name.
type NamedInterceptor struct {
	Name        string
	Interceptor Interceptor
}

// Named wraps i so that it has a name.
func Named(name string, i Interceptor) *NamedInterceptor {
	return &NamedInterceptor{Name: name, Interceptor: i}
}

func (n *NamedInterceptor) Intercept(c *Context, next Handler) (nvelope.Response, error) {
	return n.Interceptor.Intercept(c, next)
}

func (n *NamedInterceptor) Build(*Descriptor) Interceptor { return n }

func (n *NamedInterceptor) String() string { return n.Name }

// FactoryFunc builds an interceptor for a specific endpoint.
type FactoryFunc func(d *Descriptor) Interceptor

func (f FactoryFunc) Build(d *Descriptor) Interceptor { return f(d) }

// Sequence is an ordered set of filters that can be attached as
// one, for example to every route in a group.
type Sequence struct {
	Name    string
	filters []Filter
}

// NewSequence creates a named sequence.  Nil filters are ignored.
func NewSequence(name string, filters ...Filter) *Sequence {
	s := &Sequence{Name: name}
	return s.Append(filters...)
}

// Append adds filters to the end of the sequence.
func (s *Sequence) Append(filters ...Filter) *Sequence {
	for _, f := range filters {
		if f != nil {
			s.filters = append(s.filters, f)
		}
	}
	return s
}

// Filters returns a copy of the filters in order.
func (s *Sequence) Filters() []Filter {
	return append([]Filter(nil), s.filters...)
}

// Build flattens the sequence into a single interceptor.  If
// every member builds to PassThrough, so does the sequence.
func (s *Sequence) Build(d *Descriptor) Interceptor {
	links := build(d, s.filters)
	if len(links) == 0 {
		return PassThrough
	}
	return InterceptorFunc(func(c *Context, next Handler) (nvelope.Response, error) {
		return chain(links, next)(c)
	})
}

func (s *Sequence) String() string {
	names := make([]string, 0, len(s.filters))
	for _, f := range s.filters {
		names = append(names, filterName(f))
	}
	return s.Name + "[" + strings.Join(names, ", ") + "]"
}

func filterName(f Filter) string {
	if s, ok := f.(interface{ String() string }); ok {
		return s.String()
	}
	return "anonymous"
}

// Compose wraps h with filters, outermost first.
func Compose(d *Descriptor, h Handler, filters ...Filter) Handler {
	return chain(build(d, filters), h)
}

func build(d *Descriptor, filters []Filter) []Interceptor {
	links := make([]Interceptor, 0, len(filters))
	for _, f := range filters {
		if f == nil {
			continue
		}
		i := f.Build(d)
		if i == nil {
			continue
		}
		if _, ok := i.(passThrough); ok {
			continue
		}
		links = append(links, i)
	}
	return links
}

func chain(links []Interceptor, h Handler) Handler {
	for i := len(links) - 1; i >= 0; i-- {
		link := links[i]
		inner := h
		h = func(c *Context) (nvelope.Response, error) {
			return link.Intercept(c, once(inner))
		}
	}
	return h
}

func once(h Handler) Handler {
	var called int32
	return func(c *Context) (nvelope.Response, error) {
		if !atomic.CompareAndSwapInt32(&called, 0, 1) {
			return nil, ErrNextCalledTwice
		}
		return h(c)
	}
}
