package nfilter

import (
	"context"
	"net/http"
)

// Context is scoped to one invocation of one endpoint.  The
// arguments are read-only.
type Context struct {
	request    *http.Request
	descriptor *Descriptor
	args       []interface{}
}

// NewContext copies args.  r may be nil outside of HTTP.
func NewContext(r *http.Request, d *Descriptor, args ...interface{}) *Context {
	return &Context{
		request:    r,
		descriptor: d,
		args:       append([]interface{}(nil), args...),
	}
}

// Context returns the request's context.
func (c *Context) Context() context.Context {
	if c.request == nil {
		return context.Background()
	}
	return c.request.Context()
}

// Request may be nil.
func (c *Context) Request() *http.Request {
	return c.request
}

// Descriptor may be nil.
func (c *Context) Descriptor() *Descriptor {
	return c.descriptor
}

// Len is the number of arguments.
func (c *Context) Len() int {
	return len(c.args)
}

// Arg returns the argument at position i, or nil if there is none.
func (c *Context) Arg(i int) interface{} {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// Lookup finds an argument by its declared name.
func (c *Context) Lookup(name string) (interface{}, bool) {
	i := c.descriptor.Position(name, nil)
	if i < 0 || i >= len(c.args) {
		return nil, false
	}
	return c.args[i], true
}

// GetArg returns the argument at position i as a T.
func GetArg[T any](c *Context, i int) (T, bool) {
	v, ok := c.Arg(i).(T)
	return v, ok
}

// GetNamed returns the argument declared as name as a T.
func GetNamed[T any](c *Context, name string) (T, bool) {
	a, ok := c.Lookup(name)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := a.(T)
	return v, ok
}
