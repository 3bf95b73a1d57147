package nfilter

import (
	"strings"

	"github.com/muir/fruitstand/nvelope"

	"github.com/pkg/errors"
)

// Rejection is a failed validation of one field.  A nil *Rejection
// means the value was accepted.
type Rejection struct {
	Field    string
	Messages []string
}

// Reject builds a Rejection.
func Reject(field string, messages ...string) *Rejection {
	return &Rejection{Field: field, Messages: messages}
}

func (r *Rejection) Error() string {
	return r.Field + ": " + strings.Join(r.Messages, "; ")
}

// Problem is the 400 validation problem for the rejection.
func (r *Rejection) Problem() *nvelope.Problem {
	return nvelope.ValidationProblem(map[string][]string{
		r.Field: append([]string(nil), r.Messages...),
	})
}

// ValidateArg validates the argument at a fixed position.  An
// argument that is missing or of the wrong type is a server error.
func ValidateArg[T any](pos int, validate func(T) *Rejection) InterceptorFunc {
	return func(c *Context, next Handler) (nvelope.Response, error) {
		v, ok := GetArg[T](c, pos)
		if !ok {
			return nil, errors.Errorf("argument %d is %T, not %s", pos, c.Arg(pos), TypeOf[T]())
		}
		if r := validate(v); r != nil {
			return r.Problem(), nil
		}
		return next(c)
	}
}

// ValidateParam is a factory.  At registration time it finds the
// position of the parameter declared with this name and type T.  If
// there is no such parameter, it builds PassThrough.
func ValidateParam[T any](name string, validate func(T) *Rejection) FactoryFunc {
	t := TypeOf[T]()
	return func(d *Descriptor) Interceptor {
		pos := d.Position(name, t)
		if pos < 0 {
			return PassThrough
		}
		return Named("validate-"+name, ValidateArg(pos, validate))
	}
}
