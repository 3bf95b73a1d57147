package nfilter

import (
	"fmt"
	"reflect"
)

// Source is where in the request a parameter comes from.
type Source int

const (
	// FromPath parameters are gorilla mux path variables.
	FromPath Source = iota
	// FromQuery parameters are URL query values.
	FromQuery
	// FromBody is the decoded request body.
	FromBody
)

func (s Source) String() string {
	switch s {
	case FromPath:
		return "path"
	case FromQuery:
		return "query"
	case FromBody:
		return "body"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Param declares one handler parameter.
type Param struct {
	Name   string
	Type   reflect.Type
	Source Source
}

func (p Param) String() string {
	return p.Source.String() + ":" + p.Name + " " + p.Type.String()
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// PathParam declares a path variable of type T.
func PathParam[T any](name string) Param {
	return Param{Name: name, Type: TypeOf[T](), Source: FromPath}
}

// QueryParam declares a query value of type T.
func QueryParam[T any](name string) Param {
	return Param{Name: name, Type: TypeOf[T](), Source: FromQuery}
}

// BodyParam declares that the request body is decoded into a T.
func BodyParam[T any](name string) Param {
	return Param{Name: name, Type: TypeOf[T](), Source: FromBody}
}

// Descriptor is the statically declared parameter list of an
// endpoint handler.  Arguments in a Context line up with Params.
type Descriptor struct {
	Name   string
	Params []Param
}

// NewDescriptor panics if two parameters share a name or if more
// than one parameter comes from the body.
func NewDescriptor(name string, params ...Param) *Descriptor {
	seen := make(map[string]struct{}, len(params))
	var bodies int
	for _, p := range params {
		if p.Type == nil {
			panic(fmt.Sprintf("%s: parameter %s has no type", name, p.Name))
		}
		if _, ok := seen[p.Name]; ok {
			panic(fmt.Sprintf("%s: duplicate parameter %s", name, p.Name))
		}
		seen[p.Name] = struct{}{}
		if p.Source == FromBody {
			bodies++
		}
	}
	if bodies > 1 {
		panic(fmt.Sprintf("%s: only one parameter can come from the body", name))
	}
	return &Descriptor{
		Name:   name,
		Params: append([]Param(nil), params...),
	}
}

// Position returns the index of the parameter with the given
// name and type, or -1.  A nil type matches any type.
func (d *Descriptor) Position(name string, t reflect.Type) int {
	if d == nil {
		return -1
	}
	for i, p := range d.Params {
		if p.Name == name && (t == nil || p.Type == t) {
			return i
		}
	}
	return -1
}
