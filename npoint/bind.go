package npoint

import (
	"net/http"
	"reflect"

	"github.com/muir/fruitstand/nfilter"
	"github.com/muir/fruitstand/nvelope"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type binder func(r *http.Request) (interface{}, error)

// makeBinders is called once per endpoint.  It panics if a parameter
// cannot be bound.
func makeBinders(d *nfilter.Descriptor, decoder *nvelope.RequestDecoder) []binder {
	binders := make([]binder, len(d.Params))
	for i, p := range d.Params {
		p := p
		switch p.Source {
		case nfilter.FromPath, nfilter.FromQuery:
			decode, err := nvelope.MakeStringDecoder(p.Type)
			if err != nil {
				panic(errors.Wrapf(err, "endpoint %s parameter %s", d.Name, p.Name).Error())
			}
			if p.Source == nfilter.FromPath {
				binders[i] = func(r *http.Request) (interface{}, error) {
					v, err := decode(mux.Vars(r)[p.Name])
					return v, errors.Wrapf(err, "path element %s", p.Name)
				}
			} else {
				zero := reflect.Zero(p.Type).Interface()
				binders[i] = func(r *http.Request) (interface{}, error) {
					q := r.URL.Query()
					if !q.Has(p.Name) {
						return zero, nil
					}
					v, err := decode(q.Get(p.Name))
					return v, errors.Wrapf(err, "query parameter %s", p.Name)
				}
			}
		case nfilter.FromBody:
			binders[i] = func(r *http.Request) (interface{}, error) {
				ptr := reflect.New(p.Type)
				if err := decoder.Decode(r, ptr.Interface()); err != nil {
					return nil, errors.Wrapf(err, "%s model", p.Name)
				}
				return ptr.Elem().Interface(), nil
			}
		default:
			panic("endpoint " + d.Name + " parameter " + p.Name + " has unknown source " + p.Source.String())
		}
	}
	return binders
}

func bindArgs(binders []binder, r *http.Request) ([]interface{}, error) {
	args := make([]interface{}, len(binders))
	for i, b := range binders {
		v, err := b(r)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
