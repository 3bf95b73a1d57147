package npoint

import (
	"fmt"
	"net/url"

	"github.com/muir/fruitstand/nfilter"

	"github.com/gorilla/mux"
)

// EndpointRegistration holds an endpoint definition until its
// service is started.  Most of the gorilla mux.Route methods can be
// used with it.
type EndpointRegistration struct {
	service   *Service
	group     *Group
	path      string
	endpoint  Endpoint
	filters   []nfilter.Filter
	muxroutes []func(*mux.Route) *mux.Route
	route     *mux.Route
	err       error
	bound     bool
}

// start must be called with the service lock held.
func (r *EndpointRegistration) start() {
	if r.bound {
		return
	}
	router := r.service.router
	filters := append([]nfilter.Filter(nil), r.service.o.filters...)
	if r.group != nil {
		r.group.start()
		router = r.group.router
		filters = append(filters, r.group.Filters()...)
	}
	filters = append(filters, r.filters...)
	r.route = router.HandleFunc(r.path, r.service.o.handlerFunc(r.endpoint, filters))
	for _, mod := range r.muxroutes {
		r.route = mod(r.route)
	}
	r.err = r.route.GetError()
	r.bound = true
}

func (r *EndpointRegistration) add(f func(m *mux.Route) *mux.Route) {
	r.service.lock.Lock()
	defer r.service.lock.Unlock()
	r.muxroutes = append(r.muxroutes, f)
	if r.bound {
		r.route = f(r.route)
		r.err = r.route.GetError()
	}
}

// Descriptor is the parameter declaration of the endpoint.
func (r *EndpointRegistration) Descriptor() *nfilter.Descriptor {
	return r.endpoint.Descriptor
}

// Path is the path given at registration, without any group prefix.
func (r *EndpointRegistration) Path() string {
	return r.path
}

// Route returns the *mux.Route that has been registered to this endpoint, if possible.
func (r *EndpointRegistration) Route() (*mux.Route, error) {
	r.service.lock.Lock()
	defer r.service.lock.Unlock()
	if !r.bound {
		return nil, fmt.Errorf("Registration is not complete for %s", r.path)
	}
	return r.route, nil
}

// Methods applies the mux.Route method of the same name to this endpoint when the endpoint is initialized.
func (r *EndpointRegistration) Methods(methods ...string) *EndpointRegistration {
	r.add(func(m *mux.Route) *mux.Route { return m.Methods(methods...) })
	return r
}

// Name applies the mux.Route method of the same name to this endpoint when the endpoint is initialized.
func (r *EndpointRegistration) Name(name string) *EndpointRegistration {
	r.add(func(m *mux.Route) *mux.Route { return m.Name(name) })
	return r
}

// GetError is the error, if any, from building the route.  It is
// nil until the service is started.
func (r *EndpointRegistration) GetError() error {
	r.service.lock.Lock()
	defer r.service.lock.Unlock()
	return r.err
}

// GetName is the route name.  It is "" until the service is
// started.
func (r *EndpointRegistration) GetName() string {
	route, err := r.Route()
	if err != nil {
		return ""
	}
	return route.GetName()
}

// GetPathTemplate is the full path template, including any group
// prefix.  It is an error to call it before the service is started.
func (r *EndpointRegistration) GetPathTemplate() (string, error) {
	route, err := r.Route()
	if err != nil {
		return "", err
	}
	return route.GetPathTemplate()
}

// URLPath builds the path of this endpoint from pairs of
// variable names and values.  It is an error to call it before the
// service is started.
func (r *EndpointRegistration) URLPath(pairs ...string) (*url.URL, error) {
	route, err := r.Route()
	if err != nil {
		return nil, err
	}
	return route.URLPath(pairs...)
}
