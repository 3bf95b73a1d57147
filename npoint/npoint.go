package npoint

import (
	"net/http"
	"sync"

	"github.com/muir/fruitstand/nfilter"
	"github.com/muir/fruitstand/nvelope"

	"github.com/gorilla/mux"
)

// Endpoint is a handler plus the declaration of its parameters.
type Endpoint struct {
	Descriptor *nfilter.Descriptor
	Handler    nfilter.Handler
}

// NewEndpoint declares an endpoint.  It panics if the parameters
// are not a valid descriptor.
func NewEndpoint(name string, h nfilter.Handler, params ...nfilter.Param) Endpoint {
	return Endpoint{
		Descriptor: nfilter.NewDescriptor(name, params...),
		Handler:    h,
	}
}

type serviceOptions struct {
	log      nvelope.BasicLogger
	encoders nvelope.Encoders
	decoder  *nvelope.RequestDecoder
	filters  []nfilter.Filter
}

// ServiceOpt are functional arguments for PreregisterService
type ServiceOpt func(*serviceOptions)

// WithLogger sets the logger used for encoding failures and panics.
// The default discards everything.
func WithLogger(log nvelope.BasicLogger) ServiceOpt {
	return func(o *serviceOptions) {
		o.log = log
	}
}

// WithEncoders sets the response encoders.  The first one is the
// default when the Accept header does not pick one.
func WithEncoders(encoders ...*nvelope.ResponseEncoder) ServiceOpt {
	return func(o *serviceOptions) {
		o.encoders = encoders
	}
}

// WithDecoder sets the request body decoder.
func WithDecoder(decoder *nvelope.RequestDecoder) ServiceOpt {
	return func(o *serviceOptions) {
		o.decoder = decoder
	}
}

// WithFilters adds filters that precede the group and endpoint
// filters of every endpoint in the service.
func WithFilters(filters ...nfilter.Filter) ServiceOpt {
	return func(o *serviceOptions) {
		o.filters = append(o.filters, filters...)
	}
}

func buildOptions(opts []ServiceOpt) serviceOptions {
	o := serviceOptions{
		log:      nvelope.NoLogger(),
		encoders: nvelope.Encoders{nvelope.EncodeJSON, nvelope.EncodeYAML},
		decoder:  nvelope.DecodeJSONOrYAML,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Service allows a group of related endpoints to be started
// together.  None of the endpoints of a pre-registered service are
// built or bound until Start() is called.  Endpoints registered after
// Start() are built and bound immediately.
type Service struct {
	Name      string
	o         serviceOptions
	lock      sync.Mutex
	router    *mux.Router
	endpoints []*EndpointRegistration
	groups    []*Group
}

// PreregisterService creates a service that must be Start()ed later.
//
// The name of the service is just used for error messages and is otherwise ignored.
func PreregisterService(name string, opts ...ServiceOpt) *Service {
	return &Service{
		Name: name,
		o:    buildOptions(opts),
	}
}

// RegisterService creates a service and starts it immediately.
func RegisterService(name string, router *mux.Router, opts ...ServiceOpt) *Service {
	return PreregisterService(name, opts...).Start(router)
}

// Start builds all endpoints registered with this service and binds
// them to the router.  Start() may only be called once.
func (s *Service) Start(router *mux.Router) *Service {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.router != nil {
		panic("duplicate call to Start()")
	}
	s.router = router
	for _, g := range s.groups {
		g.start()
	}
	for _, r := range s.endpoints {
		r.start()
	}
	return s
}

// Started reports if Start() has been called.
func (s *Service) Started() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.router != nil
}

// Endpoints returns the registrations in the order they were registered.
func (s *Service) Endpoints() []*EndpointRegistration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]*EndpointRegistration(nil), s.endpoints...)
}

// RegisterEndpoint registers an endpoint at path.  The filters
// run after the service filters, outermost first.
//
// The return value can be used to add mux.Route-like modifiers.  They
// will not take effect until the service is started.
func (s *Service) RegisterEndpoint(path string, ep Endpoint, filters ...nfilter.Filter) *EndpointRegistration {
	return s.register(nil, path, ep, filters)
}

// Group creates a set of endpoints that share a path prefix and
// the given filters.
func (s *Service) Group(prefix string, filters ...nfilter.Filter) *Group {
	s.lock.Lock()
	defer s.lock.Unlock()
	g := &Group{
		service: s,
		prefix:  prefix,
		filters: nfilter.NewSequence(prefix, filters...),
	}
	s.groups = append(s.groups, g)
	if s.router != nil {
		g.start()
	}
	return g
}

func (s *Service) register(g *Group, path string, ep Endpoint, filters []nfilter.Filter) *EndpointRegistration {
	if ep.Handler == nil {
		panic("endpoint " + path + " has no handler")
	}
	if ep.Descriptor == nil {
		ep.Descriptor = nfilter.NewDescriptor(path)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	r := &EndpointRegistration{
		service:  s,
		group:    g,
		path:     path,
		endpoint: ep,
		filters:  filters,
	}
	s.endpoints = append(s.endpoints, r)
	if s.router != nil {
		r.start()
	}
	return r
}

// Group is a set of endpoints under a common path prefix.
type Group struct {
	service *Service
	parent  *Group
	prefix  string
	filters *nfilter.Sequence
	router  *mux.Router
}

// Prefix is the full path prefix of the group.
func (g *Group) Prefix() string {
	if g.parent != nil {
		return g.parent.Prefix() + g.prefix
	}
	return g.prefix
}

// Filters returns the filters that run for every endpoint in the
// group, including those of enclosing groups.
func (g *Group) Filters() []nfilter.Filter {
	var f []nfilter.Filter
	if g.parent != nil {
		f = g.parent.Filters()
	}
	return append(f, g.filters.Filters()...)
}

// Use adds filters to the group.  They apply to endpoints built
// after the call.
func (g *Group) Use(filters ...nfilter.Filter) *Group {
	g.service.lock.Lock()
	defer g.service.lock.Unlock()
	g.filters.Append(filters...)
	return g
}

// Group nests a group inside this one.
func (g *Group) Group(prefix string, filters ...nfilter.Filter) *Group {
	s := g.service
	s.lock.Lock()
	defer s.lock.Unlock()
	child := &Group{
		service: s,
		parent:  g,
		prefix:  prefix,
		filters: nfilter.NewSequence(prefix, filters...),
	}
	s.groups = append(s.groups, child)
	if s.router != nil {
		child.start()
	}
	return child
}

// RegisterEndpoint registers an endpoint at a path relative to
// the group prefix.
func (g *Group) RegisterEndpoint(path string, ep Endpoint, filters ...nfilter.Filter) *EndpointRegistration {
	return g.service.register(g, path, ep, filters)
}

// start must be called with the service lock held.  Parents are
// always started before children since they are created first.
func (g *Group) start() {
	if g.router != nil {
		return
	}
	parent := g.service.router
	if g.parent != nil {
		g.parent.start()
		parent = g.parent.router
	}
	g.router = parent.PathPrefix(g.prefix).Subrouter()
}

// CreateEndpoint generates a http.HandlerFunc for a single endpoint.
// This bypasses Service.  Path parameters are only available if the
// handler is bound with gorilla mux.
func CreateEndpoint(ep Endpoint, filters []nfilter.Filter, opts ...ServiceOpt) http.HandlerFunc {
	o := buildOptions(opts)
	if ep.Descriptor == nil {
		ep.Descriptor = nfilter.NewDescriptor("createEndpoint")
	}
	return o.handlerFunc(ep, append(o.filters, filters...))
}

func (o serviceOptions) handlerFunc(ep Endpoint, filters []nfilter.Filter) http.HandlerFunc {
	d := ep.Descriptor
	binders := makeBinders(d, o.decoder)
	h := nfilter.Compose(d, ep.Handler, filters...)
	return func(w http.ResponseWriter, r *http.Request) {
		model, err := nvelope.CatchPanic(o.log, func() (nvelope.Response, error) {
			args, err := bindArgs(binders, r)
			if err != nil {
				return nil, err
			}
			return h(nfilter.NewContext(r, d, args...))
		})
		o.encoders.Pick(r).Encode(w, r, o.log, model, err)
	}
}
