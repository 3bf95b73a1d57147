// Stuff

/*

Package npoint binds fruitstand endpoints to a gorilla mux router.

Why

Composite endpoints: an endpoint is a handler plus the filters that
wrap it.  Filters come from the service, the group, and the endpoint,
in that order.

Declared parameters: each endpoint carries an nfilter.Descriptor that
says which arguments it takes and where they come from (path, query,
or body).  The service turns the request into that argument list
before any filter runs.

Delayed initialization: endpoints registered with a pre-registered
service are not built or bound until the service is started.  Building
is when filters are resolved against descriptors and when the string
decoders for path and query parameters are made.  After that, nothing
is looked up per request.

Terminology

Service is a collection of endpoints that can be started together and
that share filters, encoders, a decoder, and a logger.

Group is a set of endpoints that share a path prefix and, optionally,
filters.  Groups are bound as gorilla subrouters.

Endpoint is a Descriptor plus an nfilter.Handler.

Responses

Handlers return (nvelope.Response, error).  The service picks an
encoder from the Accept header and writes the result.  Panics in
filters or handlers are caught and become 500s.

Panics

npoint panics during endpoint registration (or service start) if an
endpoint cannot be built, for example if a parameter type has no
string decoder.  It should not panic after that.

*/
package npoint
