/*

Package nfilter wraps endpoint handlers with ordered interceptors.

An Interceptor sees the per-request Context (the request plus the
positional arguments bound for the handler) and the rest of the
chain as a Handler.  It either returns a response without calling
next, which short-circuits everything downstream, or it calls next
exactly once and returns what next returned.

Filters are what gets attached to endpoints.  Every Interceptor is
also a Filter.  Filters are built once, when the endpoint is
registered, against the endpoint's Descriptor.  That is where a
FactoryFunc finds out which argument position it cares about:

	nfilter.ValidateParam("id", func(id string) *nfilter.Rejection {
		if !strings.HasPrefix(id, "f") {
			return nfilter.Reject("id", "must start with f")
		}
		return nil
	})

If the descriptor has no string parameter named "id", the factory
builds PassThrough and the link is left out of the chain entirely.

Variants

InterceptorFunc is an inline closure.  Named gives an interceptor a
name so it can be reused and show up in logs.  Sequence bundles
filters so that a group of routes can share them.  FactoryFunc builds
an interceptor from the descriptor.

Ordering

Filters run in the order given, outermost first.  The handler is the
innermost link.  An interceptor listed before a validator observes the
validator's rejection, not the handler's result.

*/
package nfilter
