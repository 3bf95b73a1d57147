// Stuff

/*

Package nvelope provides the wire side of fruitstand endpoints: the
values that handlers return, the request body decoder, and the response
encoder.

Handlers return a Response and an error.  A Response is usually one
of the constructors in this package: OK, Created, NoContent, NotFoundProblem,
or ValidationProblem.  Any other value is encoded with status 200.

Errors carry their HTTP status code with them.  NotFound, BadRequest,
Unauthorized, Forbidden, and UnsupportedMediaType annotate an error so that
the encoder sends the right code.  Errors without a code are 500s.

Problems are encoded as RFC 7807 problem details.

Decoders are chosen by Content-Type and encoders by Accept.  JSON is the
default for both; YAML is also supported.

DeferredWriter allows output to be buffered and then abandoned.

CatchPanic makes it easy to turn panics into error returns.

BasicLogger is the logging seam.  Adapters exist for the standard
library log.Logger and for log/slog.

*/
package nvelope
