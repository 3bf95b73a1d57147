package nvelope

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"reflect"

	"github.com/muir/reflectutils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Body is a []byte with the request body pre-read.
type Body []byte

// ReadBody reads the input body from an http.Request.  The request
// body is replaced so that it can be read again.
func ReadBody(r *http.Request) (Body, error) {
	if r.Body == nil {
		return nil, nil
	}
	// nolint:errcheck
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	return Body(body), errors.Wrap(err, "read body")
}

// Decoder is the signature for decoders: take bytes and
// a pointer to something and deserialize it.
type Decoder func([]byte, interface{}) error

// RequestDecoder decodes request bodies into models.
type RequestDecoder struct {
	decoders           map[string]Decoder
	defaultContentType string
}

// DecodeInputsGeneratorOpt are functional arguments for
// GenerateDecoder
type DecodeInputsGeneratorOpt func(*RequestDecoder)

// WithDecoder maps conent types (eg "application/json") to
// decode functions (eg json.Unmarshal).  If a Content-Type header
// is used in the requet, then the value of that header will be
// used to pick a decoder.
func WithDecoder(contentType string, decoder Decoder) DecodeInputsGeneratorOpt {
	return func(o *RequestDecoder) {
		o.decoders[contentType] = decoder
	}
}

// WithDefaultContentType specifies which model decoder to use when
// no "Content-Type" header was sent.
func WithDefaultContentType(contentType string) DecodeInputsGeneratorOpt {
	return func(o *RequestDecoder) {
		o.defaultContentType = contentType
	}
}

// DecodeJSON is a pre-defined decoder created with
// GenerateDecoder for decoding JSON requests.
var DecodeJSON = GenerateDecoder(
	WithDecoder("application/json", json.Unmarshal),
	WithDefaultContentType("application/json"),
)

// DecodeJSONOrYAML accepts JSON (the default) and YAML bodies.
var DecodeJSONOrYAML = GenerateDecoder(
	WithDecoder("application/json", json.Unmarshal),
	WithDecoder("application/yaml", yaml.Unmarshal),
	WithDecoder("application/x-yaml", yaml.Unmarshal),
	WithDecoder("text/yaml", yaml.Unmarshal),
	WithDefaultContentType("application/json"),
)

// GenerateDecoder creates a RequestDecoder.  With no options it
// decodes nothing.
func GenerateDecoder(genOpts ...DecodeInputsGeneratorOpt) *RequestDecoder {
	d := &RequestDecoder{
		decoders: make(map[string]Decoder),
	}
	for _, opt := range genOpts {
		opt(d)
	}
	return d
}

// Decode reads the request body and unpacks it into model, which
// must be a pointer.  An unknown Content-Type is a 415.  An empty
// or malformed body is a 400.
func (d *RequestDecoder) Decode(r *http.Request, model interface{}) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = d.defaultContentType
	} else {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return BadRequest(errors.Wrapf(err, "Content-Type %s", ct))
		}
		ct = mt
	}
	decoder, ok := d.decoders[ct]
	if !ok {
		return UnsupportedMediaType(errors.Errorf("No body decoder for content type %s", ct))
	}
	body, err := ReadBody(r)
	if err != nil {
		return BadRequest(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return BadRequest(errors.New("request body is empty"))
	}
	err = decoder(body, model)
	if err != nil {
		return BadRequest(errors.Wrapf(err, "Could not decode %s into %T", ct, model))
	}
	return nil
}

// MakeStringDecoder builds, once, a function that converts path or
// query strings into values of type t.
func MakeStringDecoder(t reflect.Type) (func(string) (interface{}, error), error) {
	setter, err := reflectutils.MakeStringSetter(t)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode strings into %s", t)
	}
	return func(s string) (interface{}, error) {
		v := reflect.New(t).Elem()
		if err := setter(v, s); err != nil {
			return nil, BadRequest(errors.Wrapf(err, "decode %q as %s", s, t))
		}
		return v.Interface(), nil
	}, nil
}
