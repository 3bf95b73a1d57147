package nfilter_test

import (
	"strings"
	"testing"

	"github.com/muir/fruitstand/nfilter"
	"github.com/muir/fruitstand/nvelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startsWithF(id string) *nfilter.Rejection {
	if strings.TrimSpace(id) == "" || !strings.HasPrefix(id, "f") {
		return nfilter.Reject("id", "bad id")
	}
	return nil
}

var idAndBody = nfilter.NewDescriptor("create",
	nfilter.PathParam[string]("id"),
	nfilter.BodyParam[int]("body"))

var bodyAndID = nfilter.NewDescriptor("create-reversed",
	nfilter.BodyParam[int]("body"),
	nfilter.PathParam[string]("id"))

func recorder(order *[]string, name string) nfilter.InterceptorFunc {
	return func(c *nfilter.Context, next nfilter.Handler) (nvelope.Response, error) {
		*order = append(*order, name+"-before")
		model, err := next(c)
		*order = append(*order, name+"-after")
		return model, err
	}
}

func TestComposeOrder(t *testing.T) {
	var order []string
	h := nfilter.Compose(idAndBody,
		func(c *nfilter.Context) (nvelope.Response, error) {
			order = append(order, "handler")
			return "done", nil
		},
		recorder(&order, "a"),
		nfilter.Named("b", recorder(&order, "b")),
		nfilter.NewSequence("group", recorder(&order, "c"), recorder(&order, "d")),
	)
	model, err := h(nfilter.NewContext(nil, idAndBody, "fa", 1))
	require.NoError(t, err)
	assert.Equal(t, "done", model)
	assert.Equal(t, []string{
		"a-before", "b-before", "c-before", "d-before",
		"handler",
		"d-after", "c-after", "b-after", "a-after",
	}, order)
}

func TestShortCircuitSkipsHandler(t *testing.T) {
	var writes int
	var downstream bool
	h := nfilter.Compose(idAndBody,
		func(c *nfilter.Context) (nvelope.Response, error) {
			writes++
			return nvelope.NoContent(), nil
		},
		nfilter.ValidateParam("id", startsWithF),
		nfilter.InterceptorFunc(func(c *nfilter.Context, next nfilter.Handler) (nvelope.Response, error) {
			downstream = true
			return next(c)
		}),
	)
	model, err := h(nfilter.NewContext(nil, idAndBody, "apple", 1))
	require.NoError(t, err)
	assert.Equal(t, 0, writes, "handler side effect must not happen")
	assert.False(t, downstream, "downstream interceptors must not run")
	p, ok := model.(*nvelope.Problem)
	require.True(t, ok, "got %T", model)
	assert.Equal(t, 400, p.Status)
	assert.Equal(t, map[string][]string{"id": {"bad id"}}, p.Errors)

	model, err = h(nfilter.NewContext(nil, idAndBody, "fapple", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, writes)
	assert.True(t, downstream)
	assert.Equal(t, nvelope.NoContent(), model)
}

func TestFactoryResolvesPosition(t *testing.T) {
	handler := func(c *nfilter.Context) (nvelope.Response, error) { return "ok", nil }
	h := nfilter.Compose(bodyAndID, handler, nfilter.ValidateParam("id", startsWithF))

	model, err := h(nfilter.NewContext(nil, bodyAndID, 1, "apple"))
	require.NoError(t, err)
	assert.IsType(t, &nvelope.Problem{}, model, "id found at position 1")

	model, err = h(nfilter.NewContext(nil, bodyAndID, 1, "fapple"))
	require.NoError(t, err)
	assert.Equal(t, "ok", model)
}

func TestFactoryPassThrough(t *testing.T) {
	noID := nfilter.NewDescriptor("list")
	intID := nfilter.NewDescriptor("by-number", nfilter.PathParam[int]("id"))
	var calls int
	handler := func(c *nfilter.Context) (nvelope.Response, error) {
		calls++
		return map[string]int{"a": 1}, nil
	}
	factory := nfilter.ValidateParam("id", startsWithF)
	assert.Equal(t, nfilter.PassThrough, factory.Build(noID))
	assert.Equal(t, nfilter.PassThrough, factory.Build(intID), "type must match too")

	for _, d := range []*nfilter.Descriptor{noID, intID} {
		plain := nfilter.Compose(d, handler)
		wrapped := nfilter.Compose(d, handler, factory)
		var args []interface{}
		if len(d.Params) == 1 {
			args = append(args, 7)
		}
		m1, e1 := plain(nfilter.NewContext(nil, d, args...))
		m2, e2 := wrapped(nfilter.NewContext(nil, d, args...))
		assert.Equal(t, m1, m2, d.Name)
		assert.Equal(t, e1, e2, d.Name)
	}
	assert.Equal(t, 4, calls)
}

func TestValidateArgFixedPosition(t *testing.T) {
	handler := func(c *nfilter.Context) (nvelope.Response, error) { return "ok", nil }
	h := nfilter.Compose(idAndBody, handler, nfilter.ValidateArg(0, startsWithF))
	model, err := h(nfilter.NewContext(nil, idAndBody, "fig", 2))
	require.NoError(t, err)
	assert.Equal(t, "ok", model)

	// position 0 is now the body: fixed positions break when the
	// parameter order changes
	h = nfilter.Compose(bodyAndID, handler, nfilter.ValidateArg(0, startsWithF))
	_, err = h(nfilter.NewContext(nil, bodyAndID, 2, "fig"))
	require.Error(t, err)
	assert.Equal(t, 500, nvelope.GetReturnCode(err))
}

func TestNextAtMostOnce(t *testing.T) {
	var calls int
	var second error
	h := nfilter.Compose(idAndBody,
		func(c *nfilter.Context) (nvelope.Response, error) {
			calls++
			return "ok", nil
		},
		nfilter.InterceptorFunc(func(c *nfilter.Context, next nfilter.Handler) (nvelope.Response, error) {
			model, err := next(c)
			_, second = next(c)
			return model, err
		}),
	)
	model, err := h(nfilter.NewContext(nil, idAndBody, "fa", 1))
	require.NoError(t, err)
	assert.Equal(t, "ok", model)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, second, nfilter.ErrNextCalledTwice)

	// a fresh request gets a fresh continuation
	_, err = h(nfilter.NewContext(nil, idAndBody, "fa", 1))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSequenceOfPassThroughs(t *testing.T) {
	s := nfilter.NewSequence("empty", nfilter.ValidateParam("id", startsWithF), nil, nfilter.PassThrough.(nfilter.Filter))
	assert.Equal(t, nfilter.PassThrough, s.Build(nfilter.NewDescriptor("none")))
	assert.Equal(t, "empty[anonymous, anonymous]", s.String())
	assert.Len(t, s.Filters(), 2)
}

func TestContextAccess(t *testing.T) {
	c := nfilter.NewContext(nil, idAndBody, "fa", 3)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "fa", c.Arg(0))
	assert.Nil(t, c.Arg(5))
	assert.Nil(t, c.Arg(-1))
	v, ok := c.Lookup("body")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = c.Lookup("missing")
	assert.False(t, ok)
	id, ok := nfilter.GetNamed[string](c, "id")
	assert.True(t, ok)
	assert.Equal(t, "fa", id)
	_, ok = nfilter.GetNamed[string](c, "body")
	assert.False(t, ok, "wrong type")
	n, ok := nfilter.GetArg[int](c, 1)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.NotNil(t, c.Context())
}

func TestDescriptorPanics(t *testing.T) {
	assert.Panics(t, func() {
		nfilter.NewDescriptor("dup", nfilter.PathParam[string]("id"), nfilter.QueryParam[string]("id"))
	})
	assert.Panics(t, func() {
		nfilter.NewDescriptor("bodies", nfilter.BodyParam[int]("a"), nfilter.BodyParam[int]("b"))
	})
	assert.Panics(t, func() {
		nfilter.NewDescriptor("untyped", nfilter.Param{Name: "x"})
	})
}

func TestDescriptorPosition(t *testing.T) {
	assert.Equal(t, 1, bodyAndID.Position("id", nfilter.TypeOf[string]()))
	assert.Equal(t, 1, bodyAndID.Position("id", nil))
	assert.Equal(t, -1, bodyAndID.Position("id", nfilter.TypeOf[int]()))
	var nilDescriptor *nfilter.Descriptor
	assert.Equal(t, -1, nilDescriptor.Position("id", nil))
	assert.Equal(t, "path:id string", bodyAndID.Params[1].String())
}
