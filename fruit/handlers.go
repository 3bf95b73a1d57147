package fruit

import (
	"net/url"

	"github.com/muir/fruitstand/nfilter"
	"github.com/muir/fruitstand/npoint"
	"github.com/muir/fruitstand/nvelope"

	"github.com/pkg/errors"
)

// DuplicateIDMessage is sent when creating a fruit whose id is taken.
const DuplicateIDMessage = "Fruit with this ID already exists."

// Options controls Register.
type Options struct {
	// Prefix is the path of the collection.  Default "/fruit".
	Prefix string

	// Strict validates the id on every route that has one.  Without
	// it only GET and POST are validated.
	Strict bool

	// Log receives one line before and one after each call.
	Log nvelope.BasicLogger
}

type handlers struct {
	store  *Store
	prefix string
}

var (
	idParam    = nfilter.PathParam[string]("id")
	fruitParam = nfilter.BodyParam[Fruit]("fruit")
)

// Register binds the fruit endpoints as a group of svc.
func Register(svc *npoint.Service, store *Store, o Options) *npoint.Group {
	if o.Prefix == "" {
		o.Prefix = "/fruit"
	}
	if o.Log == nil {
		o.Log = nvelope.NoLogger()
	}
	h := handlers{store: store, prefix: o.Prefix}

	groupFilters := []nfilter.Filter{nfilter.Logging(o.Log)}
	var checked []nfilter.Filter
	if o.Strict {
		groupFilters = append(groupFilters, ValidID)
	} else {
		checked = append(checked, ValidFirstArg)
	}
	g := svc.Group(o.Prefix, groupFilters...)

	g.RegisterEndpoint("", npoint.NewEndpoint("list", h.list)).
		Methods("GET").Name("fruit-list")
	g.RegisterEndpoint("/{id}", npoint.NewEndpoint("get", h.get, idParam), checked...).
		Methods("GET").Name("fruit-get")
	g.RegisterEndpoint("/{id}", npoint.NewEndpoint("create", h.create, idParam, fruitParam), checked...).
		Methods("POST").Name("fruit-create")
	g.RegisterEndpoint("/{id}", npoint.NewEndpoint("replace", h.replace, idParam, fruitParam)).
		Methods("PUT").Name("fruit-replace")
	g.RegisterEndpoint("/{id}", npoint.NewEndpoint("delete", h.delete, idParam)).
		Methods("DELETE").Name("fruit-delete")
	return g
}

// args are positional: the id is always 0 and the body, when
// there is one, is 1.
func idArg(c *nfilter.Context) (string, error) {
	id, ok := nfilter.GetArg[string](c, 0)
	if !ok {
		return "", errors.Errorf("argument 0 is %T, not the fruit id", c.Arg(0))
	}
	return id, nil
}

func fruitArg(c *nfilter.Context) (Fruit, error) {
	f, ok := nfilter.GetArg[Fruit](c, 1)
	if !ok {
		return Fruit{}, errors.Errorf("argument 1 is %T, not a Fruit", c.Arg(1))
	}
	return f, nil
}

func (h handlers) list(c *nfilter.Context) (nvelope.Response, error) {
	return nvelope.OK(h.store.List()), nil
}

func (h handlers) get(c *nfilter.Context) (nvelope.Response, error) {
	id, err := idArg(c)
	if err != nil {
		return nil, err
	}
	f, ok := h.store.Get(id)
	if !ok {
		return nvelope.NotFoundProblem(), nil
	}
	return nvelope.OK(f), nil
}

func (h handlers) create(c *nfilter.Context) (nvelope.Response, error) {
	id, err := idArg(c)
	if err != nil {
		return nil, err
	}
	f, err := fruitArg(c)
	if err != nil {
		return nil, err
	}
	if !h.store.InsertIfAbsent(id, f) {
		return nvelope.ValidationProblem(map[string][]string{
			"id": {DuplicateIDMessage},
		}), nil
	}
	return nvelope.Created(h.prefix+"/"+url.PathEscape(id), f), nil
}

func (h handlers) replace(c *nfilter.Context) (nvelope.Response, error) {
	id, err := idArg(c)
	if err != nil {
		return nil, err
	}
	f, err := fruitArg(c)
	if err != nil {
		return nil, err
	}
	h.store.Upsert(id, f)
	return nvelope.NoContent(), nil
}

func (h handlers) delete(c *nfilter.Context) (nvelope.Response, error) {
	id, err := idArg(c)
	if err != nil {
		return nil, err
	}
	h.store.Remove(id)
	return nvelope.NoContent(), nil
}
