package nserve

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Callback is invoked when its hook is done.  Callbacks may register
// more callbacks, for example a start callback can register the
// matching stop callback.
type Callback func(ctx context.Context, app *App) error

// App provides hooks to start and stop the parts of a service.  It is
// expected that an App corresponds to a service and that libraries that
// the service uses need to be started & stopped.
type App struct {
	Name    string
	lock    sync.Mutex // held when adding hooks
	runLock sync.Mutex // held when running hooks
	hooks   map[hookId][]Callback
	ctx     context.Context
}

// CreateApp invokes each constructor in order.  Constructors use
// On() to register what needs to happen at Start and Stop.  Creation
// stops at the first error.  The app's context is canceled when the
// Shutdown hook is done.
func CreateApp(name string, constructors ...func(app *App) error) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Name:  name,
		hooks: make(map[hookId][]Callback),
		ctx:   ctx,
	}
	app.On(Shutdown, func(context.Context, *App) error {
		cancel()
		return nil
	})
	for _, c := range constructors {
		if err := c(app); err != nil {
			return app, errors.Wrapf(err, "create %s", name)
		}
	}
	return app, nil
}

// Context is canceled once Shutdown has been done.
func (app *App) Context() context.Context {
	return app.ctx
}

// On registers a callback to be invoked on hook invocation.  This can be used during
// callbacks, for example a start callback, can register a stop callback.
func (app *App) On(h *Hook, callbacks ...Callback) {
	app.lock.Lock()
	defer app.lock.Unlock()
	app.hooks[h.Id] = append(app.hooks[h.Id], callbacks...)
}

// Do invokes the callbacks for a hook.  It returns only the first error reported
// unless the hook provides an error combiner.
func (app *App) Do(h *Hook) error {
	app.runLock.Lock()
	defer app.runLock.Unlock()
	return app.do(h)
}

func (app *App) do(h *Hook) error {
	s := h.settings()
	ec := s.combine
	if ec == nil {
		ec = func(err, _ error) error { return err }
	}
	ecw := func(e1, e2 error) error {
		if e1 == nil {
			return e2
		}
		if e2 == nil {
			return e1
		}
		return ec(e1, e2)
	}
	app.lock.Lock()
	callbacks := make([]Callback, len(app.hooks[h.Id]))
	copy(callbacks, app.hooks[h.Id])
	app.lock.Unlock()
	var err error
	run := func(cb Callback) {
		err = ecw(err, errors.Wrap(cb(app.ctx, app), h.Name))
	}
	if s.order == ForwardOrder {
		for _, cb := range callbacks {
			run(cb)
			if err != nil && !s.continues {
				break
			}
		}
	} else {
		for i := len(callbacks) - 1; i >= 0; i-- {
			run(callbacks[i])
			if err != nil && !s.continues {
				break
			}
		}
	}
	if err != nil {
		for _, oe := range s.onError {
			err = ecw(err, app.do(oe))
		}
	}
	return err
}
