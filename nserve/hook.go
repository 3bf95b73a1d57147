package nserve

import (
	"sync"
	"sync/atomic"
)

type hookOrder string

// Callbacks run in registration order for ForwardOrder hooks and
// in the opposite order for ReverseOrder hooks.
const (
	ForwardOrder hookOrder = "forward"
	ReverseOrder hookOrder = "reverse"
)

type hookId int32

var lastHookId int32

func nextHookId() hookId {
	return hookId(atomic.AddInt32(&lastHookId, 1))
}

// Hook names a phase of an App's life.  Callbacks are registered
// per App and per Hook; a Copy of a hook has its own callbacks.
//
// Hook settings may be changed while Apps are running.  Use the
// setter methods for that.
type Hook struct {
	Id            hookId
	Name          string
	Order         hookOrder
	InvokeOnError []*Hook
	ContinuePast  bool
	ErrorCombiner func(first, second error) error
	lock          sync.Mutex
}

type hookSettings struct {
	order     hookOrder
	continues bool
	combine   func(first, second error) error
	onError   []*Hook
}

// NewHook creates a hook with no callbacks.
func NewHook(name string, order hookOrder) *Hook {
	return &Hook{
		Id:    nextHookId(),
		Name:  name,
		Order: order,
	}
}

// Copy returns a hook with the same settings and a new Id.
func (h *Hook) Copy() *Hook {
	s := h.settings()
	return &Hook{
		Id:            nextHookId(),
		Name:          h.Name,
		Order:         s.order,
		InvokeOnError: s.onError,
		ContinuePast:  s.continues,
		ErrorCombiner: s.combine,
	}
}

// OnError adds a hook to do after this one fails.  A nil hook
// clears the list.
func (h *Hook) OnError(e *Hook) *Hook {
	h.lock.Lock()
	defer h.lock.Unlock()
	if e == nil {
		h.InvokeOnError = nil
		return h
	}
	h.InvokeOnError = append(h.InvokeOnError, e)
	return h
}

// SetErrorCombiner decides what is returned when more than one
// callback fails.  Without one, the first error wins.
func (h *Hook) SetErrorCombiner(f func(first, second error) error) *Hook {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.ErrorCombiner = f
	return h
}

// ContinuePastError keeps invoking callbacks after one fails.
func (h *Hook) ContinuePastError(b bool) *Hook {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.ContinuePast = b
	return h
}

func (h *Hook) settings() hookSettings {
	h.lock.Lock()
	defer h.lock.Unlock()
	return hookSettings{
		order:     h.Order,
		continues: h.ContinuePast,
		combine:   h.ErrorCombiner,
		onError:   append([]*Hook(nil), h.InvokeOnError...),
	}
}

func (h *Hook) String() string {
	return "hook " + h.Name
}

// Start brings up an App.  If it fails, Stop is invoked.
var Start = NewHook("start", ForwardOrder)

// Stop shuts things down in the reverse of the order they were
// started.  Every stop callback runs even if some fail.  If any
// fail, Shutdown is invoked.
var Stop = NewHook("stop", ReverseOrder).ContinuePastError(true)

// Shutdown is the last thing.  It cancels the App's context.
var Shutdown = NewHook("shutdown", ReverseOrder)

func init() {
	Start.OnError(Stop)
	Stop.OnError(Shutdown)
}
