package spy

import (
	"reflect"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
)

// NameGomock identifies the gomock backend.
const NameGomock = "gomock"

// invocation is the single argument every gomock expectation receives. Using
// one fixed method type keeps variadic and zero-argument functions uniform.
type invocation struct {
	args       []reflect.Value
	next       func([]reflect.Value) []reflect.Value
	generation uint64
}

var invocationType = reflect.TypeOf(func(invocation) []reflect.Value { return nil })

type gomockBackend struct {
	*core
}

// Gomock returns a backend that routes every call through a gomock
// Controller owned by the spy. The expectation accepts any invocation any
// number of times and runs the implementation from DoAndReturn. The
// expectation is recorded once per spy; resetting only starts a new history.
func Gomock(opts ...Option) Backend {
	b := &gomockBackend{}
	b.core = newCore(NameGomock, b, opts)
	return b
}

func (b *gomockBackend) newRecorder(t testing.TB, s *Spy) recorder {
	r := &gomockRecorder{
		ctrl:     gomock.NewController(t),
		name:     s.name,
		receiver: uuid.NewString(),
	}

	r.ctrl.RecordCallWithMethodType(r.receiver, r.name, invocationType, gomock.Any()).
		AnyTimes().
		DoAndReturn(func(inv invocation) []reflect.Value {
			r.record(inv.generation, inv.args)
			return inv.next(inv.args)
		})
	return r
}

type gomockRecorder struct {
	ctrl     *gomock.Controller
	name     string
	receiver string

	mu         sync.Mutex
	generation uint64
	history    []Call
}

func (r *gomockRecorder) invoke(args []reflect.Value, next func([]reflect.Value) []reflect.Value) []reflect.Value {
	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	rets := r.ctrl.Call(r.receiver, r.name, invocation{args: args, next: next, generation: generation})
	if len(rets) == 0 {
		return nil
	}

	out, _ := rets[0].([]reflect.Value)
	return out
}

func (r *gomockRecorder) calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.history...)
}

func (r *gomockRecorder) reset() {
	r.mu.Lock()
	r.generation++
	r.history = nil
	r.mu.Unlock()
}

// record appends to the history unless the call started before the last
// reset.
func (r *gomockRecorder) record(generation uint64, args []reflect.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if generation == r.generation {
		r.history = append(r.history, Call{Args: arguments(args)})
	}
}
