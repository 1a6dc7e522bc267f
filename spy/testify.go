package spy

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
)

// NameTestify identifies the testify backend.
const NameTestify = "testify"

type testifyBackend struct {
	*core
}

// Testify returns a backend that records calls on a testify mock.Mock per
// spy. Each spy registers a single expectation matching any arguments, and
// every invocation goes through MethodCalled before the implementation runs.
// Resetting a spy replaces its mock.Mock.
func Testify(opts ...Option) Backend {
	b := &testifyBackend{}
	b.core = newCore(NameTestify, b, opts)
	return b
}

func (b *testifyBackend) newRecorder(t testing.TB, s *Spy) recorder {
	r := &testifyRecorder{
		t:     t,
		name:  s.name,
		nargs: s.typ.NumIn(),
	}
	r.reset()
	return r
}

type testifyRecorder struct {
	t     testing.TB
	name  string
	nargs int

	mu   sync.Mutex
	mock *mock.Mock
}

func (r *testifyRecorder) invoke(args []reflect.Value, next func([]reflect.Value) []reflect.Value) []reflect.Value {
	in := arguments(args)
	for i, v := range in {
		in[i] = opaque{v}
	}

	r.mu.Lock()
	r.mock.MethodCalled(r.name, in...)
	r.mu.Unlock()

	return next(args)
}

func (r *testifyRecorder) calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, 0, len(r.mock.Calls))
	for _, c := range r.mock.Calls {
		args := make([]any, len(c.Arguments))
		for i, v := range c.Arguments {
			args[i] = v.(opaque).v
		}
		out = append(out, Call{Args: args})
	}
	return out
}

// opaque hides an argument from testify, which formats every argument while
// matching. Formatting must not run the argument's own String method: it may
// take locks the caller holds or call back into the spy.
type opaque struct{ v any }

func (opaque) String() string { return "arg" }

func (r *testifyRecorder) reset() {
	m := new(mock.Mock)
	m.Test(r.t)

	anything := make([]any, r.nargs)
	for i := range anything {
		anything[i] = mock.Anything
	}
	m.On(r.name, anything...).Return()

	r.mu.Lock()
	r.mock = m
	r.mu.Unlock()
}
