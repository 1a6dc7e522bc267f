package spy

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/google/uuid"
)

// Call captures the arguments of a single invocation observed by a spy.
type Call struct {
	// Args holds the arguments in declaration order. A variadic tail is
	// recorded as a single slice.
	Args []any
}

// Spy observes a function installed in a Target. The installed wrapper
// records each invocation with the backend, then runs the current
// implementation: the original function for call-through spies, a stub for
// call-fake spies, or nothing (zero results) for bare spies.
type Spy struct {
	id      uuid.UUID
	name    string
	backend string
	typ     reflect.Type

	// fn is the wrapper installed into the target. It never changes.
	fn reflect.Value

	mu     sync.RWMutex
	impl   reflect.Value
	origin unsafe.Pointer
	rec    recorder
}

// ID uniquely identifies the spy.
func (s *Spy) ID() string { return s.id.String() }

// Name is the field or variable the spy was installed into.
func (s *Spy) Name() string { return s.name }

// Backend names the backend recording the spy's calls.
func (s *Spy) Backend() string { return s.backend }

// Func returns the installed wrapper. Calling it is equivalent to calling the
// spied field.
func (s *Spy) Func() any { return s.fn.Interface() }

// Calls returns a copy of the invocations recorded since the spy was created
// or last reset.
func (s *Spy) Calls() []Call {
	if s == nil {
		return nil
	}
	return s.recorder().calls()
}

// CallCount returns how many invocations were recorded.
func (s *Spy) CallCount() int { return len(s.Calls()) }

// Called reports whether the spy has been invoked at least once.
func (s *Spy) Called() bool { return s.CallCount() > 0 }

// Reset forgets recorded invocations. The implementation is left in place.
func (s *Spy) Reset() {
	if s == nil {
		return
	}
	s.recorder().reset()
}

// Wraps reports whether fn is either this spy's wrapper or the function the
// spy currently delegates to.
func (s *Spy) Wraps(fn any) bool {
	id := funcID(FuncOf(reflect.ValueOf(fn)))
	if s == nil || id == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return id == s.origin || id == funcID(s.fn)
}

// bind swaps the implementation the wrapper delegates to. An invalid impl
// turns the spy into a bare spy. Binding the spy's own wrapper is ignored.
func (s *Spy) bind(impl reflect.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id := funcID(impl); id != nil && s.fn.IsValid() && id == funcID(s.fn) {
		return
	}
	s.impl = impl
	s.origin = funcID(impl)
}

func (s *Spy) recorder() recorder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec
}

// call is the body of the installed wrapper.
func (s *Spy) call(args []reflect.Value) []reflect.Value {
	s.mu.RLock()
	impl, rec := s.impl, s.rec
	s.mu.RUnlock()

	return rec.invoke(args, func(in []reflect.Value) []reflect.Value {
		if !impl.IsValid() || impl.IsNil() {
			return Zeros(s.typ)
		}
		if s.typ.IsVariadic() {
			return impl.CallSlice(in)
		}
		return impl.Call(in)
	})
}

// Zeros returns the zero value of every result of the function type typ.
func Zeros(typ reflect.Type) []reflect.Value {
	out := make([]reflect.Value, typ.NumOut())
	for i := range out {
		out[i] = reflect.Zero(typ.Out(i))
	}
	return out
}

// FuncOf returns v, or the function held by v when v is an interface, if it
// is a non-nil function. Otherwise it returns the zero Value.
func FuncOf(v reflect.Value) reflect.Value {
	if v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return reflect.Value{}
	}
	return v
}

// funcID returns the closure pointer behind a function value. Two function
// values share an ID only when they are copies of one another.
func funcID(fn reflect.Value) unsafe.Pointer {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil
	}

	cp := reflect.New(fn.Type())
	cp.Elem().Set(fn)
	return *(*unsafe.Pointer)(cp.UnsafePointer())
}

// arguments converts reflected call arguments for the recorders.
func arguments(in []reflect.Value) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v.Interface()
	}
	return out
}
