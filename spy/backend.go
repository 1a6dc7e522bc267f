package spy

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"unsafe"

	"github.com/google/uuid"
	"github.com/lthibault/log"
)

var (
	// ErrUnknownBackend is returned by Select for names it does not recognise.
	ErrUnknownBackend = errors.New("unknown spy backend")

	// ErrInvalidTarget is reported when a target is not a settable function
	// or interface value.
	ErrInvalidTarget = errors.New("target cannot hold a spy")

	// ErrSignatureMismatch is reported when a stub cannot stand in for the
	// function type of its target.
	ErrSignatureMismatch = errors.New("stub signature does not match target")
)

// Target is a settable slot a spy is installed into: a struct field or a
// package-level function variable. Value must be settable and of function or
// interface kind.
type Target struct {
	// Name identifies the slot in logs and in the backend's call records.
	Name string

	// Value is the settable slot itself.
	Value reflect.Value
}

// Backend installs and resets spies. Testify and Gomock are the only
// implementations; both behave identically from the caller's perspective and
// differ only in which framework records the calls.
type Backend interface {
	// Name identifies the backend, e.g. "testify".
	Name() string

	// CallFake installs stub as the implementation behind target. When the
	// target already holds a spy of this backend, that spy is reused: its
	// history is reset and its implementation rebound. A nil stub installs a
	// bare spy that returns zero values.
	CallFake(t testing.TB, target Target, stub any) *Spy

	// CallThrough wraps a plain function held by target with a spy that still
	// runs it. A target that is nil, not a function, or already spied is left
	// alone; the spy it already holds, if any, is returned.
	CallThrough(t testing.TB, target Target) *Spy

	// SpyOf returns the spy behind fn, or nil when fn is not one of this
	// backend's spies. A spy is forgotten once the test that installed it
	// has finished.
	SpyOf(fn any) *Spy

	newRecorder(t testing.TB, s *Spy) recorder
}

// recorder is the per-spy handle a backend keeps on the underlying framework.
type recorder interface {
	// invoke records the call and runs next with the same arguments.
	invoke(args []reflect.Value, next func([]reflect.Value) []reflect.Value) []reflect.Value

	calls() []Call

	reset()
}

// Option configures a Backend.
type Option func(*core)

// WithLogger sets the logger instance.
// If l == nil, a default logger is used.
func WithLogger(l log.Logger) Option {
	if l == nil {
		l = log.New()
	}

	return func(c *core) {
		c.log = l
	}
}

// core carries the behaviour shared by both backends. The embedding backend
// supplies newRecorder.
type core struct {
	name string
	log  log.Logger
	self Backend

	mu    sync.Mutex
	spies map[unsafe.Pointer]*Spy
}

func newCore(name string, self Backend, opts []Option) *core {
	c := &core{
		name:  name,
		self:  self,
		spies: make(map[unsafe.Pointer]*Spy),
	}

	for _, option := range append([]Option{WithLogger(nil)}, opts...) {
		option(c)
	}

	c.log = c.log.WithField("backend", name)
	return c
}

// Name implements Backend.
func (c *core) Name() string { return c.name }

// SpyOf implements Backend.
func (c *core) SpyOf(fn any) *Spy {
	id := funcID(FuncOf(reflect.ValueOf(fn)))
	if id == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spies[id]
}

// CallFake implements Backend.
func (c *core) CallFake(t testing.TB, target Target, stub any) *Spy {
	t.Helper()

	typ, err := spyType(target, stub)
	if err != nil {
		t.Fatalf("spy: %v", err)
		return nil
	}

	impl := reflect.Value{}
	if stub != nil {
		impl = reflect.ValueOf(stub)
	}

	if s := c.SpyOf(target.Value.Interface()); s != nil && s.typ == typ {
		s.Reset()
		s.bind(impl)
		target.Value.Set(s.fn)

		c.log.WithField("spy", s.ID()).
			WithField("target", target.Name).
			Debug("spy reused with new fake")
		return s
	}

	return c.install(t, target, typ, impl)
}

// CallThrough implements Backend.
func (c *core) CallThrough(t testing.TB, target Target) *Spy {
	t.Helper()

	if !target.Value.IsValid() || !target.Value.CanSet() {
		t.Fatalf("spy: %v: %s", ErrInvalidTarget, target.Name)
		return nil
	}

	fn := FuncOf(target.Value)
	if !fn.IsValid() {
		return nil
	}

	if s := c.SpyOf(fn.Interface()); s != nil {
		c.log.WithField("spy", s.ID()).
			WithField("target", target.Name).
			Debug("already spied")
		return s
	}

	return c.install(t, target, fn.Type(), reflect.ValueOf(fn.Interface()))
}

func (c *core) install(t testing.TB, target Target, typ reflect.Type, impl reflect.Value) *Spy {
	s := &Spy{
		id:      uuid.New(),
		name:    target.Name,
		backend: c.name,
		typ:     typ,
	}
	s.bind(impl)
	s.rec = c.self.newRecorder(t, s)
	s.fn = reflect.MakeFunc(typ, s.call)

	id := funcID(s.fn)
	c.mu.Lock()
	c.spies[id] = s
	c.mu.Unlock()

	t.Cleanup(func() {
		c.mu.Lock()
		delete(c.spies, id)
		c.mu.Unlock()
	})

	target.Value.Set(s.fn)

	c.log.WithField("spy", s.ID()).
		WithField("target", target.Name).
		Debug("spy installed")
	return s
}

// spyType decides the function type of the spy for target. Function targets
// fix the type; interface targets take it from the stub.
func spyType(target Target, stub any) (reflect.Type, error) {
	v := target.Value
	if !v.IsValid() || !v.CanSet() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target.Name)
	}

	switch v.Kind() {
	case reflect.Func:
		if stub == nil {
			return v.Type(), nil
		}
		st := reflect.TypeOf(stub)
		if st.Kind() != reflect.Func || !st.ConvertibleTo(v.Type()) {
			return nil, fmt.Errorf("%w: %s is %s, stub is %s", ErrSignatureMismatch, target.Name, v.Type(), st)
		}
		return v.Type(), nil

	case reflect.Interface:
		if stub == nil {
			return nil, fmt.Errorf("%w: %s needs a stub to infer its function type", ErrInvalidTarget, target.Name)
		}
		st := reflect.TypeOf(stub)
		if st.Kind() != reflect.Func || !st.AssignableTo(v.Type()) {
			return nil, fmt.Errorf("%w: %s is %s, stub is %s", ErrSignatureMismatch, target.Name, v.Type(), st)
		}
		return st, nil
	}

	return nil, fmt.Errorf("%w: %s is %s", ErrInvalidTarget, target.Name, v.Type())
}
