package standin

import (
	"reflect"
	"testing"

	"github.com/lthibault/log"

	"github.com/tarmac-project/standin/field"
	"github.com/tarmac-project/standin/spy"
)

// Mock owns a stand-in value of the struct type T for the duration of a test.
type Mock[T any] struct {
	t       testing.TB
	backend spy.Backend
	log     log.Logger
	typ     reflect.Type
	object  *T

	// spies maps a field name to an accessor for the spy currently active on
	// that field. Later registrations replace earlier ones.
	spies map[string]func() *spy.Spy
}

// New returns a Mock whose stand-in starts from overrides. Every non-zero
// field is copied; function fields are wrapped by a call-through spy first.
func New[T any](t testing.TB, overrides T, opts ...Option) *Mock[T] {
	t.Helper()

	m := newMock(t, new(T), opts)
	if m == nil {
		return nil
	}
	return m.Extend(overrides)
}

// Of returns a Mock with a zero stand-in.
func Of[T any](t testing.TB, opts ...Option) *Mock[T] {
	t.Helper()
	return newMock(t, new(T), opts)
}

// Wrap adopts obj as the stand-in. Its function fields are wrapped in place,
// so the caller's value observes every call as well. A nil obj behaves like Of.
func Wrap[T any](t testing.TB, obj *T, opts ...Option) *Mock[T] {
	t.Helper()

	if obj == nil {
		obj = new(T)
	}

	m := newMock(t, obj, opts)
	if m == nil {
		return nil
	}

	v := reflect.ValueOf(obj).Elem()
	for i := 0; i < m.typ.NumField(); i++ {
		sf := m.typ.Field(i)
		if !sf.IsExported() || v.Field(i).IsZero() {
			continue
		}
		m.assign(sf.Name, v.Field(i), v.Field(i))
	}

	return m
}

func newMock[T any](t testing.TB, obj *T, opts []Option) *Mock[T] {
	t.Helper()

	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		t.Fatalf("standin: %v: %s", ErrNotStruct, typ)
		return nil
	}

	o := newOptions(opts)
	return &Mock[T]{
		t:       t,
		backend: o.backend,
		log:     o.log.WithField("mock", typ.String()),
		typ:     typ,
		object:  obj,
		spies:   make(map[string]func() *spy.Spy),
	}
}

// Object returns the stand-in. Hand it to the code under test.
func (m *Mock[T]) Object() *T { return m.object }

// Backend returns the backend recording this Mock's spies.
func (m *Mock[T]) Backend() spy.Backend { return m.backend }

// Extend merges overrides into the stand-in with the same rules as New.
// Fields left at their zero value are untouched. Extending a field with the
// function its spy already wraps keeps that spy and its history.
func (m *Mock[T]) Extend(overrides T) *Mock[T] {
	m.t.Helper()

	src := reflect.ValueOf(&overrides).Elem()
	dst := reflect.ValueOf(m.object).Elem()
	for i := 0; i < m.typ.NumField(); i++ {
		sf := m.typ.Field(i)
		if !sf.IsExported() || src.Field(i).IsZero() {
			continue
		}
		m.assign(sf.Name, dst.Field(i), src.Field(i))
	}

	return m
}

// SpyNamed returns the spy active on the named field, or nil when the field
// holds data or was never set.
func (m *Mock[T]) SpyNamed(name string) *spy.Spy {
	current, ok := m.spies[name]
	if !ok {
		return nil
	}
	return current()
}

// SpyOf returns the spy active on the field sel points at, or nil when the
// field holds data or was never set. A non-empty name overrides sel.
func SpyOf[T, F any](m *Mock[T], sel func(*T) *F, name ...string) *spy.Spy {
	m.t.Helper()

	n, ok := resolve(m, sel, name)
	if !ok {
		return nil
	}
	return m.SpyNamed(n)
}

// assign stores src in dst and makes sure a function value ends up behind a
// spy of the Mock's backend.
func (m *Mock[T]) assign(name string, dst, src reflect.Value) {
	m.t.Helper()

	l := m.log.WithField("field", name)

	if fn := spy.FuncOf(src); fn.IsValid() {
		if s := m.backend.SpyOf(dst.Interface()); s != nil && s.Wraps(fn.Interface()) {
			m.register(name, m.current(name))
			l.WithField("spy", s.ID()).Debug("field unchanged")
			return
		}
	}

	dst.Set(src)
	m.backend.CallThrough(m.t, spy.Target{Name: name, Value: dst})
	m.register(name, m.current(name))
	l.Debug("field assigned")
}

func (m *Mock[T]) register(name string, current func() *spy.Spy) {
	m.spies[name] = current
}

// current looks the spy up from whatever the field holds at the time of the
// call.
func (m *Mock[T]) current(name string) func() *spy.Spy {
	return func() *spy.Spy {
		return m.backend.SpyOf(m.field(name).Interface())
	}
}

func (m *Mock[T]) field(name string) reflect.Value {
	return reflect.ValueOf(m.object).Elem().FieldByName(name)
}

func resolve[T, F any](m *Mock[T], sel func(*T) *F, name []string) (string, bool) {
	m.t.Helper()

	n, err := field.Resolve(sel, name...)
	if err != nil {
		m.t.Fatalf("standin: %v", err)
		return "", false
	}
	return n, true
}
