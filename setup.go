package standin

import (
	"reflect"

	"github.com/tarmac-project/standin/spy"
)

// Property sets a single field of a Mock's stand-in. It is created by Setup
// and finished by Is.
type Property[T, F any] struct {
	mock *Mock[T]
	name string
	cell *cell
}

// cell holds the spy a Property installed. Properties derived with As share
// their cell, so a write through any of them is seen by all.
type cell struct {
	spy *spy.Spy
}

// Setup resolves the field sel points at, or the explicitly named one, and
// clears it: data fields are zeroed and function fields get a bare spy that
// records calls and returns zero values. The Property's spy becomes the one
// reported for the field until the next write.
func Setup[T, F any](m *Mock[T], sel func(*T) *F, name ...string) *Property[T, F] {
	m.t.Helper()

	n, ok := resolve(m, sel, name)
	if !ok {
		return nil
	}

	p := &Property[T, F]{mock: m, name: n, cell: new(cell)}
	if !p.fits() {
		return nil
	}

	p.clear()
	m.register(n, p.Spy)
	return p
}

// As returns a Property for the same field that accepts values of type R.
// Use it on fields of interface type to pin the concrete function signature.
// p and the result stay interchangeable: both write the same field and report
// the same spy.
func As[R, T, F any](p *Property[T, F]) *Property[T, R] {
	p.mock.t.Helper()

	q := &Property[T, R]{mock: p.mock, name: p.name, cell: p.cell}
	if !q.fits() {
		return nil
	}

	q.mock.register(q.name, q.Spy)
	return q
}

// Name is the field the Property sets.
func (p *Property[T, F]) Name() string { return p.name }

// Spy returns the spy currently installed by the Property, or nil when the
// field holds data.
func (p *Property[T, F]) Spy() *spy.Spy {
	if p == nil {
		return nil
	}
	return p.cell.spy
}

// Is stores value in the field and returns the Mock for chaining. Functions
// are installed behind the Property's spy, which is reused with a fresh
// history; any other value is assigned as is and leaves the field without a
// spy. The Property's spy becomes the one reported for the field again.
func (p *Property[T, F]) Is(value F) *Mock[T] {
	m := p.mock
	m.t.Helper()

	dst := m.field(p.name)
	l := m.log.WithField("field", p.name)

	v := reflect.ValueOf(&value).Elem()
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			dst.SetZero()
			p.cell.spy = nil
			l.Debug("field cleared")
			m.register(p.name, p.Spy)
			return m
		}
		v = v.Elem()
	}

	if !v.Type().AssignableTo(dst.Type()) {
		m.t.Fatalf("standin: %v: %s is %s, value is %s", ErrTypeMismatch, p.name, dst.Type(), v.Type())
		return m
	}

	if fn := spy.FuncOf(v); fn.IsValid() {
		p.cell.spy = m.backend.CallFake(m.t, spy.Target{Name: p.name, Value: dst}, fn.Interface())
		l.Debug("field faked")
		m.register(p.name, p.Spy)
		return m
	}

	dst.Set(v)
	p.cell.spy = nil
	l.Debug("field set")
	m.register(p.name, p.Spy)
	return m
}

// fits reports whether values of F can be stored in the field, failing the
// test otherwise. Interface types are checked per value by Is.
func (p *Property[T, F]) fits() bool {
	m := p.mock
	m.t.Helper()

	want := m.field(p.name).Type()
	typ := reflect.TypeFor[F]()
	if typ.Kind() == reflect.Interface || typ.AssignableTo(want) {
		return true
	}

	m.t.Fatalf("standin: %v: %s is %s, not %s", ErrTypeMismatch, p.name, want, typ)
	return false
}

func (p *Property[T, F]) clear() {
	m := p.mock
	dst := m.field(p.name)

	if dst.Kind() != reflect.Func {
		dst.SetZero()
		p.cell.spy = nil
		return
	}

	p.cell.spy = m.backend.CallFake(m.t, spy.Target{Name: p.name, Value: dst}, nil)
}
