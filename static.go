package standin

import (
	"reflect"
	"testing"

	"github.com/tarmac-project/standin/spy"
)

// Static replaces the package-level function variable target with stub for
// the rest of the test. The variable keeps a single spy across calls: a
// repeated Static resets its history and swaps the stub, and the original
// function is restored when the test that first replaced it ends.
func Static[F any](t testing.TB, target *F, stub F, opts ...Option) *spy.Spy {
	t.Helper()

	typ := reflect.TypeFor[F]()
	if typ.Kind() != reflect.Func {
		t.Fatalf("standin: %v: %s", ErrNotFunc, typ)
		return nil
	}

	if target == nil {
		t.Fatalf("standin: %v: nil %s", spy.ErrInvalidTarget, typ)
		return nil
	}

	o := newOptions(opts)
	original := *target
	first := o.backend.SpyOf(original) == nil

	v := reflect.ValueOf(target).Elem()
	s := o.backend.CallFake(t, spy.Target{Name: typ.String(), Value: v}, stub)
	if s == nil {
		return nil
	}

	if first {
		t.Cleanup(func() { *target = original })
	}

	o.log.WithField("spy", s.ID()).
		WithField("static", typ.String()).
		Debug("static override installed")
	return s
}
