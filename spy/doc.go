/*
Package spy wraps function values so their invocations can be observed.

A Spy is installed into a Target, which is any settable function-typed slot:
a field of a stand-in struct or a package-level function variable. The
installed wrapper records every call with a Backend and then runs one of:

  - the original function (CallThrough),
  - a stub (CallFake), or
  - nothing at all, returning zero values (CallFake with a nil stub).

Two backends exist. Testify records calls on a testify mock.Mock; Gomock
routes calls through a gomock Controller. They behave the same from the
caller's point of view, so tests can run under either:

	b := spy.Testify()
	s := b.CallFake(t, spy.Target{Name: "Now", Value: reflect.ValueOf(&now).Elem()},
		func() time.Time { return fixed })

	now()
	if s.CallCount() != 1 {
		t.Fatalf("expected one call, got %d", s.CallCount())
	}

Each backend remembers the spies it installed, so installing over an existing
spy reuses it (CallFake resets its history) and wrapping an existing spy again
is a no-op (CallThrough).

Default returns a backend chosen once per process from the STANDIN_BACKEND
environment variable. Prefer passing a backend explicitly where determinism
across environments matters.
*/
package spy
