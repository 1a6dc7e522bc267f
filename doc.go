/*
Package standin builds stand-ins for unit tests out of func-field fakes.

A func-field fake is a struct whose function-typed fields carry the behaviour
of an interface, with a thin hand-written adapter delegating each method to
its field:

	type StoreFake struct {
		GetFunc func(key string) ([]byte, error)
		Prefix  string
	}

	func (f *StoreFake) Get(key string) ([]byte, error) { return f.GetFunc(key) }

standin owns one such value per test and keeps every function-valued field
observable. Fields can be supplied at construction, merged in later, or set
one at a time:

	m := standin.New(t, StoreFake{Prefix: "cfg/"})
	standin.Setup(m, func(f *StoreFake) *func(string) ([]byte, error) { return &f.GetFunc }).
		Is(func(string) ([]byte, error) { return []byte("v"), nil })

	svc := NewService(m.Object())
	...
	if standin.SpyOf(m, func(f *StoreFake) *func(string) ([]byte, error) { return &f.GetFunc }).CallCount() != 1 {
		t.Fatal("expected one lookup")
	}

Selectors name a field by returning a pointer to it, so renames are caught by
the compiler. A field name may be passed explicitly instead and then wins over
the selector.

Spies are recorded by a backend from package spy: testify/mock or
golang/mock. Without WithBackend the process-wide default is used, chosen
once from STANDIN_BACKEND.

Fields holding the zero value are treated as absent by New and Extend. Only
top-level fields are spied; nested structs and pointers are assigned whole,
so compose them from their own Mock when their functions must be observed.
*/
package standin
