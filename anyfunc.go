package standin

import (
	"fmt"
	"reflect"

	"github.com/tarmac-project/standin/spy"
)

// AnyFunc returns a function of type F that does nothing and returns zero
// values. Each call returns a distinct function, so it can be overridden or
// spied like any other. It panics if F is not a function type.
func AnyFunc[F any]() F {
	typ := reflect.TypeFor[F]()
	if typ.Kind() != reflect.Func {
		panic(fmt.Errorf("%w: %s", ErrNotFunc, typ))
	}

	fn := reflect.MakeFunc(typ, func([]reflect.Value) []reflect.Value {
		return spy.Zeros(typ)
	})

	return fn.Interface().(F)
}
