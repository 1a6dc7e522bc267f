package field

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

var (
	// ErrUnresolvable is returned when a selector does not address exactly one
	// top-level field of its argument.
	ErrUnresolvable = errors.New("property not resolvable")

	// ErrUnknownField is returned when an explicit field name does not exist.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnexported is returned for fields that reflection cannot set.
	ErrUnexported = errors.New("field is unexported")

	// ErrNotStruct is returned when the selector's argument is not a struct.
	ErrNotStruct = errors.New("type is not a struct")
)

// Resolve returns the name of the field of T that sel points at. A non-empty
// name takes precedence over sel and is only checked for existence. Fields
// that share both address and type, such as adjacent zero-size fields, cannot
// be told apart by a selector and need the explicit name.
func Resolve[T, F any](sel func(*T) *F, name ...string) (string, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w: %s", ErrNotStruct, typ)
	}

	if len(name) > 0 && name[0] != "" {
		f, err := Lookup(typ, name[0])
		if err != nil {
			return "", err
		}
		return f.Name, nil
	}

	if sel == nil {
		return "", fmt.Errorf("%w: nil selector", ErrUnresolvable)
	}

	probe := new(T)
	ptr, err := run(sel, probe)
	if err != nil {
		return "", err
	}

	base := uintptr(unsafe.Pointer(probe))
	addr := uintptr(unsafe.Pointer(ptr))
	if addr < base || addr >= base+typ.Size() {
		return "", fmt.Errorf("%w: selector does not address a field of %s", ErrUnresolvable, typ)
	}

	offset := addr - base
	want := reflect.TypeFor[F]()

	var found []reflect.StructField
	for i := 0; i < typ.NumField(); i++ {
		if f := typ.Field(i); f.Offset == offset && f.Type == want {
			found = append(found, f)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: selector addresses a nested %s inside %s", ErrUnresolvable, want, typ)
	case 1:
	default:
		names := make([]string, len(found))
		for i, f := range found {
			names[i] = f.Name
		}
		return "", fmt.Errorf("%w: selector is ambiguous between %s.{%s}, pass the field name explicitly",
			ErrUnresolvable, typ, strings.Join(names, ", "))
	}

	if f := found[0]; !f.IsExported() {
		return "", fmt.Errorf("%w: %s.%s", ErrUnexported, typ, f.Name)
	}
	return found[0].Name, nil
}

// Lookup returns the top-level exported field called name.
func Lookup(typ reflect.Type, name string) (reflect.StructField, error) {
	if typ.Kind() != reflect.Struct {
		return reflect.StructField{}, fmt.Errorf("%w: %s", ErrNotStruct, typ)
	}

	f, ok := typ.FieldByName(name)
	if !ok || len(f.Index) != 1 {
		return reflect.StructField{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, typ, name)
	}

	if !f.IsExported() {
		return reflect.StructField{}, fmt.Errorf("%w: %s.%s", ErrUnexported, typ, name)
	}

	return f, nil
}

// run calls sel and converts a nil pointer or a panic into ErrUnresolvable.
func run[T, F any](sel func(*T) *F, probe *T) (ptr *F, err error) {
	defer func() {
		if r := recover(); r != nil {
			ptr, err = nil, fmt.Errorf("%w: selector panicked: %v", ErrUnresolvable, r)
		}
	}()

	if ptr = sel(probe); ptr == nil {
		return nil, fmt.Errorf("%w: selector returned nil", ErrUnresolvable)
	}

	return ptr, nil
}
