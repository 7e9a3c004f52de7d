/*
package dep provides utilities for dependency injection.

okay, just the one.
*/
package dep

import (
	"fmt"
	"reflect"
	"runtime"
)

// Required returns t, or panics naming the caller if t is nil.  Wiring
// mistakes should stop the process at startup, not on the first request.
func Required[T any](t T) T {
	v := reflect.ValueOf(t)
	if v.IsValid() && !isNilPointer(v) {
		return t
	}
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		panic(fmt.Sprintf("missing required dependency of type %T", t))
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		panic(fmt.Sprintf("missing required dependency %s in %s (%s:%d)", reflect.TypeFor[T](), fn.Name(), file, line))
	}
	panic(fmt.Sprintf("missing required dependency %s (%s:%d)", reflect.TypeFor[T](), file, line))
}

func isNilPointer(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}
