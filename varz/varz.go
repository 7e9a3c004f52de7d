/*
varz provides helpers to create expvar variables with package-qualified names.
It imports expvar, so /debug/vars is registered with http.DefaultServeMux;
webapp mounts expvar.Handler on its own mux as well.
*/
package varz

import (
	"expvar"
	"fmt"
	"runtime"
	"strings"
)

// callerPackage returns the import path of the package that called
// NewInt or NewMap.  If the variable is declared in a var block, the
// "init" suffix is removed along with the function name.
func callerPackage() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "varz.unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "varz.unknown"
	}

	n := fn.Name()
	slash := strings.LastIndex(n, "/")
	if dot := strings.Index(n[slash+1:], "."); dot != -1 {
		n = n[:slash+1+dot]
	}

	return n
}

func NewInt(name string) *expvar.Int {
	return expvar.NewInt(fmt.Sprintf("%s.%s", callerPackage(), name))
}

func NewMap(name string) *expvar.Map {
	return expvar.NewMap(fmt.Sprintf("%s.%s", callerPackage(), name))
}
