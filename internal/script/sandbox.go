package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// unsafeGlobals load code from disk, strings or modules and are removed.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "module", "require"}

func openLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// installPrint replaces print so script output goes to the runtime's
// writer.
func (r *Runtime) installPrint() {
	r.L.SetGlobal("print", r.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(r.out, strings.Join(parts, "\t"))
		return 0
	}))
}
