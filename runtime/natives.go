package runtime

import (
	"time"

	"github.com/sergev/glox/lang"
)

// now is replaced in tests.
var now = time.Now

func installNatives(in *lang.Interpreter) {
	env := in.Globals()
	define := func(name string, arity int, fn lang.NativeFunc) {
		n := lang.NewNative(name, arity, fn)
		env.Define(n.Name(), lang.CallableValue(n))
	}

	define("clock", 0, nativeClock)
}

// nativeClock returns wall-clock time in seconds, with millisecond
// resolution.
func nativeClock(_ *lang.Interpreter, _ []lang.Value) (lang.Value, error) {
	ms := now().UnixMilli()
	return lang.NumberValue(float64(ms) / 1000.0), nil
}
