package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Render produces the canonical textual rendering of a value as specified
// in §6: true|false for bool, base-10 for int, "p/q" lowest terms (q>0) for
// rat, shortest-roundtrip decimal for float, a double-quoted escaped
// string for string, "[e1, e2, ...]" for list, "ref:<name>[.<sub>]" for
// ref, and "Error: <message>" for err.
func Render(v Value) string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return v.Int.String()
	case KindRat:
		return v.Rat.Num().String() + "/" + v.Rat.Denom().String()
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindList:
		parts := make([]string, 0, v.List.Len())
		for _, e := range v.List.Elements() {
			parts = append(parts, Render(*e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRef:
		if v.RefSub == "" {
			return "ref:" + v.RefName
		}
		return "ref:" + v.RefName + "." + v.RefSub
	case KindErr:
		return "Error: " + v.Err.Message
	case KindStream:
		return "<stream>"
	case KindOpaque:
		return fmt.Sprintf("<opaque:%s>", v.Opaque.TypeName)
	default:
		return "<?>"
	}
}
