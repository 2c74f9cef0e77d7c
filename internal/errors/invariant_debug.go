//go:build gsmdebug

package errors

// maybeAbort panics on an InternalInvariant violation in debug builds,
// the Go-build-tag equivalent of the teacher/original's `#ifndef NDEBUG`
// asserts (§7).
func maybeAbort(e *GSMError) {
	panic(e.Error())
}
