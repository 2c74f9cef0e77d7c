//go:build !gsmdebug

package errors

// maybeAbort is a no-op in release builds: an InternalInvariant violation
// must not corrupt state, but it does not abort the process either — the
// caller still fails the instruction and the driver records FAIL (§7).
func maybeAbort(e *GSMError) {}
