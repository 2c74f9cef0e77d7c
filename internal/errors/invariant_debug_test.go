//go:build gsmdebug

package errors

import "testing"

func TestInternalInvariantAbortsInDebugBuild(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(InternalInvariant, ...) did not panic under the gsmdebug tag")
		}
	}()
	New(InternalInvariant, "popped an empty stack")
}
