package resolve

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies Resolve's bounded errgroup worker pool leaves no
// goroutines running once the call returns, whatever the outcome of
// each individual lookup.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
