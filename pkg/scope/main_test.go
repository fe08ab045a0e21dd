package scope

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// Every test must leave no worker goroutine behind once Run returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
