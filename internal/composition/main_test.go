package composition

import (
	"testing"

	"go.uber.org/goleak"
)

// merge workers must be gone once Compose returns
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
