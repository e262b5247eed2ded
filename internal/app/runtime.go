package app

import (
	"os"
	"sync/atomic"
)

const testModeEnv = "PORTAL_TEST_MODE"

var testMode atomic.Bool

func init() {
	RefreshTestMode()
}

// InTestMode reports whether startup checks against Redis and the portal API
// should be skipped.
func InTestMode() bool {
	return testMode.Load()
}

// RefreshTestMode re-reads PORTAL_TEST_MODE after environment changes.
func RefreshTestMode() {
	testMode.Store(os.Getenv(testModeEnv) == "1")
}
