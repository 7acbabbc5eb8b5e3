package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "GSTBILL_TEST_MODE"

// testMode caches the parsed flag; nil means it has not been read yet.
var testMode atomic.Pointer[bool]

// InTestMode reports whether binaries should return before opening stores or listeners.
// Any value strconv.ParseBool accepts as true enables it.
func InTestMode() bool {
	if on := testMode.Load(); on != nil {
		return *on
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads GSTBILL_TEST_MODE after the environment changed and returns
// the new value.
func RefreshTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testMode.Store(&on)
	return on
}
