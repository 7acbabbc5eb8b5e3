// Package testing switches the process into test mode when imported by a test binary.
// It also keeps test runs away from the real data directory and from a local redis.
package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// defaults apply only to variables the developer has not set.
func defaults() map[string]string {
	scratch := filepath.Join(os.TempDir(), fmt.Sprintf("gstbill-test-%d", os.Getpid()))
	return map[string]string{
		"GSTBILL_TEST_MODE": "1",
		"REDIS_ADDR":        "",
		"DATA_FILE":         filepath.Join(scratch, "db.json"),
		"BACKUP_DIR":        filepath.Join(scratch, "backups"),
	}
}

func ensureTestMode() {
	once.Do(func() {
		for key, value := range defaults() {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
