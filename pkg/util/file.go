package util

import (
	"fmt"
	"os"
	"time"
)

// TimestampForFilename formats t for embedding in generated filenames,
// second resolution, filesystem-safe.
func TimestampForFilename(t time.Time) string {
	return t.Format("20060102-150405")
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
