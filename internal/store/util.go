package store

import (
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
)

func uuid8() string { return uuid.NewString()[:8] }

// renameRetrying retries os.Rename on transient failures: on Windows,
// antivirus/indexer handles can hold a directory briefly after it's
// written (ERROR_SHARING_VIOLATION, surfaced to Go as EACCES), per spec
// §9 "Windows specifics".
func renameRetrying(oldpath, newpath string) error {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		err := os.Rename(oldpath, newpath)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrPermission) {
			return err
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 20 * time.Millisecond)
	}
	return lastErr
}
