package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/terabiome/kubeboot/internal/api"
)

// writeAtomic persists data at path without ever exposing a partial
// file: the content goes to a temp file in the same directory and is
// renamed into place only once fully written. On failure the temp file
// is removed and any previous file at path is left untouched.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file in %s: %v", api.ErrWriteFailed, dir, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to write %s: %v", api.ErrWriteFailed, tmpPath, err)
	}

	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to chmod %s: %v", api.ErrWriteFailed, tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to sync %s: %v", api.ErrWriteFailed, tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to close %s: %v", api.ErrWriteFailed, tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace %s: %v", api.ErrWriteFailed, path, err)
	}

	return nil
}
