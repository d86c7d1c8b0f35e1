package recording

import (
	"fmt"
	"os"
)

// DirState is the tri-state outcome of EnsureDir.
type DirState int

const (
	// DirCreated means the directory did not exist and was created.
	DirCreated DirState = iota
	// DirAlreadyExists means the directory was already present. Existing
	// output directories are the resumability marker: the corresponding
	// work is considered done and must be skipped.
	DirAlreadyExists
	// DirError means the directory could not be created.
	DirError
)

// EnsureDir creates the directory if it does not exist and reports which of
// the three cases occurred. The returned error is non-nil only for DirError.
func EnsureDir(path string) (DirState, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return DirAlreadyExists, nil
		}
		return DirError, fmt.Errorf("output path %s exists and is not a directory", path)
	}
	if !os.IsNotExist(err) {
		return DirError, fmt.Errorf("failed to stat output directory %s: %w", path, err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return DirError, fmt.Errorf("failed to create output directory %s: %w", path, err)
	}
	return DirCreated, nil
}
