package forensics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// MaxFileSize is the hard upload limit. Anything larger is rejected before
// digesting or rendering.
const MaxFileSize = 50 << 20 // 50 MiB

// ValidateFile runs the pre-flight checks, in order: existence, non-zero
// size, size cap. It returns a *ValidationError describing the first failure.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ValidationError{Reason: "File not found on disk"}
	}
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("File not accessible: %v", err)}
	}
	if info.Size() == 0 {
		return &ValidationError{Reason: "Empty file (0 bytes) — rejected"}
	}
	if info.Size() > MaxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("File too large (%d MB > 50 MB limit)", info.Size()>>20)}
	}
	return nil
}
