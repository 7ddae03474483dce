package forensics

import "fmt"

// ValidationError reports input rejected before any analysis work began:
// missing, empty, or oversized files.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// RenderError reports that a document could not be rasterized. The archive
// path degrades to digest-only analysis on this error; the pairwise
// comparison path returns it to the caller.
type RenderError struct {
	File  string
	Cause error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rendering error: could not render %s: %v", e.File, e.Cause)
	}
	return fmt.Sprintf("rendering error: could not render %s", e.File)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
