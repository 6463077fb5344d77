package s3meta

import "fmt"

// MetadataError reports that a project's metadata object could not be
// fetched or parsed. It is the unit of per-project isolation during a
// refresh run: the orchestrator logs it and moves on to the next project.
type MetadataError struct {
	// Handle identifies the project whose metadata failed.
	Handle string

	// Reason is a short description of the failing step.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *MetadataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Handle, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Handle, e.Reason, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}
