package publish

import "fmt"

// UploadError reports a failed object-store upload. The pipeline
// aborts on the first one; nothing is partially written by the failed
// call itself.
type UploadError struct {
	Stage string // "cover", "sample", "stem"
	Name  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed (%s %q): %v", e.Stage, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// WriteError reports a store rejection during the aggregate write.
// The surrounding transaction is rolled back as a unit.
type WriteError struct {
	Step string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("aggregate write failed at %s: %v", e.Step, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// TransitionError reports a lifecycle transition the state machine
// forbids.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s transition %s -> %s rejected: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s transition %s -> %s is not allowed", e.Entity, e.From, e.To)
}
