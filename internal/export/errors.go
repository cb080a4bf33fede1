package export

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingToUpload means no page of the submission carries annotations.
	ErrNothingToUpload = errors.New("no annotated pages to upload")
	// ErrInvalidScore means the score is outside 0..100.
	ErrInvalidScore = errors.New("score must be between 0 and 100")
	// ErrMissingTarget means the upload target batch lacked a requested key.
	ErrMissingTarget = errors.New("no upload target issued")
	// ErrNoPendingFinalize means RetryFinalize was called without a failed
	// finalize to retry.
	ErrNoPendingFinalize = errors.New("no finalize to retry")
)

// ReadinessError reports a page whose background never became ready.
type ReadinessError struct {
	PageIndex int // zero-based
	Err       error
}

func (e *ReadinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("page %d image not ready: %v", e.PageIndex+1, e.Err)
	}
	return fmt.Sprintf("page %d image not ready", e.PageIndex+1)
}

func (e *ReadinessError) Unwrap() error { return e.Err }

// UploadError reports a failure to obtain an upload target or to put the
// bytes of one page. Key is empty when the batch request itself failed;
// Status is the HTTP status when one was received.
type UploadError struct {
	Key    string
	Status int
	Err    error
}

func (e *UploadError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("request upload targets: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("upload failed %s: %d: %v", e.Key, e.Status, e.Err)
	}
	return fmt.Sprintf("upload failed %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// FinalizeError means every page was uploaded but the grade was not
// recorded. Drafts are kept so the grade can be retried.
type FinalizeError struct {
	Err error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("pages uploaded but grade not recorded: %v", e.Err)
}

func (e *FinalizeError) Unwrap() error { return e.Err }

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}
