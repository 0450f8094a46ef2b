package ingest

import "fmt"

// ValidationCode classifies client-caused rejections. Validation always runs
// before any storage write, so a ValidationError implies zero side effects.
type ValidationCode string

const (
	CodeMissingField    ValidationCode = "MissingField"
	CodeAgeTooLow       ValidationCode = "AgeTooLow"
	CodeUnsupportedType ValidationCode = "UnsupportedType"
	CodeTooLarge        ValidationCode = "TooLarge"
	CodeTooManyFiles    ValidationCode = "TooManyFiles"
	CodeNoDocuments     ValidationCode = "NoDocuments"
)

// ValidationError rejects a submission before anything is persisted.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StorageWriteError reports an infrastructure failure while writing a blob
// mid-submission. The submission is aborted; blobs written earlier in the
// same batch are orphaned rather than rolled back, and no application record
// is created, so nothing ever references them.
type StorageWriteError struct {
	FileName string
	Err      error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storing %q: %v", e.FileName, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
