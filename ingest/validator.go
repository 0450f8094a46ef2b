package ingest

import (
	"strings"

	"github.com/gradgate/gradgate/config"
)

// MinApplicantAge is the lowest age the portal accepts.
const MinApplicantAge = 16

// Rules are the fixed acceptance limits for one submission.
type Rules struct {
	MaxFileSize  int64 // bytes, per file
	MaxFiles     int
	AllowedTypes []string
}

// RulesFromConfig derives validation rules from loaded configuration.
func RulesFromConfig(cfg config.AppConfig) Rules {
	return Rules{
		MaxFileSize:  cfg.MaxUploadSizeBytes(),
		MaxFiles:     cfg.MaxFilesPerSubmission,
		AllowedTypes: cfg.AllowedMimeTypes,
	}
}

// Validator enforces acceptance rules on fields and candidate files.
// All checks are cheap and run before any storage I/O.
type Validator struct {
	rules   Rules
	allowed map[string]struct{}
}

// NewValidator builds a Validator from the given rules.
func NewValidator(rules Rules) *Validator {
	allowed := make(map[string]struct{}, len(rules.AllowedTypes))
	for _, t := range rules.AllowedTypes {
		allowed[normalizeMime(t)] = struct{}{}
	}
	return &Validator{rules: rules, allowed: allowed}
}

// ValidateFields checks the textual part of a submission.
func (v *Validator) ValidateFields(f Fields) error {
	if strings.TrimSpace(f.FullName) == "" {
		return validationErrorf(CodeMissingField, "full_name is required")
	}
	if f.Age == 0 {
		return validationErrorf(CodeMissingField, "age is required")
	}
	if f.Age < MinApplicantAge {
		return validationErrorf(CodeAgeTooLow, "applicants must be at least %d years old", MinApplicantAge)
	}
	if strings.TrimSpace(f.Address) == "" {
		return validationErrorf(CodeMissingField, "address is required")
	}
	if strings.TrimSpace(f.SelectedCourse) == "" {
		return validationErrorf(CodeMissingField, "selected_course is required")
	}
	return nil
}

// ValidateBatch checks the whole file list: cardinality first, then every
// file's declared type and size. Rejecting here guarantees no blob write
// has started for any file in the batch.
func (v *Validator) ValidateBatch(files []File) error {
	if len(files) == 0 {
		return validationErrorf(CodeNoDocuments, "at least one document is required")
	}
	if len(files) > v.rules.MaxFiles {
		return validationErrorf(CodeTooManyFiles, "at most %d documents are accepted per submission", v.rules.MaxFiles)
	}
	for _, f := range files {
		if err := v.validateFile(f); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateFile(f File) error {
	if _, ok := v.allowed[normalizeMime(f.ContentType)]; !ok {
		return validationErrorf(CodeUnsupportedType, "file type %q is not accepted", f.ContentType)
	}
	if f.Size > v.rules.MaxFileSize {
		return validationErrorf(CodeTooLarge, "file %q exceeds the %d byte limit", f.Name, v.rules.MaxFileSize)
	}
	return nil
}

// normalizeMime lowers the type and strips parameters like "; charset=binary".
func normalizeMime(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}
