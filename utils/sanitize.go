package utils

import "github.com/microcosm-cc/bluemonday"

// Applicant fields are plain text; strip any markup outright.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans submitted text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
