package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() Rules {
	return Rules{
		MaxFileSize:  10 * 1024 * 1024,
		MaxFiles:     5,
		AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
	}
}

func validFields() Fields {
	return Fields{
		FullName:       "Jane Doe",
		Age:            20,
		Address:        "1 Main St",
		SelectedCourse: "MBA",
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Fields)
		wantCode ValidationCode
	}{
		{"valid", func(f *Fields) {}, ""},
		{"missing name", func(f *Fields) { f.FullName = "  " }, CodeMissingField},
		{"missing age", func(f *Fields) { f.Age = 0 }, CodeMissingField},
		{"age too low", func(f *Fields) { f.Age = 15 }, CodeAgeTooLow},
		{"age at minimum", func(f *Fields) { f.Age = 16 }, ""},
		{"missing address", func(f *Fields) { f.Address = "" }, CodeMissingField},
		{"missing course", func(f *Fields) { f.SelectedCourse = "" }, CodeMissingField},
		{"score is optional", func(f *Fields) { f.GreGmatScore = nil }, ""},
	}

	v := NewValidator(testRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			err := v.ValidateFields(f)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}

func pdfFile(name string, size int64) File {
	return File{Name: name, ContentType: "application/pdf", Size: size}
}

func TestValidateBatch(t *testing.T) {
	tests := []struct {
		name     string
		files    []File
		wantCode ValidationCode
	}{
		{"single pdf", []File{pdfFile("a.pdf", 2048)}, ""},
		{"no documents", nil, CodeNoDocuments},
		{
			"too many files",
			[]File{
				pdfFile("1.pdf", 1), pdfFile("2.pdf", 1), pdfFile("3.pdf", 1),
				pdfFile("4.pdf", 1), pdfFile("5.pdf", 1), pdfFile("6.pdf", 1),
			},
			CodeTooManyFiles,
		},
		{
			"unsupported type",
			[]File{{Name: "archive.zip", ContentType: "application/zip", Size: 100}},
			CodeUnsupportedType,
		},
		{
			"too large",
			[]File{pdfFile("big.pdf", 11*1024*1024)},
			CodeTooLarge,
		},
		{
			"at the size limit",
			[]File{pdfFile("exact.pdf", 10*1024*1024)},
			"",
		},
		{
			"mime type with parameters",
			[]File{{Name: "scan.jpg", ContentType: "IMAGE/JPEG; charset=binary", Size: 10}},
			"",
		},
		{
			"one bad file rejects the batch",
			[]File{pdfFile("ok.pdf", 10), {Name: "v.mp4", ContentType: "video/mp4", Size: 10}},
			CodeUnsupportedType,
		},
	}

	v := NewValidator(testRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBatch(tt.files)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}
