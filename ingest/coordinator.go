package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gradgate/gradgate/models"
	"github.com/gradgate/gradgate/storage"
)

// defaultWriteConcurrency bounds parallel blob writes within one submission.
const defaultWriteConcurrency = 4

// Fields is the textual part of a submission, already parsed and sanitized.
type Fields struct {
	FullName       string
	Age            int
	Address        string
	GreGmatScore   *int // optional
	SelectedCourse string
}

// File is one candidate attachment. Open is called at most once, when the
// file has passed validation and its blob write begins.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// RecordInserter persists a finished application record.
type RecordInserter interface {
	Insert(ctx context.Context, app *models.Application) error
}

// Coordinator drives one submission end to end: validate everything cheap
// first, store every attachment, then persist a single application record
// referencing all stored blobs. A record is only ever created after every
// blob write in the batch has succeeded.
type Coordinator struct {
	blobs       storage.BlobStore
	records     RecordInserter
	validator   *Validator
	concurrency int
	now         func() time.Time
}

// NewCoordinator assembles a Coordinator over the given stores.
func NewCoordinator(blobs storage.BlobStore, records RecordInserter, validator *Validator) *Coordinator {
	return &Coordinator{
		blobs:       blobs,
		records:     records,
		validator:   validator,
		concurrency: defaultWriteConcurrency,
		now:         time.Now,
	}
}

// Submit validates and persists one submission. On a ValidationError nothing
// has been written. On a StorageWriteError or insert failure, blobs written
// earlier in the batch remain as unreferenced orphans; no record exists for
// them and the caller is expected to resubmit.
func (c *Coordinator) Submit(ctx context.Context, fields Fields, files []File) (*models.Application, error) {
	if err := c.validator.ValidateFields(fields); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateBatch(files); err != nil {
		return nil, err
	}

	submittedAt := c.now()
	attachments := make([]models.Attachment, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			displayName := displayFileName(fields.FullName, submittedAt, f.Name)
			rc, err := f.Open()
			if err != nil {
				return &StorageWriteError{FileName: f.Name, Err: err}
			}
			defer rc.Close()

			res, err := c.blobs.Write(gctx, rc, f.ContentType, displayName)
			if err != nil {
				return &StorageWriteError{FileName: f.Name, Err: err}
			}
			attachments[i] = models.Attachment{
				Position:     i,
				StorageID:    res.ID,
				FileName:     displayName,
				OriginalName: f.Name,
				MimeType:     f.ContentType,
				Size:         res.Size,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	app := &models.Application{
		FullName:       fields.FullName,
		Age:            fields.Age,
		Address:        fields.Address,
		GreGmatScore:   fields.GreGmatScore,
		SelectedCourse: fields.SelectedCourse,
		Status:         "Pending",
		SubmittedAt:    submittedAt,
		Attachments:    attachments,
	}
	if err := c.records.Insert(ctx, app); err != nil {
		return nil, fmt.Errorf("persist application record: %w", err)
	}
	return app, nil
}

// displayFileName derives a per-submission unique display name from the
// applicant, the submission timestamp, and the original filename. Collisions
// across submissions are acceptable; storage ids are the real identity.
func displayFileName(applicant string, ts time.Time, original string) string {
	base := filepath.Base(original)
	if base == "." || base == "" {
		base = "document"
	}
	name := strings.ReplaceAll(strings.TrimSpace(applicant), " ", "_")
	return fmt.Sprintf("%s_%d_%s", name, ts.UnixNano(), base)
}
