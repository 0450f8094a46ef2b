package controllers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gradgate/gradgate/ingest"
	"github.com/gradgate/gradgate/models"
	"github.com/gradgate/gradgate/records"
	"github.com/gradgate/gradgate/utils"
)

const submissionCachePrefix = "cache:submissions:"

// Submitter runs the ingestion sequence for one submission.
type Submitter interface {
	Submit(ctx context.Context, fields ingest.Fields, files []ingest.File) (*models.Application, error)
}

// RecordReader serves stored application records.
type RecordReader interface {
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	ListAll(ctx context.Context, page, pageSize int) ([]models.Application, int64, error)
}

// SubmissionController handles application submission and lookup endpoints.
type SubmissionController struct {
	submitter Submitter
	reader    RecordReader
}

// NewSubmissionController creates a SubmissionController.
func NewSubmissionController(submitter Submitter, reader RecordReader) *SubmissionController {
	return &SubmissionController{submitter: submitter, reader: reader}
}

// CreateSubmission accepts a multipart form with applicant fields and 1-5
// document parts, stores every document, and persists the application record.
func (s *SubmissionController) CreateSubmission(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fields := ingest.Fields{
		FullName:       utils.Sanitize(strings.TrimSpace(ctx.PostForm("full_name"))),
		Address:        utils.Sanitize(strings.TrimSpace(ctx.PostForm("address"))),
		SelectedCourse: utils.Sanitize(strings.TrimSpace(ctx.PostForm("selected_course"))),
	}
	if v := strings.TrimSpace(ctx.PostForm("age")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, "age must be a number")
			return
		}
		fields.Age = n
	}
	// Optional test score; absent is fine
	if v := strings.TrimSpace(ctx.PostForm("gre_gmat_score")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, "gre_gmat_score must be a number")
			return
		}
		fields.GreGmatScore = &n
	}

	files := filesFromForm(form.File["documents"])

	app, err := s.submitter.Submit(ctx.Request.Context(), fields, files)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			utils.Error(ctx, http.StatusBadRequest, verr.Message)
			return
		}
		if utils.Sugar != nil {
			utils.Sugar.Errorf("submission failed for %q: %v", fields.FullName, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to store submission")
		return
	}

	utils.InvalidateByPrefix(submissionCachePrefix)
	utils.Created(ctx, app)
}

// ListSubmissions returns all applications newest-first, paginated.
func (s *SubmissionController) ListSubmissions(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := submissionCachePrefix + "list:p" + strconv.Itoa(page) + ":s" + strconv.Itoa(pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	apps, total, err := s.reader.ListAll(ctx.Request.Context(), page, pageSize)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("list submissions failed: %v", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to retrieve submissions")
		return
	}

	payload := gin.H{
		"items": apps,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	wrapper := utils.JSONResponse{Success: true, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

// GetSubmission returns one application by id.
func (s *SubmissionController) GetSubmission(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid submission id")
		return
	}

	cacheKey := submissionCachePrefix + "detail:" + idStr
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	app, err := s.reader.GetByID(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, "submission not found")
			return
		}
		if utils.Sugar != nil {
			utils.Sugar.Errorf("get submission %d failed: %v", id, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to retrieve submission")
		return
	}

	wrapper := utils.JSONResponse{Success: true, Message: "success", Data: app}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, app)
}

func filesFromForm(headers []*multipart.FileHeader) []ingest.File {
	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, ingest.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 20
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}
