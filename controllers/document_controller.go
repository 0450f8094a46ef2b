package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradgate/gradgate/storage"
	"github.com/gradgate/gradgate/utils"
)

// DocumentController streams stored document blobs back to reviewers.
type DocumentController struct {
	blobs storage.BlobStore
}

// NewDocumentController creates a DocumentController.
func NewDocumentController(blobs storage.BlobStore) *DocumentController {
	return &DocumentController{blobs: blobs}
}

// Download streams one blob with its stored content type and a filename hint
// for inline display. Blobs are immutable, so repeated reads are unconstrained.
func (d *DocumentController) Download(ctx *gin.Context) {
	id := ctx.Param("storageId")

	rc, meta, err := d.blobs.Read(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, "document not found")
			return
		}
		if utils.Sugar != nil {
			utils.Sugar.Errorf("read blob %s failed: %v", id, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to read document")
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", meta.FileName),
	}
	ctx.DataFromReader(http.StatusOK, meta.Size, meta.ContentType, rc, extraHeaders)
}
