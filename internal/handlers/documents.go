package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/middleware"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/services"
)

// DocumentHandlers serves the application document endpoints
type DocumentHandlers struct {
	logger    *logging.SafeLogger
	documents *services.DocumentService
}

// NewDocumentHandlers creates a new instance of document handlers
func NewDocumentHandlers(logger *logging.SafeLogger, documents *services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{logger: logger, documents: documents}
}

func uploadFromHeader(fileType string, fh *multipart.FileHeader) services.UploadFile {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return services.UploadFile{
		Type:        fileType,
		Filename:    filepath.Base(fh.Filename),
		ContentType: contentType,
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// respondUpload answers 200 when any file was stored and 400 when none was
func respondUpload(c *gin.Context, resp *models.UploadResponse) {
	for _, o := range resp.Outcomes {
		if o.Success {
			c.JSON(http.StatusOK, resp)
			return
		}
	}
	c.JSON(http.StatusBadRequest, resp)
}

// ListDocuments godoc
// @Summary List application documents
// @Tags documents
// @Produce json
// @Param applicationId path string true "Application ID"
// @Security BearerAuth
// @Success 200 {array} models.DocumentInfo
// @Failure 404 {object} ErrorResponse
// @Router /orphan/documents/{applicationId} [get]
func (h *DocumentHandlers) ListDocuments(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), c.Param("applicationId"))
	if err != nil {
		respondError(c, h.logger, err, "list documents")
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetDocument godoc
// @Summary Download an application document
// @Tags documents
// @Produce octet-stream
// @Param applicationId path string true "Application ID"
// @Param docType path string true "Document type"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orphan/documents/{applicationId}/document/{docType} [get]
func (h *DocumentHandlers) GetDocument(c *gin.Context) {
	docType, ok := models.ParseDocumentType(c.Param("docType"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: models.ErrInvalidDocumentType.Error()})
		return
	}

	info, rc, err := h.documents.Open(c.Request.Context(), c.Param("applicationId"), docType)
	if err != nil {
		respondError(c, h.logger, err, "get document")
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s"`, sanitizeFilename(string(docType))+filepath.Ext(info.Filename)),
	})
}

// UploadDocument godoc
// @Summary Upload one application document
// @Description Replaces any earlier document of the same type. Once every required document is present a complete application moves to PENDING.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param applicationId path string true "Application ID"
// @Param docType path string true "Document type"
// @Param file formData file true "Document file"
// @Security BearerAuth
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.UploadResponse
// @Failure 404 {object} ErrorResponse
// @Router /orphan/documents/{applicationId}/document/{docType} [post]
func (h *DocumentHandlers) UploadDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.logger.Debug("missing upload file", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}

	files := []services.UploadFile{uploadFromHeader(c.Param("docType"), fh)}
	resp, err := h.documents.Upload(c.Request.Context(), c.Param("applicationId"), files, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, h.logger, err, "upload document")
		return
	}
	respondUpload(c, resp)
}

// UploadDocumentsBulk godoc
// @Summary Upload several application documents
// @Description Each multipart field name is a document type. Every file is attempted; the response reports each outcome.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param applicationId path string true "Application ID"
// @Security BearerAuth
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.UploadResponse
// @Failure 404 {object} ErrorResponse
// @Router /orphan/documents/{applicationId}/bulk [post]
func (h *DocumentHandlers) UploadDocumentsBulk(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart form is required"})
		return
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var files []services.UploadFile
	for _, field := range fields {
		for _, fh := range form.File[field] {
			files = append(files, uploadFromHeader(field, fh))
		}
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "at least one file is required"})
		return
	}

	resp, err := h.documents.Upload(c.Request.Context(), c.Param("applicationId"), files, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, h.logger, err, "upload documents")
		return
	}
	respondUpload(c, resp)
}
