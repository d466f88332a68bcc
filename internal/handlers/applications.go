package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/document"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/middleware"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/services"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"github.com/qcbd/app-beneficiary/internal/validation"
	"github.com/qcbd/app-beneficiary/internal/workflow"
)

// ApplicationHandlers serves the orphan application endpoints
type ApplicationHandlers struct {
	logger       *logging.SafeLogger
	applications *services.ApplicationService
	exports      *services.ExportService
}

// NewApplicationHandlers creates a new instance of application handlers
func NewApplicationHandlers(logger *logging.SafeLogger, applications *services.ApplicationService, exports *services.ExportService) *ApplicationHandlers {
	return &ApplicationHandlers{
		logger:       logger,
		applications: applications,
		exports:      exports,
	}
}

// SaveResponse is returned by a successful save or submit
type SaveResponse struct {
	Application    *models.OrphanApplication `json:"application"`
	PreviousStatus models.ApplicationStatus  `json:"previousStatus"`
	Status         models.ApplicationStatus  `json:"status"`
	Tabs           []validation.TabState     `json:"tabs"`
}

// ValidateResponse is the result of a dry-run validation
type ValidateResponse struct {
	Valid  bool                    `json:"valid"`
	Depth  string                  `json:"depth"`
	Errors []validation.FieldError `json:"errors"`
	Tabs   []validation.TabState   `json:"tabs"`
}

func newSaveResponse(outcome workflow.SaveOutcome) SaveResponse {
	return SaveResponse{
		Application:    outcome.Application,
		PreviousStatus: outcome.PreviousStatus,
		Status:         outcome.Status,
		Tabs:           outcome.Result.Tabs(),
	}
}

func parseSubmit(c *gin.Context) (bool, error) {
	raw := c.Query("submit")
	if raw == "" {
		return false, nil
	}
	submit, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: submit must be true or false", models.ErrValidationFailed)
	}
	return submit, nil
}

func (h *ApplicationHandlers) save(c *gin.Context, id string) {
	ctx, span := utils.TraceInputParsing(c.Request.Context(), "orphan_application")
	submit, err := parseSubmit(c)
	if err != nil {
		span.End()
		respondError(c, h.logger, err, "save application")
		return
	}

	var values models.OrphanApplication
	if err := c.ShouldBindJSON(&values); err != nil {
		span.End()
		h.logger.Debug("invalid application payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	span.End()

	outcome, err := h.applications.Save(ctx, id, &values, submit, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, h.logger, err, "save application")
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	c.JSON(status, newSaveResponse(outcome))
}

// CreateApplication godoc
// @Summary Create an orphan application
// @Description Saves a new application as a draft, or submits it with submit=true. Drafts need only the identifying fields; submission needs every tab to pass validation.
// @Tags applications
// @Accept json
// @Produce json
// @Param submit query bool false "Submit instead of saving a draft"
// @Param data body models.OrphanApplication true "Application form values"
// @Security BearerAuth
// @Success 201 {object} SaveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /applications/orphan [post]
func (h *ApplicationHandlers) CreateApplication(c *gin.Context) {
	h.save(c, "")
}

// UpdateApplication godoc
// @Summary Update an orphan application
// @Description Saves edits to an existing application as a draft, or submits it with submit=true.
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param submit query bool false "Submit instead of saving a draft"
// @Param data body models.OrphanApplication true "Application form values"
// @Security BearerAuth
// @Success 200 {object} SaveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /applications/orphan/{id} [put]
func (h *ApplicationHandlers) UpdateApplication(c *gin.Context) {
	h.save(c, c.Param("id"))
}

// GetApplication godoc
// @Summary Get an orphan application
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Security BearerAuth
// @Success 200 {object} models.OrphanApplication
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /applications/orphan/{id} [get]
func (h *ApplicationHandlers) GetApplication(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get application")
		return
	}
	c.JSON(http.StatusOK, app)
}

// DeleteApplication godoc
// @Summary Delete an orphan application
// @Description Removes the application and its documents (administrators only).
// @Tags applications
// @Param id path string true "Application ID"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /applications/orphan/{id} [delete]
func (h *ApplicationHandlers) DeleteApplication(c *gin.Context) {
	if err := h.applications.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "delete application")
		return
	}
	c.Status(http.StatusNoContent)
}

func parseApplicationFilter(c *gin.Context) (models.ApplicationFilter, error) {
	filter := models.ApplicationFilter{
		District:  c.Query("district"),
		Search:    c.Query("search"),
		CreatedBy: c.Query("created_by"),
	}

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(part)))
			if !status.IsValid() {
				return filter, fmt.Errorf("%w: unknown status %q", models.ErrValidationFailed, part)
			}
			filter.Status = append(filter.Status, status)
		}
	}

	if raw := c.Query("gender"); raw != "" {
		gender := models.Gender(strings.ToUpper(raw))
		switch gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
			filter.Gender = gender
		default:
			return filter, fmt.Errorf("%w: unknown gender %q", models.ErrValidationFailed, raw)
		}
	}

	from, to, err := utils.ParseDateRange(c.Query("created_from"), c.Query("created_to"), document.BangladeshTime)
	if err != nil {
		return filter, fmt.Errorf("%w: %s", models.ErrValidationFailed, err.Error())
	}
	filter.CreatedFrom, filter.CreatedTo = from, to
	return filter, nil
}

// ListApplications godoc
// @Summary List orphan applications
// @Description Paginated list, newest first. Dates are interpreted in Bangladesh time.
// @Tags applications
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param district query string false "Permanent address district"
// @Param gender query string false "MALE, FEMALE or OTHER"
// @Param search query string false "Name, father's name, birth registration or ID"
// @Param created_by query string false "Creator user ID"
// @Param created_from query string false "Lower bound (YYYY-MM-DD or RFC3339)"
// @Param created_to query string false "Upper bound (YYYY-MM-DD or RFC3339)"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Items per page (default 20, max 100)"
// @Security BearerAuth
// @Success 200 {object} models.PaginatedApplications
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /applications/orphan [get]
func (h *ApplicationHandlers) ListApplications(c *gin.Context) {
	filter, err := parseApplicationFilter(c)
	if err != nil {
		respondError(c, h.logger, err, "list applications")
		return
	}
	page := utils.ParsePagination(c.Query("page"), c.Query("per_page"))

	result, err := h.applications.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, h.logger, err, "list applications")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ValidateApplication godoc
// @Summary Validate a stored application
// @Description Runs the partial or full rule set without saving.
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Param depth query string false "partial or full (default full)"
// @Security BearerAuth
// @Success 200 {object} ValidateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /applications/orphan/{id}/validate [post]
func (h *ApplicationHandlers) ValidateApplication(c *gin.Context) {
	depth, ok := validation.ParseDepth(c.DefaultQuery("depth", validation.Full.String()))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "depth must be partial or full"})
		return
	}

	result, err := h.applications.Validate(c.Request.Context(), c.Param("id"), depth)
	if err != nil {
		respondError(c, h.logger, err, "validate application")
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []validation.FieldError{}
	}
	c.JSON(http.StatusOK, ValidateResponse{
		Valid:  result.Valid(),
		Depth:  depth.String(),
		Errors: errs,
		Tabs:   result.Tabs(),
	})
}

// UpdateStatus godoc
// @Summary Decide on an application
// @Description Accept, reject or grant a pending or accepted application. A rejection message is kept only for REJECTED.
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param data body models.StatusUpdateRequest true "Decision"
// @Security BearerAuth
// @Success 200 {object} models.OrphanApplication
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /applications/orphan/{id}/status [put]
func (h *ApplicationHandlers) UpdateStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	req.Status = models.ApplicationStatus(strings.ToUpper(string(req.Status)))

	app, err := h.applications.Decide(c.Request.Context(), c.Param("id"), req, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, h.logger, err, "update application status")
		return
	}
	c.JSON(http.StatusOK, app)
}

// GetApplicationDocument godoc
// @Summary Render the application document
// @Description Returns the printable bilingual HTML document. With download=true it is sent as an attachment.
// @Tags applications
// @Produce html
// @Param id path string true "Application ID"
// @Param download query bool false "Send as attachment"
// @Security BearerAuth
// @Success 200 {string} string "HTML document"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /applications/orphan/{id}/document [get]
func (h *ApplicationHandlers) GetApplicationDocument(c *gin.Context) {
	id := c.Param("id")
	html, err := h.applications.GenerateDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "generate application document")
		return
	}

	if download, _ := strconv.ParseBool(c.Query("download")); download {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="application-%s.html"`, sanitizeFilename(id)))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// ExportFields godoc
// @Summary List exportable fields
// @Tags export
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.ExportFieldGroup
// @Router /applications/orphan/export/fields [get]
func (h *ApplicationHandlers) ExportFields(c *gin.Context) {
	c.JSON(http.StatusOK, h.exports.Fields())
}

// ExportApplications godoc
// @Summary Export applications as CSV
// @Description Accepts the same filters as the list endpoint. fields is a comma separated list of paths from the field catalog; omitted means all fields.
// @Tags export
// @Produce text/csv
// @Param fields query string false "Comma separated field paths"
// @Security BearerAuth
// @Success 200 {string} string "CSV"
// @Failure 400 {object} ErrorResponse
// @Router /applications/orphan/export [get]
func (h *ApplicationHandlers) ExportApplications(c *gin.Context) {
	filter, err := parseApplicationFilter(c)
	if err != nil {
		respondError(c, h.logger, err, "export applications")
		return
	}

	var fields []string
	if raw := c.Query("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	var buf strings.Builder
	if _, err := h.exports.Export(c.Request.Context(), &buf, fields, filter); err != nil {
		respondError(c, h.logger, err, "export applications")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orphan-applications.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(buf.String()))
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
