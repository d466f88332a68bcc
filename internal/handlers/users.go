package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/middleware"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/services"
)

// UserHandlers serves user accounts and media
type UserHandlers struct {
	logger *logging.SafeLogger
	users  *services.UserService
}

// NewUserHandlers creates a new instance of user handlers
func NewUserHandlers(logger *logging.SafeLogger, users *services.UserService) *UserHandlers {
	return &UserHandlers{logger: logger, users: users}
}

// GetMe godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandlers) GetMe(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, h.logger, err, "get current user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandlers) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create a user
// @Description Administrators only.
// @Tags users
// @Accept json
// @Produce json
// @Param data body models.UserRequest true "User"
// @Security BearerAuth
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Description Administrators only.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param data body models.UserRequest true "User"
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandlers) UpdateUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err, "update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func parseMediaType(c *gin.Context) (models.MediaType, bool) {
	mediaType, ok := models.ParseMediaType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "type must be AVATAR or SIGNATURE"})
	}
	return mediaType, ok
}

// UploadMedia godoc
// @Summary Upload a user's avatar or signature
// @Description Users manage their own images; administrators manage anyone's.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "User ID"
// @Param type path string true "AVATAR or SIGNATURE"
// @Param file formData file true "Image"
// @Security BearerAuth
// @Success 201 {object} models.MediaInfo
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /users/media/{id}/file/{type} [post]
func (h *UserHandlers) UploadMedia(c *gin.Context) {
	mediaType, ok := parseMediaType(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}

	info, err := h.users.UploadMedia(c.Request.Context(), c.Param("id"), mediaType,
		uploadFromHeader(string(mediaType), fh), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, h.logger, err, "upload media")
		return
	}
	c.JSON(http.StatusCreated, info)
}

// GetMedia godoc
// @Summary Download a user's avatar or signature
// @Tags users
// @Produce image/png
// @Param id path string true "User ID"
// @Param type path string true "AVATAR or SIGNATURE"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /users/media/{id}/file/{type} [get]
func (h *UserHandlers) GetMedia(c *gin.Context) {
	mediaType, ok := parseMediaType(c)
	if !ok {
		return
	}

	info, rc, err := h.users.OpenMedia(c.Request.Context(), c.Param("id"), mediaType)
	if err != nil {
		respondError(c, h.logger, err, "get media")
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s"`, sanitizeFilename(string(mediaType))+filepath.Ext(info.Filename)),
		"Cache-Control":       "private, max-age=3600",
	})
}
