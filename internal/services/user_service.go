package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"github.com/qcbd/app-beneficiary/internal/validation"
)

// UserService manages user accounts and their avatar and signature images
type UserService struct {
	users      store.UserStore
	media      store.MediaStore
	signatures *SignatureService
	maxSize    int64
	logger     *logging.SafeLogger
	now        func() time.Time
}

// NewUserService creates a new UserService instance
func NewUserService(users store.UserStore, media store.MediaStore, signatures *SignatureService, maxSize int64, logger *logging.SafeLogger) *UserService {
	return &UserService{
		users:      users,
		media:      media,
		signatures: signatures,
		maxSize:    maxSize,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func normalizeUserRequest(req *models.UserRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Username == "" || req.FullName == "" {
		return fmt.Errorf("%w: username and fullName are required", models.ErrValidationFailed)
	}
	for _, r := range req.Roles {
		if !r.IsValid() {
			return fmt.Errorf("%w: %q", models.ErrInvalidRole, r)
		}
	}
	if req.Phone != "" {
		normalized, ok := validation.NormalizeBangladeshMobile(req.Phone)
		if !ok {
			return fmt.Errorf("%w: phone must be a Bangladeshi mobile number starting with %s", models.ErrValidationFailed, validation.BangladeshPrefix)
		}
		req.Phone = normalized
	}
	return nil
}

// Create registers a new user
func (s *UserService) Create(ctx context.Context, req models.UserRequest) (*models.User, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "create_user")
	defer span.End()

	if err := normalizeUserRequest(&req); err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Roles:     req.Roles,
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Roles == nil {
		user.Roles = []models.Role{}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionCreate, utils.AuditResourceUser, user.ID, nil, user, nil)
	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("phone", observability.MaskPhone(user.Phone)))
	return user, nil
}

// Update replaces the editable fields of a user
func (s *UserService) Update(ctx context.Context, id string, req models.UserRequest) (*models.User, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "update_user")
	defer span.End()

	if err := normalizeUserRequest(&req); err != nil {
		return nil, err
	}

	existing, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *existing

	existing.Username = req.Username
	existing.FullName = req.FullName
	existing.Email = req.Email
	existing.Phone = req.Phone
	if req.Roles != nil {
		existing.Roles = req.Roles
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = s.now()

	if err := s.users.Update(ctx, existing); err != nil {
		return nil, err
	}

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionUpdate, utils.AuditResourceUser, id, previous, existing, nil)
	s.logger.Info("user updated", zap.String("user_id", id))
	return existing, nil
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "get_user")
	defer span.End()

	if id == "" {
		return nil, models.ErrInvalidID
	}
	return s.users.Get(ctx, id)
}

// Me returns the stored profile of the caller, matched by token subject and
// then by preferred username. Callers known to the identity provider but not
// stored get a profile built from the token.
func (s *UserService) Me(ctx context.Context, principal *models.Principal) (*models.User, error) {
	if principal == nil || principal.UserID == "" {
		return nil, models.ErrForbidden
	}
	user, err := s.users.Get(ctx, principal.UserID)
	if err == nil {
		return user, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	if principal.Username != "" {
		user, err = s.users.GetByUsername(ctx, principal.Username)
		if err == nil {
			return user, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	roles := principal.Roles
	if roles == nil {
		roles = []models.Role{}
	}
	return &models.User{
		ID:       principal.UserID,
		Username: principal.Username,
		FullName: principal.Name,
		Roles:    roles,
		IsActive: true,
	}, nil
}

// UploadMedia stores the avatar or signature of a user. Users manage their
// own media; admins manage anyone's.
func (s *UserService) UploadMedia(ctx context.Context, userID string, mediaType models.MediaType, f UploadFile, actor *models.Principal) (*models.MediaInfo, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "upload_media")
	defer span.End()

	if actor == nil || (actor.UserID != userID && !actor.HasRole(models.RoleAdmin)) {
		return nil, models.ErrForbidden
	}
	if err := checkUpload(f, s.maxSize); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return nil, fmt.Errorf("%w: %s must be an image", models.ErrValidationFailed, mediaType)
	}

	content, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	defer content.Close()

	info, err := s.media.Put(ctx, models.MediaInfo{
		UserID:      userID,
		Type:        mediaType,
		Filename:    f.Filename,
		ContentType: f.ContentType,
	}, content)
	if err != nil {
		return nil, err
	}

	if mediaType == models.MediaSignature && s.signatures != nil {
		s.signatures.Invalidate(ctx, userID)
	}

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionUpload, utils.AuditResourceMedia, info.ID,
		nil, info, map[string]string{"user_id": userID, "type": string(mediaType)})
	s.logger.Info("user media uploaded", zap.String("user_id", userID), zap.String("type", string(mediaType)))
	return &info, nil
}

// OpenMedia streams the avatar or signature of a user
func (s *UserService) OpenMedia(ctx context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, io.ReadCloser, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "open_media")
	defer span.End()

	return s.media.Open(ctx, userID, mediaType)
}
