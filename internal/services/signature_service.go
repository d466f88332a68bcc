package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/utils"
)

const signatureCacheKeyPrefix = "signature:url:"

func signatureCacheKey(userID string) string {
	return signatureCacheKeyPrefix + userID
}

// SignatureService resolves staff signature image URLs for generated
// documents. It implements document.SignatureResolver.
type SignatureService struct {
	media    store.MediaStore
	baseURL  string
	cache    Cache
	cacheTTL time.Duration
	logger   *logging.SafeLogger
}

// NewSignatureService creates a resolver serving URLs under baseURL
func NewSignatureService(media store.MediaStore, baseURL string, cache Cache, cacheTTL time.Duration, logger *logging.SafeLogger) *SignatureService {
	if cache == nil {
		cache = noopCache{}
	}
	return &SignatureService{
		media:    media,
		baseURL:  strings.TrimRight(baseURL, "/"),
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// SignatureURL returns the absolute URL of the user's signature image.
// The media ID is appended so a replaced signature gets a new URL.
func (s *SignatureService) SignatureURL(ctx context.Context, userID string) (string, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "resolve_signature")
	defer span.End()

	key := signatureCacheKey(userID)
	var cached string
	if cachedJSON(ctx, s.cache, s.logger, "signature_url", key, &cached) {
		return cached, nil
	}

	info, err := s.media.Stat(ctx, userID, models.MediaSignature)
	if err != nil {
		if !errors.Is(err, models.ErrMediaNotFound) {
			utils.RecordErrorInSpan(span, err, map[string]interface{}{"user.id": userID})
		}
		return "", err
	}

	u := s.baseURL + "/v1/users/media/" + url.PathEscape(userID) + "/file/" + string(models.MediaSignature) +
		"?v=" + url.QueryEscape(info.ID)
	storeJSON(ctx, s.cache, s.logger, key, u, s.cacheTTL)
	return u, nil
}

// Invalidate drops the cached URL after the user's signature changes
func (s *SignatureService) Invalidate(ctx context.Context, userID string) {
	invalidate(ctx, s.cache, s.logger, signatureCacheKey(userID))
	s.logger.Debug("signature cache invalidated", zap.String("user_id", userID))
}
