package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/document"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"github.com/qcbd/app-beneficiary/internal/validation"
	"github.com/qcbd/app-beneficiary/internal/workflow"
)

const applicationCacheKeyPrefix = "application:"

func applicationCacheKey(id string) string {
	return applicationCacheKeyPrefix + id
}

// ApplicationService handles orphan applications with read-through caching
type ApplicationService struct {
	apps      store.ApplicationStore
	docs      store.DocumentStore
	generator *document.Generator
	cache     Cache
	cacheTTL  time.Duration
	logger    *logging.SafeLogger
	now       func() time.Time
	newID     func() string
}

// ApplicationOption configures an ApplicationService
type ApplicationOption func(*ApplicationService)

// WithApplicationCache enables the read-through application cache
func WithApplicationCache(cache Cache, ttl time.Duration) ApplicationOption {
	return func(s *ApplicationService) {
		if cache != nil {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

// WithApplicationClock overrides the time source
func WithApplicationClock(now func() time.Time) ApplicationOption {
	return func(s *ApplicationService) {
		s.now = now
	}
}

// WithApplicationIDs overrides the ID generator
func WithApplicationIDs(newID func() string) ApplicationOption {
	return func(s *ApplicationService) {
		s.newID = newID
	}
}

// NewApplicationService creates a new ApplicationService instance
func NewApplicationService(apps store.ApplicationStore, docs store.DocumentStore, generator *document.Generator, logger *logging.SafeLogger, opts ...ApplicationOption) *ApplicationService {
	s := &ApplicationService{
		apps:      apps,
		docs:      docs,
		generator: generator,
		cache:     noopCache{},
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func saveKind(submit bool) string {
	if submit {
		return workflow.TriggerSubmit
	}
	return workflow.TriggerSaveDraft
}

// Save creates (id == "") or updates an application from the submitted
// values. Server-owned fields (status, history, creator, verification) are
// never taken from values. A failed validation returns a
// *workflow.ValidationError and stores nothing.
func (s *ApplicationService) Save(ctx context.Context, id string, values *models.OrphanApplication, submit bool, actor *models.Principal) (workflow.SaveOutcome, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "save_application")
	defer span.End()

	if values == nil {
		return workflow.SaveOutcome{}, fmt.Errorf("%w: empty application", models.ErrValidationFailed)
	}

	now := s.now()
	editing := id != ""
	var previous *models.OrphanApplication

	if editing {
		existing, err := s.apps.Get(ctx, id)
		if err != nil {
			return workflow.SaveOutcome{}, err
		}
		previous = existing
		values.ID = existing.ID
		values.Status = existing.Status
		values.RejectionMessage = existing.RejectionMessage
		values.StatusHistory = existing.StatusHistory
		values.Verification = existing.Verification
		values.CreatedBy = existing.CreatedBy
		values.CreatedAt = existing.CreatedAt
	} else {
		values.ID = s.newID()
		values.Status = models.StatusNew
		values.RejectionMessage = nil
		values.StatusHistory = nil
		values.Verification = models.Verification{}
		values.CreatedAt = now
		if actor != nil {
			values.CreatedBy = actor.UserID
		}
	}
	if values.FamilyMembers == nil {
		values.FamilyMembers = []models.FamilyMember{}
	}

	persist := workflow.PersisterFunc(func(ctx context.Context, app *models.OrphanApplication) error {
		app.UpdatedAt = now
		if editing {
			return s.apps.Update(ctx, app)
		}
		return s.apps.Create(ctx, app)
	})

	var present []models.DocumentType
	if editing {
		docs, err := s.docs.List(ctx, values.ID)
		if err != nil {
			return workflow.SaveOutcome{}, fmt.Errorf("failed to list documents: %w", err)
		}
		present = store.PresentTypes(docs)
	}

	kind := saveKind(submit)
	outcome, err := workflow.Save(ctx, values, workflow.SaveOptions{
		Submit:    submit,
		Editing:   editing,
		Actor:     actor,
		Now:       now,
		Documents: present,
	}, persist)
	if err != nil {
		if verr, ok := workflow.AsValidationError(err); ok {
			observability.ApplicationSaves.WithLabelValues(kind, "invalid").Inc()
			for tab := range verr.Result.ByTab() {
				observability.ValidationFailures.WithLabelValues(verr.Result.Depth.String(), tab.Key()).Inc()
			}
			s.logger.Debug("application failed validation",
				zap.String("application_id", values.ID),
				zap.String("depth", verr.Result.Depth.String()),
				zap.Int("errors", len(verr.Result.Errors)))
			return outcome, err
		}
		observability.ApplicationSaves.WithLabelValues(kind, "error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"application.id": values.ID})
		s.logger.Error("failed to save application", zap.String("application_id", values.ID), zap.Error(err))
		return outcome, err
	}

	observability.ApplicationSaves.WithLabelValues(kind, "success").Inc()
	if outcome.StatusChanged() {
		observability.StatusTransitions.WithLabelValues(string(outcome.PreviousStatus), string(outcome.Status), kind).Inc()
	}
	invalidate(ctx, s.cache, s.logger, applicationCacheKey(values.ID))

	action := utils.AuditActionCreate
	if editing {
		action = utils.AuditActionUpdate
	}
	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), action, utils.AuditResourceApplication, values.ID,
		previous, outcome.Application, map[string]string{"submit": fmt.Sprint(submit), "status": string(outcome.Status)})

	s.logger.Info("application saved",
		zap.String("application_id", values.ID),
		zap.Bool("submit", submit),
		zap.String("status", string(outcome.Status)))
	return outcome, nil
}

// Get returns an application, served from cache when possible
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.OrphanApplication, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "get_application")
	defer span.End()

	if id == "" {
		return nil, models.ErrInvalidID
	}

	key := applicationCacheKey(id)
	var cached models.OrphanApplication
	if cachedJSON(ctx, s.cache, s.logger, "get_application", key, &cached) {
		return &cached, nil
	}

	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	storeJSON(ctx, s.cache, s.logger, key, app, s.cacheTTL)
	return app, nil
}

// Delete removes an application together with its documents
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "delete_application")
	defer span.End()

	existing, err := s.apps.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, applicationCacheKey(id))

	if err := s.docs.DeleteAll(ctx, id); err != nil {
		s.logger.Error("failed to delete application documents", zap.String("application_id", id), zap.Error(err))
	}

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionDelete, utils.AuditResourceApplication, id, existing, nil, nil)
	s.logger.Info("application deleted", zap.String("application_id", id))
	return nil
}

// List returns one page of applications matching filter, newest first
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter, page utils.Pagination) (*models.PaginatedApplications, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "list_applications")
	defer span.End()

	apps, total, err := s.apps.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []models.OrphanApplication{}
	}
	return &models.PaginatedApplications{
		Data:       apps,
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Validate runs the rule set on the stored application without saving
func (s *ApplicationService) Validate(ctx context.Context, id string, depth validation.Depth) (validation.Result, error) {
	ctx, span := utils.TraceInputValidation(ctx, "orphan_application", depth.String())
	defer span.End()

	app, err := s.Get(ctx, id)
	if err != nil {
		return validation.Result{}, err
	}
	app.Address.Normalize()
	return validation.Validate(app, depth, s.now()), nil
}

// Decide applies a staff decision to an application
func (s *ApplicationService) Decide(ctx context.Context, id string, req models.StatusUpdateRequest, actor *models.Principal) (*models.OrphanApplication, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "decide_application")
	defer span.End()

	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := app.Status

	if err := workflow.Decide(app, actor, req.Status, req.RejectionMessage, s.now()); err != nil {
		s.logger.Debug("decision rejected",
			zap.String("application_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(req.Status)),
			zap.Error(err))
		return nil, err
	}
	app.UpdatedAt = s.now()

	if err := s.apps.Update(ctx, app); err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"application.id": id})
		return nil, fmt.Errorf("failed to store decision: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, applicationCacheKey(id))
	observability.StatusTransitions.WithLabelValues(string(from), string(app.Status), workflow.TriggerDecision).Inc()

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionStatusChange, utils.AuditResourceApplication, id,
		map[string]string{"status": string(from)}, map[string]string{"status": string(app.Status)}, nil)

	s.logger.Info("application status changed",
		zap.String("application_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(app.Status)),
		zap.String("actor", actor.UserID))
	return app, nil
}

// ReevaluateDocuments moves the application to PENDING once every required
// document is present. It returns the resulting status.
func (s *ApplicationService) ReevaluateDocuments(ctx context.Context, id, changedBy string) (models.ApplicationStatus, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "reevaluate_documents")
	defer span.End()

	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return "", err
	}
	docs, err := s.docs.List(ctx, id)
	if err != nil {
		return app.Status, err
	}

	from := app.Status
	if !workflow.ApplyDocumentTransition(app, store.PresentTypes(docs), changedBy, s.now()) {
		return app.Status, nil
	}
	app.UpdatedAt = s.now()
	if err := s.apps.Update(ctx, app); err != nil {
		return from, fmt.Errorf("failed to store document transition: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, applicationCacheKey(id))
	observability.StatusTransitions.WithLabelValues(string(from), string(app.Status), workflow.TriggerDocuments).Inc()

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionStatusChange, utils.AuditResourceApplication, id,
		map[string]string{"status": string(from)}, map[string]string{"status": string(app.Status)},
		map[string]string{"trigger": workflow.TriggerDocuments})

	s.logger.Info("required documents present, application pending",
		zap.String("application_id", id),
		zap.String("from", string(from)))
	return app.Status, nil
}

// GenerateDocument renders the printable application document
func (s *ApplicationService) GenerateDocument(ctx context.Context, id string) (string, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "generate_document")
	defer span.End()

	app, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	start := time.Now()
	html, err := s.generator.Generate(ctx, app)
	utils.AddTimingToSpan(span, start)
	if err != nil {
		s.logger.Error("failed to generate document", zap.String("application_id", id), zap.Error(err))
		return "", fmt.Errorf("failed to generate document: %w", err)
	}
	return html, nil
}

// IsNotFound reports whether err means a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrApplicationNotFound) ||
		errors.Is(err, models.ErrUserNotFound) ||
		errors.Is(err, models.ErrDocumentNotFound) ||
		errors.Is(err, models.ErrMediaNotFound)
}
