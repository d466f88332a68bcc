package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/utils"
)

// UploadFile is one file of an upload request
type UploadFile struct {
	// Type is the raw document or media type as sent by the client
	Type        string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// checkUpload rejects empty and oversized files before they are opened
func checkUpload(f UploadFile, maxSize int64) error {
	if f.Size <= 0 {
		return models.ErrEmptyFile
	}
	if maxSize > 0 && f.Size > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", models.ErrFileTooLarge, f.Size, maxSize)
	}
	return nil
}

// DocumentService stores application documents and drives the
// documents-complete status transition
type DocumentService struct {
	docs         store.DocumentStore
	applications *ApplicationService
	maxSize      int64
	logger       *logging.SafeLogger
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(docs store.DocumentStore, applications *ApplicationService, maxSize int64, logger *logging.SafeLogger) *DocumentService {
	return &DocumentService{
		docs:         docs,
		applications: applications,
		maxSize:      maxSize,
		logger:       logger,
	}
}

// Upload stores files for an application. Every file is attempted and
// reported separately; one failure never stops the others. After at least
// one success the application's document transition is re-evaluated.
func (s *DocumentService) Upload(ctx context.Context, applicationID string, files []UploadFile, actor *models.Principal) (*models.UploadResponse, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "upload_documents")
	defer span.End()

	app, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	uploadedBy := ""
	if actor != nil {
		uploadedBy = actor.UserID
	}

	response := &models.UploadResponse{Outcomes: make([]models.UploadOutcome, 0, len(files)), Status: app.Status}
	succeeded := 0
	for _, f := range files {
		outcome := s.uploadOne(ctx, applicationID, f, uploadedBy)
		if outcome.Success {
			succeeded++
		}
		response.Outcomes = append(response.Outcomes, outcome)
	}

	if succeeded > 0 {
		status, err := s.applications.ReevaluateDocuments(ctx, applicationID, uploadedBy)
		if err != nil {
			s.logger.Error("failed to re-evaluate document status", zap.String("application_id", applicationID), zap.Error(err))
		}
		if status != "" {
			response.Status = status
		}
	}

	s.logger.Info("documents uploaded",
		zap.String("application_id", applicationID),
		zap.Int("files", len(files)),
		zap.Int("succeeded", succeeded),
		zap.String("status", string(response.Status)))
	return response, nil
}

func (s *DocumentService) uploadOne(ctx context.Context, applicationID string, f UploadFile, uploadedBy string) models.UploadOutcome {
	outcome := models.UploadOutcome{Type: models.DocumentType(f.Type), Filename: f.Filename}
	docType, known := models.ParseDocumentType(f.Type)

	fail := func(err error) models.UploadOutcome {
		label := "unknown"
		if known {
			label = string(docType)
		}
		observability.DocumentUploads.WithLabelValues(label, "failure").Inc()
		s.logger.Warn("document upload failed",
			zap.String("application_id", applicationID),
			zap.String("type", f.Type),
			zap.String("filename", f.Filename),
			zap.Error(err))
		outcome.Error = err.Error()
		return outcome
	}

	if !known {
		return fail(fmt.Errorf("%w: %q", models.ErrInvalidDocumentType, f.Type))
	}
	if err := checkUpload(f, s.maxSize); err != nil {
		return fail(err)
	}

	content, err := f.Open()
	if err != nil {
		return fail(fmt.Errorf("failed to read upload: %w", err))
	}
	defer content.Close()

	stored, err := s.docs.Put(ctx, models.DocumentInfo{
		ApplicationID: applicationID,
		Type:          docType,
		Filename:      f.Filename,
		ContentType:   f.ContentType,
		UploadedBy:    uploadedBy,
	}, content)
	if err != nil {
		return fail(err)
	}

	observability.DocumentUploads.WithLabelValues(string(docType), "success").Inc()
	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionUpload, utils.AuditResourceDocument, stored.ID,
		nil, stored, map[string]string{"application_id": applicationID, "type": string(docType)})

	outcome.Success = true
	outcome.Document = &stored
	return outcome
}

// List returns the current documents of an application
func (s *DocumentService) List(ctx context.Context, applicationID string) ([]models.DocumentInfo, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "list_documents")
	defer span.End()

	if _, err := s.applications.Get(ctx, applicationID); err != nil {
		return nil, err
	}
	docs, err := s.docs.List(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.DocumentInfo{}
	}
	return docs, nil
}

// Open streams the current document of the given type
func (s *DocumentService) Open(ctx context.Context, applicationID string, docType models.DocumentType) (models.DocumentInfo, io.ReadCloser, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "open_document")
	defer span.End()

	info, rc, err := s.docs.Open(ctx, applicationID, docType)
	if err != nil && !errors.Is(err, models.ErrDocumentNotFound) {
		s.logger.Error("failed to open document",
			zap.String("application_id", applicationID),
			zap.String("type", string(docType)),
			zap.Error(err))
	}
	return info, rc, err
}
