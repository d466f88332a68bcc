// Package store persists applications, users and their files.
package store

import (
	"context"
	"io"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/utils"
)

// ApplicationStore persists orphan applications
type ApplicationStore interface {
	Create(ctx context.Context, app *models.OrphanApplication) error
	Update(ctx context.Context, app *models.OrphanApplication) error
	Get(ctx context.Context, id string) (*models.OrphanApplication, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ApplicationFilter, page utils.Pagination) ([]models.OrphanApplication, int64, error)
	// ForEach calls fn for every application matching filter, newest first
	ForEach(ctx context.Context, filter models.ApplicationFilter, fn func(*models.OrphanApplication) error) error
}

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// DocumentStore holds the supporting documents of applications. Storing a
// document replaces any previous document of the same type.
type DocumentStore interface {
	Put(ctx context.Context, info models.DocumentInfo, content io.Reader) (models.DocumentInfo, error)
	Open(ctx context.Context, applicationID string, docType models.DocumentType) (models.DocumentInfo, io.ReadCloser, error)
	List(ctx context.Context, applicationID string) ([]models.DocumentInfo, error)
	DeleteAll(ctx context.Context, applicationID string) error
}

// MediaStore holds per-user avatar and signature images. Storing a file
// replaces any previous file of the same type.
type MediaStore interface {
	Put(ctx context.Context, info models.MediaInfo, content io.Reader) (models.MediaInfo, error)
	Open(ctx context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, io.ReadCloser, error)
	Stat(ctx context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, error)
}

// PresentTypes returns the distinct document types in docs
func PresentTypes(docs []models.DocumentInfo) []models.DocumentType {
	seen := make(map[models.DocumentType]bool, len(docs))
	types := make([]models.DocumentType, 0, len(docs))
	for _, d := range docs {
		if !seen[d.Type] {
			seen[d.Type] = true
			types = append(types, d.Type)
		}
	}
	return types
}
