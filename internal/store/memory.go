package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
)

// cloneBSON deep copies v through its BSON form so stored values never
// alias caller memory. Timestamps are truncated to milliseconds as MongoDB
// would store them.
func cloneBSON[T any](v *T) (*T, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	var out T
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	return &out, nil
}

// MemoryApplicationStore is an in-process ApplicationStore
type MemoryApplicationStore struct {
	mu   sync.RWMutex
	apps map[string]*models.OrphanApplication
}

// NewMemoryApplicationStore creates an empty store
func NewMemoryApplicationStore() *MemoryApplicationStore {
	return &MemoryApplicationStore{apps: make(map[string]*models.OrphanApplication)}
}

func (s *MemoryApplicationStore) Create(_ context.Context, app *models.OrphanApplication) error {
	stored, err := cloneBSON(app)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[app.ID]; exists {
		return fmt.Errorf("application %s already exists", app.ID)
	}
	s.apps[app.ID] = stored
	return nil
}

func (s *MemoryApplicationStore) Update(_ context.Context, app *models.OrphanApplication) error {
	stored, err := cloneBSON(app)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[app.ID]; !exists {
		return models.ErrApplicationNotFound
	}
	s.apps[app.ID] = stored
	return nil
}

func (s *MemoryApplicationStore) Get(_ context.Context, id string) (*models.OrphanApplication, error) {
	s.mu.RLock()
	stored, ok := s.apps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrApplicationNotFound
	}
	return cloneBSON(stored)
}

func (s *MemoryApplicationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return models.ErrApplicationNotFound
	}
	delete(s.apps, id)
	return nil
}

func (s *MemoryApplicationStore) matching(filter models.ApplicationFilter) ([]models.OrphanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.OrphanApplication
	for _, app := range s.apps {
		if !matchesFilter(app, filter) {
			continue
		}
		c, err := cloneBSON(app)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryApplicationStore) List(_ context.Context, filter models.ApplicationFilter, page utils.Pagination) ([]models.OrphanApplication, int64, error) {
	all, err := s.matching(filter)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	start := min(max(int(page.Skip()), 0), len(all))
	end := min(start+max(page.PerPage, 0), len(all))
	return append([]models.OrphanApplication{}, all[start:end]...), total, nil
}

func (s *MemoryApplicationStore) ForEach(ctx context.Context, filter models.ApplicationFilter, fn func(*models.OrphanApplication) error) error {
	all, err := s.matching(filter)
	if err != nil {
		return err
	}
	for i := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&all[i]); err != nil {
			return err
		}
	}
	return nil
}

// MemoryUserStore is an in-process UserStore
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryUserStore creates an empty store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) usernameTaken(username, exceptID string) bool {
	for id, u := range s.users {
		if u.Username == username && id != exceptID {
			return true
		}
	}
	return false
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	stored, err := cloneBSON(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTaken(user.Username, "") {
		return models.ErrUsernameExists
	}
	s.users[user.ID] = stored
	return nil
}

func (s *MemoryUserStore) Update(_ context.Context, user *models.User) error {
	stored, err := cloneBSON(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return models.ErrUserNotFound
	}
	if s.usernameTaken(user.Username, user.ID) {
		return models.ErrUsernameExists
	}
	s.users[user.ID] = stored
	return nil
}

func (s *MemoryUserStore) Get(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return cloneBSON(u)
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return cloneBSON(u)
		}
	}
	return nil, models.ErrUserNotFound
}

type memoryFile struct {
	id          string
	ownerID     string
	fileType    string
	filename    string
	contentType string
	uploadedBy  string
	uploadedAt  time.Time
	data        []byte
}

// memoryFiles keeps the current file per (owner, type)
type memoryFiles struct {
	mu    sync.RWMutex
	files map[string]map[string]memoryFile
	now   func() time.Time
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{
		files: make(map[string]map[string]memoryFile),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryFiles) put(f memoryFile, content io.Reader) (memoryFile, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return memoryFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	f.id = uuid.NewString()
	f.data = data
	f.uploadedAt = m.now().Truncate(time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files[f.ownerID] == nil {
		m.files[f.ownerID] = make(map[string]memoryFile)
	}
	m.files[f.ownerID][f.fileType] = f
	return f, nil
}

func (m *memoryFiles) get(ownerID, fileType string) (memoryFile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[ownerID][fileType]
	return f, ok
}

func (m *memoryFiles) list(ownerID string) []memoryFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]memoryFile, 0, len(m.files[ownerID]))
	for _, f := range m.files[ownerID] {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].uploadedAt.Equal(out[j].uploadedAt) {
			return out[i].uploadedAt.After(out[j].uploadedAt)
		}
		return out[i].fileType < out[j].fileType
	})
	return out
}

func (m *memoryFiles) deleteOwner(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, ownerID)
}

// MemoryDocumentStore is an in-process DocumentStore
type MemoryDocumentStore struct {
	files *memoryFiles
}

// NewMemoryDocumentStore creates an empty store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{files: newMemoryFiles()}
}

func (f memoryFile) document() models.DocumentInfo {
	return models.DocumentInfo{
		ID:            f.id,
		ApplicationID: f.ownerID,
		Type:          models.DocumentType(f.fileType),
		Filename:      f.filename,
		ContentType:   f.contentType,
		Size:          int64(len(f.data)),
		UploadedBy:    f.uploadedBy,
		UploadedAt:    f.uploadedAt,
	}
}

func (f memoryFile) media() models.MediaInfo {
	return models.MediaInfo{
		ID:          f.id,
		UserID:      f.ownerID,
		Type:        models.MediaType(f.fileType),
		Filename:    f.filename,
		ContentType: f.contentType,
		Size:        int64(len(f.data)),
		UploadedAt:  f.uploadedAt,
	}
}

func (s *MemoryDocumentStore) Put(_ context.Context, info models.DocumentInfo, content io.Reader) (models.DocumentInfo, error) {
	f, err := s.files.put(memoryFile{
		ownerID:     info.ApplicationID,
		fileType:    string(info.Type),
		filename:    info.Filename,
		contentType: info.ContentType,
		uploadedBy:  info.UploadedBy,
	}, content)
	if err != nil {
		return models.DocumentInfo{}, err
	}
	return f.document(), nil
}

func (s *MemoryDocumentStore) Open(_ context.Context, applicationID string, docType models.DocumentType) (models.DocumentInfo, io.ReadCloser, error) {
	f, ok := s.files.get(applicationID, string(docType))
	if !ok {
		return models.DocumentInfo{}, nil, models.ErrDocumentNotFound
	}
	return f.document(), io.NopCloser(bytes.NewReader(f.data)), nil
}

func (s *MemoryDocumentStore) List(_ context.Context, applicationID string) ([]models.DocumentInfo, error) {
	files := s.files.list(applicationID)
	docs := make([]models.DocumentInfo, 0, len(files))
	for _, f := range files {
		docs = append(docs, f.document())
	}
	return docs, nil
}

func (s *MemoryDocumentStore) DeleteAll(_ context.Context, applicationID string) error {
	s.files.deleteOwner(applicationID)
	return nil
}

// MemoryMediaStore is an in-process MediaStore
type MemoryMediaStore struct {
	files *memoryFiles
}

// NewMemoryMediaStore creates an empty store
func NewMemoryMediaStore() *MemoryMediaStore {
	return &MemoryMediaStore{files: newMemoryFiles()}
}

func (s *MemoryMediaStore) Put(_ context.Context, info models.MediaInfo, content io.Reader) (models.MediaInfo, error) {
	f, err := s.files.put(memoryFile{
		ownerID:     info.UserID,
		fileType:    string(info.Type),
		filename:    info.Filename,
		contentType: info.ContentType,
	}, content)
	if err != nil {
		return models.MediaInfo{}, err
	}
	return f.media(), nil
}

func (s *MemoryMediaStore) Stat(_ context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, error) {
	f, ok := s.files.get(userID, string(mediaType))
	if !ok {
		return models.MediaInfo{}, models.ErrMediaNotFound
	}
	return f.media(), nil
}

func (s *MemoryMediaStore) Open(_ context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, io.ReadCloser, error) {
	f, ok := s.files.get(userID, string(mediaType))
	if !ok {
		return models.MediaInfo{}, nil, models.ErrMediaNotFound
	}
	return f.media(), io.NopCloser(bytes.NewReader(f.data)), nil
}
