package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/qcbd/app-beneficiary/internal/document"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/testutil"
	"go.uber.org/zap/zaptest"
)

// mapCache is an in-memory Cache recording invalidations
type mapCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", false, errors.New("cache unavailable")
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

var (
	agent         = &models.Principal{UserID: "agent-1", Roles: []models.Role{models.RoleAgent}}
	authenticator = &models.Principal{UserID: "auth-1", Roles: []models.Role{models.RoleAuthenticator}}
	admin         = &models.Principal{UserID: "admin-1", Roles: []models.Role{models.RoleAdmin}}
)

type testEnv struct {
	apps         *store.MemoryApplicationStore
	docs         *store.MemoryDocumentStore
	users        *store.MemoryUserStore
	media        *store.MemoryMediaStore
	cache        *mapCache
	applications *ApplicationService
	documents    *DocumentService
	signatures   *SignatureService
	userService  *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logging.New(zaptest.NewLogger(t))

	env := &testEnv{
		apps:  store.NewMemoryApplicationStore(),
		docs:  store.NewMemoryDocumentStore(),
		users: store.NewMemoryUserStore(),
		media: store.NewMemoryMediaStore(),
		cache: newMapCache(),
	}
	env.signatures = NewSignatureService(env.media, "https://qcb.test/", env.cache, time.Hour, logger)
	ids := 0
	env.applications = NewApplicationService(env.apps, env.docs, document.NewGenerator(env.signatures), logger,
		WithApplicationCache(env.cache, time.Minute),
		WithApplicationClock(func() time.Time { return testutil.Now }),
		WithApplicationIDs(func() string {
			ids++
			return "app-" + string(rune('0'+ids))
		}))
	env.documents = NewDocumentService(env.docs, env.applications, 1024, logger)
	env.userService = NewUserService(env.users, env.media, env.signatures, 1024, logger)
	return env
}

func textFile(docType, content string) UploadFile {
	return UploadFile{
		Type:        docType,
		Filename:    strings.ToLower(docType) + ".pdf",
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func imageFile(content string) UploadFile {
	return UploadFile{
		Filename:    "image.png",
		ContentType: "image/png",
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func (f UploadFile) mustOpen(t *testing.T) io.Reader {
	t.Helper()
	rc, err := f.Open()
	if err != nil {
		t.Fatal(err)
	}
	return rc
}
