package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qcbd/app-beneficiary/internal/document"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/services"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/testutil"
)

const testClientID = "beneficiary-app"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	apps   *store.MemoryApplicationStore
	docs   *store.MemoryDocumentStore
	users  *store.MemoryUserStore
	down   bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logging.New(zaptest.NewLogger(t))

	srv := &testServer{
		apps:  store.NewMemoryApplicationStore(),
		docs:  store.NewMemoryDocumentStore(),
		users: store.NewMemoryUserStore(),
	}
	media := store.NewMemoryMediaStore()

	signatures := services.NewSignatureService(media, "https://qcb.test", nil, time.Hour, logger)
	ids := 0
	applications := services.NewApplicationService(srv.apps, srv.docs, document.NewGenerator(signatures), logger,
		services.WithApplicationClock(func() time.Time { return testutil.Now }),
		services.WithApplicationIDs(func() string {
			ids++
			return fmt.Sprintf("app-%d", ids)
		}))
	documents := services.NewDocumentService(srv.docs, applications, 1024, logger)
	users := services.NewUserService(srv.users, media, signatures, 1024, logger)
	exports := services.NewExportService(srv.apps, logger)
	health := services.NewHealthService(map[string]services.Pinger{
		"mongodb": services.PingerFunc(func(context.Context) error { return nil }),
		"redis": services.PingerFunc(func(context.Context) error {
			if srv.down {
				return errors.New("connection refused")
			}
			return nil
		}),
	}, time.Minute, logger)

	srv.router = NewRouter(RouterConfig{ClientID: testClientID}, Handlers{
		Applications: NewApplicationHandlers(logger, applications, exports),
		Documents:    NewDocumentHandlers(logger, documents),
		Users:        NewUserHandlers(logger, users),
		Health:       NewHealthHandlers(health),
	})
	return srv
}

func bearer(t *testing.T, subject string, roles ...models.Role) string {
	t.Helper()
	claims := models.JWTClaims{
		RegisteredClaims:  jwt.RegisteredClaims{Subject: subject},
		PreferredUsername: "user-" + subject,
		Name:              "Test " + subject,
	}
	clientRoles := make([]string, 0, len(roles))
	for _, r := range roles {
		clientRoles = append(clientRoles, string(r))
	}
	claims.ResourceAccess = map[string]models.ResourceRoles{testClientID: {Roles: clientRoles}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-verified-here"))
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, token, body, "application/json")
}

type formFile struct {
	field       string
	filename    string
	contentType string
	content     string
}

func multipartBody(t *testing.T, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// createSubmitted stores a complete application through the API and returns its ID
func (s *testServer) createSubmitted(t *testing.T, token string) string {
	t.Helper()
	values := testutil.CompleteApplication()
	values.ID = ""
	w := s.doJSON(t, http.MethodPost, "/v1/applications/orphan?submit=true", token, values)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[SaveResponse](t, w)
	require.Equal(t, models.StatusComplete, resp.Status)
	return resp.Application.ID
}
