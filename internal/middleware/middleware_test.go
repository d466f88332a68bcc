package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/qcbd/app-beneficiary/internal/models"
)

const testClientID = "beneficiary-app"

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestJWT(t *testing.T, subject string, realmRoles []string, clientRoles []string) string {
	t.Helper()
	claims := models.JWTClaims{
		RegisteredClaims:  jwt.RegisteredClaims{Subject: subject, Issuer: "test-issuer"},
		PreferredUsername: "user-" + subject,
		Name:              "Test User",
	}
	claims.RealmAccess.Roles = realmRoles
	if clientRoles != nil {
		claims.ResourceAccess = map[string]models.ResourceRoles{testClientID: {Roles: clientRoles}}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-verified-here"))
	require.NoError(t, err)
	return token
}

func executeRequest(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
