package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/crid-api/internal/models"
	"github.com/noah-isme/crid-api/internal/service"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	return service.NewAuthService(nil, nil, service.AuthConfig{
		SecretaryID:           "secretary-1",
		SecretaryEmail:        "secretary@school.test",
		SecretaryPasswordHash: string(hash),
		AccessTokenSecret:     "test-secret",
		AccessTokenExpiry:     time.Hour,
		Issuer:                "crid-api",
	})
}

func issueToken(t *testing.T, svc *service.AuthService) string {
	t.Helper()
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "secretary@school.test",
		Password: "pw",
	})
	require.NoError(t, err)
	return resp.AccessToken
}

func protectedRouter(svc *service.AuthService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/secure", JWT(svc))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("", func(c *gin.Context) {
		claims := Claims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r
}

func TestJWTAllowsValidToken(t *testing.T) {
	svc := newAuthService(t)
	r := protectedRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "secretary-1")
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := protectedRouter(newAuthService(t))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	svc := newAuthService(t)
	r := protectedRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", issueToken(t, svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsBadToken(t *testing.T) {
	r := protectedRouter(newAuthService(t))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesAllowsSecretary(t *testing.T) {
	svc := newAuthService(t)
	r := protectedRouter(svc, models.RoleSecretary)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	svc := newAuthService(t)
	r := protectedRouter(svc, models.UserRole("AUDITOR"))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestClaimsNilWithoutAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, Claims(c))
}
