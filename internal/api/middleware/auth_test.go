package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pkg/jwthelper"
)

func newTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", handler, func(ctx *gin.Context) {
		viewer := ViewerFromContext(ctx.Request.Context())
		ctx.JSON(http.StatusOK, gin.H{"userId": viewer.UserID, "role": viewer.Role})
	})

	return router
}

func TestAuthenticator(t *testing.T) {
	issuer := jwthelper.NewIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleOrganizer})
	require.NoError(t, err)

	expired, err := jwthelper.GenerateToken([]byte("test-secret"), domain.User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)

	auth := NewAuthenticator(issuer)

	tests := []struct {
		name         string
		middleware   gin.HandlerFunc
		header       string
		wantStatus   int
		wantContains string
	}{
		{"identify with token", auth.Identify(), "Bearer " + token, http.StatusOK, `"userId":"u1"`},
		{"identify with bare token", auth.Identify(), token, http.StatusOK, `"role":"ORGANIZER"`},
		{"identify anonymous", auth.Identify(), "", http.StatusOK, `"userId":""`},
		{"identify ignores bad token", auth.Identify(), "Bearer garbage", http.StatusOK, `"userId":""`},
		{"verify with token", auth.VerifyJWT(), "Bearer " + token, http.StatusOK, `"userId":"u1"`},
		{"verify without token", auth.VerifyJWT(), "", http.StatusUnauthorized, `"code":"UNAUTHENTICATED"`},
		{"verify expired token", auth.VerifyJWT(), "Bearer " + expired, http.StatusUnauthorized, `"code":"UNAUTHENTICATED"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			newTestRouter(tt.middleware).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("  "))
}
