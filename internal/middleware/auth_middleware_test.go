package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthMiddleware(), RoleAuthMiddleware(models.RoleAdmin), func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": actor.UserID, "role": actor.Role})
	})
	return r
}

func request(t *testing.T, r *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	require.NoError(t, utils.ConfigureJWT("middleware-test-secret-value", time.Hour))
	r := newEngine()

	adminToken, _, err := utils.GenerateAccessToken(7, "root", models.RoleAdmin)
	require.NoError(t, err)
	workerToken, _, err := utils.GenerateAccessToken(8, "sam", models.RoleWorker)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong role", "Bearer " + workerToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, r, tt.header)
			require.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := request(t, r, "Bearer "+adminToken)
	require.JSONEq(t, `{"user":7,"role":"admin"}`, w.Body.String())
}
