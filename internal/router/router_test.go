package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"factory_crm_backend/internal/cache"
	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"
	"factory_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardPublisher struct{}

func (discardPublisher) Publish(services.DomainEvent) {}

// Role guards reject before any handler touches the database, so a nil DB is enough.
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, utils.ConfigureJWT("router-test-secret-0123456789", time.Hour))
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Setup(engine, Deps{
		Events:     discardPublisher{},
		Hub:        services.NewRealtimeHub(1),
		StatsCache: cache.NewTTLCache(0),
	})
	return engine
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, _, err := utils.GenerateAccessToken(42, "tester", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoleGuards(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		{"no token", http.MethodGet, "/api/v1/orders", "", http.StatusUnauthorized},
		{"receptionist cannot update orders", http.MethodPut, "/api/v1/orders/1", models.RoleReceptionist, http.StatusForbidden},
		{"worker cannot delete orders", http.MethodDelete, "/api/v1/orders/1", models.RoleWorker, http.StatusForbidden},
		{"financial cannot create orders", http.MethodPost, "/api/v1/orders", models.RoleFinancial, http.StatusForbidden},
		{"receptionist cannot create invoices", http.MethodPost, "/api/v1/invoices", models.RoleReceptionist, http.StatusForbidden},
		{"designer cannot delete invoices", http.MethodDelete, "/api/v1/invoices/1", models.RoleDesigner, http.StatusForbidden},
		{"worker cannot adjust stock", http.MethodPost, "/api/v1/materials/1/adjust", models.RoleWorker, http.StatusForbidden},
		{"designer cannot write products", http.MethodPost, "/api/v1/products", models.RoleDesigner, http.StatusForbidden},
		{"worker cannot read financial stats", http.MethodGet, "/api/v1/orders/stats/financial", models.RoleWorker, http.StatusForbidden},
		{"non admin cannot create users", http.MethodPost, "/api/v1/auth/users", models.RoleFinancial, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, tt.role))
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestTimeseriesIntervalValidatedBeforeStats(t *testing.T) {
	engine := newTestEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/stats/timeseries?interval=year", nil)
	req.Header.Set("Authorization", bearer(t, models.RoleAdmin))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
