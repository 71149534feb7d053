package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/twbeatles/hwpmaster-api/internal/handler"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

type stubHealthService struct {
	status *service.HealthStatus
}

func (s *stubHealthService) Check() *service.HealthStatus { return s.status }

func setupHealthRouter(svc *stubHealthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewHealthHandler(svc).RegisterRoutes(r.Group(""))
	return r
}

func TestHealthHandler(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		router := setupHealthRouter(&stubHealthService{status: &service.HealthStatus{
			Service:  "HwpMaster API",
			Database: "healthy",
			Bridge:   "healthy",
			Healthy:  true,
			Checked:  time.Now(),
		}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"healthy":true`)
	})

	t.Run("Unhealthy", func(t *testing.T) {
		router := setupHealthRouter(&stubHealthService{status: &service.HealthStatus{
			Service:  "HwpMaster API",
			Database: "unhealthy",
			Bridge:   "unreachable",
			Healthy:  false,
		}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
