package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/internal/handler"
	"github.com/twbeatles/hwpmaster-api/internal/model"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// stubBatchService is a canned service.BatchService for handler tests.
type stubBatchService struct {
	submitID  string
	submitErr error
	getDTO    *model.BatchRunDTO
	getErr    error
	cancelErr error
	listDTOs  []*model.BatchRunDTO
	listErr   error

	lastInput *model.SubmitBatchInput
}

func (s *stubBatchService) Submit(input *model.SubmitBatchInput) (string, error) {
	s.lastInput = input
	return s.submitID, s.submitErr
}

func (s *stubBatchService) Get(jobID string) (*model.BatchRunDTO, error) {
	return s.getDTO, s.getErr
}

func (s *stubBatchService) Cancel(jobID string) error { return s.cancelErr }

func (s *stubBatchService) List(p repository.Pagination) ([]*model.BatchRunDTO, error) {
	return s.listDTOs, s.listErr
}

func setupBatchRouter(svc *stubBatchService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewBatchHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestBatchHandler(t *testing.T) {
	t.Run("SubmitAccepted", func(t *testing.T) {
		svc := &stubBatchService{submitID: "job-123"}
		router := setupBatchRouter(svc)

		body, _ := json.Marshal(model.SubmitBatchInput{
			Operation:    model.OpConvert,
			Files:        []string{"/docs/a.hwp"},
			TargetFormat: "pdf",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), "job-123")
		require.NotNil(t, svc.lastInput)
		assert.Equal(t, model.OpConvert, svc.lastInput.Operation)
	})

	t.Run("SubmitMissingOperation", func(t *testing.T) {
		router := setupBatchRouter(&stubBatchService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewReader([]byte(`{"files":["a.hwp"]}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("SubmitValidationError", func(t *testing.T) {
		svc := &stubBatchService{submitErr: errors.New("no input files")}
		router := setupBatchRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewReader([]byte(`{"operation":"convert"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no input files")
	})

	t.Run("GetFound", func(t *testing.T) {
		svc := &stubBatchService{getDTO: &model.BatchRunDTO{
			JobID:        "job-123",
			Operation:    model.OpConvert,
			State:        model.StateFinished,
			SuccessCount: 2,
			Success:      true,
		}}
		router := setupBatchRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/job-123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"state":"finished"`)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		svc := &stubBatchService{getErr: gorm.ErrRecordNotFound}
		router := setupBatchRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/batches/nope", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("CancelAccepted", func(t *testing.T) {
		router := setupBatchRouter(&stubBatchService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/batches/job-123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cancellation requested")
	})

	t.Run("CancelNotRunning", func(t *testing.T) {
		svc := &stubBatchService{cancelErr: service.ErrNotRunning}
		router := setupBatchRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/batches/job-123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CancelUnknownJob", func(t *testing.T) {
		svc := &stubBatchService{cancelErr: gorm.ErrRecordNotFound}
		router := setupBatchRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/batches/nope", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		svc := &stubBatchService{listDTOs: []*model.BatchRunDTO{
			{JobID: "job-1"}, {JobID: "job-2"},
		}}
		router := setupBatchRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/batches?page=2&page_size=5", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "job-1")
		assert.Contains(t, w.Body.String(), "job-2")
	})
}
