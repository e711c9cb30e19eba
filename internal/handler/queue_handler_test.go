package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/supark0206/ticketing/internal/domain"
)

// MockQueueService is a mock implementation of service.QueueService
type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) Register(ctx context.Context, concertID, userID string) (*domain.QueueRegistration, error) {
	args := m.Called(ctx, concertID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueRegistration), args.Error(1)
}

func (m *MockQueueService) Position(ctx context.Context, concertID, userID string) (int64, error) {
	args := m.Called(ctx, concertID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueService) Size(ctx context.Context, concertID string) (int64, error) {
	args := m.Called(ctx, concertID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueService) AdmitNext(ctx context.Context, concertID string) (string, bool, error) {
	args := m.Called(ctx, concertID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockQueueService) StatusSnapshot(ctx context.Context, concertID, userID string) (*domain.QueueSnapshot, error) {
	args := m.Called(ctx, concertID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueSnapshot), args.Error(1)
}

// closeNotifyRecorder wraps httptest.ResponseRecorder with the
// http.CloseNotifier implementation that gin.Context.Stream requires.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func setupQueueRouter(svc *MockQueueService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authed := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}

	h := NewQueueHandler(svc, &QueueHandlerConfig{PollInterval: 10 * time.Millisecond})
	router.POST("/api/v1/queue", authed, h.Join)
	router.GET("/api/v1/queue/:concertId", authed, h.Status)
	router.GET("/api/v1/queue/:concertId/stream", authed, h.Stream)
	return router
}

func TestQueueHandler_Join_Queued(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	svc.On("Register", mock.Anything, "concert-1", "user-1").Return(&domain.QueueRegistration{
		Outcome:  domain.QueueOutcomeQueued,
		Position: 12,
	}, nil)
	svc.On("Size", mock.Anything, "concert-1").Return(int64(12), nil)

	body, _ := json.Marshal(gin.H{"concert_id": "concert-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Position            int64  `json:"position"`
			TotalQueue          int64  `json:"total_queue"`
			AdmittedImmediately bool   `json:"admitted_immediately"`
			Message             string `json:"message"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(12), resp.Data.Position)
	assert.False(t, resp.Data.AdmittedImmediately)
	assert.Equal(t, "queued", resp.Data.Message)
}

func TestQueueHandler_Join_AdmittedImmediately(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	svc.On("Register", mock.Anything, "concert-1", "user-1").Return(&domain.QueueRegistration{
		Outcome:  domain.QueueOutcomeAdmitted,
		Position: 0,
	}, nil)
	svc.On("Size", mock.Anything, "concert-1").Return(int64(0), nil)

	body, _ := json.Marshal(gin.H{"concert_id": "concert-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"admitted_immediately":true`)
}

func TestQueueHandler_Join_Unauthorized(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "")

	body, _ := json.Marshal(gin.H{"concert_id": "concert-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueHandler_Join_MissingConcertID(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueHandler_Join_StoreUnavailable(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	svc.On("Register", mock.Anything, "concert-1", "user-1").
		Return(nil, domain.ErrQueueStoreUnavailable)

	body, _ := json.Marshal(gin.H{"concert_id": "concert-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueueHandler_Status(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	svc.On("StatusSnapshot", mock.Anything, "concert-1", "user-1").Return(&domain.QueueSnapshot{
		Position:             3,
		TotalQueue:           10,
		EstimatedWaitSeconds: 90,
		CanEnter:             false,
		Timestamp:            time.Now().UTC(),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/concert-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"position":3`)
	assert.Contains(t, w.Body.String(), `"estimated_wait_seconds":90`)
}

func TestQueueHandler_Stream_CompletesAtFront(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	// Position 0 on the first emit terminates the stream immediately
	svc.On("StatusSnapshot", mock.Anything, "concert-1", "user-1").Return(&domain.QueueSnapshot{
		Position:   0,
		TotalQueue: 5,
		CanEnter:   true,
		Timestamp:  time.Now().UTC(),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/concert-1/stream", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "event:queue-complete")
	svc.AssertNumberOfCalls(t, "StatusSnapshot", 1)
}

func TestQueueHandler_Stream_EmitsStatusThenCompletes(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	waiting := &domain.QueueSnapshot{Position: 1, TotalQueue: 3, EstimatedWaitSeconds: 30, Timestamp: time.Now().UTC()}
	front := &domain.QueueSnapshot{Position: 0, TotalQueue: 2, CanEnter: true, Timestamp: time.Now().UTC()}

	svc.On("StatusSnapshot", mock.Anything, "concert-1", "user-1").Return(waiting, nil).Once()
	svc.On("StatusSnapshot", mock.Anything, "concert-1", "user-1").Return(front, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/concert-1/stream", nil)
	w := newCloseNotifyRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event:queue-status")
	assert.Contains(t, body, "event:queue-complete")
}

func TestQueueHandler_Stream_ErrorEventOnFailure(t *testing.T) {
	svc := new(MockQueueService)
	router := setupQueueRouter(svc, "user-1")

	svc.On("StatusSnapshot", mock.Anything, "concert-1", "user-1").
		Return(nil, domain.ErrQueueStoreUnavailable)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/concert-1/stream", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "event:error")
}
