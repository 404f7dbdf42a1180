package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/service"
)

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) GetResponse(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, false, errors.New("connection refused")
	}
	data, ok := s.data[key]
	return data, ok, nil
}

func (s *memoryIdempotencyStore) SetResponse(_ context.Context, key string, data []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func countingRouter(store IdempotencyStore, status int) (*gin.Engine, *int) {
	log, _ := test.NewNullLogger()
	calls := 0
	r := gin.New()
	r.Use(Idempotency(store, log))
	handler := func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	}
	r.POST("/v1/trips/:id/dispatch", handler)
	r.POST("/v1/trips/:id/cancel", handler)
	r.GET("/v1/trips/:id", handler)
	return r, &calls
}

func do(r http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysResponse(t *testing.T) {
	r, calls := countingRouter(newMemoryIdempotencyStore(), http.StatusOK)

	first := do(r, http.MethodPost, "/v1/trips/t1/dispatch", "k1")
	second := do(r, http.MethodPost, "/v1/trips/t1/dispatch", "k1")

	assert.Equal(t, 1, *calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_ScopedToPath(t *testing.T) {
	r, calls := countingRouter(newMemoryIdempotencyStore(), http.StatusOK)

	do(r, http.MethodPost, "/v1/trips/t1/dispatch", "k1")
	do(r, http.MethodPost, "/v1/trips/t1/cancel", "k1")

	assert.Equal(t, 2, *calls)
}

func TestIdempotency_Skips(t *testing.T) {
	tests := []struct {
		name   string
		store  IdempotencyStore
		method string
		key    string
		status int
	}{
		{"no key", newMemoryIdempotencyStore(), http.MethodPost, "", http.StatusOK},
		{"read request", newMemoryIdempotencyStore(), http.MethodGet, "k1", http.StatusOK},
		{"nil store", nil, http.MethodPost, "k1", http.StatusOK},
		{"server error not stored", newMemoryIdempotencyStore(), http.MethodPost, "k1", http.StatusServiceUnavailable},
		{"store unavailable", &memoryIdempotencyStore{data: map[string][]byte{}, failGet: true}, http.MethodPost, "k1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, calls := countingRouter(tt.store, tt.status)
			path := "/v1/trips/t1/dispatch"
			if tt.method == http.MethodGet {
				path = "/v1/trips/t1"
			}

			do(r, tt.method, path, tt.key)
			do(r, tt.method, path, tt.key)

			assert.Equal(t, 2, *calls)
		})
	}
}

func TestIdempotency_ClientErrorsAreReplayed(t *testing.T) {
	r, calls := countingRouter(newMemoryIdempotencyStore(), http.StatusConflict)

	do(r, http.MethodPost, "/v1/trips/t1/dispatch", "k1")
	w := do(r, http.MethodPost, "/v1/trips/t1/dispatch", "k1")

	assert.Equal(t, 1, *calls)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestActor(t *testing.T) {
	r := gin.New()
	r.Use(Actor())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, service.ActorFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(ActorHeader, "dispatcher@fleet")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "dispatcher@fleet", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, service.SystemActor, w.Body.String())
}

func TestLogger_LevelByStatus(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(Actor(), Logger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].Data["path"])
	assert.Equal(t, service.SystemActor, entries[2].Data["actor"])
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://ops.example.com"}))
	r.POST("/v1/trips", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/trips", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
