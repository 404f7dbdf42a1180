package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
	"fleetflow/internal/handler"
	"fleetflow/internal/middleware"
	"fleetflow/internal/notify"
	"fleetflow/internal/repository/memory"
	"fleetflow/internal/service"
)

type memoryResponses struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryResponses) GetResponse(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memoryResponses) SetResponse(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

type testServer struct {
	router *gin.Engine
	events *notify.Recorder
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	clock := domain.FixedClock{T: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	events := notify.NewRecorder()
	store := memory.NewStore()

	deps := service.Deps{
		Store:    store,
		Locker:   service.NewLocalLocker(2 * time.Second),
		Clock:    clock,
		Notifier: service.NewNotificationService(events, clock, log),
		Log:      log,
	}
	metrics := service.NewMetricsService(clock)
	vehicles := service.NewVehicleService(deps, metrics)
	trips := service.NewTripService(deps, metrics)
	maintenance := service.NewMaintenanceService(deps, metrics)
	expenses := service.NewExpenseService(deps, metrics)

	router := NewRouter(RouterDeps{
		VehicleHandler:     handler.NewVehicleHandler(vehicles, trips, maintenance, expenses),
		DriverHandler:      handler.NewDriverHandler(service.NewDriverService(deps), trips),
		TripHandler:        handler.NewTripHandler(trips),
		MaintenanceHandler: handler.NewMaintenanceHandler(maintenance),
		ExpenseHandler:     handler.NewExpenseHandler(expenses),
		DashboardHandler:   handler.NewDashboardHandler(service.NewDashboardService(deps)),
		IdempotencyStore:   &memoryResponses{data: make(map[string][]byte)},
		CORSOrigins:        []string{"*"},
		Log:                log,
	})
	return &testServer{router: router, events: events, store: store}
}

func (s *testServer) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) id(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.ID
}

// seedTrip registers a vehicle and a driver and plans one trip for them.
func (s *testServer) seedTrip(t *testing.T, plate, license string) (vehicleID, tripID string) {
	t.Helper()
	vehicleID = s.id(t, s.request(t, http.MethodPost, "/v1/vehicles", gin.H{
		"name": "Eicher " + plate, "license_plate": plate, "vehicle_type": "truck", "max_load_capacity": 5000,
	}, nil))
	driverID := s.id(t, s.request(t, http.MethodPost, "/v1/drivers", gin.H{
		"name": "Driver " + license, "license_number": license, "license_expiry_date": "2030-01-01",
		"license_categories": []string{"truck"},
	}, nil))
	tripID = s.id(t, s.request(t, http.MethodPost, "/v1/trips", gin.H{
		"vehicle_id": vehicleID, "driver_id": driverID, "origin": "Rajkot", "destination": "Vadodara", "cargo_weight": 3000,
	}, nil))
	return vehicleID, tripID
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	w := s.request(t, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_ActorRecordedOnEvents(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, tripID := s.seedTrip(t, "GJ03BB0001", "LIC-1")

	w := s.request(t, http.MethodPost, "/v1/trips/"+tripID+"/dispatch", nil, map[string]string{
		middleware.ActorHeader: "dispatcher@fleet",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	dispatched := s.events.OfType(notify.EventTripDispatched)
	require.Len(t, dispatched, 1)
	assert.Equal(t, "dispatcher@fleet", dispatched[0].Actor)
	assert.Equal(t, tripID, dispatched[0].SubjectID)
}

func TestRouter_IdempotentDispatch(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, tripID := s.seedTrip(t, "GJ03BB0001", "LIC-1")
	headers := map[string]string{"Idempotency-Key": "dispatch-1"}

	first := s.request(t, http.MethodPost, "/v1/trips/"+tripID+"/dispatch", nil, headers)
	second := s.request(t, http.MethodPost, "/v1/trips/"+tripID+"/dispatch", nil, headers)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, s.events.OfType(notify.EventTripDispatched), 1)

	// Without the key the retry reaches the state machine and is rejected.
	third := s.request(t, http.MethodPost, "/v1/trips/"+tripID+"/dispatch", nil, nil)
	assert.Equal(t, http.StatusConflict, third.Code)
}

func TestRouter_ConcurrentDispatchOnOneVehicle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	vehicleID, first := s.seedTrip(t, "GJ03BB0001", "LIC-1")

	driverID := s.id(t, s.request(t, http.MethodPost, "/v1/drivers", gin.H{
		"name": "Second Driver", "license_number": "LIC-2", "license_expiry_date": "2030-01-01",
		"license_categories": []string{"truck"},
	}, nil))
	second := s.id(t, s.request(t, http.MethodPost, "/v1/trips", gin.H{
		"vehicle_id": vehicleID, "driver_id": driverID, "origin": "Rajkot", "destination": "Bhuj", "cargo_weight": 1000,
	}, nil))

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, tripID := range []string{first, second} {
		wg.Add(1)
		go func(i int, tripID string) {
			defer wg.Done()
			codes[i] = s.request(t, http.MethodPost, "/v1/trips/"+tripID+"/dispatch", nil, nil).Code
		}(i, tripID)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes)
	assert.Len(t, s.events.OfType(notify.EventTripDispatched), 1)

	v, err := s.store.Vehicles().GetByID(context.Background(), vehicleID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStateOnTrip, v.State)
}
