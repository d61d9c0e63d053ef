package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMonitoringRouter(t *testing.T, slot storage.Slot) *router.RouterService {
	t.Helper()

	logger := log.NewDiscardLogger()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	})
	t.Cleanup(rs.Cleanup)

	rs.MountController(NewMonitoringControllerFactory(nil, logger, nil, slot, storage.DriverMemory).CreateController())
	return rs
}

func getHealth(t *testing.T, rs *router.RouterService) (int, HealthStatus) {
	t.Helper()

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body struct {
		Data HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body.Data
}

func TestHealthCheck_ReportsStorage(t *testing.T) {
	rs := newMonitoringRouter(t, storage.NewMemorySlot("pledg_waitlist_entries"))

	code, status := getHealth(t, rs)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, status.Storage)
	assert.Equal(t, 0, status.Database)
	assert.Equal(t, 0, status.Cache)
	assert.Equal(t, storage.DriverMemory, status.StorageDriver)
}

func TestHealthCheck_UnreachableStorageIs503(t *testing.T) {
	ctrl := gomock.NewController(t)
	slot := storage.NewMockSlot(ctrl)
	slot.EXPECT().Ping(gomock.Any()).Return(storage.ErrSlotUnavailable).AnyTimes()
	slot.EXPECT().Key().Return("pledg_waitlist_entries").AnyTimes()

	rs := newMonitoringRouter(t, slot)

	code, status := getHealth(t, rs)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, 0, status.Storage)
}

func TestMonitor_RateLimited(t *testing.T) {
	rs := newMonitoringRouter(t, storage.NewMemorySlot("k"))

	codes := make([]int, 0, monitoringRequestsPerMinute+1)
	for i := 0; i <= monitoringRequestsPerMinute; i++ {
		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1])
}
