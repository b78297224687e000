package monitor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/petmarket/petmarket-backend/config"
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, targets []config.MonitorTarget) (*Monitor, repository.HealthRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	healthRepo := repository.NewHealthRepository(testDB)
	cfg := config.MonitorConfig{
		Targets:      targets,
		Interval:     time.Minute,
		StartupDelay: time.Millisecond,
		ProbeTimeout: 500 * time.Millisecond,
	}
	return New(cfg, healthRepo, nil), healthRepo
}

func TestProbe_SuccessRecordsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	mon, _ := newTestMonitor(t, nil)
	check := mon.Probe(config.MonitorTarget{Name: "auth", URL: server.URL})

	assert.True(t, check.OK)
	require.NotNil(t, check.Status)
	assert.Equal(t, http.StatusOK, *check.Status)
	require.NotNil(t, check.Body)
	assert.Equal(t, `{"ok":true}`, *check.Body)
	assert.Nil(t, check.Error)
	assert.Equal(t, "auth", check.ServiceName)
}

func TestProbe_ErrorStatusStillReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mon, _ := newTestMonitor(t, nil)
	check := mon.Probe(config.MonitorTarget{Name: "products", URL: server.URL})

	// A 500 response means the target answered: reachable.
	assert.True(t, check.OK)
	require.NotNil(t, check.Status)
	assert.Equal(t, http.StatusInternalServerError, *check.Status)
	assert.Nil(t, check.Error)
}

func TestProbe_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	mon, _ := newTestMonitor(t, nil)
	check := mon.Probe(config.MonitorTarget{Name: "slow", URL: server.URL})

	assert.False(t, check.OK)
	assert.Nil(t, check.Status)
	require.NotNil(t, check.Error)
	assert.Equal(t, "timeout", *check.Error)
	// Latency is the elapsed wall clock, roughly the timeout.
	assert.GreaterOrEqual(t, check.TimeMs, int64(400))
}

func TestProbe_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	mon, _ := newTestMonitor(t, nil)
	check := mon.Probe(config.MonitorTarget{Name: "down", URL: url})

	assert.False(t, check.OK)
	assert.Nil(t, check.Status)
	require.NotNil(t, check.Error)
	assert.NotEmpty(t, *check.Error)
}

func TestSweep_IsolatesFailingTargets(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	downURL := down.URL
	down.Close()

	mon, healthRepo := newTestMonitor(t, []config.MonitorTarget{
		{Name: "first", URL: up.URL},
		{Name: "broken", URL: downURL},
		{Name: "last", URL: up.URL},
	})

	mon.Sweep()

	// One row per target, the dead one included.
	rows, err := healthRepo.FindRecent("", 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := map[string]model.HealthCheck{}
	for _, row := range rows {
		byName[row.ServiceName] = row
	}
	assert.True(t, byName["first"].OK)
	assert.False(t, byName["broken"].OK)
	assert.True(t, byName["last"].OK)
}

type failingHealthRepo struct{}

func (failingHealthRepo) Create(*model.HealthCheck) error {
	return errors.New("disk full")
}

func (failingHealthRepo) FindRecent(string, int) ([]model.HealthCheck, error) {
	return nil, nil
}

func TestSweep_RecordFailureDoesNotAbort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mon := New(config.MonitorConfig{
		Targets: []config.MonitorTarget{
			{Name: "a", URL: server.URL},
			{Name: "b", URL: server.URL},
		},
		Interval:     time.Minute,
		StartupDelay: time.Millisecond,
		ProbeTimeout: 500 * time.Millisecond,
	}, failingHealthRepo{}, nil)

	assert.NotPanics(t, mon.Sweep)
}
