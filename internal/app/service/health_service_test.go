package service

import (
	"testing"
	"time"

	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealthServiceTest(t *testing.T) (HealthService, repository.HealthRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	healthRepo := repository.NewHealthRepository(testDB)
	return NewHealthService(healthRepo), healthRepo
}

func seedChecks(t *testing.T, repo repository.HealthRepository, service string, n int) {
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		status := 200
		require.NoError(t, repo.Create(&model.HealthCheck{
			ServiceName: service,
			OK:          true,
			Status:      &status,
			TimeMs:      int64(i),
			CheckedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestHealthService_RecentLogs_NewestFirst(t *testing.T) {
	svc, repo := setupHealthServiceTest(t)
	seedChecks(t, repo, "auth", 5)

	rows, err := svc.RecentLogs("auth", 3)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	// TimeMs mirrors insertion order in the seed data.
	assert.Equal(t, int64(4), rows[0].TimeMs)
	assert.Equal(t, int64(3), rows[1].TimeMs)
	assert.Equal(t, int64(2), rows[2].TimeMs)
}

func TestHealthService_RecentLogs_FiltersByService(t *testing.T) {
	svc, repo := setupHealthServiceTest(t)
	seedChecks(t, repo, "auth", 2)
	seedChecks(t, repo, "products", 3)

	rows, err := svc.RecentLogs("auth", 0)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "auth", row.ServiceName)
	}
}

func TestHealthService_RecentLogs_EmptyIsNotNil(t *testing.T) {
	svc, _ := setupHealthServiceTest(t)

	rows, err := svc.RecentLogs("", 0)

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestHealthService_Series_OldestFirst(t *testing.T) {
	svc, repo := setupHealthServiceTest(t)
	seedChecks(t, repo, "auth", 5)

	rows, err := svc.Series("auth", 3)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Same window as RecentLogs, reversed for charting.
	assert.Equal(t, int64(2), rows[0].TimeMs)
	assert.Equal(t, int64(3), rows[1].TimeMs)
	assert.Equal(t, int64(4), rows[2].TimeMs)
}
