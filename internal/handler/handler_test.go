package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockVaultStorage struct {
	StatsFunc func(ctx context.Context) (domain.Stats, error)
}

func (m *MockVaultStorage) BatchSummaries(ctx context.Context, ownerID int64, limit int) ([]domain.BatchSummary, error) {
	return nil, nil
}

func (m *MockVaultStorage) DeleteBatch(ctx context.Context, ownerID int64, code string) error {
	return nil
}

func (m *MockVaultStorage) OwnerHasCode(ctx context.Context, ownerID int64, code string) (bool, error) {
	return false, nil
}

func (m *MockVaultStorage) Stats(ctx context.Context) (domain.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return domain.Stats{}, nil
}

type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

type noopSweeperStorage struct{}

func (noopSweeperStorage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func newTestHandler(vaultStorage service.VaultStorage, pinger Pinger) *Handler {
	vault := service.NewVault(vaultStorage, 10)
	sweeper := service.NewExpirySweeper(noopSweeperStorage{})
	return New(vault, sweeper, pinger)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&MockVaultStorage{}, &MockPinger{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	pinger := &MockPinger{}
	h := newTestHandler(&MockVaultStorage{}, pinger)

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	pinger.PingFunc = func(ctx context.Context) error { return errors.New("down") }
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStats(t *testing.T) {
	storage := &MockVaultStorage{StatsFunc: func(ctx context.Context) (domain.Stats, error) {
		return domain.Stats{TotalItems: 5, TotalBatches: 2, TotalRecipients: 3}, nil
	}}
	h := newTestHandler(storage, &MockPinger{})

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.TotalItems)
	assert.Equal(t, int64(2), resp.TotalBatches)
	assert.Equal(t, int64(3), resp.TotalRecipients)
}

func TestStats_StorageError(t *testing.T) {
	storage := &MockVaultStorage{StatsFunc: func(ctx context.Context) (domain.Stats, error) {
		return domain.Stats{}, errors.New("connection reset")
	}}
	h := newTestHandler(storage, &MockPinger{})

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
