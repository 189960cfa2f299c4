package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/mocks"
)

func TestReady_AllHealthy(t *testing.T) {
	service := NewService(&Config{Version: "1.0.0", Locker: &mocks.MockLocker{}}, zap.NewNop())

	resp := service.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["lock"].Status)
}

func TestReady_LockerDown(t *testing.T) {
	locker := &mocks.MockLocker{PingFunc: func() error { return errors.New("connection refused") }}
	service := NewService(&Config{Locker: locker}, zap.NewNop())

	resp := service.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks["lock"].Message, "connection refused")
}

func TestReady_DegradedStaysReady(t *testing.T) {
	service := NewService(&Config{}, zap.NewNop())
	service.RegisterChecker("stripe", func(ctx context.Context) CheckResult {
		return CheckResult{Name: "stripe", Status: StatusDegraded}
	})

	resp := service.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestFiberHandler_Routes(t *testing.T) {
	locker := &mocks.MockLocker{PingFunc: func() error { return errors.New("down") }}
	service := NewService(&Config{Version: "1.0.0", Locker: locker}, zap.NewNop())

	app := fiber.New()
	NewFiberHandler(service).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var live HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&live))
	assert.Equal(t, "1.0.0", live.Version)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
