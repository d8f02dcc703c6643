package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

type flakyStatus struct {
	*fakeBackend
	failures int64
	calls    atomic.Int64
}

func (f *flakyStatus) GetStatus(context.Context) (*entities.Health, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection refused")
	}
	return &entities.Health{Status: "ok"}, nil
}

func TestWaitForBackend_Recovers(t *testing.T) {
	b := &flakyStatus{fakeBackend: &fakeBackend{}, failures: 2}
	require.NoError(t, WaitForBackend(context.Background(), b, 5*time.Second, nil))
	assert.EqualValues(t, 3, b.calls.Load())
}

func TestWaitForBackend_GivesUp(t *testing.T) {
	b := &fakeBackend{status: "starting"}
	err := WaitForBackend(context.Background(), b, 300*time.Millisecond, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}

func TestWaitForBackend_Cancelled(t *testing.T) {
	b := &flakyStatus{fakeBackend: &fakeBackend{}, failures: 1000}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, WaitForBackend(ctx, b, time.Minute, nil))
}
