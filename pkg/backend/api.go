package backend

import (
	"context"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// DefaultReadingHours is the lookback used when ListReadings gets hours <= 0.
const DefaultReadingHours = 24

// Backend is the set of resources the dashboard reads.
// *Client implements it; tests use in-memory fakes.
type Backend interface {
	ListDevices(ctx context.Context) ([]entities.Device, error)
	GetDevice(ctx context.Context, id int) (*entities.Device, error)
	ListAlerts(ctx context.Context, resolved bool) ([]entities.Alert, error)
	ListReadings(ctx context.Context, deviceID, hours int) ([]entities.Reading, error)
	GetStatistics(ctx context.Context) (*entities.Statistics, error)
	GetStatus(ctx context.Context) (*entities.Health, error)
}

var _ Backend = (*Client)(nil)
