package backend

import (
	"context"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// GetStatistics retrieves the aggregate snapshot (GET /estadisticas)
func (c *Client) GetStatistics(ctx context.Context) (*entities.Statistics, error) {
	var stats entities.Statistics
	if err := c.Request(ctx, "/estadisticas", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
