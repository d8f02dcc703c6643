package backend

import (
	"context"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// GetStatus checks the backend health endpoint (GET /status)
func (c *Client) GetStatus(ctx context.Context) (*entities.Health, error) {
	var health entities.Health
	if err := c.Request(ctx, "/status", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
