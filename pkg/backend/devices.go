package backend

import (
	"context"
	"fmt"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// ListDevices retrieves every dispensadora (GET /dispensadoras)
func (c *Client) ListDevices(ctx context.Context) ([]entities.Device, error) {
	var devices []entities.Device
	if err := c.Request(ctx, "/dispensadoras", nil, &devices); err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []entities.Device{}
	}
	return devices, nil
}

// GetDevice retrieves a single dispensadora by id (GET /dispensadoras/{id})
func (c *Client) GetDevice(ctx context.Context, id int) (*entities.Device, error) {
	var device entities.Device
	if err := c.Request(ctx, fmt.Sprintf("/dispensadoras/%d", id), nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}
