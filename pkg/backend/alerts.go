package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// ListAlerts retrieves alerts filtered by their resolved flag (GET /alertas?resuelta=)
func (c *Client) ListAlerts(ctx context.Context, resolved bool) ([]entities.Alert, error) {
	params := url.Values{}
	params.Set("resuelta", strconv.FormatBool(resolved))

	var alerts []entities.Alert
	if err := c.Request(ctx, "/alertas", params, &alerts); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []entities.Alert{}
	}
	return alerts, nil
}
