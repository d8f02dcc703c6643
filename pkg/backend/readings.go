package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// ListReadings retrieves the readings of a device over the last `hours`
// (GET /lecturas/{id}?horas=). hours <= 0 falls back to DefaultReadingHours.
func (c *Client) ListReadings(ctx context.Context, deviceID, hours int) ([]entities.Reading, error) {
	if hours <= 0 {
		hours = DefaultReadingHours
	}
	params := url.Values{}
	params.Set("horas", strconv.Itoa(hours))

	var readings []entities.Reading
	if err := c.Request(ctx, fmt.Sprintf("/lecturas/%d", deviceID), params, &readings); err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []entities.Reading{}
	}
	return readings, nil
}
