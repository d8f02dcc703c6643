package app

import (
	"context"
	"fmt"
	"time"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
	"github.com/LeonardoBeccarini/dispensadoras/internal/projection"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

// readingWorkers bounds concurrent /lecturas requests while building a report.
const readingWorkers = 4

// Reporter gathers the data a report kind needs and projects it.
type Reporter struct {
	backend          backend.Backend
	maintenanceEvery time.Duration
	now              func() time.Time
}

func NewReporter(b backend.Backend, maintenanceEvery time.Duration) *Reporter {
	return &Reporter{backend: b, maintenanceEvery: maintenanceEvery, now: time.Now}
}

// Build returns false, without touching the backend, for an unknown kind.
func (r *Reporter) Build(ctx context.Context, kind, period string) (projection.Report, bool, error) {
	k, ok := projection.ParseKind(kind)
	if !ok {
		return projection.Report{}, false, nil
	}
	p := projection.ParsePeriod(period)

	devices, err := r.backend.ListDevices(ctx)
	if err != nil {
		return projection.Report{}, true, err
	}
	in := projection.Input{
		Devices:          devices,
		Now:              r.now(),
		MaintenanceEvery: r.maintenanceEvery,
	}

	needs := k.Needs()
	if needs.Alerts {
		if in.Alerts, err = r.backend.ListAlerts(ctx, false); err != nil {
			return projection.Report{}, true, err
		}
	}
	if needs.Readings {
		if in.Readings, err = r.readings(ctx, devices, p.Hours()); err != nil {
			return projection.Report{}, true, err
		}
	}

	rep, _ := projection.Generate(string(k), p, in)
	return rep, true, nil
}

func (r *Reporter) readings(ctx context.Context, devices []entities.Device, hours int) (map[int][]entities.Reading, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type res struct {
		id       int
		readings []entities.Reading
		err      error
	}
	ids := make(chan int)
	out := make(chan res, len(devices))

	workers := readingWorkers
	if len(devices) < workers {
		workers = len(devices)
	}
	for i := 0; i < workers; i++ {
		go func() {
			for id := range ids {
				rd, err := r.backend.ListReadings(ctx, id, hours)
				out <- res{id: id, readings: rd, err: err}
			}
		}()
	}
	go func() {
		defer close(ids)
		for _, d := range devices {
			select {
			case ids <- d.ID:
			case <-ctx.Done():
				return
			}
		}
	}()

	readings := make(map[int][]entities.Reading, len(devices))
	for range devices {
		select {
		case rv := <-out:
			if rv.err != nil {
				return nil, fmt.Errorf("readings of dispensadora %d: %w", rv.id, rv.err)
			}
			readings[rv.id] = rv.readings
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return readings, nil
}
