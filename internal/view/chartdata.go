package view

import "github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"

var (
	typePalette  = []string{"#2563eb", "#10b981", "#f59e0b", "#ef4444", "#06b6d4"}
	statePalette = []string{"#10b981", "#6b7280", "#f59e0b", "#ef4444"}
)

func baseOptions() map[string]any {
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
	}
}

// countBy counts devices per key, keeping keys in first-seen order.
func countBy(devices []entities.Device, key func(entities.Device) string) ([]string, []float64) {
	idx := map[string]int{}
	var labels []string
	var counts []float64
	for _, d := range devices {
		k := key(d)
		i, ok := idx[k]
		if !ok {
			i = len(labels)
			idx[k] = i
			labels = append(labels, k)
			counts = append(counts, 0)
		}
		counts[i]++
	}
	if labels == nil {
		labels, counts = []string{}, []float64{}
	}
	return labels, counts
}

func TypeChart(devices []entities.Device) ChartConfig {
	labels, counts := countBy(devices, func(d entities.Device) string { return d.Type })
	return ChartConfig{
		Type: "doughnut",
		Data: ChartData{
			Labels:   labels,
			Datasets: []Dataset{{Data: counts, BackgroundColor: typePalette}},
		},
		Options: baseOptions(),
	}
}

func StateChart(devices []entities.Device) ChartConfig {
	labels, counts := countBy(devices, func(d entities.Device) string { return string(d.State) })
	return ChartConfig{
		Type: "pie",
		Data: ChartData{
			Labels:   labels,
			Datasets: []Dataset{{Data: counts, BackgroundColor: statePalette}},
		},
		Options: baseOptions(),
	}
}

func LevelChart(devices []entities.Device) ChartConfig {
	names, levels := series(devices, func(d entities.Device) float64 { return d.FillLevel })
	opts := baseOptions()
	opts["scales"] = map[string]any{
		"y": map[string]any{"beginAtZero": true, "max": 100},
	}
	return ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels: names,
			Datasets: []Dataset{{
				Label:           "Nivel (%)",
				Data:            levels,
				BackgroundColor: "#2563eb",
				BorderColor:     "#1e40af",
				BorderWidth:     1,
			}},
		},
		Options: opts,
	}
}

func TemperatureChart(devices []entities.Device) ChartConfig {
	names, temps := series(devices, func(d entities.Device) float64 { return d.Temperature })
	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: names,
			Datasets: []Dataset{{
				Label:           "Temperatura (°C)",
				Data:            temps,
				BorderColor:     "#ef4444",
				BackgroundColor: "rgba(239, 68, 68, 0.1)",
				Tension:         0.4,
				Fill:            true,
			}},
		},
		Options: baseOptions(),
	}
}

func series(devices []entities.Device, value func(entities.Device) float64) ([]string, []float64) {
	names := make([]string, 0, len(devices))
	values := make([]float64, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
		values = append(values, value(d))
	}
	return names, values
}
