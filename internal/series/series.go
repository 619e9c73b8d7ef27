// Package series provides the bounded time series consumed by the process
// aggregator: a length-capped sequence of numeric samples per metric key,
// with exponential smoothing and summary statistics computed on demand.
package series

// smoothingFactor is the weight of the newest sample in the exponentially
// smoothed sequence.
const smoothingFactor = 0.3

// Series is a bounded, append-only sequence of (step, value) samples for one
// metric. Appending past the cap discards the oldest samples.
type Series struct {
	Steps  []float64 `json:"step"`
	Values []float64 `json:"value"`
}

// Summary holds the scalar statistics of a series.
type Summary struct {
	Mean float64 `json:"mean"`
}

// Detail is the query-facing view of a series: the retained samples, their
// smoothed sequence and the summary mean, optionally tagged with a name.
type Detail struct {
	Name     string    `json:"name,omitempty"`
	Steps    []float64 `json:"step"`
	Values   []float64 `json:"value"`
	Smoothed []float64 `json:"smoothed"`
	Mean     float64   `json:"mean"`
}

// Append adds samples to the series, keeping at most maxLen of the newest
// samples. Steps and values are truncated to their common length.
func (s *Series) Append(steps, values []float64, maxLen int) {
	n := len(steps)
	if len(values) < n {
		n = len(values)
	}
	s.Steps = append(s.Steps, steps[:n]...)
	s.Values = append(s.Values, values[:n]...)

	if maxLen > 0 && len(s.Values) > maxLen {
		drop := len(s.Values) - maxLen
		s.Steps = append(s.Steps[:0], s.Steps[drop:]...)
		s.Values = append(s.Values[:0], s.Values[drop:]...)
	}
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return len(s.Values)
}

// Smoothed returns the exponentially smoothed sequence over the retained
// values. The first element equals the first raw value.
func (s *Series) Smoothed() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = smoothingFactor*v + (1-smoothingFactor)*out[i-1]
	}
	return out
}

// Summary computes the scalar statistics over the retained raw values.
func (s *Series) Summary() Summary {
	if len(s.Values) == 0 {
		return Summary{}
	}
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	return Summary{Mean: sum / float64(len(s.Values))}
}

// Detail builds the query-facing view of the series.
func (s *Series) Detail(name string) Detail {
	smoothed := s.Smoothed()
	return Detail{
		Name:     name,
		Steps:    s.Steps,
		Values:   s.Values,
		Smoothed: smoothed,
		Mean:     s.Summary().Mean,
	}
}

// LastSmoothed returns the final element of the smoothed sequence, the
// ranking key for resource-usage ordering. Zero for an empty detail.
func (d Detail) LastSmoothed() float64 {
	if len(d.Smoothed) == 0 {
		return 0
	}
	return d.Smoothed[len(d.Smoothed)-1]
}
