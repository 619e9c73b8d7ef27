package series

// Collection is the per-session series store: a keyed set of bounded series
// sharing one retention cap. The cap applies uniformly to every series in
// the collection and is part of the persisted state, so sessions stay
// independently configurable.
type Collection struct {
	Tracking   map[string]*Series `json:"tracking"`
	MaxSamples int                `json:"max_samples"`
}

// NewCollection returns an empty collection capping each series at
// maxSamples retained samples.
func NewCollection(maxSamples int) *Collection {
	return &Collection{
		Tracking:   make(map[string]*Series),
		MaxSamples: maxSamples,
	}
}

// Get returns the series stored under key, or nil when none exists.
func (c *Collection) Get(key string) *Series {
	return c.Tracking[key]
}

// Append adds samples to the series stored under key, creating the series on
// first append.
func (c *Collection) Append(key string, steps, values []float64) {
	if c.Tracking == nil {
		c.Tracking = make(map[string]*Series)
	}
	s, ok := c.Tracking[key]
	if !ok {
		s = &Series{}
		c.Tracking[key] = s
	}
	s.Append(steps, values, c.MaxSamples)
}
