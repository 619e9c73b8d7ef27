package telemetry

// SamplePayload is the raw series payload attached to one composite key in an
// ingestion batch: parallel step/value sequences as sent by the tracked
// client. Values arrive as arbitrary JSON scalars; identity attributes are
// strings, metrics are numbers, liveness is a bool or a 0/1 number.
type SamplePayload struct {
	Step  []float64     `json:"step"`
	Value []interface{} `json:"value"`
}

// Batch maps composite keys to their payloads for one ingestion call.
type Batch map[string]SamplePayload

// Envelope is the wire shape of one ingestion message: a session id plus the
// batch of labeled sample series collected since the last flush.
type Envelope struct {
	SessionID string `json:"session_id"`
	Series    Batch  `json:"series"`
}

// FirstFloat64 returns the first sample value coerced to float64.
// Handles the numeric types a decoded JSON payload may carry.
// Returns (0, false) when the payload is empty or not numeric.
func (p SamplePayload) FirstFloat64() (float64, bool) {
	if len(p.Value) == 0 {
		return 0, false
	}
	return asFloat64(p.Value[0])
}

// FirstString returns the first sample value if it is a string.
func (p SamplePayload) FirstString() (string, bool) {
	if len(p.Value) == 0 {
		return "", false
	}
	s, ok := p.Value[0].(string)
	return s, ok
}

// FirstBool returns the first sample value coerced to a bool. Booleans are
// taken as-is; numbers are truthy when non-zero.
func (p SamplePayload) FirstBool() (bool, bool) {
	if len(p.Value) == 0 {
		return false, false
	}
	if b, ok := p.Value[0].(bool); ok {
		return b, true
	}
	if f, ok := asFloat64(p.Value[0]); ok {
		return f != 0, true
	}
	return false, false
}

// Floats returns the numeric sample values in order, dropping any entries
// that cannot be coerced.
func (p SamplePayload) Floats() []float64 {
	out := make([]float64, 0, len(p.Value))
	for _, v := range p.Value {
		if f, ok := asFloat64(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func asFloat64(v interface{}) (float64, bool) {
	// Direct assertion first (the common case with JSON numbers)
	if f, ok := v.(float64); ok {
		return f, true
	}

	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
