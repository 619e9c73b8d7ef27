package telemetry

import (
	"encoding/json"
	"fmt"
)

// ParseEnvelope decodes one ingestion message from its JSON wire form.
// It returns ErrJSONUnmarshalFailed (wrapping the original error) when
// decoding fails and ErrMissingSessionID when the envelope names no session.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope

	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	if env.SessionID == "" {
		return Envelope{}, ErrMissingSessionID
	}
	return env, nil
}
