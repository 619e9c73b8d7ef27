package telemetry

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal message JSON")
	ErrMissingSessionID    = errors.New("envelope has no session_id")
)
