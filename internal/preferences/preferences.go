// Package preferences stores arbitrary per-session key/value settings. The
// blob is opaque to the aggregation logic; it only shares the session's
// lifecycle (created with it, deleted with it).
package preferences

import (
	"encoding/json"
	"fmt"
)

// Preferences is a session's preference blob plus the errors collected while
// applying updates to it.
type Preferences struct {
	Data   map[string]interface{} `json:"data"`
	Errors []string               `json:"errors"`
}

func New() *Preferences {
	return &Preferences{
		Data:   make(map[string]interface{}),
		Errors: []string{},
	}
}

// GetData returns the stored settings, never nil.
func (p *Preferences) GetData() map[string]interface{} {
	if p.Data == nil {
		p.Data = make(map[string]interface{})
	}
	return p.Data
}

// Update merges raw JSON settings into the blob. Malformed input is recorded
// in Errors and returned; valid keys replace prior values.
func (p *Preferences) Update(raw []byte) []string {
	var incoming map[string]interface{}
	if err := json.Unmarshal(raw, &incoming); err != nil {
		p.Errors = append(p.Errors, fmt.Sprintf("invalid preferences payload: %v", err))
		return p.Errors
	}

	if p.Data == nil {
		p.Data = make(map[string]interface{})
	}
	for k, v := range incoming {
		p.Data[k] = v
	}
	return p.Errors
}
