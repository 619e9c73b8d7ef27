package analysis

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/preferences"
	"github.com/procsight/procsight/internal/series"
	"github.com/procsight/procsight/internal/store"
	"github.com/procsight/procsight/internal/telemetry"
)

// Registry maps session identifiers to their aggregation and preferences
// state in the backing store, with create-if-absent semantics, and exposes
// the query surface over them. Every operation loads the session state fresh
// and persists it whole when it mutates; concurrent requests for the same
// session are last-writer-wins at that granularity.
type Registry struct {
	store      store.Store
	maxSamples int
	logger     *zap.Logger
}

// NewRegistry builds a registry over the given store. maxSamples seeds the
// series cap of newly created session states.
func NewRegistry(st store.Store, maxSamples int, logger *zap.Logger) *Registry {
	logger.Info("Registry initialized", zap.Int("max_samples", maxSamples))
	return &Registry{
		store:      st,
		maxSamples: maxSamples,
		logger:     logger,
	}
}

func stateKey(sessionID string) string {
	return "sessions/" + sessionID + "/process"
}

func preferencesKey(sessionID string) string {
	return "sessions/" + sessionID + "/process_preferences"
}

// GetOrCreate loads the session's aggregation state, creating and registering
// both it and the session's preferences state on first reference. Idempotent.
func (r *Registry) GetOrCreate(sessionID string) (*Analysis, error) {
	state := &State{}
	err := r.store.Get(stateKey(sessionID), state)
	if err == nil {
		return newAnalysis(state, r.logger), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading session %q: %w", sessionID, err)
	}

	state = NewState(r.maxSamples)
	if err := r.store.Set(stateKey(sessionID), state); err != nil {
		return nil, fmt.Errorf("registering session %q: %w", sessionID, err)
	}
	if err := r.store.Set(preferencesKey(sessionID), preferences.New()); err != nil {
		return nil, fmt.Errorf("registering session %q preferences: %w", sessionID, err)
	}

	sessionsCreated.Inc()
	r.logger.Info("Created session aggregation state",
		zap.String("session_id", sessionID),
		zap.Int("max_samples", r.maxSamples),
	)
	return newAnalysis(state, r.logger), nil
}

// Delete removes the session's aggregation and preferences state. Deleting an
// unknown or already deleted session is a no-op.
func (r *Registry) Delete(sessionID string) error {
	if err := r.store.Delete(stateKey(sessionID)); err != nil {
		return fmt.Errorf("deleting session %q: %w", sessionID, err)
	}
	if err := r.store.Delete(preferencesKey(sessionID)); err != nil {
		return fmt.Errorf("deleting session %q preferences: %w", sessionID, err)
	}
	sessionsDeleted.Inc()
	r.logger.Info("Deleted session", zap.String("session_id", sessionID))
	return nil
}

// Ingest routes one batch of labeled samples into the session's state and
// persists it. Best-effort per key: malformed keys are skipped, never
// surfaced.
func (r *Registry) Ingest(sessionID string, batch telemetry.Batch) error {
	a, err := r.GetOrCreate(sessionID)
	if err != nil {
		return err
	}
	a.Track(batch)
	if err := r.store.Set(stateKey(sessionID), a.State()); err != nil {
		return fmt.Errorf("saving session %q: %w", sessionID, err)
	}
	return nil
}

// LiveTable returns the ranked active-process records and the top-5 cpu
// summary. The rebuilt zero-cpu cache is persisted before returning, so a
// following ZeroActivity call observes it.
func (r *Registry) LiveTable(sessionID string) ([]*ProcessSummary, []series.Detail, error) {
	queriesTotal.WithLabelValues("live_table").Inc()

	a, err := r.GetOrCreate(sessionID)
	if err != nil {
		return nil, nil, err
	}
	records, summary := a.LiveTable()
	if err := r.store.Set(stateKey(sessionID), a.State()); err != nil {
		return nil, nil, fmt.Errorf("saving session %q: %w", sessionID, err)
	}
	return records, summary, nil
}

// ZeroActivity returns the zero-cpu records cached by the last LiveTable
// call. Purely a read; reflects that call's state, not real time.
func (r *Registry) ZeroActivity(sessionID string) ([]*ProcessSummary, error) {
	queriesTotal.WithLabelValues("zero_activity").Inc()

	a, err := r.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	return a.ZeroActivity(), nil
}

// ProcessDetail returns the full detail of one process in the session.
func (r *Registry) ProcessDetail(sessionID, processID string) (*ProcessDetail, error) {
	queriesTotal.WithLabelValues("process_detail").Inc()

	a, err := r.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	return a.ProcessDetail(processID)
}

// PreferencesData returns the session's preference settings, or an empty map
// when the session has no preferences state.
func (r *Registry) PreferencesData(sessionID string) (map[string]interface{}, error) {
	prefs := preferences.New()
	err := r.store.Get(preferencesKey(sessionID), prefs)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %q preferences: %w", sessionID, err)
	}
	return prefs.GetData(), nil
}

// UpdatePreferences merges raw JSON settings into the session's preferences
// and persists them, returning the collected validation errors. A session
// with no preferences state is left untouched.
func (r *Registry) UpdatePreferences(sessionID string, raw []byte) ([]string, error) {
	prefs := preferences.New()
	err := r.store.Get(preferencesKey(sessionID), prefs)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %q preferences: %w", sessionID, err)
	}

	updateErrs := prefs.Update(raw)
	if err := r.store.Set(preferencesKey(sessionID), prefs); err != nil {
		return nil, fmt.Errorf("saving session %q preferences: %w", sessionID, err)
	}

	r.logger.Debug("Updated session preferences", zap.String("session_id", sessionID))
	return updateErrs, nil
}
