// Package analysis implements the process aggregator: it demultiplexes flat
// streams of labeled telemetry samples into per-process attribute maps and
// bounded time series, and answers the live-table, zero-activity and
// per-process detail queries over them.
package analysis

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/series"
	"github.com/procsight/procsight/internal/telemetry"
)

// almostZeroCPU is the mean-cpu threshold below which a process counts as
// zero-activity.
const almostZeroCPU = 1.0e-2

// summaryTopN bounds the live-table summary slice.
const summaryTopN = 5

// Canonical metric suffixes recorded as time series for every process.
var seriesNames = []string{"rss", "vms", "cpu", "threads", "user", "system"}

const (
	suffixName       = "name"
	suffixExe        = "exe"
	suffixCmdline    = "cmdline"
	suffixCreateTime = "create_time"
	suffixPID        = "pid"
	suffixPPIDs      = "ppids"
	suffixDead       = "dead"

	metricCPU = "cpu"
	metricRSS = "rss"
	metricGPU = "mem"
)

// Analysis is a process aggregator bound to one session's state. Instances
// are per-request; the state they mutate becomes visible to other requests
// only when the registry persists it.
type Analysis struct {
	state  *State
	logger *zap.Logger
}

func newAnalysis(state *State, logger *zap.Logger) *Analysis {
	state.normalize()
	return &Analysis{state: state, logger: logger}
}

// State exposes the bound session state for persistence.
func (a *Analysis) State() *State {
	return a.state
}

// Track routes one ingestion batch. Static attribute samples are captured
// into the attribute maps (first write wins) and consumed; GPU sub-resource
// keys register their sub-process id and are forwarded; every other process
// sample is appended to its bounded series, created on first append.
// Malformed keys and foreign analysis types are skipped silently.
func (a *Analysis) Track(batch telemetry.Batch) {
	ingestBatches.Inc()

	forwarded := 0
	for raw, payload := range batch {
		key, ok := telemetry.ParseKey(raw)
		if !ok || key.Type != telemetry.TypeProcess {
			samplesRouted.WithLabelValues(dispositionSkipped).Inc()
			continue
		}

		if a.captureAttribute(key, payload) {
			samplesRouted.WithLabelValues(dispositionAttribute).Inc()
			continue
		}

		if processID, gpuProcessID, ok := key.GPU(); ok {
			a.state.registerGPUProcess(processID, gpuProcessID)
			samplesRouted.WithLabelValues(dispositionGPU).Inc()
		} else {
			samplesRouted.WithLabelValues(dispositionSeries).Inc()
		}

		a.state.Series.Append(raw, payload.Step, payload.Floats())
		forwarded++
	}

	a.logger.Debug("Tracked ingestion batch",
		zap.Int("samples", len(batch)),
		zap.Int("forwarded_series", forwarded),
	)
}

// captureAttribute writes a static attribute sample into its map and reports
// whether the key was an attribute key (consumed either way). Identity
// attributes are write-once; the dead flag is monotone towards dead: a true
// observation always sticks, a false one only records the first sighting and
// can never resurrect a process already marked dead.
func (a *Analysis) captureAttribute(key telemetry.Key, payload telemetry.SamplePayload) bool {
	st := a.state
	id := key.ProcessID

	switch key.Suffix {
	case suffixName:
		if _, seen := st.Names[id]; !seen {
			if v, ok := payload.FirstString(); ok {
				st.Names[id] = v
			}
		}
	case suffixExe:
		if _, seen := st.Exes[id]; !seen {
			if v, ok := payload.FirstString(); ok {
				st.Exes[id] = v
			}
		}
	case suffixCmdline:
		if _, seen := st.Cmdlines[id]; !seen {
			if v, ok := payload.FirstString(); ok {
				st.Cmdlines[id] = v
			}
		}
	case suffixCreateTime:
		if _, seen := st.CreateTimes[id]; !seen {
			if v, ok := payload.FirstFloat64(); ok {
				st.CreateTimes[id] = v
			}
		}
	case suffixPID:
		if _, seen := st.PIDs[id]; !seen {
			if v, ok := payload.FirstFloat64(); ok {
				st.PIDs[id] = v
			}
		}
	case suffixPPIDs:
		if _, seen := st.PPIDs[id]; !seen {
			if v, ok := payload.FirstFloat64(); ok {
				st.PPIDs[id] = v
			}
		}
	case suffixDead:
		v, ok := payload.FirstBool()
		if !ok {
			return true
		}
		if v {
			st.Dead[id] = true
		} else if _, seen := st.Dead[id]; !seen {
			st.Dead[id] = false
		}
	default:
		return false
	}
	return true
}

// LiveTable returns the ranked list of active processes with cpu/rss detail
// and the top-5 cpu summary slice. As a side effect it rebuilds the session's
// zero-cpu cache wholesale from current series state; the caller must persist
// the state afterwards for ZeroActivity to observe the rebuild.
func (a *Analysis) LiveTable() ([]*ProcessSummary, []series.Detail) {
	st := a.state

	records := make(map[string]*ProcessSummary)
	zeroCPU := make(map[string]*ProcessSummary)

	for raw, s := range st.Series.Tracking {
		key, ok := telemetry.ParseKey(raw)
		if !ok {
			continue
		}
		id := key.ProcessID

		if st.Dead[id] {
			continue
		}

		rec, seen := records[id]
		if !seen {
			rec = &ProcessSummary{
				ProcessID: id,
				PID:       st.PIDs[id],
				Name:      st.Names[id],
			}
			records[id] = rec
		}

		switch key.Suffix {
		case metricCPU:
			d := s.Detail("")
			if d.Mean < almostZeroCPU {
				rec.IsZeroCPU = true
				zeroCPU[id] = rec
			}
			rec.CPU = &d
		case metricRSS:
			d := s.Detail("")
			rec.RSS = &d
		}
	}

	ranked := make([]*ProcessSummary, 0, len(records))
	for _, rec := range records {
		if rec.IsZeroCPU || rec.CPU == nil || rec.RSS == nil {
			continue
		}
		ranked = append(ranked, rec)
	}
	sortByLastSmoothedCPU(ranked)

	summary := make([]series.Detail, 0, summaryTopN)
	for _, rec := range ranked {
		if len(summary) == summaryTopN {
			break
		}
		d := *rec.CPU
		d.Name = rec.Name
		summary = append(summary, d)
	}

	// Full replace: stale entries for processes that became active again are
	// dropped, idle ones are refreshed with current detail.
	st.ZeroCPU = zeroCPU

	liveTableSize.Set(float64(len(ranked)))
	zeroCPUCacheSize.Set(float64(len(zeroCPU)))

	return ranked, summary
}

// ZeroActivity returns the cached zero-cpu records, filtered to those with
// both cpu and rss detail and ranked like the live table. It reads only the
// cache persisted by the last LiveTable call and never touches live series.
func (a *Analysis) ZeroActivity() []*ProcessSummary {
	ranked := make([]*ProcessSummary, 0, len(a.state.ZeroCPU))
	for _, rec := range a.state.ZeroCPU {
		if rec.CPU == nil || rec.RSS == nil {
			continue
		}
		ranked = append(ranked, rec)
	}
	sortByLastSmoothedCPU(ranked)
	return ranked
}

// ProcessDetail returns the full attribute snapshot and every recorded metric
// series for one process, including GPU sub-process memory series. The name
// attribute is mandatory: processes never observed with a name are reported
// as not found rather than returned partially.
func (a *Analysis) ProcessDetail(processID string) (*ProcessDetail, error) {
	st := a.state

	name, ok := st.Names[processID]
	if !ok {
		return nil, fmt.Errorf("%w: no name recorded for process %q", ErrProcessNotFound, processID)
	}

	detail := &ProcessDetail{
		ProcessID:  processID,
		Name:       name,
		CreateTime: st.CreateTimes[processID],
		Cmdline:    st.Cmdlines[processID],
		Exe:        st.Exes[processID],
		PID:        st.PIDs[processID],
		PPID:       st.PPIDs[processID],
		Dead:       st.Dead[processID],
		Series:     []series.Detail{},
	}

	for _, metric := range seriesNames {
		if s := st.Series.Get(telemetry.MetricKey(processID, metric)); s != nil {
			detail.Series = append(detail.Series, s.Detail(metric))
		}
	}

	for _, gpuProcessID := range st.GPUProcesses[processID] {
		metric := telemetry.MetricKey(gpuProcessID, metricGPU)
		if s := st.Series.Get(telemetry.MetricKey(processID, metric)); s != nil {
			detail.Series = append(detail.Series, s.Detail(metric))
		}
	}

	return detail, nil
}

// sortByLastSmoothedCPU orders records descending by the most recent smoothed
// cpu value. The stable sort keeps insertion order on ties.
func sortByLastSmoothedCPU(records []*ProcessSummary) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CPU.LastSmoothed() > records[j].CPU.LastSmoothed()
	})
}
