package analysis

import (
	"sort"

	"github.com/procsight/procsight/internal/series"
)

// State is one session's aggregation state: per-process attribute maps, the
// observed GPU sub-process sets, the derived zero-cpu cache and the bounded
// series collection. It is persisted and reloaded whole; a full Set of the
// serialized state is the consistency boundary between concurrent requests.
//
// Attribute maps are write-once per process id. The liveness map is the one
// exception: it is monotone towards dead (see captureAttribute).
type State struct {
	Names        map[string]string          `json:"names"`
	Exes         map[string]string          `json:"exes"`
	Cmdlines     map[string]string          `json:"cmdlines"`
	CreateTimes  map[string]float64         `json:"create_times"`
	PIDs         map[string]float64         `json:"pids"`
	PPIDs        map[string]float64         `json:"ppids"`
	Dead         map[string]bool            `json:"dead"`
	GPUProcesses map[string][]string        `json:"gpu_processes"`
	ZeroCPU      map[string]*ProcessSummary `json:"zero_cpu_processes"`
	Series       *series.Collection         `json:"series"`
}

// NewState returns an all-empty session state whose series are capped at
// maxSamples retained samples each.
func NewState(maxSamples int) *State {
	return &State{
		Names:        make(map[string]string),
		Exes:         make(map[string]string),
		Cmdlines:     make(map[string]string),
		CreateTimes:  make(map[string]float64),
		PIDs:         make(map[string]float64),
		PPIDs:        make(map[string]float64),
		Dead:         make(map[string]bool),
		GPUProcesses: make(map[string][]string),
		ZeroCPU:      make(map[string]*ProcessSummary),
		Series:       series.NewCollection(maxSamples),
	}
}

// normalize repairs nil members after a JSON round trip so callers can index
// freely.
func (s *State) normalize() {
	if s.Names == nil {
		s.Names = make(map[string]string)
	}
	if s.Exes == nil {
		s.Exes = make(map[string]string)
	}
	if s.Cmdlines == nil {
		s.Cmdlines = make(map[string]string)
	}
	if s.CreateTimes == nil {
		s.CreateTimes = make(map[string]float64)
	}
	if s.PIDs == nil {
		s.PIDs = make(map[string]float64)
	}
	if s.PPIDs == nil {
		s.PPIDs = make(map[string]float64)
	}
	if s.Dead == nil {
		s.Dead = make(map[string]bool)
	}
	if s.GPUProcesses == nil {
		s.GPUProcesses = make(map[string][]string)
	}
	if s.ZeroCPU == nil {
		s.ZeroCPU = make(map[string]*ProcessSummary)
	}
	if s.Series == nil {
		s.Series = series.NewCollection(0)
	}
}

// registerGPUProcess records a GPU sub-process id for a process. The set
// grows monotonically and stays sorted for deterministic iteration.
func (s *State) registerGPUProcess(processID, gpuProcessID string) {
	set := s.GPUProcesses[processID]
	i := sort.SearchStrings(set, gpuProcessID)
	if i < len(set) && set[i] == gpuProcessID {
		return
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = gpuProcessID
	s.GPUProcesses[processID] = set
}
