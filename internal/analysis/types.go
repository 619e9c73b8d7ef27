package analysis

import "github.com/procsight/procsight/internal/series"

// ProcessSummary is one row of the live or zero-activity table: identity
// attributes plus the cpu/rss series details used for ranking. CPU and RSS
// stay nil until the corresponding series has been observed; rows missing
// either are excluded from ranked output.
type ProcessSummary struct {
	ProcessID string         `json:"process_id"`
	PID       float64        `json:"pid"`
	Name      string         `json:"name"`
	Dead      bool           `json:"dead"`
	IsZeroCPU bool           `json:"is_zero_cpu"`
	CPU       *series.Detail `json:"cpu,omitempty"`
	RSS       *series.Detail `json:"rss,omitempty"`
}

// ProcessDetail is the full view of a single process: every captured
// attribute and the detail of each recorded metric series, including GPU
// sub-process memory series. Metrics with no recorded series are omitted.
type ProcessDetail struct {
	ProcessID  string          `json:"process_id"`
	Name       string          `json:"name"`
	CreateTime float64         `json:"create_time"`
	Cmdline    string          `json:"cmdline"`
	Exe        string          `json:"exe"`
	PID        float64         `json:"pid"`
	PPID       float64         `json:"ppid"`
	Dead       bool            `json:"dead"`
	Series     []series.Detail `json:"series"`
}
