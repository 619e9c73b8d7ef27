package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/telemetry"
)

func newTestAnalysis() *Analysis {
	return newAnalysis(NewState(100), zap.NewNop())
}

func payload(values ...interface{}) telemetry.SamplePayload {
	steps := make([]float64, len(values))
	for i := range steps {
		steps[i] = float64(i)
	}
	return telemetry.SamplePayload{Step: steps, Value: values}
}

func floatsPayload(values ...float64) telemetry.SamplePayload {
	boxed := make([]interface{}, len(values))
	for i, v := range values {
		boxed[i] = v
	}
	return payload(boxed...)
}

// trackProcess ingests identity attributes plus cpu/rss series for one
// process id.
func trackProcess(a *Analysis, id string, cpu, rss []float64) {
	a.Track(telemetry.Batch{
		id + ".name": payload("proc-" + id),
		id + ".pid":  payload(42.0),
		id + ".cpu":  floatsPayload(cpu...),
		id + ".rss":  floatsPayload(rss...),
	})
}

func TestFirstWriteWinsName(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{"process.1.name": payload("alpha")})
	a.Track(telemetry.Batch{"process.1.name": payload("beta")})

	assert.Equal(t, "alpha", a.State().Names["process.1"])
}

func TestFirstWriteWinsOtherAttributes(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{
		"process.1.exe":         payload("/bin/a"),
		"process.1.cmdline":     payload("a --flag"),
		"process.1.create_time": payload(100.0),
		"process.1.pid":         payload(10.0),
		"process.1.ppids":       payload(1.0),
	})
	a.Track(telemetry.Batch{
		"process.1.exe":         payload("/bin/b"),
		"process.1.cmdline":     payload("b"),
		"process.1.create_time": payload(200.0),
		"process.1.pid":         payload(20.0),
		"process.1.ppids":       payload(2.0),
	})

	st := a.State()
	assert.Equal(t, "/bin/a", st.Exes["process.1"])
	assert.Equal(t, "a --flag", st.Cmdlines["process.1"])
	assert.Equal(t, 100.0, st.CreateTimes["process.1"])
	assert.Equal(t, 10.0, st.PIDs["process.1"])
	assert.Equal(t, 1.0, st.PPIDs["process.1"])
}

func TestAttributesNotForwardedToSeries(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{
		"process.1.name": payload("alpha"),
		"process.1.cpu":  floatsPayload(5),
	})

	assert.Nil(t, a.State().Series.Get("process.1.name"))
	assert.NotNil(t, a.State().Series.Get("process.1.cpu"))
}

func TestDeadIsMonotone(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{"process.1.dead": payload(false)})
	assert.False(t, a.State().Dead["process.1"])

	// A later dead observation sticks...
	a.Track(telemetry.Batch{"process.1.dead": payload(true)})
	assert.True(t, a.State().Dead["process.1"])

	// ...and an alive observation cannot resurrect the process.
	a.Track(telemetry.Batch{"process.1.dead": payload(false)})
	assert.True(t, a.State().Dead["process.1"])
}

func TestDeadExcludedFromLiveTable(t *testing.T) {
	a := newTestAnalysis()

	trackProcess(a, "process.1", []float64{50, 50}, []float64{1e6, 1e6})
	a.Track(telemetry.Batch{"process.1.dead": payload(true)})

	records, summary := a.LiveTable()
	assert.Empty(t, records)
	assert.Empty(t, summary)
}

func TestZeroCPUPartition(t *testing.T) {
	a := newTestAnalysis()

	trackProcess(a, "process.idle", []float64{0, 0, 0}, []float64{1e6, 1e6, 1e6})
	trackProcess(a, "process.busy", []float64{40, 40, 40}, []float64{2e6, 2e6, 2e6})

	records, _ := a.LiveTable()
	require.Len(t, records, 1)
	assert.Equal(t, "process.busy", records[0].ProcessID)

	zero := a.ZeroActivity()
	require.Len(t, zero, 1)
	assert.Equal(t, "process.idle", zero[0].ProcessID)
	assert.True(t, zero[0].IsZeroCPU)
}

func TestZeroCPUCacheIsRebuiltWholesale(t *testing.T) {
	a := newTestAnalysis()

	trackProcess(a, "process.1", []float64{0, 0}, []float64{1e6, 1e6})
	a.LiveTable()
	require.Contains(t, a.State().ZeroCPU, "process.1")

	// The process becomes busy enough to push its mean over the threshold;
	// the next live-table rebuild must drop the stale cache entry.
	a.Track(telemetry.Batch{"process.1.cpu": floatsPayload(80, 80, 80, 80)})
	records, _ := a.LiveTable()

	require.Len(t, records, 1)
	assert.NotContains(t, a.State().ZeroCPU, "process.1")
	assert.Empty(t, a.ZeroActivity())
}

func TestCompletenessFilter(t *testing.T) {
	a := newTestAnalysis()

	// rss only: no cpu series was ever ingested.
	a.Track(telemetry.Batch{
		"process.1.name": payload("partial"),
		"process.1.rss":  floatsPayload(1e6),
	})

	records, summary := a.LiveTable()
	assert.Empty(t, records)
	assert.Empty(t, summary)
	assert.Empty(t, a.ZeroActivity())
}

func TestRankingOrder(t *testing.T) {
	a := newTestAnalysis()

	trackProcess(a, "process.p2", []float64{2, 2, 2}, []float64{1e6})
	trackProcess(a, "process.p1", []float64{5, 5, 5}, []float64{1e6})

	a.Track(telemetry.Batch{"process.p2.rss": floatsPayload(1e6)})

	records, _ := a.LiveTable()
	require.Len(t, records, 2)
	assert.Equal(t, "process.p1", records[0].ProcessID)
	assert.Equal(t, "process.p2", records[1].ProcessID)
}

func TestTopFiveSummaryBound(t *testing.T) {
	a := newTestAnalysis()

	for i := 1; i <= 8; i++ {
		id := fmt.Sprintf("process.%d", i)
		trackProcess(a, id, []float64{float64(i * 10)}, []float64{1e6})
	}

	records, summary := a.LiveTable()
	require.Len(t, records, 8)
	require.Len(t, summary, 5)

	// Summary entries carry the process name and match the 5 highest ranked.
	for i, d := range summary {
		assert.Equal(t, records[i].Name, d.Name)
		assert.Equal(t, records[i].CPU.LastSmoothed(), d.LastSmoothed())
	}
	assert.Equal(t, "process.8", records[0].ProcessID)
}

func TestGPURegistrationIsIdempotent(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{"process.1.gpu.0.mem": floatsPayload(100)})
	a.Track(telemetry.Batch{"process.1.gpu.0.mem": floatsPayload(120)})

	assert.Equal(t, []string{"gpu.0"}, a.State().GPUProcesses["process.1"])

	// GPU samples are also kept as ordinary series.
	s := a.State().Series.Get("process.1.gpu.0.mem")
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Len())
}

func TestMalformedKeysSkipped(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{
		"cpu":             floatsPayload(1),
		"network.eth0.rx": floatsPayload(2),
	})

	assert.Empty(t, a.State().Series.Tracking)
	assert.Empty(t, a.State().Names)
}

func TestProcessDetail(t *testing.T) {
	a := newTestAnalysis()

	a.Track(telemetry.Batch{
		"process.1.name":        payload("nginx"),
		"process.1.exe":         payload("/usr/sbin/nginx"),
		"process.1.pid":         payload(314.0),
		"process.1.cpu":         floatsPayload(10, 12),
		"process.1.threads":     floatsPayload(4),
		"process.1.gpu.0.mem":   floatsPayload(200),
		"process.1.gpu.0.other": floatsPayload(1), // not a mem series, ignored in detail
	})

	detail, err := a.ProcessDetail("process.1")
	require.NoError(t, err)

	assert.Equal(t, "nginx", detail.Name)
	assert.Equal(t, "/usr/sbin/nginx", detail.Exe)
	assert.Equal(t, 314.0, detail.PID)
	assert.Zero(t, detail.CreateTime, "missing attributes default to zero values")
	assert.Empty(t, detail.Cmdline)
	assert.False(t, detail.Dead)

	names := make([]string, 0, len(detail.Series))
	for _, d := range detail.Series {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"cpu", "threads", "gpu.0.mem"}, names,
		"canonical metric order, then GPU memory series; missing metrics omitted")
}

func TestProcessDetailNotFound(t *testing.T) {
	a := newTestAnalysis()

	// Series exist but no name attribute was ever captured.
	a.Track(telemetry.Batch{"process.1.cpu": floatsPayload(5)})

	_, err := a.ProcessDetail("process.1")
	assert.ErrorIs(t, err, ErrProcessNotFound)
}
