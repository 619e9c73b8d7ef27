package telemetry

import "strings"

// TypeProcess is the analysis type prefix of composite keys handled by the
// process aggregator. Keys carrying any other prefix belong to a different
// analysis and are ignored.
const TypeProcess = "process"

const gpuMarker = "gpu"

// Key is the parsed form of a dot-delimited composite metric key.
//
// A plain key "process.1234.cpu" carries the analysis type ("process"), the
// process identifier (every segment but the last, prefix included:
// "process.1234") and the metric suffix ("cpu"). GPU memory keys such as
// "process.1234.gpu.0.mem" are reinterpreted via GPU(): the process
// identifier narrows to the first two segments and segments three and four
// name the GPU sub-process.
type Key struct {
	Raw       string
	Type      string
	ProcessID string
	Suffix    string
}

// ParseKey splits a composite key into its structured form. Keys with fewer
// than two segments are malformed; ok is false and the key must be skipped.
func ParseKey(raw string) (Key, bool) {
	segs := strings.Split(raw, ".")
	if len(segs) < 2 {
		return Key{}, false
	}
	return Key{
		Raw:       raw,
		Type:      segs[0],
		ProcessID: strings.Join(segs[:len(segs)-1], "."),
		Suffix:    segs[len(segs)-1],
	}, true
}

// GPU reinterprets the key as a GPU sub-resource key. It applies only when
// the process identifier contains the GPU marker: the effective process
// identifier is the first two segments and the GPU sub-process identifier is
// segments three and four (clamped when fewer exist).
func (k Key) GPU() (processID, gpuProcessID string, ok bool) {
	if !strings.Contains(k.ProcessID, gpuMarker) {
		return "", "", false
	}
	segs := strings.Split(k.Raw, ".")
	if len(segs) < 3 {
		return "", "", false
	}
	end := 4
	if len(segs) < end {
		end = len(segs)
	}
	return strings.Join(segs[:2], "."), strings.Join(segs[2:end], "."), true
}

// MetricKey encodes the composite key for one of a process's metric series.
func MetricKey(processID, metric string) string {
	return processID + "." + metric
}
