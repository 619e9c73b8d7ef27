package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	key, ok := ParseKey("process.1234.cpu")
	require.True(t, ok)
	assert.Equal(t, "process", key.Type)
	assert.Equal(t, "process.1234", key.ProcessID)
	assert.Equal(t, "cpu", key.Suffix)
	assert.Equal(t, "process.1234.cpu", key.Raw)
}

func TestParseKeyForeignType(t *testing.T) {
	key, ok := ParseKey("disk.sda.io")
	require.True(t, ok)
	assert.NotEqual(t, TypeProcess, key.Type)
}

func TestParseKeyMalformed(t *testing.T) {
	_, ok := ParseKey("cpu")
	assert.False(t, ok)

	_, ok = ParseKey("")
	assert.False(t, ok)
}

func TestParseKeyGPU(t *testing.T) {
	key, ok := ParseKey("process.123.gpu.0.mem")
	require.True(t, ok)
	assert.Equal(t, "process.123.gpu.0", key.ProcessID)
	assert.Equal(t, "mem", key.Suffix)

	processID, gpuProcessID, ok := key.GPU()
	require.True(t, ok)
	assert.Equal(t, "process.123", processID)
	assert.Equal(t, "gpu.0", gpuProcessID)
}

func TestGPUNotApplicable(t *testing.T) {
	key, ok := ParseKey("process.123.cpu")
	require.True(t, ok)

	_, _, gpu := key.GPU()
	assert.False(t, gpu)
}

func TestMetricKey(t *testing.T) {
	assert.Equal(t, "process.123.cpu", MetricKey("process.123", "cpu"))
	assert.Equal(t, "process.123.gpu.0.mem", MetricKey("process.123", MetricKey("gpu.0", "mem")))
}
