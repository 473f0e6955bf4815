package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiBToBytes(t *testing.T) {
	tests := []struct {
		name string
		gib  float64
		want uint64
	}{
		{"truncated", 14.91, 16009490595},
		{"whole", 1, 1073741824},
		{"zero", 0, 0},
		{"negative", -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GiBToBytes(tt.gib))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 25.13, Round2(25.125001))
	assert.Equal(t, 0.0, Round2(0.001))
}

func TestSampleRecordFields(t *testing.T) {
	b, err := json.Marshal(&SampleRecord{})
	require.NoError(t, err)

	got := map[string]map[string]any{}
	raw := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(b, &raw))

	for _, key := range []string{"cpu", "ram", "swap", "load", "disk", "network", "connections"} {
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(raw[key], &m), key)
		got[key] = m
	}

	assert.Contains(t, got["cpu"], "usage")
	assert.Contains(t, got["network"], "totalUp")
	assert.Contains(t, got["network"], "totalDown")
	assert.Contains(t, got["load"], "load15")
	assert.Contains(t, got["connections"], "udp")
	assert.Contains(t, raw, "uptime")
	assert.Contains(t, raw, "process")
	assert.Contains(t, raw, "message")
}

func TestInventoryRecordFields(t *testing.T) {
	b, err := json.Marshal(&InventoryRecord{})
	require.NoError(t, err)

	raw := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(b, &raw))

	want := []string{
		"arch", "cpu_cores", "cpu_name", "disk_total", "gpu_name", "ipv4", "ipv6",
		"mem_total", "os", "kernel_version", "swap_total", "version", "virtualization",
	}

	assert.Len(t, raw, len(want))

	for _, key := range want {
		assert.Contains(t, raw, key)
	}
}
