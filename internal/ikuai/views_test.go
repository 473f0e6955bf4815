package ikuai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		path    string
		want    string
		wantErr error
	}{
		{"sub object", `{"sysstat":{"uptime":10}}`, "sysstat", `{"uptime":10}`, nil},
		{"root", `{"iface_check":[]}`, "", `{"iface_check":[]}`, nil},
		{"missing key", `{"other":{}}`, "sysstat", "", ErrFieldAbsent},
		{"null key", `{"sysstat":null}`, "sysstat", "", ErrFieldAbsent},
		{"empty data", ``, "sysstat", "", ErrMalformedResponse},
		{"invalid data", `{"sysstat":`, "sysstat", "", ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := projectData("test", []byte(tt.data), tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got.Raw)
		})
	}
}

func TestHardwareInfo(t *testing.T) {
	dev := &fakeDevice{
		t:           t,
		loginResult: ResultLoginOK,
		callResults: []int{ResultCallOK},
		data:        `{"hardwareinfo":{"cpumodel":"Intel(R) Celeron(R) J4125","cpucores":4,"memory":3514,"hdd":"ATA SanDisk SDSA6MM- 006 (14.91GB)"}}`,
	}
	c := newTestClient(t, dev)

	hw, err := c.HardwareInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &HardwareInfo{
		CPUModel: "Intel(R) Celeron(R) J4125",
		CPUCores: 4,
		MemoryMB: 3514,
		HDD:      "ATA SanDisk SDSA6MM- 006 (14.91GB)",
	}, hw)
}

func TestHardwareInfoAbsent(t *testing.T) {
	dev := &fakeDevice{t: t, loginResult: ResultLoginOK, callResults: []int{ResultCallOK}, data: `{}`}
	c := newTestClient(t, dev)

	hw, err := c.HardwareInfo(context.Background())
	assert.Nil(t, hw)
	assert.ErrorIs(t, err, ErrFieldAbsent)
}

func TestSystemStats(t *testing.T) {
	dev := &fakeDevice{
		t:           t,
		loginResult: ResultLoginOK,
		callResults: []int{ResultCallOK},
		data: `{"sysstat":{
			"verinfo":{"verstring":"3.7.6 x64 Build202309011200"},
			"cpu":["10%","20%","30.5%","40%"],
			"memory":{"total":3514000,"used":"42%"},
			"stream":{"upload":100,"download":200,"total_up":1000,"total_down":2000,"connect_num":42}
		}}`,
	}
	c := newTestClient(t, dev)

	st, err := c.SystemStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3.7.6 x64 Build202309011200", st.VerString)
	assert.Equal(t, []string{"10%", "20%", "30.5%", "40%"}, st.CPU)
	assert.Equal(t, &MemoryStats{TotalKB: 3514000, Used: "42%"}, st.Memory)
	assert.Equal(t, &StreamStats{Upload: 100, Download: 200, TotalUp: 1000, TotalDown: 2000, ConnectNum: 42}, st.Stream)
	assert.Equal(t, map[string]any{"TYPE": "verinfo,cpu,memory,stream,cputemp"}, dev.lastCall["param"])
}

func TestHomepageStats(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantLoad   *LoadStats
		wantUptime bool
		wantStream bool
	}{
		{
			"load object",
			`{"sysstat":{"uptime":3600,"cpu":["5%"],"load":{"load1":0.5,"load5":0.4,"load15":0.3},"stream":{"upload":1}}}`,
			&LoadStats{Load1: 0.5, Load5: 0.4, Load15: 0.3},
			true,
			true,
		},
		{
			"load array",
			`{"sysstat":{"uptime":3600,"load":[1.5,1.25,1]}}`,
			&LoadStats{Load1: 1.5, Load5: 1.25, Load15: 1},
			true,
			false,
		},
		{
			"null uptime",
			`{"sysstat":{"uptime":null,"cpu":["5%"]}}`,
			nil,
			false,
			false,
		},
		{
			"no load, no uptime",
			`{"sysstat":{"cpu":["5%"]}}`,
			nil,
			false,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{t: t, loginResult: ResultLoginOK, callResults: []int{ResultCallOK}, data: tt.data}
			c := newTestClient(t, dev)

			hp, err := c.HomepageStats(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantLoad, hp.Load)
			assert.Equal(t, tt.wantUptime, hp.HasUptime)
			assert.Equal(t, tt.wantStream, hp.Stream != nil)
		})
	}
}

func TestInterfaceInfo(t *testing.T) {
	dev := &fakeDevice{
		t:           t,
		loginResult: ResultLoginOK,
		callResults: []int{ResultCallOK},
		data: `{
			"iface_check":[{"interface":"wan1","ip_addr":"100.64.1.2"},{"interface":"wan2","ip_addr":"203.0.113.7"}],
			"iface_stream":[{"interface":"lan1","ip_addr":"192.168.1.1","upload":30,"download":60,"total_up":10,"total_down":20,"connect_num":5}]
		}`,
	}
	c := newTestClient(t, dev)

	info, err := c.InterfaceInfo(context.Background())
	require.NoError(t, err)

	require.Len(t, info.Checks, 2)
	assert.Equal(t, "203.0.113.7", info.Checks[1].IPAddr)

	require.Len(t, info.Streams, 1)
	assert.Equal(t, Interface{
		Name:   "lan1",
		IPAddr: "192.168.1.1",
		Stream: StreamStats{Upload: 30, Download: 60, TotalUp: 10, TotalDown: 20, ConnectNum: 5},
	}, info.Streams[0])
}

func TestInterfaceInfoAbsent(t *testing.T) {
	dev := &fakeDevice{t: t, loginResult: ResultLoginOK, callResults: []int{ResultCallOK}, data: `{"other":1}`}
	c := newTestClient(t, dev)

	_, err := c.InterfaceInfo(context.Background())
	assert.ErrorIs(t, err, ErrFieldAbsent)
}

func TestDiskUsage(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *DiskUsage
		wantErr error
	}{
		{
			"sums disks and mounted partitions",
			`{"data":[
				{"size":1000,"partition":[
					{"mounted":{"mt_total":"600","mt_used":"100","mt_avail":"500"}},
					{"mounted":{}},
					{"name":"unmounted"}
				]},
				{"size":2000,"partition":[{"mounted":{"mt_total":2000,"mt_used":300,"mt_avail":1700}}]}
			]}`,
			&DiskUsage{Total: 3000, Used: 400, Available: 2200},
			nil,
		},
		{
			"empty list is absent",
			`{"data":[]}`,
			nil,
			ErrFieldAbsent,
		},
		{
			"missing data is absent",
			`{}`,
			nil,
			ErrFieldAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{t: t, loginResult: ResultLoginOK, callResults: []int{ResultCallOK}, data: tt.data}
			c := newTestClient(t, dev)

			got, err := c.DiskUsage(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
