package ikuai

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// HardwareInfo is the hardwareinfo block.
type HardwareInfo struct {
	CPUModel string
	CPUCores int
	// MemoryMB is the installed memory in megabytes.
	MemoryMB uint64
	// HDD is the disk description, for example "ATA SanDisk SDSA6MM- 006 (14.91GB)".
	HDD string
}

// StreamStats is a traffic block, rates are bytes per second over the sampling window.
type StreamStats struct {
	Upload     uint64
	Download   uint64
	TotalUp    uint64
	TotalDown  uint64
	ConnectNum int
}

// MemoryStats is the sysstat memory block.
type MemoryStats struct {
	TotalKB uint64
	// Used is a percentage string, for example "42%".
	Used string
}

// SystemStats is the sysstat block.
type SystemStats struct {
	VerString string
	// CPU holds per core usage strings, for example "12.5%".
	CPU    []string
	Memory *MemoryStats
	Stream *StreamStats
}

// LoadStats is the homepage load block.
type LoadStats struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// HomepageStats is the homepage sysstat block.
type HomepageStats struct {
	CPU       []string
	Uptime    uint64
	HasUptime bool
	Stream    *StreamStats
	Load      *LoadStats
}

// Interface is an entry in the iface_check or iface_stream lists.
type Interface struct {
	Name   string
	IPAddr string
	Stream StreamStats
}

// InterfaceInfo is the monitor_iface response.
type InterfaceInfo struct {
	Checks  []Interface
	Streams []Interface
}

// DiskUsage is the byte sum across all disks and mounted partitions.
type DiskUsage struct {
	Total     uint64
	Used      uint64
	Available uint64
}

// HardwareInfo returns the hardwareinfo block.
func (c *Client) HardwareInfo(ctx context.Context) (*HardwareInfo, error) {
	hw, err := c.project(ctx, "hardwareinfo", nil, "hardwareinfo")
	if err != nil {
		return nil, err
	}

	return &HardwareInfo{
		CPUModel: hw.Get("cpumodel").String(),
		CPUCores: int(hw.Get("cpucores").Int()),
		MemoryMB: hw.Get("memory").Uint(),
		HDD:      hw.Get("hdd").String(),
	}, nil
}

// SystemStats returns the sysstat block with the version, cpu, memory and stream types.
func (c *Client) SystemStats(ctx context.Context) (*SystemStats, error) {
	params := map[string]any{"TYPE": "verinfo,cpu,memory,stream,cputemp"}

	st, err := c.project(ctx, "sysstat", params, "sysstat")
	if err != nil {
		return nil, err
	}

	stats := &SystemStats{
		VerString: st.Get("verinfo.verstring").String(),
		CPU:       stringList(st.Get("cpu")),
		Stream:    streamStats(st.Get("stream")),
	}

	if mem := st.Get("memory"); mem.IsObject() {
		stats.Memory = &MemoryStats{
			TotalKB: mem.Get("total").Uint(),
			Used:    mem.Get("used").String(),
		}
	}

	return stats, nil
}

// HomepageStats returns the homepage sysstat block.
func (c *Client) HomepageStats(ctx context.Context) (*HomepageStats, error) {
	params := map[string]any{"TYPE": "sysstat,ac_status"}

	st, err := c.project(ctx, "homepage", params, "sysstat")
	if err != nil {
		return nil, err
	}

	uptime := st.Get("uptime")

	return &HomepageStats{
		CPU:       stringList(st.Get("cpu")),
		Uptime:    uptime.Uint(),
		HasUptime: uptime.Exists() && uptime.Type != gjson.Null,
		Stream:    streamStats(st.Get("stream")),
		Load:      loadStats(st.Get("load")),
	}, nil
}

// InterfaceInfo returns the WAN check and per interface stream lists.
func (c *Client) InterfaceInfo(ctx context.Context) (*InterfaceInfo, error) {
	params := map[string]any{"TYPE": "iface_check,iface_stream"}

	data, err := c.project(ctx, "monitor_iface", params, "")
	if err != nil {
		return nil, err
	}

	checks, streams := data.Get("iface_check"), data.Get("iface_stream")
	if !checks.Exists() && !streams.Exists() {
		return nil, errors.Wrap(ErrFieldAbsent, "monitor_iface: iface_check,iface_stream")
	}

	return &InterfaceInfo{
		Checks:  interfaces(checks),
		Streams: interfaces(streams),
	}, nil
}

// DiskUsage sums the disk sizes and mounted partition usage from disk management.
func (c *Client) DiskUsage(ctx context.Context) (*DiskUsage, error) {
	params := map[string]any{"TYPE": "data"}

	disks, err := c.project(ctx, "disk_mgmt", params, "data")
	if err != nil {
		return nil, err
	}

	list := disks.Array()
	if len(list) == 0 {
		return nil, errors.Wrap(ErrFieldAbsent, "disk_mgmt: data is empty")
	}

	usage := &DiskUsage{}

	for _, disk := range list {
		usage.Total += disk.Get("size").Uint()

		for _, part := range disk.Get("partition").Array() {
			mounted := part.Get("mounted")
			if !mounted.IsObject() {
				continue
			}

			usage.Used += mounted.Get("mt_used").Uint()
			usage.Available += mounted.Get("mt_avail").Uint()
		}
	}

	return usage, nil
}

// project invokes funcName and returns the value at path within Data,
// an empty path returns Data itself.
func (c *Client) project(ctx context.Context, funcName string, params map[string]any, path string) (gjson.Result, error) {
	data, err := c.Invoke(ctx, funcName, "show", params)
	if err != nil {
		return gjson.Result{}, err
	}

	return projectData(funcName, data, path)
}

func projectData(funcName string, data json.RawMessage, path string) (gjson.Result, error) {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.Wrapf(ErrMalformedResponse, "%s: Data is not a JSON document", funcName)
	}

	root := gjson.ParseBytes(data)
	if path == "" {
		return root, nil
	}

	res := root.Get(path)
	if !res.Exists() || res.Type == gjson.Null {
		return gjson.Result{}, errors.Wrapf(ErrFieldAbsent, "%s: %s", funcName, path)
	}

	return res, nil
}

func stringList(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}

	arr := r.Array()
	out := make([]string, 0, len(arr))

	for _, v := range arr {
		out = append(out, v.String())
	}

	return out
}

func streamStats(r gjson.Result) *StreamStats {
	if !r.IsObject() {
		return nil
	}

	s := toStream(r)

	return &s
}

func toStream(r gjson.Result) StreamStats {
	return StreamStats{
		Upload:     r.Get("upload").Uint(),
		Download:   r.Get("download").Uint(),
		TotalUp:    r.Get("total_up").Uint(),
		TotalDown:  r.Get("total_down").Uint(),
		ConnectNum: int(r.Get("connect_num").Int()),
	}
}

// loadStats accepts either an object with load1, load5, load15 keys or a three element array.
func loadStats(r gjson.Result) *LoadStats {
	switch {
	case r.IsObject():
		return &LoadStats{
			Load1:  r.Get("load1").Float(),
			Load5:  r.Get("load5").Float(),
			Load15: r.Get("load15").Float(),
		}
	case r.IsArray():
		arr := r.Array()
		if len(arr) < 3 {
			return nil
		}

		return &LoadStats{Load1: arr[0].Float(), Load5: arr[1].Float(), Load15: arr[2].Float()}
	default:
		return nil
	}
}

func interfaces(r gjson.Result) []Interface {
	arr := r.Array()
	out := make([]Interface, 0, len(arr))

	for _, v := range arr {
		out = append(out, Interface{
			Name:   v.Get("interface").String(),
			IPAddr: v.Get("ip_addr").String(),
			Stream: toStream(v),
		})
	}

	return out
}
