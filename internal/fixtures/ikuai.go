package fixtures

import (
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/ikuai"
)

const (
	VerString = "3.7.6 x64 Build202309011200"
	HDD       = "ATA SanDisk SDSA6MM- 006 (14.91GB)"
)

// HardwareInfo returns the hardwareinfo block of a four core router with 3514MB memory.
func HardwareInfo() *ikuai.HardwareInfo {
	return &ikuai.HardwareInfo{
		CPUModel: "Intel(R) Celeron(R) J4125 CPU @ 2.00GHz",
		CPUCores: 4,
		MemoryMB: 3514,
		HDD:      HDD,
	}
}

// SystemStats returns a sysstat block averaging 25.125% cpu with 42% memory used.
func SystemStats() *ikuai.SystemStats {
	return &ikuai.SystemStats{
		VerString: VerString,
		CPU:       []string{"10%", "20%", "30.5%", "40%"},
		Memory:    &ikuai.MemoryStats{TotalKB: 3514000, Used: "42%"},
		Stream: &ikuai.StreamStats{
			Upload:     1000,
			Download:   2000,
			TotalUp:    10000,
			TotalDown:  20000,
			ConnectNum: 11,
		},
	}
}

// HomepageStats returns a homepage block without a load field.
func HomepageStats() *ikuai.HomepageStats {
	return &ikuai.HomepageStats{
		CPU:       []string{"60%", "40%"},
		Uptime:    86400,
		HasUptime: true,
		Stream: &ikuai.StreamStats{
			Upload:     500,
			Download:   700,
			TotalUp:    5000,
			TotalDown:  7000,
			ConnectNum: 22,
		},
	}
}

// InterfaceInfo returns a WAN interface behind carrier NAT on wan1 and a public address on wan2.
func InterfaceInfo() *ikuai.InterfaceInfo {
	return &ikuai.InterfaceInfo{
		Checks: []ikuai.Interface{
			{Name: "wan1", IPAddr: "100.64.10.2"},
			{Name: "wan2", IPAddr: "203.0.113.7"},
		},
		Streams: []ikuai.Interface{
			{
				Name:   "lan1",
				IPAddr: "192.168.1.1",
				Stream: ikuai.StreamStats{Upload: 90, Download: 90, TotalUp: 900, TotalDown: 900, ConnectNum: 1},
			},
			{
				Name:   "wan2",
				IPAddr: "203.0.113.7",
				Stream: ikuai.StreamStats{Upload: 3000, Download: 6000, TotalUp: 123456, TotalDown: 654321, ConnectNum: 42},
			},
		},
	}
}

// DiskUsage returns the disk management sum of a 16GB disk.
func DiskUsage() *ikuai.DiskUsage {
	return &ikuai.DiskUsage{Total: 16013942784, Used: 1073741824, Available: 14940200960}
}
