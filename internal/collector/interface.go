package collector

import (
	"context"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/ikuai"
)

//go:generate mockgen -source interface.go -destination=../fixtures/mock.go -package=fixtures

// DeviceQueryor defines the read only device projections the collector draws from.
//
// Each method returns an error wrapping ikuai.ErrFieldAbsent when the device
// response does not carry the block.
type DeviceQueryor interface {
	HardwareInfo(ctx context.Context) (*ikuai.HardwareInfo, error)
	SystemStats(ctx context.Context) (*ikuai.SystemStats, error)
	HomepageStats(ctx context.Context) (*ikuai.HomepageStats, error)
	InterfaceInfo(ctx context.Context) (*ikuai.InterfaceInfo, error)
	DiskUsage(ctx context.Context) (*ikuai.DiskUsage, error)
}

// HostSampler defines the local host metrics used as fallback sources.
type HostSampler interface {
	// CPUPercent returns the host wide cpu usage percentage since the previous call.
	CPUPercent(ctx context.Context) (float64, error)
	// CPUInfo returns the cpu model name and the logical core count.
	CPUInfo(ctx context.Context) (name string, cores int, err error)
	// Uptime returns seconds since boot.
	Uptime(ctx context.Context) (uint64, error)
	// ProcessCount returns the number of running processes.
	ProcessCount(ctx context.Context) (int, error)
	// Platform returns the machine architecture and kernel release.
	Platform(ctx context.Context) (arch, kernel string, err error)
	// IPv4 returns the address the local hostname resolves to.
	IPv4(ctx context.Context) (string, error)
}
