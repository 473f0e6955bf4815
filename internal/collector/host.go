package collector

import (
	"context"
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

var ErrHostMetric = errors.New("host metric error")

// gopsutilHost implements HostSampler with gopsutil.
type gopsutilHost struct {
	resolver *net.Resolver
}

// NewHostSampler returns a HostSampler reading the local host.
func NewHostSampler() HostSampler {
	return &gopsutilHost{resolver: net.DefaultResolver}
}

func (h *gopsutilHost) CPUPercent(ctx context.Context) (float64, error) {
	// interval 0 compares against the previous call and does not block the tick.
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, errors.Wrap(ErrHostMetric, "cpu percent: "+err.Error())
	}

	if len(pct) == 0 {
		return 0, errors.Wrap(ErrHostMetric, "cpu percent: no values")
	}

	return pct[0], nil
}

func (h *gopsutilHost) CPUInfo(ctx context.Context) (string, int, error) {
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return "", 0, errors.Wrap(ErrHostMetric, "cpu counts: "+err.Error())
	}

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		return "", cores, nil
	}

	return infos[0].ModelName, cores, nil
}

func (h *gopsutilHost) Uptime(ctx context.Context) (uint64, error) {
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, errors.Wrap(ErrHostMetric, "uptime: "+err.Error())
	}

	return up, nil
}

func (h *gopsutilHost) ProcessCount(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, errors.Wrap(ErrHostMetric, "pids: "+err.Error())
	}

	return len(pids), nil
}

func (h *gopsutilHost) Platform(ctx context.Context) (string, string, error) {
	// gopsutil reads the arch from uname, there is no context variant.
	arch, err := host.KernelArch()
	if err != nil {
		return "", "", errors.Wrap(ErrHostMetric, "kernel arch: "+err.Error())
	}

	kernel, err := host.KernelVersionWithContext(ctx)
	if err != nil {
		return arch, "", errors.Wrap(ErrHostMetric, "kernel version: "+err.Error())
	}

	return arch, kernel, nil
}

func (h *gopsutilHost) IPv4(ctx context.Context) (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", errors.Wrap(ErrHostMetric, "hostname: "+err.Error())
	}

	addrs, err := h.resolver.LookupIP(ctx, "ip4", name)
	if err != nil {
		return "", errors.Wrap(ErrHostMetric, "lookup "+name+": "+err.Error())
	}

	if len(addrs) == 0 {
		return "", errors.Wrap(ErrHostMetric, "lookup "+name+": no addresses")
	}

	return addrs[0].String(), nil
}
