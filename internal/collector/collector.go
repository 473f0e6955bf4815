package collector

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/ikuai"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/metrics"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

// sources a record field can be populated from.
const (
	SourceSysstat   = "sysstat"
	SourceHomepage  = "homepage"
	SourceHardware  = "hardwareinfo"
	SourceInterface = "monitor_iface"
	SourceDisk      = "disk_mgmt"
	SourceHeuristic = "heuristic"
	SourceHost      = "host"
	SourceNone      = "none"

	// per interface stream rates are summed over a three second window.
	ifaceStreamWindow = 3
)

// Collector builds inventory and sample records from the device with host fallbacks.
//
// Every field is resolved through a fixed source order, the first source that
// yields a value wins. A failing source is recorded and the next one is tried.
type Collector struct {
	device       DeviceQueryor
	host         HostSampler
	agentVersion string
	logger       *logrus.Entry
}

// New returns a Collector.
func New(device DeviceQueryor, host HostSampler, agentVersion string, logger *logrus.Logger) *Collector {
	return &Collector{
		device:       device,
		host:         host,
		agentVersion: agentVersion,
		logger:       logger.WithField("component", "collector"),
	}
}

// Sample returns a point in time SampleRecord.
func (c *Collector) Sample(ctx context.Context) model.SampleRecord {
	startTS := time.Now()
	snap := c.newSnapshot()

	rec := model.SampleRecord{}
	rec.CPU.Usage = snap.cpuUsage(ctx)
	rec.RAM.Total, rec.RAM.Used = snap.memory(ctx)
	rec.Load = snap.load(ctx)
	rec.Disk.Total, rec.Disk.Used = snap.disk(ctx)
	rec.Network, rec.Connections.TCP = snap.network(ctx)
	rec.Uptime = snap.uptime(ctx)
	rec.Process = snap.processCount(ctx)
	rec.Message = fmt.Sprintf(
		"%s - CPU: %.1f%%, RAM: %.1fGB, connections: %d",
		model.DeviceOSName,
		rec.CPU.Usage,
		model.GiB(rec.RAM.Used),
		rec.Connections.TCP,
	)

	snap.finish("sample")
	metrics.SampleRunTimeSummary.WithLabelValues("sample").Observe(time.Since(startTS).Seconds())

	return rec
}

// Inventory returns the InventoryRecord.
func (c *Collector) Inventory(ctx context.Context) model.InventoryRecord {
	startTS := time.Now()
	snap := c.newSnapshot()

	rec := model.InventoryRecord{
		GPUName:        model.UnknownGPU,
		IPv6:           "",
		SwapTotal:      0,
		Version:        c.agentVersion,
		Virtualization: model.NoVirtualization,
	}

	rec.Arch, rec.KernelVersion = snap.platform(ctx)
	rec.CPUName, rec.CPUCores = snap.cpuInfo(ctx)
	rec.DiskTotal, _ = snap.disk(ctx)
	rec.MemTotal, _ = snap.memory(ctx)
	rec.IPv4 = snap.publicIPv4(ctx)
	rec.OS = snap.osName(ctx)

	snap.finish("inventory")
	metrics.SampleRunTimeSummary.WithLabelValues("inventory").Observe(time.Since(startTS).Seconds())

	return rec
}

// lazy caches the first result of a source for the lifetime of a snapshot.
type lazy[T any] struct {
	loaded bool
	value  *T
	err    error
}

func (l *lazy[T]) get(ctx context.Context, name string, s *snapshot, fn func(context.Context) (*T, error)) *T {
	if !l.loaded {
		l.loaded = true
		l.value, l.err = fn(ctx)

		if l.err != nil {
			s.errs = multierror.Append(s.errs, fmt.Errorf("%s: %w", name, l.err))
		}
	}

	return l.value
}

// snapshot queries each device source at most once per record.
type snapshot struct {
	c        *Collector
	hardware lazy[ikuai.HardwareInfo]
	sysstat  lazy[ikuai.SystemStats]
	homepage lazy[ikuai.HomepageStats]
	iface    lazy[ikuai.InterfaceInfo]
	diskMgmt lazy[ikuai.DiskUsage]
	errs     *multierror.Error
	sources  logrus.Fields
}

func (c *Collector) newSnapshot() *snapshot {
	return &snapshot{c: c, sources: logrus.Fields{}}
}

func (s *snapshot) hw(ctx context.Context) *ikuai.HardwareInfo {
	return s.hardware.get(ctx, SourceHardware, s, s.c.device.HardwareInfo)
}

func (s *snapshot) sys(ctx context.Context) *ikuai.SystemStats {
	return s.sysstat.get(ctx, SourceSysstat, s, s.c.device.SystemStats)
}

func (s *snapshot) home(ctx context.Context) *ikuai.HomepageStats {
	return s.homepage.get(ctx, SourceHomepage, s, s.c.device.HomepageStats)
}

func (s *snapshot) ifaces(ctx context.Context) *ikuai.InterfaceInfo {
	return s.iface.get(ctx, SourceInterface, s, s.c.device.InterfaceInfo)
}

func (s *snapshot) disks(ctx context.Context) *ikuai.DiskUsage {
	return s.diskMgmt.get(ctx, SourceDisk, s, s.c.device.DiskUsage)
}

func (s *snapshot) hostErr(name string, err error) {
	s.errs = multierror.Append(s.errs, fmt.Errorf("%s %s: %w", SourceHost, name, err))
}

func (s *snapshot) used(field, source string) {
	s.sources[field] = source
	metrics.FieldSourceCounter.WithLabelValues(field, source).Inc()
}

func (s *snapshot) finish(kind string) {
	le := s.c.logger.WithField("record", kind).WithFields(s.sources)

	if err := s.errs.ErrorOrNil(); err != nil {
		le.WithError(err).Debug("record built with unavailable sources")
		return
	}

	le.Trace("record built")
}

// deviceCPU averages the per core usage reported by sysstat, then homepage.
func (s *snapshot) deviceCPU(ctx context.Context) (float64, string, bool) {
	if st := s.sys(ctx); st != nil {
		if avg, ok := averagePercent(st.CPU); ok {
			return avg, SourceSysstat, true
		}
	}

	if hp := s.home(ctx); hp != nil {
		if avg, ok := averagePercent(hp.CPU); ok {
			return avg, SourceHomepage, true
		}
	}

	return 0, SourceNone, false
}

func (s *snapshot) cpuUsage(ctx context.Context) float64 {
	if avg, source, ok := s.deviceCPU(ctx); ok {
		s.used("cpu", source)
		return model.Round2(clampPercent(avg))
	}

	pct, err := s.c.host.CPUPercent(ctx)
	if err != nil {
		s.hostErr("cpu", err)
		s.used("cpu", SourceNone)

		return 0
	}

	s.used("cpu", SourceHost)

	return model.Round2(clampPercent(pct))
}

// memory returns total and used bytes.
func (s *snapshot) memory(ctx context.Context) (total, used uint64) {
	if st := s.sys(ctx); st != nil && st.Memory != nil && st.Memory.TotalKB > 0 {
		total = st.Memory.TotalKB * 1024
		if pct, ok := parsePercent(st.Memory.Used); ok {
			used = uint64(math.Round(float64(total) * clampPercent(pct) / 100))
		}

		s.used("memory", SourceSysstat)

		return total, used
	}

	if hw := s.hw(ctx); hw != nil && hw.MemoryMB > 0 {
		s.used("memory", SourceHardware)
		return hw.MemoryMB * 1024 * 1024, 0
	}

	s.used("memory", SourceNone)

	return 0, 0
}

// wanStream picks the first interface stream with a public address, then the first named wan*.
func wanStream(streams []ikuai.Interface) (ikuai.Interface, bool) {
	idx := slices.IndexFunc(streams, func(i ikuai.Interface) bool {
		return isPublicAddress(i.IPAddr)
	})

	if idx < 0 {
		idx = slices.IndexFunc(streams, func(i ikuai.Interface) bool {
			return strings.HasPrefix(strings.ToLower(i.Name), "wan")
		})
	}

	if idx < 0 {
		return ikuai.Interface{}, false
	}

	return streams[idx], true
}

func toNetwork(st ikuai.StreamStats, window uint64) model.NetworkSample {
	return model.NetworkSample{
		Up:        st.Upload / window,
		Down:      st.Download / window,
		TotalUp:   st.TotalUp,
		TotalDown: st.TotalDown,
	}
}

// network returns the traffic sample and connection count.
func (s *snapshot) network(ctx context.Context) (model.NetworkSample, int) {
	if info := s.ifaces(ctx); info != nil {
		if wan, ok := wanStream(info.Streams); ok {
			s.used("network", SourceInterface)
			return toNetwork(wan.Stream, ifaceStreamWindow), wan.Stream.ConnectNum
		}
	}

	if hp := s.home(ctx); hp != nil && hp.Stream != nil {
		s.used("network", SourceHomepage)
		return toNetwork(*hp.Stream, 1), hp.Stream.ConnectNum
	}

	if st := s.sys(ctx); st != nil && st.Stream != nil {
		s.used("network", SourceSysstat)
		return toNetwork(*st.Stream, 1), st.Stream.ConnectNum
	}

	s.used("network", SourceNone)

	return model.NetworkSample{}, 0
}

// disk returns total and used bytes.
func (s *snapshot) disk(ctx context.Context) (total, used uint64) {
	if du := s.disks(ctx); du != nil {
		s.used("disk", SourceDisk)
		return du.Total, du.Used
	}

	if hw := s.hw(ctx); hw != nil {
		if capacity := parseDiskCapacity(hw.HDD); capacity > 0 {
			s.used("disk", SourceHardware)
			return capacity, 0
		}
	}

	s.used("disk", SourceNone)

	return 0, 0
}

func (s *snapshot) load(ctx context.Context) model.LoadSample {
	if hp := s.home(ctx); hp != nil && hp.Load != nil {
		s.used("load", SourceHomepage)

		return model.LoadSample{
			Load1:  hp.Load.Load1,
			Load5:  hp.Load.Load5,
			Load15: hp.Load.Load15,
		}
	}

	if avg, _, ok := s.deviceCPU(ctx); ok {
		s.used("load", SourceHeuristic)

		l := clampPercent(avg) / 100

		return model.LoadSample{
			Load1:  model.Round2(l),
			Load5:  model.Round2(l * 0.8),
			Load15: model.Round2(l * 0.6),
		}
	}

	s.used("load", SourceNone)

	return model.LoadSample{}
}

func (s *snapshot) uptime(ctx context.Context) uint64 {
	if hp := s.home(ctx); hp != nil && hp.HasUptime {
		s.used("uptime", SourceHomepage)
		return hp.Uptime
	}

	up, err := s.c.host.Uptime(ctx)
	if err != nil {
		s.hostErr("uptime", err)
		s.used("uptime", SourceNone)

		return 0
	}

	s.used("uptime", SourceHost)

	return up
}

func (s *snapshot) processCount(ctx context.Context) int {
	n, err := s.c.host.ProcessCount(ctx)
	if err != nil {
		s.hostErr("process", err)
		return 0
	}

	return n
}

func (s *snapshot) platform(ctx context.Context) (arch, kernel string) {
	arch, kernel, err := s.c.host.Platform(ctx)
	if err != nil {
		s.hostErr("platform", err)
	}

	if arch == "" {
		arch = runtime.GOARCH
	}

	return arch, kernel
}

// cpuInfo returns the cpu name and core count, from the device first then the host.
func (s *snapshot) cpuInfo(ctx context.Context) (name string, cores int) {
	if hw := s.hw(ctx); hw != nil {
		name, cores = hw.CPUModel, hw.CPUCores
	}

	if name == "" || cores <= 0 {
		hostName, hostCores, err := s.c.host.CPUInfo(ctx)
		if err != nil {
			s.hostErr("cpuinfo", err)
		}

		if name == "" {
			name = hostName
		}

		if cores <= 0 {
			cores = hostCores
		}
	}

	if name == "" {
		name = model.UnknownCPU
	}

	if cores < 0 {
		cores = 0
	}

	return name, cores
}

func (s *snapshot) publicIPv4(ctx context.Context) string {
	if info := s.ifaces(ctx); info != nil {
		for _, list := range [][]ikuai.Interface{info.Checks, info.Streams} {
			idx := slices.IndexFunc(list, func(i ikuai.Interface) bool {
				return isPublicIPv4(i.IPAddr)
			})

			if idx >= 0 {
				s.used("ipv4", SourceInterface)
				return addressOnly(list[idx].IPAddr)
			}
		}
	}

	ip, err := s.c.host.IPv4(ctx)
	if err == nil && ip != "" {
		s.used("ipv4", SourceHost)
		return ip
	}

	if err != nil {
		s.hostErr("ipv4", err)
	}

	s.used("ipv4", SourceNone)

	return model.FallbackIPv4
}

func (s *snapshot) osName(ctx context.Context) string {
	if st := s.sys(ctx); st != nil && st.VerString != "" {
		return fmt.Sprintf("%s (%s)", model.DeviceOSName, st.VerString)
	}

	return model.DeviceOSName
}

func addressOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}

	return addr
}
