package model

import "math"

const (
	// placeholders for inventory fields the router does not report.
	UnknownGPU            = "Unknown"
	UnknownCPU            = "Unknown"
	NoVirtualization      = "None"
	FallbackIPv4          = "127.0.0.1"
	DeviceOSName          = "iKuai"
	bytesPerGiB   float64 = 1024 * 1024 * 1024
)

// InventoryRecord is the slowly changing device description uploaded to the
// monitoring endpoint basic info API.
//
// The field set is fixed by the endpoint schema, byte valued fields are zero
// when the source is unavailable.
type InventoryRecord struct {
	Arch           string `json:"arch"`
	CPUCores       int    `json:"cpu_cores"`
	CPUName        string `json:"cpu_name"`
	DiskTotal      uint64 `json:"disk_total"`
	GPUName        string `json:"gpu_name"`
	IPv4           string `json:"ipv4"`
	IPv6           string `json:"ipv6"`
	MemTotal       uint64 `json:"mem_total"`
	OS             string `json:"os"`
	KernelVersion  string `json:"kernel_version"`
	SwapTotal      uint64 `json:"swap_total"`
	Version        string `json:"version"`
	Virtualization string `json:"virtualization"`
}

// SampleRecord is a point in time metrics sample streamed to the monitoring endpoint.
//
// Every field is always serialized, unavailable sources leave the zero value in place.
type SampleRecord struct {
	CPU         CPUSample        `json:"cpu"`
	RAM         UsageSample      `json:"ram"`
	Swap        UsageSample      `json:"swap"`
	Load        LoadSample       `json:"load"`
	Disk        UsageSample      `json:"disk"`
	Network     NetworkSample    `json:"network"`
	Connections ConnectionSample `json:"connections"`
	Uptime      uint64           `json:"uptime"`
	Process     int              `json:"process"`
	Message     string           `json:"message"`
}

type CPUSample struct {
	// Usage is a percentage in the range 0-100, rounded to two decimals.
	Usage float64 `json:"usage"`
}

type UsageSample struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
}

type LoadSample struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

type NetworkSample struct {
	// Up, Down are byte rates per second.
	Up   uint64 `json:"up"`
	Down uint64 `json:"down"`
	// TotalUp, TotalDown are cumulative byte counters.
	TotalUp   uint64 `json:"totalUp"`
	TotalDown uint64 `json:"totalDown"`
}

type ConnectionSample struct {
	TCP int `json:"tcp"`
	UDP int `json:"udp"`
}

// Round2 rounds f to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// GiB returns the byte count as gibibytes.
func GiB(b uint64) float64 {
	return float64(b) / bytesPerGiB
}

// GiBToBytes converts a gibibyte value into a whole byte count, truncating any fraction.
func GiBToBytes(gib float64) uint64 {
	if gib <= 0 {
		return 0
	}

	return uint64(gib * bytesPerGiB)
}
