package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDiskCapacity(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		// floor(14.91 * 1024^3)
		{"ATA SanDisk SDSA6MM- 006 (14.91GB)", 16009490595},
		{"QEMU HARDDISK (8GB)", 8 * 1024 * 1024 * 1024},
		{"ATA SanDisk (14.91 GB)", 0},
		{"ATA SanDisk 120GB", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDiskCapacity(tt.in))
		})
	}
}

func TestAveragePercent(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		want   float64
		wantOK bool
	}{
		{"percent strings", []string{"10%", "20%", "30.5%", "40%"}, 25.125, true},
		{"bare numbers", []string{"50", "25"}, 37.5, true},
		{"unparseable entries skipped", []string{"n/a", "80%", "-1%"}, 80, true},
		{"empty", nil, 0, false},
		{"nothing parseable", []string{"%", "x"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := averagePercent(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestIsPublicAddress(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"203.0.113.7", true},
		{"8.8.8.8/24", true},
		{"2606:4700::1111", true},
		{"192.168.1.1", false},
		{"10.0.0.1", false},
		{"172.16.5.4", false},
		{"100.64.1.1", false},
		{"127.0.0.1", false},
		{"169.254.1.1", false},
		{"0.0.0.0", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"", false},
		{"not-an-ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublicAddress(tt.in))
		})
	}
}

func TestIsPublicIPv4(t *testing.T) {
	assert.True(t, isPublicIPv4("203.0.113.7/24"))
	assert.False(t, isPublicIPv4("2606:4700::1111"))
	assert.False(t, isPublicIPv4("192.168.1.1"))
}
