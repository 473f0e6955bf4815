package version

import (
	"runtime"
	rdebug "runtime/debug"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultAppVersion = "1.0.0"

var (
	GitCommit        string
	GitBranch        string
	GitSummary       string
	BuildDate        string
	AppVersion       string
	GoVersion        = runtime.Version()
	WebsocketVersion = depVersion("gorilla/websocket")
	GopsutilVersion  = depVersion("shirou/gopsutil")
)

type Version struct {
	GitCommit        string `json:"git_commit"`
	GitBranch        string `json:"git_branch"`
	GitSummary       string `json:"git_summary"`
	BuildDate        string `json:"build_date"`
	AppVersion       string `json:"app_version"`
	GoVersion        string `json:"go_version"`
	WebsocketVersion string `json:"websocket_version"`
	GopsutilVersion  string `json:"gopsutil_version"`
}

func Current() Version {
	return Version{
		GitBranch:        GitBranch,
		GitCommit:        GitCommit,
		GitSummary:       GitSummary,
		BuildDate:        BuildDate,
		AppVersion:       AppVersion,
		GoVersion:        GoVersion,
		WebsocketVersion: WebsocketVersion,
		GopsutilVersion:  GopsutilVersion,
	}
}

// Tag returns the agent version string reported in the inventory record.
func Tag() string {
	v := AppVersion
	if v == "" {
		v = defaultAppVersion
	}

	return "ikuai-agent-" + strings.TrimPrefix(v, "v")
}

func ExportBuildInfoMetric() {
	buildInfo := promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ikuai_agent_build_info",
			Help: "A metric with a constant '1' value, labeled by branch, commit, summary, builddate, version, Go version from which the agent was built.",
		},
		[]string{"branch", "commit", "summary", "builddate", "version", "goversion"},
	)

	buildInfo.WithLabelValues(GitBranch, GitCommit, GitSummary, BuildDate, AppVersion, GoVersion).Set(1)
}

func depVersion(match string) string {
	buildInfo, ok := rdebug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, d := range buildInfo.Deps {
		if strings.Contains(d.Path, match) {
			return d.Version
		}
	}

	return ""
}
