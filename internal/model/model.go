package model

type AppKind string

const (
	AppName = "ikuai-komari-agent"

	// EnvPrefix is prefixed to environment variables read as configuration,
	// AGENT_IKUAI_BASE_URL sets ikuai.base_url.
	EnvPrefix = "agent"

	AppKindAgent   AppKind = "agent"
	AppKindCollect AppKind = "collect"

	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"
)

// AppKinds returns the supported agent app kinds
func AppKinds() []AppKind { return []AppKind{AppKindAgent, AppKindCollect} }
