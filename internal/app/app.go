package app

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	runtime "github.com/banzaicloud/logrus-runtime-formatter"
	logrusrv2 "github.com/bombsimon/logrusr/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

// App holds attributes for the agent application
type App struct {
	// Kind is the application kind, agent or collect.
	Kind model.AppKind
	// Agent configuration.
	Config *Configuration
	// TermCh is the channel to terminate the app based on a signal
	TermCh chan os.Signal
	// Logger is the app logger
	Logger *logrus.Logger

	v       *viper.Viper
	logFile io.Closer
}

// New returns a new instance of the agent app
//
// logLevel overrides the configured log level when set.
func New(appKind model.AppKind, cfgFile, logLevel string) (*App, error) {
	app := &App{
		Kind:   appKind,
		Config: &Configuration{},
		Logger: logrus.New(),
		TermCh: make(chan os.Signal, 1),
		v:      viper.New(),
	}

	if err := app.LoadConfiguration(cfgFile); err != nil {
		return nil, err
	}

	if logLevel != "" {
		app.Config.Log.Level = logLevel
	}

	app.setupLogger()

	// register for SIGINT, SIGTERM
	signal.Notify(app.TermCh, syscall.SIGINT, syscall.SIGTERM)

	return app, nil
}

func (a *App) setupLogger() {
	level, err := logrus.ParseLevel(a.Config.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	a.Logger.SetLevel(level)

	a.Logger.SetFormatter(
		&runtime.Formatter{ChildFormatter: &logrus.JSONFormatter{}},
	)

	if a.Config.Log.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   a.Config.Log.File,
			MaxSize:    a.Config.Log.MaxSizeMB,
			MaxBackups: a.Config.Log.MaxBackups,
		}

		a.logFile = rotated
		a.Logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}

	if level != logrus.InfoLevel {
		a.Logger.WithField("level", level.String()).Info("log level set")
	}

	// otel reports its internal errors through logr
	otel.SetLogger(logrusrv2.New(a.Logger))
}

// Close releases the log file and the signal registration.
func (a *App) Close() error {
	signal.Stop(a.TermCh)

	if a.logFile != nil {
		return a.logFile.Close()
	}

	return nil
}
