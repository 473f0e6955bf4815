package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	sw "github.com/filanov/stateswitch"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/metrics"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/version"
)

const (
	pkgName = "internal/worker"

	defaultInterval          = time.Second
	defaultInventoryInterval = 5 * time.Minute
	defaultHeartbeatInterval = 30 * time.Minute
)

var (
	ErrStartup   = errors.New("worker startup error")
	ErrState     = errors.New("worker state error")
	ErrTickPanic = errors.New("tick panicked")
)

// Authenticator is the device session.
type Authenticator interface {
	Login(ctx context.Context) error
	Close() error
}

// RecordBuilder builds the records reported on each tick.
type RecordBuilder interface {
	Sample(ctx context.Context) model.SampleRecord
	Inventory(ctx context.Context) model.InventoryRecord
}

// Streamer is the live sample channel.
type Streamer interface {
	Start(ctx context.Context)
	Connected() bool
	Send(payload any) error
	Close()
}

// Uploader is the inventory channel.
type Uploader interface {
	Upload(ctx context.Context, rec *model.InventoryRecord) error
}

// Config sets the worker cadences, zero values select the defaults.
type Config struct {
	// Interval is the sample cadence.
	Interval time.Duration
	// InventoryInterval is the inventory upload cadence.
	InventoryInterval time.Duration
	// HeartbeatInterval is the liveness log cadence.
	HeartbeatInterval time.Duration
}

// Worker runs the reporting tick loop.
//
// Each tick builds a sample and sends it when the stream is connected, and
// uploads the inventory once InventoryInterval has passed since the last
// upload attempt. Ticks run sequentially on a single goroutine.
type Worker struct {
	id       uuid.UUID
	device   Authenticator
	records  RecordBuilder
	stream   Streamer
	uploader Uploader
	cfg      Config
	logger   *logrus.Entry
	now      func() time.Time
	sm       sw.StateMachine

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
	ran       bool
	cancel    context.CancelFunc
	done      chan struct{}

	stateMu sync.Mutex
	state   sw.State

	// owned by the tick loop.
	startedAt     time.Time
	lastInventory time.Time
	lastHeartbeat time.Time
	ticks         uint64
	skipped       uint64
	sent          uint64
}

// New returns a stopped Worker.
func New(device Authenticator, records RecordBuilder, stream Streamer, uploader Uploader, cfg Config, logger *logrus.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	if cfg.InventoryInterval <= 0 {
		cfg.InventoryInterval = defaultInventoryInterval
	}

	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}

	id := uuid.New()

	w := &Worker{
		id:       id,
		device:   device,
		records:  records,
		stream:   stream,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger.WithFields(logrus.Fields{"component": "worker", "runID": id.String()}),
		now:      time.Now,
		state:    StateStopped,
	}

	w.sm = newStateMachine(w)

	return w
}

// State implements the stateswitch.StateSwitch interface.
func (w *Worker) State() sw.State {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	return w.state
}

// SetState implements the stateswitch.StateSwitch interface.
func (w *Worker) SetState(state sw.State) error {
	w.stateMu.Lock()
	prev := w.state
	w.state = state
	w.stateMu.Unlock()

	w.logger.WithFields(logrus.Fields{"from": prev, "to": state}).Debug("worker state changed")

	return nil
}

// Start logs into the device, opens the stream and spawns the tick loop.
//
// A login failure aborts the start, the worker returns to stopped and ErrStartup is returned.
func (w *Worker) Start(ctx context.Context) error {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	if w.ran {
		return errors.Wrap(ErrState, "a worker runs once")
	}

	args := &transitionArgs{ctx: ctx}

	if err := w.sm.Run(TransitionTypeStart, w, args); err != nil {
		return errors.Wrap(ErrState, err.Error())
	}

	w.ran = true

	if err := w.sm.Run(TransitionTypeRun, w, args); err != nil {
		w.logger.WithError(err).Error("worker startup failed")

		if stopErr := w.stop(args); stopErr != nil {
			w.logger.WithError(stopErr).Warn("worker stop after failed startup")
		}

		return errors.Wrap(ErrStartup, err.Error())
	}

	return nil
}

// Stop cancels the tick loop, closes the stream and the device session.
func (w *Worker) Stop() error {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	if w.State() == StateStopped {
		return nil
	}

	return w.stop(&transitionArgs{ctx: context.Background()})
}

func (w *Worker) stop(args *transitionArgs) error {
	if err := w.sm.Run(TransitionTypeStop, w, args); err != nil {
		return errors.Wrap(ErrState, err.Error())
	}

	if err := w.sm.Run(TransitionTypeHalt, w, args); err != nil {
		return errors.Wrap(ErrState, err.Error())
	}

	return nil
}

// Run starts the worker and blocks until ctx is cancelled, then stops it.
func (w *Worker) Run(ctx context.Context) error {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Run")
	defer span.End()

	v := version.Current()
	w.logger.WithFields(logrus.Fields{
		"version":           v.AppVersion,
		"commit":            v.GitCommit,
		"interval":          w.cfg.Interval.String(),
		"inventoryInterval": w.cfg.InventoryInterval.String(),
	}).Info("agent worker running")

	if err := w.Start(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	<-ctx.Done()

	w.logger.Info("agent worker stopping on done context")

	return w.Stop()
}

func (w *Worker) prepare(_ sw.StateSwitch, _ sw.TransitionArgs) error {
	w.logger.Info("worker starting")

	return nil
}

func (w *Worker) connect(_ sw.StateSwitch, args sw.TransitionArgs) error {
	targs, ok := args.(*transitionArgs)
	if !ok {
		return ErrTransitionArgs
	}

	if err := w.device.Login(targs.ctx); err != nil {
		return err
	}

	// the loop context is detached from the caller, Stop cancels it.
	ctx, cancel := context.WithCancel(context.WithoutCancel(targs.ctx))
	w.cancel = cancel
	w.done = make(chan struct{})

	w.stream.Start(ctx)

	now := w.now()
	w.startedAt = now
	w.lastInventory = now
	w.lastHeartbeat = now

	go w.loop(ctx)

	w.logger.Info("worker running")

	return nil
}

func (w *Worker) disconnect(_ sw.StateSwitch, _ sw.TransitionArgs) error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}

	w.stream.Close()

	if err := w.device.Close(); err != nil {
		w.logger.WithError(err).Warn("device session close error")
	}

	return nil
}

func (w *Worker) halted(_ sw.StateSwitch, _ sw.TransitionArgs) error {
	w.logger.WithFields(logrus.Fields{
		"ticks":   w.ticks,
		"skipped": w.skipped,
		"sent":    w.sent,
	}).Info("worker stopped")

	return nil
}

// loop runs a tick immediately, then on every interval until ctx is cancelled.
func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runTick(ctx)
		}
	}
}

func (w *Worker) runTick(ctx context.Context) {
	w.ticks++

	if err := w.tick(ctx); err != nil {
		w.skipped++
		metrics.TickCounter.WithLabelValues("skipped").Inc()
		w.logger.WithError(err).Error("tick skipped")

		return
	}

	metrics.TickCounter.WithLabelValues("completed").Inc()
}

func (w *Worker) tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(ErrTickPanic, fmt.Sprintf("%v", r))
		}
	}()

	ctx, span := otel.Tracer(pkgName).Start(ctx, "tick")
	defer span.End()

	now := w.now()

	sample := w.records.Sample(ctx)
	w.pushSample(&sample)

	if now.Sub(w.lastInventory) >= w.cfg.InventoryInterval {
		// the timer resets whether or not the upload succeeds.
		w.lastInventory = now

		inventory := w.records.Inventory(ctx)
		if err := w.uploader.Upload(ctx, &inventory); err != nil {
			span.RecordError(err)
		}
	}

	if now.Sub(w.lastHeartbeat) >= w.cfg.HeartbeatInterval {
		w.lastHeartbeat = now
		w.checkin(now)
	}

	return nil
}

// pushSample sends the sample when the stream is connected, samples are never queued.
func (w *Worker) pushSample(sample *model.SampleRecord) {
	if !w.stream.Connected() {
		metrics.SampleCounter.WithLabelValues("skipped").Inc()
		return
	}

	if err := w.stream.Send(sample); err != nil {
		metrics.SampleCounter.WithLabelValues("failed").Inc()
		w.logger.WithError(err).Debug("sample send failed")

		return
	}

	w.sent++
	metrics.SampleCounter.WithLabelValues("sent").Inc()
}
