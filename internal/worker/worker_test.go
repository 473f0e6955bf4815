package worker

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	sw "github.com/filanov/stateswitch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

type mockAuthenticator struct{ mock.Mock }

func (m *mockAuthenticator) Login(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAuthenticator) Close() error {
	return m.Called().Error(0)
}

type mockRecordBuilder struct{ mock.Mock }

func (m *mockRecordBuilder) Sample(ctx context.Context) model.SampleRecord {
	return m.Called(ctx).Get(0).(model.SampleRecord)
}

func (m *mockRecordBuilder) Inventory(ctx context.Context) model.InventoryRecord {
	return m.Called(ctx).Get(0).(model.InventoryRecord)
}

type mockStreamer struct{ mock.Mock }

func (m *mockStreamer) Start(ctx context.Context) { m.Called(ctx) }

func (m *mockStreamer) Connected() bool { return m.Called().Bool(0) }

func (m *mockStreamer) Send(payload any) error { return m.Called(payload).Error(0) }

func (m *mockStreamer) Close() { m.Called() }

type mockUploader struct{ mock.Mock }

func (m *mockUploader) Upload(ctx context.Context, rec *model.InventoryRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type mocks struct {
	device   *mockAuthenticator
	records  *mockRecordBuilder
	stream   *mockStreamer
	uploader *mockUploader
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func newTestWorker(cfg Config) (*Worker, *mocks) {
	m := &mocks{
		device:   &mockAuthenticator{},
		records:  &mockRecordBuilder{},
		stream:   &mockStreamer{},
		uploader: &mockUploader{},
	}

	return New(m.device, m.records, m.stream, m.uploader, cfg, testLogger()), m
}

// fakeClock returns a clock the test advances by hand.
func fakeClock(start time.Time) (now func() time.Time, advance func(time.Duration)) {
	var mu sync.Mutex

	current := start

	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		return current
	}

	advance = func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()

		current = current.Add(d)
	}

	return now, advance
}

func TestTickCadence(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		ticks       int
		connected   bool
		uploadErr   error
		wantSends   int
		wantUploads int
	}{
		{"310 ticks at 1s push one inventory", 310, true, nil, 310, 1},
		{"299 ticks push no inventory", 299, true, nil, 299, 0},
		{"600 ticks push two inventories", 600, true, nil, 600, 2},
		{"failed upload still resets the timer", 310, true, errors.New("boom"), 310, 1},
		{"disconnected stream skips samples", 310, false, nil, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, m := newTestWorker(Config{Interval: time.Second, InventoryInterval: 5 * time.Minute})

			now, advance := fakeClock(start)
			w.now = now
			w.startedAt = start
			w.lastInventory = start
			w.lastHeartbeat = start

			m.records.On("Sample", mock.Anything).Return(model.SampleRecord{Uptime: 1})
			m.records.On("Inventory", mock.Anything).Return(model.InventoryRecord{Arch: "x86_64"})
			m.stream.On("Connected").Return(tt.connected)
			m.stream.On("Send", mock.Anything).Return(nil).Maybe()
			m.uploader.On("Upload", mock.Anything, mock.Anything).Return(tt.uploadErr).Maybe()

			for i := 0; i < tt.ticks; i++ {
				advance(time.Second)
				require.NoError(t, w.tick(context.Background()))
			}

			m.stream.AssertNumberOfCalls(t, "Send", tt.wantSends)
			m.uploader.AssertNumberOfCalls(t, "Upload", tt.wantUploads)
			m.records.AssertNumberOfCalls(t, "Inventory", tt.wantUploads)
			m.records.AssertNumberOfCalls(t, "Sample", tt.ticks)
		})
	}
}

func TestTickLiveness(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	logger, hook := test.NewNullLogger()

	m := &mocks{
		device:   &mockAuthenticator{},
		records:  &mockRecordBuilder{},
		stream:   &mockStreamer{},
		uploader: &mockUploader{},
	}

	w := New(m.device, m.records, m.stream, m.uploader, Config{
		Interval:          time.Minute,
		InventoryInterval: 24 * time.Hour,
		HeartbeatInterval: 30 * time.Minute,
	}, logger)

	now, advance := fakeClock(start)
	w.now = now
	w.startedAt = start
	w.lastInventory = start
	w.lastHeartbeat = start

	m.records.On("Sample", mock.Anything).Return(model.SampleRecord{})
	m.stream.On("Connected").Return(true)
	m.stream.On("Send", mock.Anything).Return(nil)

	alive := func() []*logrus.Entry {
		var entries []*logrus.Entry

		for _, e := range hook.AllEntries() {
			if e.Message == "agent alive" {
				entries = append(entries, e)
			}
		}

		return entries
	}

	tickFor := func(n int) {
		for i := 0; i < n; i++ {
			advance(time.Minute)
			require.NoError(t, w.tick(context.Background()))
		}
	}

	tickFor(29)
	assert.Empty(t, alive())

	tickFor(1)
	require.Len(t, alive(), 1)
	assert.Equal(t, start.Add(30*time.Minute), w.lastHeartbeat)

	entry := alive()[0]
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "30m0s", entry.Data["uptime"])
	assert.Equal(t, true, entry.Data["connected"])

	// the marker was reset, the next line is due 30 minutes later.
	tickFor(29)
	assert.Len(t, alive(), 1)

	tickFor(1)
	assert.Len(t, alive(), 2)
}

func TestTickSendsSample(t *testing.T) {
	w, m := newTestWorker(Config{})

	sample := model.SampleRecord{Uptime: 42, Message: "iKuai"}

	w.lastInventory = w.now()
	w.lastHeartbeat = w.now()

	m.records.On("Sample", mock.Anything).Return(sample).Once()
	m.stream.On("Connected").Return(true).Once()
	m.stream.On("Send", &sample).Return(nil).Once()

	require.NoError(t, w.tick(context.Background()))

	m.records.AssertExpectations(t)
	m.stream.AssertExpectations(t)
	assert.Equal(t, uint64(1), w.sent)
}

func TestTickSendFailureIsNotFatal(t *testing.T) {
	w, m := newTestWorker(Config{})

	w.lastInventory = w.now()
	w.lastHeartbeat = w.now()

	m.records.On("Sample", mock.Anything).Return(model.SampleRecord{})
	m.stream.On("Connected").Return(true)
	m.stream.On("Send", mock.Anything).Return(errors.New("broken pipe"))

	require.NoError(t, w.tick(context.Background()))
	assert.Equal(t, uint64(0), w.sent)
}

func TestTickRecoversPanic(t *testing.T) {
	w, m := newTestWorker(Config{})

	m.records.On("Sample", mock.Anything).Run(func(mock.Arguments) {
		panic("sampler exploded")
	}).Return(model.SampleRecord{})

	err := w.tick(context.Background())
	assert.ErrorIs(t, err, ErrTickPanic)

	// runTick counts the failed tick as skipped.
	w.runTick(context.Background())
	assert.Equal(t, uint64(1), w.ticks)
	assert.Equal(t, uint64(1), w.skipped)
}

func TestStartStop(t *testing.T) {
	w, m := newTestWorker(Config{Interval: 10 * time.Millisecond})

	m.device.On("Login", mock.Anything).Return(nil).Once()
	m.device.On("Close").Return(nil).Once()
	m.stream.On("Start", mock.Anything).Return().Once()
	m.stream.On("Close").Return().Once()
	m.stream.On("Connected").Return(true)
	m.stream.On("Send", mock.Anything).Return(nil)
	sampled := make(chan struct{}, 1)
	m.records.On("Sample", mock.Anything).Run(func(mock.Arguments) {
		select {
		case sampled <- struct{}{}:
		default:
		}
	}).Return(model.SampleRecord{})

	assert.Equal(t, StateStopped, w.State())

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, StateRunning, w.State())

	// the first tick runs right away.
	select {
	case <-sampled:
	case <-time.After(time.Second):
		t.Fatal("no tick ran")
	}

	require.NoError(t, w.Stop())
	assert.Equal(t, StateStopped, w.State())

	// a second stop is a noop.
	require.NoError(t, w.Stop())

	err := w.Start(context.Background())
	assert.ErrorIs(t, err, ErrState)

	m.device.AssertExpectations(t)
	m.stream.AssertExpectations(t)
}

func TestStartLoginFailure(t *testing.T) {
	w, m := newTestWorker(Config{})

	m.device.On("Login", mock.Anything).Return(errors.New("credentials rejected")).Once()
	m.device.On("Close").Return(nil).Once()
	m.stream.On("Close").Return().Once()

	err := w.Start(context.Background())
	assert.ErrorIs(t, err, ErrStartup)
	assert.Contains(t, err.Error(), "credentials rejected")
	assert.Equal(t, StateStopped, w.State())

	m.device.AssertExpectations(t)
	m.stream.AssertExpectations(t)
	m.stream.AssertNotCalled(t, "Start", mock.Anything)
	m.records.AssertNotCalled(t, "Sample", mock.Anything)
}

func TestRunStopsOnContextDone(t *testing.T) {
	w, m := newTestWorker(Config{Interval: 10 * time.Millisecond})

	m.device.On("Login", mock.Anything).Return(nil).Once()
	m.device.On("Close").Return(nil).Once()
	m.stream.On("Start", mock.Anything).Return().Once()
	m.stream.On("Close").Return().Once()
	m.stream.On("Connected").Return(false)
	m.records.On("Sample", mock.Anything).Return(model.SampleRecord{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Run(ctx))
	assert.Equal(t, StateStopped, w.State())

	m.device.AssertExpectations(t)
	m.stream.AssertExpectations(t)
	m.stream.AssertNotCalled(t, "Send", mock.Anything)
}

func TestDescribeAsJSON(t *testing.T) {
	b, err := DescribeAsJSON()
	require.NoError(t, err)

	got := &sw.StateMachineJSON{}
	require.NoError(t, json.Unmarshal(b, got))
	require.Len(t, got.TransitionRules, 4)

	sources := map[string][]string{}
	for _, rule := range got.TransitionRules {
		sources[rule.DestinationState] = rule.SourceStates
	}

	assert.Equal(t, map[string][]string{
		"starting": {"stopped"},
		"running":  {"starting"},
		"stopping": {"starting", "running"},
		"stopped":  {"stopping"},
	}, sources)
}
