package worker

import (
	"context"

	sw "github.com/filanov/stateswitch"
	"github.com/pkg/errors"
)

const (
	StateStopped  sw.State = "stopped"
	StateStarting sw.State = "starting"
	StateRunning  sw.State = "running"
	StateStopping sw.State = "stopping"

	TransitionTypeStart sw.TransitionType = "start"
	TransitionTypeRun   sw.TransitionType = "run"
	TransitionTypeStop  sw.TransitionType = "stop"
	TransitionTypeHalt  sw.TransitionType = "halt"
)

var (
	// ErrTransitionArgs is returned when a transition handler receives unexpected arguments.
	ErrTransitionArgs = errors.New("expected a *transitionArgs type")
)

// transitionArgs is passed to the transition handlers.
type transitionArgs struct {
	ctx context.Context
}

// transitionHandler defines the worker lifecycle transition handlers.
type transitionHandler interface {
	// prepare runs on start, before any connection is made.
	prepare(sw.StateSwitch, sw.TransitionArgs) error
	// connect logs into the device, opens the stream and spawns the tick loop.
	connect(sw.StateSwitch, sw.TransitionArgs) error
	// disconnect stops the tick loop, closes the stream and the device session.
	disconnect(sw.StateSwitch, sw.TransitionArgs) error
	// halted runs once the worker has stopped.
	halted(sw.StateSwitch, sw.TransitionArgs) error
}

func newStateMachine(h transitionHandler) sw.StateMachine {
	m := sw.NewStateMachine()

	m.AddTransition(sw.TransitionRule{
		TransitionType:   TransitionTypeStart,
		SourceStates:     sw.States{StateStopped},
		DestinationState: StateStarting,
		Condition:        nil,
		Transition:       h.prepare,
		PostTransition:   nil,
	})

	// a failed connect leaves the worker in starting, from where it is stopped.
	m.AddTransition(sw.TransitionRule{
		TransitionType:   TransitionTypeRun,
		SourceStates:     sw.States{StateStarting},
		DestinationState: StateRunning,
		Condition:        nil,
		Transition:       h.connect,
		PostTransition:   nil,
	})

	m.AddTransition(sw.TransitionRule{
		TransitionType:   TransitionTypeStop,
		SourceStates:     sw.States{StateStarting, StateRunning},
		DestinationState: StateStopping,
		Condition:        nil,
		Transition:       h.disconnect,
		PostTransition:   nil,
	})

	m.AddTransition(sw.TransitionRule{
		TransitionType:   TransitionTypeHalt,
		SourceStates:     sw.States{StateStopping},
		DestinationState: StateStopped,
		Condition:        nil,
		Transition:       h.halted,
		PostTransition:   nil,
	})

	describe(m)

	return m
}

func describe(m sw.StateMachine) {
	states := []sw.StateDoc{
		{Name: string(StateStopped), Description: "The worker is idle, no device session or stream is open."},
		{Name: string(StateStarting), Description: "The worker is logging into the device and opening the stream."},
		{Name: string(StateRunning), Description: "The tick loop is sending samples and uploading inventory."},
		{Name: string(StateStopping), Description: "The tick loop, stream and device session are being closed."},
	}

	transitions := []sw.TransitionTypeDoc{
		{Name: string(TransitionTypeStart), Description: "Begin starting the worker."},
		{Name: string(TransitionTypeRun), Description: "Log into the device, open the stream and spawn the tick loop."},
		{Name: string(TransitionTypeStop), Description: "Cancel the tick loop, close the stream and the device session."},
		{Name: string(TransitionTypeHalt), Description: "Mark the worker stopped."},
	}

	for _, doc := range states {
		m.DescribeState(sw.State(doc.Name), doc)
	}

	for _, doc := range transitions {
		m.DescribeTransitionType(sw.TransitionType(doc.Name), doc)
	}
}

// DescribeAsJSON returns a JSON output describing the worker statemachine.
func DescribeAsJSON() ([]byte, error) {
	return newStateMachine(&Worker{}).AsJSON()
}
