package etl

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/BartekS5/airline-etl/pkg/logger"
)

// Job states. Succeeded and failed are both terminal.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

const (
	eventStart   = "start"
	eventSucceed = "succeed"
	eventFail    = "fail"
)

// JobState tracks the lifecycle of one pipeline run.
type JobState struct {
	fsm *fsm.FSM
}

func newJobState() *JobState {
	return &JobState{
		fsm: fsm.NewFSM(
			StatePending,
			fsm.Events{
				{Name: eventStart, Src: []string{StatePending}, Dst: StateRunning},
				{Name: eventSucceed, Src: []string{StateRunning}, Dst: StateSucceeded},
				{Name: eventFail, Src: []string{StatePending, StateRunning}, Dst: StateFailed},
			},
			fsm.Callbacks{
				"enter_state": func(_ context.Context, e *fsm.Event) {
					logger.Debugf("job state %s -> %s", e.Src, e.Dst)
				},
			},
		),
	}
}

func (s *JobState) Current() string { return s.fsm.Current() }

func (s *JobState) fire(ctx context.Context, event string) error {
	// Transition callbacks must not observe a cancelled job context.
	return s.fsm.Event(context.WithoutCancel(ctx), event)
}
