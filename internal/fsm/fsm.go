// Package fsm defines the session lifecycle state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle        State = "idle"
	StateAwaitingJob State = "awaiting_job"
	StateWaiting     State = "waiting_for_artifact"
	StateReady       State = "ready"
	StateRendering   State = "rendering"
	StateFailed      State = "failed"
)

const (
	EventSubmit     Event = "submit"
	EventWatch      Event = "watch"
	EventArtifact   Event = "artifact"
	EventRender     Event = "render"
	EventRenderDone Event = "render_done"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

// Transition applies one event to the current state. EventFail and EventReset
// are accepted from every state: any failure lands in StateFailed, and a
// teardown or new session always returns to StateIdle.
func Transition(current State, event Event) (State, error) {
	switch event {
	case EventFail:
		return StateFailed, nil
	case EventReset:
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventSubmit:
			return StateAwaitingJob, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateAwaitingJob:
		switch event {
		case EventWatch:
			return StateWaiting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateWaiting:
		switch event {
		case EventArtifact:
			return StateReady, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateReady:
		switch event {
		case EventRender:
			return StateRendering, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRendering:
		switch event {
		case EventRenderDone:
			return StateReady, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateFailed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
