package labs

import "fmt"

// Event is something a front end may want to flash or sound.
type Event int

const (
	EventPeriod Event = iota // the pendulum completed a period
	EventBounce              // the puck bounced off a rail
	EventPhase               // the centripetal apparatus moved to its next phase
	EventDone                // the run reached its terminal condition
)

func (e Event) String() string {
	switch e {
	case EventPeriod:
		return "period"
	case EventBounce:
		return "bounce"
	case EventPhase:
		return "phase"
	case EventDone:
		return "done"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// watch turns a monotonic counter and a done flag into events. A counter
// that goes backwards means the model was reset under it.
type watch struct {
	count int
	done  bool
}

func (w *watch) poll(kind Event, count int, done bool) []Event {
	var out []Event
	if count < w.count {
		w.count = 0
	}
	for ; w.count < count; w.count++ {
		out = append(out, kind)
	}
	if done && !w.done {
		out = append(out, EventDone)
	}
	w.done = done
	return out
}
