package timing

import "fmt"

// Sentinel values of the engine's progress channel.
const (
	SentinelEnter = -1
	SentinelExit  = 101
)

// Kind discriminates Event variants.
type Kind int

const (
	KindEnter Kind = iota + 1
	KindExit
	KindProgress
)

// Event is one decoded progress report.
type Event struct {
	Kind    Kind
	Label   string // KindEnter only
	Percent int    // KindProgress only
}

// EnterEvent returns an event that opens a stage named label.
func EnterEvent(label string) Event { return Event{Kind: KindEnter, Label: label} }

// ExitEvent returns an event that closes the innermost stage.
func ExitEvent() Event { return Event{Kind: KindExit} }

// ProgressEvent returns a progress event for the innermost stage.
func ProgressEvent(percent int) Event { return Event{Kind: KindProgress, Percent: percent} }

// Decode maps the engine's sentinel encoding onto an Event.
// ok is false for values that are neither sentinels nor within 0..100.
func Decode(percent int, label string) (ev Event, ok bool) {
	switch {
	case percent == SentinelEnter:
		return EnterEvent(label), true
	case percent == SentinelExit:
		return ExitEvent(), true
	case percent >= 0 && percent <= 100:
		return ProgressEvent(percent), true
	default:
		return Event{}, false
	}
}

// Encode is the inverse of Decode, used by engines and test doubles that
// speak the sentinel protocol.
func (e Event) Encode() (percent int, label string) {
	switch e.Kind {
	case KindEnter:
		return SentinelEnter, e.Label
	case KindExit:
		return SentinelExit, ""
	default:
		return e.Percent, ""
	}
}

func (e Event) String() string {
	switch e.Kind {
	case KindEnter:
		return fmt.Sprintf("enter(%s)", e.Label)
	case KindExit:
		return "exit"
	case KindProgress:
		return fmt.Sprintf("progress(%d)", e.Percent)
	default:
		return "invalid"
	}
}
