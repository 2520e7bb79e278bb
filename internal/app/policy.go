package app

type BackpressureAction int

const (
	DropEvent BackpressureAction = iota
	CloseSubscriber
)

// Policy decides what happens to an event stream subscriber that cannot keep
// up. dropped is the number of events it has missed so far.
type Policy interface {
	OnBackPressure(h Handle, dropped int) BackpressureAction
}

// SimplePolicy drops events until a subscriber has missed more than
// MaxDropped of them, then closes it. Zero closes on the first drop.
type SimplePolicy struct {
	MaxDropped int
}

func (p SimplePolicy) OnBackPressure(_ Handle, dropped int) BackpressureAction {
	if dropped > p.MaxDropped {
		return CloseSubscriber
	}
	return DropEvent
}
