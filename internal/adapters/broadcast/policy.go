package broadcast

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	Disconnect
)

// Policy decides what happens to a subscriber whose send buffer is full.
type Policy interface {
	OnBackPressure(channel string, sub *Subscriber) BackpressureAction
}

// DisconnectPolicy closes slow subscribers; clients reconnect and refetch
// room state.
type DisconnectPolicy struct{}

func (DisconnectPolicy) OnBackPressure(string, *Subscriber) BackpressureAction { return Disconnect }

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(string, *Subscriber) BackpressureAction { return DropFrame }

// PolicyFor maps a config value to a policy. Unknown names disconnect.
func PolicyFor(name string) Policy {
	if name == "drop" {
		return DropPolicy{}
	}
	return DisconnectPolicy{}
}
