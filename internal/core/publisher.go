package core

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks github.com/dkeye/Jukebox/internal/core Publisher

// Publisher relays domain events to a room's subscribers.
// Publish must not block on delivery and never reports failure; the
// mutation that produced the event has already succeeded.
type Publisher interface {
	Publish(channel, event string, payload any)
}
