package services

// Notifier pushes out-of-band state change events to connected clients.
// Implementations must not block; delivery is best effort and nothing in
// the engine's correctness depends on it.
type Notifier interface {
	Publish(event string, payload interface{})
}

// Event names published by the services.
const (
	EventRoundChanged = "round_changed"
	EventBetPlaced    = "bet_placed"
	EventWinnerDrawn  = "winner_drawn"
	EventRoomChanged  = "room_changed"
	EventChatMessage  = "chat_message"
	EventRaffleTicket = "raffle_ticket"
)

// noopNotifier stands in when no hub is wired (tests, scripts).
type noopNotifier struct{}

func (noopNotifier) Publish(string, interface{}) {}

// NopNotifier returns a Notifier that discards every event.
func NopNotifier() Notifier {
	return noopNotifier{}
}
