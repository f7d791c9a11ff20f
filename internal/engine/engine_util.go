package engine

const (
	DefaultHomeName   = "HOME"
	DefaultGuestName  = "GUEST"
	DefaultHomeColor  = "#00ff00"
	DefaultGuestColor = "#ff0000"
)

// NewState returns a fresh, not yet set up match with default rules.
func NewState() State {
	s := State{
		Serving: NoSide,
		History: History{SetStarters: []SideID{}},
		Timer:   idleTimer(),
		Rules:   DefaultRules(),
	}
	s.Sides[Home] = Side{Name: DefaultHomeName, Color: DefaultHomeColor, SetScores: []int{}}
	s.Sides[Guest] = Side{Name: DefaultGuestName, Color: DefaultGuestColor, SetScores: []int{}}
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
