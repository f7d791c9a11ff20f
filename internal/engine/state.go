package engine

type TimerType string

const (
	TimerNone       TimerType = ""
	TimerTimeout    TimerType = "timeout"
	TimerInterval   TimerType = "interval"
	TimerMatchStart TimerType = "match_start"
)

// An idle timer has no type and serializes it as null.
func (t TimerType) MarshalJSON() ([]byte, error) { return nullableString(string(t)) }

func (t *TimerType) UnmarshalJSON(data []byte) error {
	return unmarshalNullable(data, (*string)(t))
}

// Timer is the single countdown driving the overlays. Visible only hides the
// overlay; the countdown keeps running.
type Timer struct {
	Active       bool      `json:"active"`
	Visible      bool      `json:"visible"`
	Type         TimerType `json:"type"`
	Seconds      int       `json:"seconds"`
	TotalSeconds int       `json:"totalSeconds"`
	Label        string    `json:"label"`
}

func idleTimer() Timer { return Timer{Visible: true} }

type History struct {
	SetStarters      []SideID `json:"setStarters"`
	TieBreakSwapDone bool     `json:"tieBreakSwapDone"`
}

// State is the authoritative match model. Once MatchEnded is set only a
// reset or a new setup changes it.
type State struct {
	HomeIsOnRight  bool    `json:"homeIsOnRight"`
	SetupCompleted bool    `json:"setupCompleted"`
	MatchActive    bool    `json:"matchActive"`
	MatchEnded     bool    `json:"matchEnded"`
	Winner         Outcome `json:"winner"`
	Serving        SideID  `json:"serving"`
	StartTime      string  `json:"startTime,omitempty"` // "HH:MM", local wall clock
	History        History `json:"history"`
	Timer          Timer   `json:"timer"`
	Rules          Rules   `json:"rules"`
	Sides          Sides   `json:"sides"`
}

// Side returns a pointer into s for the given team.
func (s *State) Side(id SideID) *Side { return &s.Sides[id] }

// SideAt resolves an on-screen position to the team currently placed there.
func (s State) SideAt(p Position) SideID {
	if p == Left {
		if s.HomeIsOnRight {
			return Guest
		}
		return Home
	}
	if s.HomeIsOnRight {
		return Home
	}
	return Guest
}

// Clone deep-copies the slices so the copy can be mutated freely.
func (s State) Clone() State {
	c := s
	for i := range c.Sides {
		c.Sides[i].SetScores = append([]int{}, s.Sides[i].SetScores...)
	}
	c.History.SetStarters = append([]SideID{}, s.History.SetStarters...)
	return c
}
