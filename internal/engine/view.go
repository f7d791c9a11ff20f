package engine

import "fmt"

// Overlay is the full-screen layer a renderer should show, if any.
type Overlay string

const (
	OverlayNone       Overlay = ""
	OverlayTimeout    Overlay = "timeout"
	OverlayInterval   Overlay = "interval"
	OverlayMatchStart Overlay = "match_start"
	OverlayWinner     Overlay = "winner"
)

// SetRow is one completed set as "home - guest".
type SetRow struct {
	Set   int    `json:"set"`
	Home  int    `json:"home"`
	Guest int    `json:"guest"`
	Label string `json:"label"`
}

// View is everything a renderer needs: the state plus values derived from it.
type View struct {
	State      State    `json:"state"`
	Left       SideID   `json:"left"`
	Right      SideID   `json:"right"`
	SetNumber  int      `json:"setNumber"`
	TieBreak   bool     `json:"tieBreak"`
	Overlay    Overlay  `json:"overlay"`
	Countdown  string   `json:"countdown"`
	WinnerName string   `json:"winnerName,omitempty"`
	SetTable   []SetRow `json:"setTable"`
}

const DrawLabel = "DRAW"

func Render(s State) View {
	v := View{
		State:     s,
		Left:      s.SideAt(Left),
		Right:     s.SideAt(Right),
		SetNumber: CurrentSetNumber(s),
		TieBreak:  IsTieBreakSet(s.Rules, CurrentSetNumber(s)),
		SetTable:  setTable(s),
	}
	if s.Timer.Active {
		v.Countdown = FormatCountdown(s.Timer.Seconds)
	}

	// the winner overlay outranks every countdown
	switch {
	case s.MatchEnded:
		v.Overlay = OverlayWinner
	case s.Timer.Active && s.Timer.Visible:
		v.Overlay = Overlay(s.Timer.Type)
	}

	switch s.Winner {
	case OutcomeHome:
		v.WinnerName = s.Sides[Home].Name
	case OutcomeGuest:
		v.WinnerName = s.Sides[Guest].Name
	case OutcomeDraw:
		v.WinnerName = DrawLabel
	}
	return v
}

func setTable(s State) []SetRow {
	home, guest := s.Sides[Home].SetScores, s.Sides[Guest].SetScores
	n := max(len(home), len(guest))
	rows := make([]SetRow, 0, n)
	for i := 0; i < n; i++ {
		row := SetRow{Set: i + 1}
		if i < len(home) {
			row.Home = home[i]
		}
		if i < len(guest) {
			row.Guest = guest[i]
		}
		row.Label = fmt.Sprintf("%d - %d", row.Home, row.Guest)
		rows = append(rows, row)
	}
	return rows
}
