package engine

import (
	"encoding/json"
	"fmt"
)

// SideID identifies one of the two teams. It indexes Sides directly.
type SideID int

const (
	NoSide SideID = iota - 1
	Home
	Guest
)

func (id SideID) Valid() bool { return id == Home || id == Guest }

func (id SideID) Other() SideID {
	switch id {
	case Home:
		return Guest
	case Guest:
		return Home
	default:
		return NoSide
	}
}

func (id SideID) String() string {
	switch id {
	case Home:
		return "home"
	case Guest:
		return "guest"
	default:
		return ""
	}
}

func (id SideID) MarshalJSON() ([]byte, error) {
	if !id.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(id.String())
}

func (id *SideID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = NoSide
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseSide(s)
	if !ok && s != "" {
		return fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
	*id = parsed
	return nil
}

func ParseSide(s string) (SideID, bool) {
	switch s {
	case "home":
		return Home, true
	case "guest":
		return Guest, true
	default:
		return NoSide, false
	}
}

// Position is an on-screen placement. Which team sits where depends on
// State.HomeIsOnRight.
type Position string

const (
	Left  Position = "left"
	Right Position = "right"
)

// Outcome is the match result once MatchEnded is set.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeHome  Outcome = "home"
	OutcomeGuest Outcome = "guest"
	OutcomeDraw  Outcome = "draw"
)

func (o Outcome) MarshalJSON() ([]byte, error) { return nullableString(string(o)) }

func (o *Outcome) UnmarshalJSON(data []byte) error {
	return unmarshalNullable(data, (*string)(o))
}

func outcomeFor(id SideID) Outcome {
	if id == Home {
		return OutcomeHome
	}
	return OutcomeGuest
}

// Side is one team's counters for the current match.
type Side struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Score       int    `json:"score"`
	Sets        int    `json:"sets"`
	Timeouts    int    `json:"timeouts"`
	Subs        int    `json:"subs"`
	VideoChecks int    `json:"videoChecks"`
	SetScores   []int  `json:"setScores"`
}

// Sides is indexed by SideID.
type Sides [2]Side

func (s Sides) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Home  Side `json:"home"`
		Guest Side `json:"guest"`
	}{s[Home], s[Guest]})
}

func (s *Sides) UnmarshalJSON(data []byte) error {
	var wire struct {
		Home  Side `json:"home"`
		Guest Side `json:"guest"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s[Home], s[Guest] = wire.Home, wire.Guest
	return nil
}

// nullableString writes the empty string as null.
func nullableString(v string) ([]byte, error) {
	if v == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func unmarshalNullable(data []byte, dst *string) error {
	if string(data) == "null" {
		*dst = ""
		return nil
	}
	return json.Unmarshal(data, dst)
}
