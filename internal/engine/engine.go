package engine

import (
	"errors"
	"strings"
	"time"
)

var ErrMatchEnded = errors.New("match already ended")
var ErrSetupIncomplete = errors.New("match setup not completed")
var ErrMatchStarted = errors.New("match already started")
var ErrTimerIdle = errors.New("no timer running")
var ErrInvalidSide = errors.New("invalid side")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdSetup          CommandType = "Setup"
	CmdStartMatch     CommandType = "StartMatch"
	CmdResume         CommandType = "Resume"
	CmdReset          CommandType = "Reset"
	CmdAddPoint       CommandType = "AddPoint"
	CmdSubPoint       CommandType = "SubPoint"
	CmdAddSub         CommandType = "AddSub"
	CmdSubSub         CommandType = "SubSub"
	CmdAddVideoCheck  CommandType = "AddVideoCheck"
	CmdSubVideoCheck  CommandType = "SubVideoCheck"
	CmdStartTimeout   CommandType = "StartTimeout"
	CmdSubTimeout     CommandType = "SubTimeout"
	CmdSetServing     CommandType = "SetServing"
	CmdAdjustSets     CommandType = "AdjustSets"
	CmdSwapSides      CommandType = "SwapSides"
	CmdTick           CommandType = "Tick"
	CmdDismissOverlay CommandType = "DismissOverlay"
)

/*
	CmdAddPoint     -> EvtPointScored [-> EvtServeChanged] [-> EvtSetWon -> EvtMatchEnded | EvtTimerStarted -> EvtSidesSwapped] [-> EvtSidesSwapped]
	CmdStartTimeout -> EvtTimeoutCalled -> EvtTimerStarted
	CmdTick         -> EvtTimerTicked | EvtTimerExpired -> EvtTimerStopped
	CmdStartMatch   -> EvtMatchStarted [-> EvtTimerStarted]
	CmdSetup/Reset  -> [EvtTimerStopped ->] EvtMatchSetup | EvtMatchReset

	The board re-arms or cancels its one-second tick from the timer events.
*/

// Setup carries what the setup wizard collects before a match starts.
type Setup struct {
	HomeName    string   `json:"homeName"`
	GuestName   string   `json:"guestName"`
	HomeColor   string   `json:"homeColor"`
	GuestColor  string   `json:"guestColor"`
	HomeOnRight bool     `json:"homeOnRight"`
	FirstServe  Position `json:"firstServe"`
	StartTime   string   `json:"startTime"`
}

type Command struct {
	Type  CommandType
	Side  SideID // the zero value is Home; pass NoSide when no team is meant
	Delta int
	Rules *Rules
	Setup *Setup
	At    time.Time // wall clock for countdowns; zero means now
}

type EventType string

const (
	EvtMatchSetup         EventType = "MatchSetup"
	EvtMatchStarted       EventType = "MatchStarted"
	EvtMatchReset         EventType = "MatchReset"
	EvtPointScored        EventType = "PointScored"
	EvtScoreCorrected     EventType = "ScoreCorrected"
	EvtServeChanged       EventType = "ServeChanged"
	EvtSubsChanged        EventType = "SubsChanged"
	EvtVideoChecksChanged EventType = "VideoChecksChanged"
	EvtTimeoutCalled      EventType = "TimeoutCalled"
	EvtTimeoutsChanged    EventType = "TimeoutsChanged"
	EvtSetsAdjusted       EventType = "SetsAdjusted"
	EvtSetWon             EventType = "SetWon"
	EvtMatchEnded         EventType = "MatchEnded"
	EvtSidesSwapped       EventType = "SidesSwapped"
	EvtTimerStarted       EventType = "TimerStarted"
	EvtTimerTicked        EventType = "TimerTicked"
	EvtTimerExpired       EventType = "TimerExpired"
	EvtTimerStopped       EventType = "TimerStopped"
	EvtOverlayDismissed   EventType = "OverlayDismissed"
)

type Event struct {
	Type       EventType
	Side       SideID
	Set        int
	HomeScore  int
	GuestScore int
	Winner     Outcome
	Timer      TimerType
	Seconds    int
	Animate    bool
}

// Apply runs one command against s. On error the returned state is s itself;
// on success it is an independent copy, so no caller ever observes a half
// applied command.
func Apply(s State, cmd Command) ([]Event, State, error) {
	next := s.Clone()

	switch cmd.Type {
	case CmdSetup:
		return setupEvents(next), setupState(cmd.Setup), nil

	case CmdReset:
		events := stopTimer(&next)
		events = append(events, Event{Type: EvtMatchReset})
		return events, NewState(), nil

	case CmdStartMatch:
		if s.MatchEnded {
			return nil, s, ErrMatchEnded
		}
		if !s.SetupCompleted {
			return nil, s, ErrSetupIncomplete
		}
		// rules are fixed for the rest of the match
		if s.MatchActive {
			return nil, s, ErrMatchStarted
		}
		rules := DefaultRules()
		if cmd.Rules != nil {
			rules = NormalizeRules(*cmd.Rules)
		}
		next.Rules = rules
		next.MatchActive = true
		next.MatchEnded = false
		next.Winner = OutcomeNone
		events := []Event{{Type: EvtMatchStarted}}
		events = append(events, scheduleMatchStart(&next, wallClock(cmd.At))...)
		return events, next, nil

	case CmdResume:
		if !awaitingStart(s) {
			return nil, s, nil
		}
		return scheduleMatchStart(&next, wallClock(cmd.At)), next, nil

	case CmdTick:
		events, err := tickTimer(&next)
		if err != nil {
			return nil, s, err
		}
		return events, next, nil

	case CmdDismissOverlay:
		events, err := dismissOverlay(&next)
		if err != nil {
			return nil, s, err
		}
		return events, next, nil
	}

	if !isSideCommand(cmd.Type) {
		return nil, s, ErrUnsupportedCommand
	}
	if err := ensureMatchActive(&next); err != nil {
		return nil, s, err
	}
	if cmd.Type != CmdSwapSides && !cmd.Side.Valid() {
		return nil, s, ErrInvalidSide
	}

	var side *Side
	if cmd.Side.Valid() {
		side = next.Side(cmd.Side)
	}
	var events []Event

	switch cmd.Type {
	case CmdAddPoint:
		side.Score++
		events = append(events, Event{Type: EvtPointScored, Side: cmd.Side})
		if next.Serving != cmd.Side {
			next.Serving = cmd.Side
			events = append(events, Event{Type: EvtServeChanged, Side: cmd.Side})
		}
		events = append(events, checkSetWin(&next, cmd.Side)...)
		events = append(events, checkTieBreakSwap(&next)...)

	case CmdSubPoint:
		side.Score = max(0, side.Score-1)
		events = append(events, Event{Type: EvtScoreCorrected, Side: cmd.Side})

	case CmdAddSub:
		if side.Subs < next.Rules.MaxSubs {
			side.Subs++
			events = append(events, Event{Type: EvtSubsChanged, Side: cmd.Side})
		}

	case CmdSubSub:
		side.Subs = max(0, side.Subs-1)
		events = append(events, Event{Type: EvtSubsChanged, Side: cmd.Side})

	case CmdAddVideoCheck:
		if side.VideoChecks < next.Rules.MaxVideoChecks {
			side.VideoChecks++
			events = append(events, Event{Type: EvtVideoChecksChanged, Side: cmd.Side})
		}

	case CmdSubVideoCheck:
		side.VideoChecks = max(0, side.VideoChecks-1)
		events = append(events, Event{Type: EvtVideoChecksChanged, Side: cmd.Side})

	case CmdStartTimeout:
		if side.Timeouts < next.Rules.MaxTimeouts {
			side.Timeouts++
			events = append(events, Event{Type: EvtTimeoutCalled, Side: cmd.Side})
			label := LabelTimeout + " " + side.Name
			events = append(events, startTimer(&next, TimerTimeout, next.Rules.TimeoutDuration, label)...)
		}

	case CmdSubTimeout:
		side.Timeouts = max(0, side.Timeouts-1)
		events = append(events, Event{Type: EvtTimeoutsChanged, Side: cmd.Side})

	case CmdSetServing:
		next.Serving = cmd.Side
		events = append(events, Event{Type: EvtServeChanged, Side: cmd.Side})

	case CmdAdjustSets:
		side.Sets = clamp(side.Sets+cmd.Delta, 0, 2*TargetSetsToWin(next.Rules))
		events = append(events, Event{Type: EvtSetsAdjusted, Side: cmd.Side})

	case CmdSwapSides:
		events = append(events, swapSides(&next, true)...)
	}

	return events, next, nil
}

// ensureMatchActive gates every scoring action. The first action accepted
// after setup marks the match active.
func ensureMatchActive(s *State) error {
	if s.MatchEnded {
		return ErrMatchEnded
	}
	if !s.SetupCompleted {
		return ErrSetupIncomplete
	}
	s.MatchActive = true
	return nil
}

func isSideCommand(t CommandType) bool {
	switch t {
	case CmdAddPoint, CmdSubPoint, CmdAddSub, CmdSubSub, CmdAddVideoCheck, CmdSubVideoCheck,
		CmdStartTimeout, CmdSubTimeout, CmdSetServing, CmdAdjustSets, CmdSwapSides:
		return true
	}
	return false
}

// awaitingStart reports whether a restored match still needs its scheduled
// start countdown: set up, timed, idle, and no rally played yet.
func awaitingStart(s State) bool {
	if !s.SetupCompleted || s.MatchEnded || s.StartTime == "" || s.Timer.Active {
		return false
	}
	return CompletedSets(s) == 0 && s.Sides[Home].Score == 0 && s.Sides[Guest].Score == 0
}

func setupEvents(prev State) []Event {
	events := stopTimer(&prev)
	return append(events, Event{Type: EvtMatchSetup})
}

// setupState builds the fresh state the wizard hands over.
func setupState(setup *Setup) State {
	s := NewState()
	if setup == nil {
		setup = &Setup{}
	}
	s.HomeIsOnRight = setup.HomeOnRight
	home, guest := s.Side(Home), s.Side(Guest)
	home.Name = orDefault(setup.HomeName, DefaultHomeName)
	guest.Name = orDefault(setup.GuestName, DefaultGuestName)
	home.Color = orDefault(setup.HomeColor, DefaultHomeColor)
	guest.Color = orDefault(setup.GuestColor, DefaultGuestColor)

	if setup.FirstServe == Left || setup.FirstServe == Right {
		s.Serving = s.SideAt(setup.FirstServe)
		s.History.SetStarters = []SideID{s.Serving}
	}
	s.StartTime = strings.TrimSpace(setup.StartTime)
	s.SetupCompleted = true
	return s
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func wallClock(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now()
	}
	return at
}
