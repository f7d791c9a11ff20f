package engine

import (
	"fmt"
	"strings"
	"time"
)

const (
	LabelMatchStart = "MATCH START"
	LabelInterval   = "SET INTERVAL"
	LabelTimeout    = "TIMEOUT"

	// countdown used when a match starts without a scheduled time
	immediateStartSeconds = 10
	startRolloverAfter    = 12 * time.Hour
)

// startTimer cancels whatever timer is running and starts a new one in the
// same step. A non-positive duration leaves the coordinator idle.
func startTimer(s *State, typ TimerType, seconds int, label string) []Event {
	if seconds <= 0 {
		return stopTimer(s)
	}
	s.Timer = Timer{
		Active:       true,
		Visible:      true,
		Type:         typ,
		Seconds:      seconds,
		TotalSeconds: seconds,
		Label:        label,
	}
	return []Event{{Type: EvtTimerStarted, Timer: typ, Seconds: seconds}}
}

// stopTimer is idempotent.
func stopTimer(s *State) []Event {
	was := s.Timer
	s.Timer = idleTimer()
	if !was.Active {
		return nil
	}
	return []Event{{Type: EvtTimerStopped, Timer: was.Type}}
}

func tickTimer(s *State) ([]Event, error) {
	if !s.Timer.Active {
		return nil, ErrTimerIdle
	}
	s.Timer.Seconds = max(0, s.Timer.Seconds-1)
	if s.Timer.Seconds > 0 {
		return []Event{{Type: EvtTimerTicked, Timer: s.Timer.Type, Seconds: s.Timer.Seconds}}, nil
	}

	typ := s.Timer.Type
	events := []Event{{Type: EvtTimerExpired, Timer: typ}}
	switch typ {
	case TimerTimeout, TimerInterval, TimerMatchStart:
		events = append(events, stopTimer(s)...)
	}
	return events, nil
}

func dismissOverlay(s *State) ([]Event, error) {
	if !s.Timer.Active {
		return nil, ErrTimerIdle
	}
	if !s.Timer.Visible {
		return nil, nil
	}
	s.Timer.Visible = false
	return []Event{{Type: EvtOverlayDismissed, Timer: s.Timer.Type}}, nil
}

// scheduleMatchStart starts the match-start countdown: a short immediate one
// without a start time, otherwise one running until startTime today (or
// tomorrow, when startTime lies more than twelve hours in the past).
func scheduleMatchStart(s *State, now time.Time) []Event {
	if s.StartTime == "" {
		return startTimer(s, TimerMatchStart, immediateStartSeconds, LabelMatchStart)
	}
	secs, ok := secondsUntil(s.StartTime, now)
	if !ok || secs <= 0 {
		return nil
	}
	return startTimer(s, TimerMatchStart, secs, LabelMatchStart)
}

func secondsUntil(hhmm string, now time.Time) (int, bool) {
	h, m, ok := parseClock(hhmm)
	if !ok {
		return 0, false
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if target.Before(now) && now.Sub(target) > startRolloverAfter {
		target = target.AddDate(0, 0, 1)
	}
	return int(target.Sub(now) / time.Second), true
}

func parseClock(hhmm string) (int, int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// FormatCountdown renders remaining seconds as M:SS, or HH:MM:SS past an hour.
func FormatCountdown(seconds int) string {
	seconds = max(0, seconds)
	if seconds > 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
