package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

const (
	SchemaV1      = 1
	CurrentSchema = SchemaV1
)

var ErrUnsupportedSchema = errors.New("unsupported snapshot schema")

type envelope struct {
	Schema int             `json:"schema"`
	State  json.RawMessage `json:"state"`
}

// Encode serializes the whole match state, rules and timer included.
func Encode(s engine.State) ([]byte, error) {
	state, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return json.Marshal(envelope{Schema: CurrentSchema, State: state})
}

// Decode restores a state written by Encode. Every field absent from the
// record keeps the value a fresh engine.NewState has, and the rules are laid
// over engine.DefaultRules and normalized.
func Decode(data []byte) (engine.State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return engine.State{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Schema != SchemaV1 {
		return engine.State{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.Schema)
	}

	var w wireState
	if len(env.State) > 0 {
		if err := json.Unmarshal(env.State, &w); err != nil {
			return engine.State{}, fmt.Errorf("decode state: %w", err)
		}
	}
	return w.fill(), nil
}

// The wire* types mirror engine.State with every field optional.

type wireState struct {
	HomeIsOnRight  *bool           `json:"homeIsOnRight"`
	SetupCompleted *bool           `json:"setupCompleted"`
	MatchActive    *bool           `json:"matchActive"`
	MatchEnded     *bool           `json:"matchEnded"`
	Winner         *engine.Outcome `json:"winner"`
	Serving        *engine.SideID  `json:"serving"`
	StartTime      *string         `json:"startTime"`
	History        *wireHistory    `json:"history"`
	Timer          *wireTimer      `json:"timer"`
	Rules          *wireRules      `json:"rules"`
	Sides          *struct {
		Home  *wireSide `json:"home"`
		Guest *wireSide `json:"guest"`
	} `json:"sides"`
}

type wireHistory struct {
	SetStarters      *[]engine.SideID `json:"setStarters"`
	TieBreakSwapDone *bool            `json:"tieBreakSwapDone"`
}

type wireTimer struct {
	Active       *bool             `json:"active"`
	Visible      *bool             `json:"visible"`
	Type         *engine.TimerType `json:"type"`
	Seconds      *int              `json:"seconds"`
	TotalSeconds *int              `json:"totalSeconds"`
	Label        *string           `json:"label"`
}

type wireRules struct {
	MatchType           *engine.MatchType      `json:"matchType"`
	SetPoints           *int                   `json:"setPoints"`
	TieBreakPoints      *int                   `json:"tieBreakPoints"`
	MinDiffSets         *int                   `json:"minDiffSets"`
	MinDiffTieBreak     *int                   `json:"minDiffTieBreak"`
	MaxTimeouts         *int                   `json:"maxTimeouts"`
	MaxSubs             *int                   `json:"maxSubs"`
	MaxVideoChecks      *int                   `json:"maxVideoChecks"`
	TimeoutDuration     *int                   `json:"timeoutDuration"`
	IntervalDuration    *int                   `json:"intervalDuration"`
	SideSwitchMode      *engine.SideSwitchMode `json:"sideSwitchMode"`
	TieBreakSwapEnabled *bool                  `json:"tieBreakSwapEnabled"`
	TieBreakSwapPoint   *int                   `json:"tieBreakSwapPoint"`
	TieBreakSwapAnim    *bool                  `json:"tieBreakSwapAnim"`
}

type wireSide struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Score       *int    `json:"score"`
	Sets        *int    `json:"sets"`
	Timeouts    *int    `json:"timeouts"`
	Subs        *int    `json:"subs"`
	VideoChecks *int    `json:"videoChecks"`
	SetScores   *[]int  `json:"setScores"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (w wireState) fill() engine.State {
	s := engine.NewState()
	set(&s.HomeIsOnRight, w.HomeIsOnRight)
	set(&s.SetupCompleted, w.SetupCompleted)
	set(&s.MatchActive, w.MatchActive)
	set(&s.MatchEnded, w.MatchEnded)
	set(&s.Winner, w.Winner)
	set(&s.Serving, w.Serving)
	set(&s.StartTime, w.StartTime)

	if h := w.History; h != nil {
		set(&s.History.SetStarters, h.SetStarters)
		set(&s.History.TieBreakSwapDone, h.TieBreakSwapDone)
	}
	if t := w.Timer; t != nil {
		set(&s.Timer.Active, t.Active)
		set(&s.Timer.Visible, t.Visible)
		set(&s.Timer.Type, t.Type)
		set(&s.Timer.Seconds, t.Seconds)
		set(&s.Timer.TotalSeconds, t.TotalSeconds)
		set(&s.Timer.Label, t.Label)
	}
	if r := w.Rules; r != nil {
		set(&s.Rules.MatchType, r.MatchType)
		set(&s.Rules.SetPoints, r.SetPoints)
		set(&s.Rules.TieBreakPoints, r.TieBreakPoints)
		set(&s.Rules.MinDiffSets, r.MinDiffSets)
		set(&s.Rules.MinDiffTieBreak, r.MinDiffTieBreak)
		set(&s.Rules.MaxTimeouts, r.MaxTimeouts)
		set(&s.Rules.MaxSubs, r.MaxSubs)
		set(&s.Rules.MaxVideoChecks, r.MaxVideoChecks)
		set(&s.Rules.TimeoutDuration, r.TimeoutDuration)
		set(&s.Rules.IntervalDuration, r.IntervalDuration)
		set(&s.Rules.SideSwitchMode, r.SideSwitchMode)
		set(&s.Rules.TieBreakSwapEnabled, r.TieBreakSwapEnabled)
		set(&s.Rules.TieBreakSwapPoint, r.TieBreakSwapPoint)
		set(&s.Rules.TieBreakSwapAnim, r.TieBreakSwapAnim)
	}
	s.Rules = engine.NormalizeRules(s.Rules)

	if w.Sides != nil {
		w.Sides.Home.fill(s.Side(engine.Home))
		w.Sides.Guest.fill(s.Side(engine.Guest))
	}
	return sanitize(s)
}

func (w *wireSide) fill(dst *engine.Side) {
	if w == nil {
		return
	}
	set(&dst.Name, w.Name)
	set(&dst.Color, w.Color)
	set(&dst.Score, w.Score)
	set(&dst.Sets, w.Sets)
	set(&dst.Timeouts, w.Timeouts)
	set(&dst.Subs, w.Subs)
	set(&dst.VideoChecks, w.VideoChecks)
	set(&dst.SetScores, w.SetScores)
}

// sanitize repairs values no engine transition can produce.
func sanitize(s engine.State) engine.State {
	for i := range s.Sides {
		side := &s.Sides[i]
		side.Score = max(0, side.Score)
		side.Sets = max(0, side.Sets)
		side.Timeouts = max(0, side.Timeouts)
		side.Subs = max(0, side.Subs)
		side.VideoChecks = max(0, side.VideoChecks)
		if side.SetScores == nil {
			side.SetScores = []int{}
		}
	}
	if s.History.SetStarters == nil {
		s.History.SetStarters = []engine.SideID{}
	}

	switch s.Winner {
	case engine.OutcomeNone, engine.OutcomeHome, engine.OutcomeGuest, engine.OutcomeDraw:
	default:
		s.Winner = engine.OutcomeNone
	}

	switch s.Timer.Type {
	case engine.TimerTimeout, engine.TimerInterval, engine.TimerMatchStart:
		s.Timer.Seconds = max(0, s.Timer.Seconds)
	default:
		s.Timer = engine.NewState().Timer
	}
	if !s.Timer.Active {
		s.Timer = engine.NewState().Timer
	}
	return s
}
