package engine

import (
	"math"
	"strconv"
	"strings"
)

type MatchType string

const (
	BestOf3 MatchType = "bestOf3"
	BestOf5 MatchType = "bestOf5"
	Fixed3  MatchType = "fixed3"
	Fixed5  MatchType = "fixed5"
)

type SideSwitchMode string

const (
	// SwitchStandard swaps ends after every completed set.
	SwitchStandard SideSwitchMode = "standard"
	// SwitchNew swaps ends after every even-numbered set.
	SwitchNew   SideSwitchMode = "new"
	SwitchNever SideSwitchMode = "never"
)

// Rules is copied into State when a match starts and never changes after.
// A zero max disables the matching counter.
type Rules struct {
	MatchType           MatchType      `json:"matchType" yaml:"matchType"`
	SetPoints           int            `json:"setPoints" yaml:"setPoints"`
	TieBreakPoints      int            `json:"tieBreakPoints" yaml:"tieBreakPoints"`
	MinDiffSets         int            `json:"minDiffSets" yaml:"minDiffSets"`
	MinDiffTieBreak     int            `json:"minDiffTieBreak" yaml:"minDiffTieBreak"`
	MaxTimeouts         int            `json:"maxTimeouts" yaml:"maxTimeouts"`
	MaxSubs             int            `json:"maxSubs" yaml:"maxSubs"`
	MaxVideoChecks      int            `json:"maxVideoChecks" yaml:"maxVideoChecks"`
	TimeoutDuration     int            `json:"timeoutDuration" yaml:"timeoutDuration"`
	IntervalDuration    int            `json:"intervalDuration" yaml:"intervalDuration"`
	SideSwitchMode      SideSwitchMode `json:"sideSwitchMode" yaml:"sideSwitchMode"`
	TieBreakSwapEnabled bool           `json:"tieBreakSwapEnabled" yaml:"tieBreakSwapEnabled"`
	TieBreakSwapPoint   int            `json:"tieBreakSwapPoint" yaml:"tieBreakSwapPoint"`
	TieBreakSwapAnim    bool           `json:"tieBreakSwapAnim" yaml:"tieBreakSwapAnim"`
}

func DefaultRules() Rules {
	return Rules{
		MatchType:           BestOf5,
		SetPoints:           25,
		TieBreakPoints:      15,
		MinDiffSets:         2,
		MinDiffTieBreak:     2,
		MaxTimeouts:         2,
		MaxSubs:             6,
		MaxVideoChecks:      0,
		TimeoutDuration:     30,
		IntervalDuration:    180,
		SideSwitchMode:      SwitchStandard,
		TieBreakSwapEnabled: true,
		TieBreakSwapPoint:   8,
		TieBreakSwapAnim:    true,
	}
}

// NormalizeRules replaces every out-of-range field with its default.
// It never rejects a rule set.
func NormalizeRules(r Rules) Rules {
	d := DefaultRules()
	if _, ok := formats[r.MatchType]; !ok {
		r.MatchType = d.MatchType
	}
	switch r.SideSwitchMode {
	case SwitchStandard, SwitchNew, SwitchNever:
	default:
		r.SideSwitchMode = d.SideSwitchMode
	}

	positive := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	nonNegative := func(v *int, def int) {
		if *v < 0 {
			*v = def
		}
	}
	positive(&r.SetPoints, d.SetPoints)
	positive(&r.TieBreakPoints, d.TieBreakPoints)
	positive(&r.MinDiffSets, d.MinDiffSets)
	positive(&r.MinDiffTieBreak, d.MinDiffTieBreak)
	positive(&r.TieBreakSwapPoint, d.TieBreakSwapPoint)
	nonNegative(&r.MaxTimeouts, d.MaxTimeouts)
	nonNegative(&r.MaxSubs, d.MaxSubs)
	nonNegative(&r.MaxVideoChecks, d.MaxVideoChecks)
	nonNegative(&r.TimeoutDuration, d.TimeoutDuration)
	nonNegative(&r.IntervalDuration, d.IntervalDuration)
	return r
}

// ParseRules builds Rules from loosely typed form input (numbers, numeric
// strings, booleans or "true"/"false"). Unparseable or missing values take
// the value from base; the result is normalized.
func ParseRules(base Rules, raw map[string]any) Rules {
	r := base
	intField := func(key string, dst *int) {
		v, ok := raw[key]
		if !ok {
			return
		}
		if n, ok := toInt(v); ok {
			*dst = n
			return
		}
		*dst = -1 // forces the default during normalization
	}
	boolField := func(key string, dst *bool) {
		switch v := raw[key].(type) {
		case bool:
			*dst = v
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}

	if v, ok := raw["matchType"].(string); ok {
		r.MatchType = MatchType(v)
	}
	if v, ok := raw["sideSwitchMode"].(string); ok {
		r.SideSwitchMode = SideSwitchMode(v)
	}
	intField("setPoints", &r.SetPoints)
	intField("tieBreakPoints", &r.TieBreakPoints)
	intField("minDiffSets", &r.MinDiffSets)
	intField("minDiffTieBreak", &r.MinDiffTieBreak)
	intField("maxTimeouts", &r.MaxTimeouts)
	intField("maxSubs", &r.MaxSubs)
	intField("maxVideoChecks", &r.MaxVideoChecks)
	intField("timeoutDuration", &r.TimeoutDuration)
	intField("intervalDuration", &r.IntervalDuration)
	intField("tieBreakSwapPoint", &r.TieBreakSwapPoint)
	boolField("tieBreakSwapEnabled", &r.TieBreakSwapEnabled)
	boolField("tieBreakSwapAnim", &r.TieBreakSwapAnim)
	return NormalizeRules(r)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
