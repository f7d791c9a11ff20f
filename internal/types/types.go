package types

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

var (
	ErrUnknownType = errors.New("unknown action type")
	ErrBadSide     = errors.New("unknown side")
	ErrMissingSide = errors.New("action needs a side")
)

// ClientMessage is one operator action, sent over the websocket or POSTed to
// /actions. Side accepts "home", "guest", "left" or "right".
type ClientMessage struct {
	Type  string         `json:"type"`
	Side  string         `json:"side,omitempty"`
	Delta int            `json:"delta,omitempty"`
	Undo  bool           `json:"undo,omitempty"`
	Rules map[string]any `json:"rules,omitempty"`
	Setup *engine.Setup  `json:"setup,omitempty"`
}

type ServerMessage struct {
	Type    string       `json:"type"` // "StateSnapshot" | "Error"
	Version int          `json:"version,omitempty"`
	View    *engine.View `json:"view,omitempty"`
	Error   string       `json:"error,omitempty"`
}

const (
	TypeStateSnapshot = "StateSnapshot"
	TypeError         = "Error"
)

// undoOf maps an increment to the decrement the operator gets while holding
// the undo modifier.
var undoOf = map[engine.CommandType]engine.CommandType{
	engine.CmdAddPoint:      engine.CmdSubPoint,
	engine.CmdStartTimeout:  engine.CmdSubTimeout,
	engine.CmdAddSub:        engine.CmdSubSub,
	engine.CmdAddVideoCheck: engine.CmdSubVideoCheck,
}

// clientTypes lists what clients may send. Tick and Resume belong to the
// board alone.
var clientTypes = map[string]engine.CommandType{
	"Setup":          engine.CmdSetup,
	"StartMatch":     engine.CmdStartMatch,
	"Reset":          engine.CmdReset,
	"AddPoint":       engine.CmdAddPoint,
	"SubPoint":       engine.CmdSubPoint,
	"AddSub":         engine.CmdAddSub,
	"SubSub":         engine.CmdSubSub,
	"AddVideoCheck":  engine.CmdAddVideoCheck,
	"SubVideoCheck":  engine.CmdSubVideoCheck,
	"StartTimeout":   engine.CmdStartTimeout,
	"SubTimeout":     engine.CmdSubTimeout,
	"SetServing":     engine.CmdSetServing,
	"AdjustSets":     engine.CmdAdjustSets,
	"SwapSides":      engine.CmdSwapSides,
	"DismissOverlay": engine.CmdDismissOverlay,
}

// Command translates m. Rules sent with StartMatch are laid over base. When m
// names a screen position the returned Position is non-empty and the side
// must be resolved against the live state.
func (m ClientMessage) Command(base engine.Rules) (engine.Command, engine.Position, error) {
	typ, ok := clientTypes[m.Type]
	if !ok {
		return engine.Command{}, "", fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	cmd := engine.Command{Type: typ, Side: engine.NoSide, Delta: m.Delta, Setup: m.Setup}

	if m.Undo {
		if dec, ok := undoOf[typ]; ok {
			cmd.Type = dec
		} else if typ == engine.CmdAdjustSets && cmd.Delta > 0 {
			cmd.Delta = -cmd.Delta
		}
	}
	if cmd.Type == engine.CmdAdjustSets && cmd.Delta == 0 {
		cmd.Delta = 1
		if m.Undo {
			cmd.Delta = -1
		}
	}

	if typ == engine.CmdStartMatch && m.Rules != nil {
		rules := engine.ParseRules(base, m.Rules)
		cmd.Rules = &rules
	}

	var pos engine.Position
	switch m.Side {
	case "":
	case string(engine.Left), string(engine.Right):
		pos = engine.Position(m.Side)
	default:
		side, ok := engine.ParseSide(m.Side)
		if !ok {
			return engine.Command{}, "", fmt.Errorf("%w: %q", ErrBadSide, m.Side)
		}
		cmd.Side = side
	}
	if needsSide(cmd.Type) && m.Side == "" {
		return engine.Command{}, "", fmt.Errorf("%w: %s", ErrMissingSide, m.Type)
	}
	return cmd, pos, nil
}

func needsSide(t engine.CommandType) bool {
	switch t {
	case engine.CmdAddPoint, engine.CmdSubPoint, engine.CmdAddSub, engine.CmdSubSub,
		engine.CmdAddVideoCheck, engine.CmdSubVideoCheck, engine.CmdStartTimeout,
		engine.CmdSubTimeout, engine.CmdSetServing, engine.CmdAdjustSets:
		return true
	}
	return false
}
