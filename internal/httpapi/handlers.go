package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/DoyleJ11/volley-scoreboard/internal/board"
	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
	"github.com/DoyleJ11/volley-scoreboard/internal/types"
)

const maxActionBytes = 64 << 10

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetState renders the current view. The version travels in a header so
// pollers can skip unchanged states.
func GetState(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := b.State(r.Context())
		if err != nil {
			http.Error(w, "board unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-State-Version", strconv.Itoa(st.Version))
		writeJSON(w, http.StatusOK, engine.Render(st.State))
	}
}

// PostAction enqueues one operator action. Acceptance only means the action
// was well-formed; the engine may still ignore it.
func PostAction(b *board.Board, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cm types.ClientMessage
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBytes)).Decode(&cm); err != nil {
			writeJSON(w, http.StatusBadRequest, types.ServerMessage{Type: types.TypeError, Error: "bad json"})
			return
		}

		cmd, pos, err := cm.Command(b.DefaultRules())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, types.ServerMessage{Type: types.TypeError, Error: err.Error()})
			return
		}

		if err := b.Send(r.Context(), board.FromClient{Cmd: cmd, At: pos}); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, r.Context().Err()) {
				status = http.StatusRequestTimeout
			}
			log.Warn("enqueue action", zap.String("type", cm.Type), zap.Error(err))
			http.Error(w, "board unavailable", status)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// GetRules returns the rules a match starts with when the operator sends none.
func GetRules(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.DefaultRules())
	}
}

func GetDevice(deviceID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			DeviceID string `json:"deviceId"`
		}{DeviceID: deviceID})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
