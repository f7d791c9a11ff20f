package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/volley-scoreboard/internal/board"
	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

func newRouter(t *testing.T) (http.Handler, *board.Board) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := zaptest.NewLogger(t)
	rules := engine.DefaultRules()
	rules.MatchType = engine.BestOf3
	b := board.New(ctx, engine.NewState(), board.Config{
		Clock:  clockwork.NewFakeClock(),
		Rules:  rules,
		Logger: log,
	})
	return SetupRoutes(Deps{Board: b, DeviceID: "dev-1", Logger: log}), b
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)
}

func TestActionsThenState(t *testing.T) {
	h, b := newRouter(t)

	rec := do(t, h, http.MethodPost, "/actions", `{"type":"Setup","setup":{"homeName":"Lions","guestName":"Tigers"}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec = do(t, h, http.MethodPost, "/actions", `{"type":"AddPoint","side":"guest"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		st, err := b.State(context.Background())
		return err == nil && st.Version == 2
	}, time.Second, 5*time.Millisecond)

	rec = do(t, h, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-State-Version"))

	var view engine.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Tigers", view.State.Sides[engine.Guest].Name)
	assert.Equal(t, 1, view.State.Sides[engine.Guest].Score)
	assert.Equal(t, engine.Guest, view.State.Serving)
	assert.Equal(t, 1, view.SetNumber)
}

func TestActionsRejectsBadInput(t *testing.T) {
	h, _ := newRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"type":`},
		{"unknown type", `{"type":"LockPick"}`},
		{"unknown side", `{"type":"AddPoint","side":"blue"}`},
		{"missing side", `{"type":"AddSub"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/actions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"type":"Error"`)
		})
	}
}

func TestRulesAndDevice(t *testing.T) {
	h, _ := newRouter(t)

	rec := do(t, h, http.MethodGet, "/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rules engine.Rules
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	assert.Equal(t, engine.BestOf3, rules.MatchType)

	rec = do(t, h, http.MethodGet, "/device", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deviceId":"dev-1"}`, rec.Body.String())
}
