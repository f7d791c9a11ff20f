package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

var kickoff = time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "client outbox closed unexpectedly")
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got version %d", within, s.Version)
	case <-time.After(within):
	}
}

type recordingSaver struct {
	mu    sync.Mutex
	saved []engine.State
}

func (r *recordingSaver) Save(_ context.Context, s engine.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *recordingSaver) last() engine.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[len(r.saved)-1]
}

func setUp(t *testing.T, setup engine.Setup) engine.State {
	t.Helper()
	_, s, err := engine.Apply(engine.NewState(), engine.Command{Type: engine.CmdSetup, Setup: &setup})
	require.NoError(t, err)
	return s
}

type harness struct {
	board *Board
	clock *clockwork.FakeClock
	saver *recordingSaver
	out   chan Snapshot
	ctx   context.Context
}

func start(t *testing.T, initial engine.State, rules engine.Rules) harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := harness{
		clock: clockwork.NewFakeClockAt(kickoff),
		saver: &recordingSaver{},
		out:   make(chan Snapshot, 64),
		ctx:   ctx,
	}
	h.board = New(ctx, initial, Config{
		Clock:  h.clock,
		Saver:  h.saver,
		Rules:  rules,
		Logger: zaptest.NewLogger(t),
	})
	h.board.Inbox() <- Join{ClientID: "c1", Outbox: h.out}
	return h
}

func (h harness) send(cmd engine.Command) {
	h.board.Inbox() <- FromClient{Cmd: cmd}
}

// tick waits for the countdown to be armed, then fires it.
func (h harness) tick(t *testing.T) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(h.ctx, time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(tickInterval)
	return recvSnapshot(t, h.out, time.Second)
}

func TestBoard_ActionBroadcastsAndPersists(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{HomeName: "Lions", GuestName: "Tigers"}), engine.Rules{})

	first := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 0, first.Version)
	assert.Equal(t, "Lions", first.View.State.Sides[engine.Home].Name)

	h.send(engine.Command{Type: engine.CmdAddPoint, Side: engine.Home})

	next := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, 1, next.View.State.Sides[engine.Home].Score)
	assert.Equal(t, engine.Home, next.View.State.Serving)
	assert.True(t, next.View.State.MatchActive)

	require.Eventually(t, func() bool { return h.saver.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.saver.last().Sides[engine.Home].Score)
}

func TestBoard_RejectedCommandChangesNothing(t *testing.T) {
	h := start(t, engine.NewState(), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdAddPoint, Side: engine.Home})
	recvNoSnapshot(t, h.out, 50*time.Millisecond)

	st, err := h.board.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Version)
	assert.Zero(t, st.State.Sides[engine.Home].Score)
	assert.Zero(t, h.saver.count())
}

func TestBoard_PositionalAddressingFollowsOrientation(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{HomeOnRight: true}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.board.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdAddPoint}, At: engine.Right}
	snap := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 1, snap.View.State.Sides[engine.Home].Score)

	h.send(engine.Command{Type: engine.CmdSwapSides})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.board.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdAddPoint}, At: engine.Right}
	snap = recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 1, snap.View.State.Sides[engine.Guest].Score)
	assert.Equal(t, engine.Guest, snap.View.Right)
}

func TestBoard_TimeoutCountsDownAndExpires(t *testing.T) {
	rules := engine.DefaultRules()
	rules.TimeoutDuration = 3
	initial := setUp(t, engine.Setup{HomeName: "Lions"})
	initial.Rules = rules

	h := start(t, initial, engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartTimeout, Side: engine.Home})
	snap := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, engine.OverlayTimeout, snap.View.Overlay)
	assert.Equal(t, "TIMEOUT Lions", snap.View.State.Timer.Label)
	assert.Equal(t, "0:03", snap.View.Countdown)

	snap = h.tick(t)
	assert.Equal(t, 2, snap.View.State.Timer.Seconds)
	snap = h.tick(t)
	assert.Equal(t, 1, snap.View.State.Timer.Seconds)
	snap = h.tick(t)
	assert.False(t, snap.View.State.Timer.Active)
	assert.Equal(t, engine.OverlayNone, snap.View.Overlay)

	// nothing left to tick
	h.clock.Advance(5 * tickInterval)
	recvNoSnapshot(t, h.out, 50*time.Millisecond)
}

func TestBoard_NewTimerReplacesRunningOne(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{GuestName: "Tigers"}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartTimeout, Side: engine.Home})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)
	_ = h.tick(t)

	h.send(engine.Command{Type: engine.CmdStartTimeout, Side: engine.Guest})
	snap := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 30, snap.View.State.Timer.Seconds)

	// exactly one countdown is armed; one second costs one second
	snap = h.tick(t)
	assert.Equal(t, 29, snap.View.State.Timer.Seconds)
	assert.Equal(t, "TIMEOUT Tigers", snap.View.State.Timer.Label)
	recvNoSnapshot(t, h.out, 50*time.Millisecond)
}

func TestBoard_StaleTickIsDropped(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartTimeout, Side: engine.Home})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	st, err := h.board.State(context.Background())
	require.NoError(t, err)

	h.board.Inbox() <- tick{gen: 0}
	recvNoSnapshot(t, h.out, 50*time.Millisecond)

	after, err := h.board.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st.Version, after.Version)
	assert.Equal(t, 30, after.State.Timer.Seconds)
}

func TestBoard_SetupCancelsCountdown(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartTimeout, Side: engine.Home})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdSetup, Setup: &engine.Setup{HomeName: "Next"}})
	snap := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.False(t, snap.View.State.Timer.Active)

	h.clock.Advance(3 * tickInterval)
	recvNoSnapshot(t, h.out, 50*time.Millisecond)
}

func TestBoard_StartMatchUsesDefaultRules(t *testing.T) {
	defaults := engine.DefaultRules()
	defaults.MatchType = engine.BestOf3
	defaults.SetPoints = 21

	h := start(t, setUp(t, engine.Setup{}), defaults)
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartMatch})
	snap := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, engine.BestOf3, snap.View.State.Rules.MatchType)
	assert.Equal(t, 21, snap.View.State.Rules.SetPoints)
	assert.Equal(t, engine.OverlayMatchStart, snap.View.Overlay)
	assert.Equal(t, 10, snap.View.State.Timer.Seconds)
	assert.Equal(t, defaults, h.board.DefaultRules())
}

func TestBoard_StartMatchCountsDownToScheduledTime(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{StartTime: "18:05"}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartMatch})
	snap := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 300, snap.View.State.Timer.Seconds)
	assert.Equal(t, "5:00", snap.View.Countdown)
}

func TestBoard_RestoreReschedulesPendingStart(t *testing.T) {
	initial := setUp(t, engine.Setup{StartTime: "18:30"})

	h := start(t, initial, engine.Rules{})
	first := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 1, first.Version)
	assert.True(t, first.View.State.Timer.Active)
	assert.Equal(t, 1800, first.View.State.Timer.Seconds)

	snap := h.tick(t)
	assert.Equal(t, 1799, snap.View.State.Timer.Seconds)
}

func TestBoard_RestoreResumesRunningTimer(t *testing.T) {
	initial := setUp(t, engine.Setup{})
	initial.MatchActive = true
	initial.Timer = engine.Timer{
		Active: true, Visible: true, Type: engine.TimerInterval,
		Seconds: 5, TotalSeconds: 180, Label: engine.LabelInterval,
	}

	h := start(t, initial, engine.Rules{})
	first := recvSnapshot(t, h.out, 100*time.Millisecond)
	assert.Equal(t, 0, first.Version)
	assert.Equal(t, engine.OverlayInterval, first.View.Overlay)

	snap := h.tick(t)
	assert.Equal(t, 4, snap.View.State.Timer.Seconds)
}

func TestBoard_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New(ctx, setUp(t, engine.Setup{}), Config{Clock: clockwork.NewFakeClockAt(kickoff), Logger: zaptest.NewLogger(t)})

	clientOut := make(chan Snapshot, 1)
	b.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	b.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdAddPoint, Side: engine.Home}}

	st, err := b.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.NumClients, "expected slow client to be dropped")
}

func TestBoard_LeaveClosesOutbox(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.board.Inbox() <- Leave{ClientID: "c1"}
	_, ok := <-h.out
	assert.False(t, ok)

	st, err := h.board.State(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.NumClients)
}

func TestBoard_Shutdown_StopsTimer_NoFire(t *testing.T) {
	h := start(t, setUp(t, engine.Setup{}), engine.Rules{})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.send(engine.Command{Type: engine.CmdStartTimeout, Side: engine.Home})
	_ = recvSnapshot(t, h.out, 100*time.Millisecond)

	h.board.Inbox() <- Shutdown{}
	select {
	case <-h.board.Done():
	case <-time.After(time.Second):
		t.Fatal("board did not stop")
	}

	h.clock.Advance(3 * tickInterval)
	recvNoSnapshot(t, h.out, 50*time.Millisecond)

	_, err := h.board.State(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
