// Package board runs the single match as an actor: one goroutine owns the
// state, applies every command through the engine, drives the one-second
// countdown tick and fans the rendered view out to subscribers.
package board

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

const tickInterval = time.Second

type Msg interface{ isBoardMsg() }

// FromClient carries one command. A non-empty At addresses the side by its
// current screen position instead of Cmd.Side.
type FromClient struct {
	Cmd engine.Command
	At  engine.Position
}

func (FromClient) isBoardMsg() {}

// Join registers a subscriber. Outbox must be buffered: a client that
// cannot take a snapshot immediately is dropped and its outbox closed.
type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isBoardMsg() {}

type Leave struct{ ClientID string }

func (Leave) isBoardMsg() {}

type Shutdown struct{}

func (Shutdown) isBoardMsg() {}

type GetState struct {
	Reply chan Status
}

func (GetState) isBoardMsg() {}

// tick is sent by the countdown timer armed under generation gen.
type tick struct{ gen uint64 }

func (tick) isBoardMsg() {}

type Snapshot struct {
	Version int
	View    engine.View
}

type Status struct {
	Version    int
	NumClients int
	State      engine.State
}

// Saver receives every accepted state.
type Saver interface {
	Save(ctx context.Context, s engine.State)
}

type Config struct {
	Clock clockwork.Clock
	Saver Saver

	// Rules apply to a StartMatch that carries none.
	Rules  engine.Rules
	Logger *zap.Logger
}

type Board struct {
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot

	clock    clockwork.Clock
	saver    Saver
	defaults engine.Rules
	log      *zap.Logger

	// tickGen identifies the armed countdown; ticks from older generations
	// are dropped.
	tickGen   uint64
	tickTimer clockwork.Timer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts the board from initial, typically a restored snapshot. A
// running countdown resumes ticking and a pending scheduled start is
// recomputed against the current time.
func New(parent context.Context, initial engine.State, cfg Config) *Board {
	ctx, cancel := context.WithCancel(parent)

	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Rules == (engine.Rules{}) {
		cfg.Rules = engine.DefaultRules()
	}

	b := &Board{
		inbox:    make(chan Msg, 64),
		state:    initial.Clone(),
		clients:  make(map[string]chan Snapshot),
		clock:    cfg.Clock,
		saver:    cfg.Saver,
		defaults: engine.NormalizeRules(cfg.Rules),
		log:      cfg.Logger.Named("board"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if b.state.Timer.Active {
		b.armTick()
	}
	b.handle(engine.Command{Type: engine.CmdResume})

	go b.loop()
	return b
}

func (b *Board) loop() {
	defer close(b.done)
	for {
		select {
		case <-b.ctx.Done():
			b.shutdown()
			return

		case m := <-b.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				b.clients[msg.ClientID] = msg.Outbox
				select {
				case msg.Outbox <- b.snapshot():
				default:
					close(msg.Outbox)
					delete(b.clients, msg.ClientID)
				}

			case Leave:
				if ch, ok := b.clients[msg.ClientID]; ok {
					close(ch)
					delete(b.clients, msg.ClientID)
				}

			case FromClient:
				cmd := msg.Cmd
				if msg.At != "" {
					cmd.Side = b.state.SideAt(msg.At)
				}
				b.handle(cmd)

			case tick:
				if msg.gen != b.tickGen {
					b.log.Debug("dropping stale tick", zap.Uint64("gen", msg.gen), zap.Uint64("current", b.tickGen))
					break
				}
				b.tickTimer = nil
				b.handle(engine.Command{Type: engine.CmdTick})

			case GetState:
				msg.Reply <- Status{
					Version:    b.version,
					NumClients: len(b.clients),
					State:      b.state.Clone(),
				}

			case Shutdown:
				b.shutdown()
				return
			}
		}
	}
}

// handle applies cmd and, when the engine accepts it, persists and
// broadcasts the result. Rejected commands leave everything untouched.
func (b *Board) handle(cmd engine.Command) {
	if cmd.At.IsZero() {
		cmd.At = b.clock.Now()
	}
	if cmd.Type == engine.CmdStartMatch && cmd.Rules == nil {
		rules := b.defaults
		cmd.Rules = &rules
	}

	events, next, err := engine.Apply(b.state, cmd)
	if err != nil {
		level := zap.DebugLevel
		if errors.Is(err, engine.ErrUnsupportedCommand) {
			level = zap.WarnLevel
		}
		b.log.Check(level, "command rejected").Write(
			zap.String("command", string(cmd.Type)),
			zap.Stringer("side", cmd.Side),
			zap.Error(err),
		)
		return
	}
	if cmd.Type == engine.CmdResume && len(events) == 0 {
		return
	}

	b.state = next
	b.version++
	b.logEvents(events)
	b.syncTick(cmd.Type, events)

	if b.saver != nil {
		b.saver.Save(b.ctx, b.state)
	}
	b.broadcast(b.snapshot())
}

// syncTick keeps exactly one countdown armed while the state's timer runs.
func (b *Board) syncTick(cmd engine.CommandType, events []engine.Event) {
	switch {
	case !b.state.Timer.Active:
		b.stopTick()
	case engine.ContainsEvent(events, engine.EvtTimerStarted):
		b.armTick()
	case cmd == engine.CmdTick:
		b.armTick()
	}
}

func (b *Board) armTick() {
	b.stopTick()
	b.tickGen++
	gen := b.tickGen
	b.tickTimer = b.clock.AfterFunc(tickInterval, func() {
		select {
		case b.inbox <- tick{gen: gen}:
		case <-b.ctx.Done():
		}
	})
}

func (b *Board) stopTick() {
	if b.tickTimer != nil {
		b.tickTimer.Stop()
		b.tickTimer = nil
	}
	// invalidate anything already queued
	b.tickGen++
}

func (b *Board) logEvents(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtMatchSetup, engine.EvtMatchStarted, engine.EvtMatchReset:
			b.log.Info("match lifecycle", zap.String("event", string(ev.Type)))
		case engine.EvtSetWon:
			b.log.Info("set won",
				zap.Int("set", ev.Set),
				zap.Stringer("side", ev.Side),
				zap.Int("home", ev.HomeScore),
				zap.Int("guest", ev.GuestScore),
			)
		case engine.EvtMatchEnded:
			b.log.Info("match ended", zap.String("winner", string(ev.Winner)))
		case engine.EvtTimerStarted, engine.EvtTimerExpired:
			b.log.Debug("timer", zap.String("event", string(ev.Type)), zap.String("timer", string(ev.Timer)), zap.Int("seconds", ev.Seconds))
		}
	}
}

func (b *Board) snapshot() Snapshot {
	return Snapshot{Version: b.version, View: engine.Render(b.state.Clone())}
}

func (b *Board) shutdown() {
	b.stopTick()
	for id, ch := range b.clients {
		close(ch) // Tell client no more snapshots
		delete(b.clients, id)
	}
	b.cancel()
}

func (b *Board) broadcast(snap Snapshot) {
	for id, ch := range b.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			b.log.Debug("dropping slow client", zap.String("client", id))
			close(ch)
			delete(b.clients, id)
		}
	}
}

// Inbox exposes the board's mailbox to the transport layers.
func (b *Board) Inbox() chan<- Msg { return b.inbox }

// Send delivers m unless ctx or the board ends first.
func (b *Board) Send(ctx context.Context, m Msg) error {
	select {
	case b.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrClosed
	}
}

// State asks the loop for a consistent copy of the current state.
func (b *Board) State(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := b.Send(ctx, GetState{Reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-b.done:
		return Status{}, ErrClosed
	}
}

// Done is closed once the loop has exited.
func (b *Board) Done() <-chan struct{} { return b.done }

// DefaultRules are the rules a StartMatch without rules receives.
func (b *Board) DefaultRules() engine.Rules { return b.defaults }

var ErrClosed = errors.New("board closed")
