package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/volley-scoreboard/internal/board"
	"github.com/DoyleJ11/volley-scoreboard/internal/types"
)

const writeTimeout = 3 * time.Second

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*".
	OriginPatterns []string
}

// Handler upgrades to a websocket that receives a StateSnapshot after every
// change and accepts the same action messages as POST /actions.
func Handler(b *board.Board, log *zap.Logger, opts Options) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan board.Snapshot, 8)
		clientID := uuid.NewString()

		if err := b.Send(r.Context(), board.Join{ClientID: clientID, Outbox: out}); err != nil {
			conn.Close(websocket.StatusGoingAway, "board closed")
			return
		}
		log.Debug("client joined", zap.String("client", clientID))
		defer func() {
			// the board may already be gone; don't block on it
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = b.Send(ctx, board.Leave{ClientID: clientID})
			log.Debug("client left", zap.String("client", clientID))
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				view := snap.View
				msg := types.ServerMessage{Type: types.TypeStateSnapshot, Version: snap.Version, View: &view}
				if err := write(writeCtx, conn, msg); err != nil {
					log.Debug("write snapshot", zap.String("client", clientID), zap.Error(err))
					writeCancel()
					return
				}
			}
			if writeCtx.Err() == nil {
				// the board dropped us
				conn.Close(websocket.StatusTryAgainLater, "too slow")
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(writeCtx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read", zap.String("client", clientID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: types.TypeError, Error: "bad json"})
				continue
			}

			cmd, pos, err := cm.Command(b.DefaultRules())
			if err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: types.TypeError, Error: err.Error()})
				continue
			}

			if err := b.Send(r.Context(), board.FromClient{Cmd: cmd, At: pos}); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
