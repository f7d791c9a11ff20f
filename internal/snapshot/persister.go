// Package snapshot persists the whole match state as one schema-versioned
// record so a restarted board resumes where it left off.
package snapshot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
	"github.com/DoyleJ11/volley-scoreboard/internal/store"
)

const StorageKey = "scoreboard_state_v1"

// Persister writes are best-effort: a failed save is logged and the match
// goes on.
type Persister struct {
	store store.Store
	log   *zap.Logger
}

func NewPersister(st store.Store, log *zap.Logger) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Persister{store: st, log: log.Named("snapshot")}
}

func (p *Persister) Save(ctx context.Context, s engine.State) {
	data, err := Encode(s)
	if err != nil {
		p.log.Warn("encode snapshot", zap.Error(err))
		return
	}
	if err := p.store.Put(ctx, StorageKey, data); err != nil {
		p.log.Warn("save snapshot", zap.Error(err))
	}
}

// Restore returns the saved state, or a fresh one when nothing usable is
// stored. The bool reports whether a saved state was found.
func (p *Persister) Restore(ctx context.Context) (engine.State, bool) {
	data, err := p.store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p.log.Debug("no saved snapshot")
		return engine.NewState(), false
	case err != nil:
		p.log.Warn("load snapshot", zap.Error(err))
		return engine.NewState(), false
	}

	s, err := Decode(data)
	if err != nil {
		p.log.Warn("discarding corrupt snapshot", zap.Error(err), zap.Int("bytes", len(data)))
		return engine.NewState(), false
	}
	p.log.Info("restored snapshot",
		zap.Bool("setupCompleted", s.SetupCompleted),
		zap.Int("set", engine.CurrentSetNumber(s)),
	)
	return s, true
}
