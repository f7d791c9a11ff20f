// Package device gives each scoreboard installation a stable identifier.
package device

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/volley-scoreboard/internal/store"
)

const StorageKey = "scoreboard_device_id"

// ID returns the stored device identifier, generating and saving a new one
// on first use. A store failure still yields an id, just not a durable one.
func ID(ctx context.Context, st store.Store, log *zap.Logger) string {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := st.Get(ctx, StorageKey)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Warn("load device id", zap.Error(err))
	}

	id := uuid.NewString()
	if err := st.Put(ctx, StorageKey, []byte(id)); err != nil {
		log.Warn("save device id", zap.Error(err))
	}
	log.Info("generated device id", zap.String("deviceID", id))
	return id
}
