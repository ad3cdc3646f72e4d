package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"suma/internal/repository"
)

// VisitorIDs hands out the stable anonymous visitor id of this profile.
// The id is created once and never rotated.
type VisitorIDs struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() (uuid.UUID, error)

	mu sync.Mutex
	id string
}

// NewVisitorIDs creates a visitor id source over store
func NewVisitorIDs(store repository.Store, logger *slog.Logger) *VisitorIDs {
	return &VisitorIDs{
		store:  store,
		logger: logger.With("component", "visitor_ids"),
		now:    time.Now,
		newID:  uuid.NewRandom,
	}
}

// Get returns the stored id, creating and persisting one on first use.
// Storage failures still yield a usable id for this process.
func (v *VisitorIDs) Get(ctx context.Context) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.id != "" {
		return v.id
	}

	if id := v.load(ctx); id != "" {
		v.id = id
		return id
	}

	id := v.generate()
	encoded, _ := json.Marshal(id)
	if err := v.store.Set(ctx, repository.VisitorIDKey, string(encoded)); err != nil {
		v.logger.Warn("failed to persist visitor id", "error", err)
	}
	v.id = id
	return id
}

func (v *VisitorIDs) load(ctx context.Context) string {
	raw, err := v.store.Get(ctx, repository.VisitorIDKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			v.logger.Warn("failed to read visitor id", "error", err)
		}
		return ""
	}

	var id string
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		v.logger.Warn("stored visitor id is corrupt", "error", err)
		return ""
	}
	return id
}

func (v *VisitorIDs) generate() string {
	id, err := v.newID()
	if err != nil {
		return "anon-" + strconv.FormatInt(v.now().UnixMilli(), 10)
	}
	return id.String()
}
