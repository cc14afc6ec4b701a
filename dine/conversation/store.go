package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tabletalk/tabletalk-go/kv"
)

const keyPrefix = "conv:"

// Store persists one Record per restaurant id. Records are never deleted
// automatically; they survive app restarts until Clear is called.
type Store struct {
	kv  kv.Store
	now func() time.Time
}

// NewStore wraps the given key-value store.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

func recordKey(entityID string) string { return keyPrefix + entityID }

// Load returns the persisted record for entityID, or (nil, nil) when no
// conversation has been saved yet.
func (s *Store) Load(ctx context.Context, entityID string) (*Record, error) {
	if entityID == "" {
		return nil, fmt.Errorf("entityId is required")
	}
	raw, ok, err := s.kv.Get(ctx, recordKey(entityID))
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", entityID, err)
	}
	if !ok {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", entityID, err)
	}
	return &rec, nil
}

// Save overwrites the record for entityID, stamping UpdatedAt.
func (s *Store) Save(ctx context.Context, entityID string, rec *Record) error {
	if entityID == "" {
		return fmt.Errorf("entityId is required")
	}
	rec.UpdatedAt = s.now()
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", entityID, err)
	}
	if err := s.kv.Set(ctx, recordKey(entityID), raw); err != nil {
		return fmt.Errorf("save conversation %s: %w", entityID, err)
	}
	return nil
}

// Clear removes the persisted record for entityID.
func (s *Store) Clear(ctx context.Context, entityID string) error {
	return s.kv.Delete(ctx, recordKey(entityID))
}
