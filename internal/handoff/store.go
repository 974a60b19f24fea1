package handoff

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
)

// ErrNoPayload is returned when a session has not published a payload.
var ErrNoPayload = errors.New("no flipbook data found")

// Store keeps the last published payload of each session under the fixed
// handoff key. The edit view is the only writer and the preview view the only
// reader; a publish replaces the previous payload.
type Store struct {
	cache *cache.Cache
}

// NewStore creates a store whose payloads expire after ttl.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	return &Store{cache: cache.New(ttl, cleanupInterval)}
}

func storeKey(sessionID string) string {
	return sessionID + ":" + constants.HandoffKey
}

// Publish serializes the state and stores it for the session.
func (s *Store) Publish(sessionID string, state book.State) error {
	data, err := Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding handoff payload: %w", err)
	}
	s.cache.Set(storeKey(sessionID), data, cache.DefaultExpiration)
	return nil
}

// PublishRaw stores an already serialized payload after checking it decodes.
func (s *Store) PublishRaw(sessionID string, data []byte) error {
	if _, err := Unmarshal(data); err != nil {
		return err
	}
	s.cache.Set(storeKey(sessionID), append([]byte(nil), data...), cache.DefaultExpiration)
	return nil
}

// Raw returns the serialized payload of a session.
func (s *Store) Raw(sessionID string) ([]byte, error) {
	v, ok := s.cache.Get(storeKey(sessionID))
	if !ok {
		return nil, ErrNoPayload
	}
	return v.([]byte), nil
}

// Load reads and decodes the payload of a session.
func (s *Store) Load(sessionID string) (book.State, error) {
	data, err := s.Raw(sessionID)
	if err != nil {
		return book.State{}, err
	}
	return Unmarshal(data)
}

// Delete removes the payload of a session.
func (s *Store) Delete(sessionID string) {
	s.cache.Delete(storeKey(sessionID))
}
