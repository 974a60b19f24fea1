// Package uploads keeps uploaded file bytes in memory and hands out transient
// object URLs for them. Blobs live as long as the authoring session that
// created them and are never written to disk.
package uploads

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// URLPrefix is the route object URLs are served under.
const URLPrefix = "/api/v1/files/"

// ErrNotFound is returned for unknown or expired blobs, and for blobs owned by
// another session.
var ErrNotFound = errors.New("file not found")

// Blob is one uploaded file.
type Blob struct {
	ID        string
	Session   string
	Name      string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

// Size returns the length of the blob's data.
func (b *Blob) Size() int64 {
	return int64(len(b.Data))
}

// URL returns the object URL of the blob.
func (b *Blob) URL() string {
	return URLPrefix + b.ID
}

// Store is an in-memory blob store with expiry.
type Store struct {
	cache *cache.Cache
}

// NewStore creates a store whose blobs expire after ttl.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	return &Store{cache: cache.New(ttl, cleanupInterval)}
}

// Put stores data and returns the new blob.
func (s *Store) Put(session, name, mimeType string, data []byte) *Blob {
	b := &Blob{
		ID:        uuid.New().String(),
		Session:   session,
		Name:      name,
		MIMEType:  mimeType,
		Data:      data,
		CreatedAt: time.Now(),
	}
	s.cache.Set(b.ID, b, cache.DefaultExpiration)
	return b
}

// Get returns a blob by ID.
func (s *Store) Get(id string) (*Blob, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Blob), nil
}

// GetForSession returns a blob only if it belongs to session.
func (s *Store) GetForSession(session, id string) (*Blob, error) {
	b, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if b.Session != session {
		return nil, ErrNotFound
	}
	return b, nil
}

// Delete removes a blob.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// DeleteSession removes every blob of a session and returns how many were removed.
func (s *Store) DeleteSession(session string) int {
	n := 0
	for id, item := range s.cache.Items() {
		if b, ok := item.Object.(*Blob); ok && b.Session == session {
			s.cache.Delete(id)
			n++
		}
	}
	return n
}

// Count returns the number of stored blobs, including expired ones not yet purged.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
