package audio

import (
	"sync"

	"github.com/google/uuid"
)

// Cover is an image blob extracted from a track's tags.
type Cover struct {
	MIMEType string `json:"mime"`
	Data     []byte `json:"data"`
}

// CoverStore holds cover blobs under opaque handles.
type CoverStore struct {
	mu    sync.RWMutex
	blobs map[string]Cover
}

// NewCoverStore returns an empty store.
func NewCoverStore() *CoverStore {
	return &CoverStore{blobs: make(map[string]Cover)}
}

// Put stores a blob and returns its handle.
func (s *CoverStore) Put(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.blobs[id] = Cover{MIMEType: mimeType, Data: data}
	s.mu.Unlock()
	return id
}

// Get returns the blob for a live handle.
func (s *CoverStore) Get(id string) (Cover, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.blobs[id]
	return c, ok
}

// Release drops the blob. It reports false if the handle was unknown or
// already released.
func (s *CoverStore) Release(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return false
	}
	delete(s.blobs, id)
	return true
}

// Len returns the number of live handles.
func (s *CoverStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
