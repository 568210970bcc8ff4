// Package database holds the persistence layer: client profiles and finished
// match records. The in-memory store is the default; the Postgres store is
// used when DATABASE_URL is configured.
package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/maximobesteiro/montoncito/internal/names"
)

// ErrProfileNotFound is returned by Get when the client has no profile yet.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a client's global identity: a caller-chosen display name keyed
// by the opaque client id the browser generates.
type Profile struct {
	ClientID    string    `json:"clientId"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileStore is the profile persistence contract shared by the in-memory
// and Postgres implementations.
type ProfileStore interface {
	// Get returns the profile for clientID or ErrProfileNotFound.
	Get(ctx context.Context, clientID string) (Profile, error)
	// GetOrCreate returns the existing profile, provisioning one with a
	// temporary display name when absent.
	GetOrCreate(ctx context.Context, clientID string) (Profile, error)
	// SetDisplayName upserts the profile with the given display name.
	SetDisplayName(ctx context.Context, clientID, displayName string) (Profile, error)
}

// MemoryProfileStore keeps profiles in a process-local map.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryProfileStore returns an empty in-memory store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]Profile)}
}

func (s *MemoryProfileStore) Get(_ context.Context, clientID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[clientID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *MemoryProfileStore) GetOrCreate(_ context.Context, clientID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[clientID]; ok {
		return p, nil
	}
	now := time.Now().UTC()
	p := Profile{
		ClientID:    clientID,
		DisplayName: "Player-" + names.ShortTag(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.profiles[clientID] = p
	return p, nil
}

func (s *MemoryProfileStore) SetDisplayName(_ context.Context, clientID, displayName string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p, ok := s.profiles[clientID]
	if ok {
		p.DisplayName = displayName
		p.UpdatedAt = now
	} else {
		p = Profile{
			ClientID:    clientID,
			DisplayName: displayName,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	s.profiles[clientID] = p
	return p, nil
}
