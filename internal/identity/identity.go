// Package identity manages the locally persisted active user.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/okalkan/diziquiz/internal/kv"
	"github.com/okalkan/diziquiz/internal/model"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 20
)

// ErrInvalidUsername reports a username outside the 2-20 character range.
var ErrInvalidUsername = errors.New("username must be 2-20 characters")

// Store persists the single active identity.
type Store struct {
	kv kv.Store
	mu sync.Mutex
}

// New constructs an identity store over the key-value backend.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// ValidateUsername trims the username and checks its length. It returns
// the trimmed username.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// Login validates the username and persists it as the active identity,
// replacing any previous one. Validation failures leave stored state
// untouched.
func (s *Store) Login(ctx context.Context, username string) (model.Identity, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return model.Identity{}, err
	}
	id := model.Identity{
		Username:  username,
		LoginDate: time.Now(),
	}
	data, err := json.Marshal(id)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, kv.KeyIdentity, data); err != nil {
		return model.Identity{}, fmt.Errorf("failed to save identity: %w", err)
	}
	return id, nil
}

// Logout removes the persisted identity. Logging out while anonymous is
// not an error.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, kv.KeyIdentity); err != nil {
		return fmt.Errorf("failed to remove identity: %w", err)
	}
	return nil
}

// Current returns the active identity, or false when anonymous.
func (s *Store) Current(ctx context.Context) (model.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.kv.Get(ctx, kv.KeyIdentity)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return model.Identity{}, false, nil
		}
		return model.Identity{}, false, fmt.Errorf("failed to load identity: %w", err)
	}
	var id model.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return model.Identity{}, false, fmt.Errorf("failed to decode identity: %w", err)
	}
	return id, true, nil
}
