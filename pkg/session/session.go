package session

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// Revision - bumped whenever the stored structure changes, older files are ignored
const Revision = 2

// Session - persisted authorization state
type Session struct {
	Revision     int           `json:"revision"`
	IDToken      string        `json:"idToken"`
	RefreshToken string        `json:"refreshToken"`
	UserID       string        `json:"userId"`
	AuthTime     time.Time     `json:"authTime"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	Children     []child.Child `json:"children"`
}

// Store - session with its backing file
// Empty filename keeps the session in memory only.
type Store struct {
	Filename string
	Session  *Session
}

// NewSessionStore - in-memory store with a fresh session
func NewSessionStore() *Store {
	return &Store{Session: &Session{Revision: Revision}}
}

// InitSessionStore - creates the store and loads the session file (if any)
func InitSessionStore(filename string) (*Store, error) {
	store := NewSessionStore()
	store.Filename = filename

	if filename != "" {
		if err := store.Load(); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Load - reads the session file, missing file or older revision results in a fresh session
func (store *Store) Load() error {
	data, err := os.ReadFile(store.Filename)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("filename", store.Filename).Msg("No app session file found")
		store.Session = &Session{Revision: Revision}
		return nil
	} else if err != nil {
		return fmt.Errorf("unable to read app session file %v: %w", store.Filename, err)
	}

	session := &Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return fmt.Errorf("unable to decode app session file %v: %w", store.Filename, err)
	}

	if session.Revision == Revision {
		store.Session = session
		log.Info().Str("filename", store.Filename).Msg("Loaded app session from the file")
	} else {
		store.Session = &Session{Revision: Revision}
		log.Warn().Str("filename", store.Filename).Msg("App session file contains older revision of the state, ignoring")
	}

	return nil
}

// Save - stores the session to the file
func (store *Store) Save() error {
	if store.Filename == "" {
		return nil
	}

	log.Trace().Str("filename", store.Filename).Msg("Storing app session to the file")

	data, err := json.Marshal(store.Session)
	if err != nil {
		return fmt.Errorf("unable to marshal contents of app session file: %w", err)
	}

	if err := os.WriteFile(store.Filename, data, 0600); err != nil {
		return fmt.Errorf("unable to write app session file %v: %w", store.Filename, err)
	}

	return nil
}

// IsAuthorized - true if we hold tokens which are not known to be expired
func (s *Session) IsAuthorized(now time.Time) bool {
	return s.IDToken != "" && now.Before(s.ExpiresAt)
}

// Clear - forgets the tokens, keeps the cached children
func (s *Session) Clear() {
	s.IDToken = ""
	s.RefreshToken = ""
	s.AuthTime = time.Time{}
	s.ExpiresAt = time.Time{}
}
