// Package clisession persists the command-line client's signed-in user and
// its in-progress onboarding draft between invocations.
package clisession

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plusone-alumni/plusone/internal/models"
)

// OnboardingDraft is the wizard cursor and working copy kept between
// "onboard" commands. The backend only sees it on next/finish.
type OnboardingDraft struct {
	Step    int            `yaml:"step"`
	Profile models.Profile `yaml:"profile"`
}

type State struct {
	User       *models.CurrentUser `yaml:"user,omitempty"`
	Onboarding *OnboardingDraft    `yaml:"onboarding,omitempty"`
	SavedAt    time.Time           `yaml:"saved_at,omitempty"`
}

// SignedIn reports whether a user record is present.
func (s *State) SignedIn() bool {
	return s != nil && s.User != nil && s.User.UserID != ""
}

type Store struct {
	path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns an empty State when no session file exists yet.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	state := &State{}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", s.path, err)
	}
	return state, nil
}

// Save writes the state with owner-only permissions.
func (s *Store) Save(state *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	state.SavedAt = s.now().UTC()
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the session file; a missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
