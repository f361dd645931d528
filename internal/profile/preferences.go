// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package profile holds the two singleton-per-store records owned by the
// coordinator: user preferences and project context. Each mutation is
// followed by a full rewrite to disk.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// UserProfileDir is the sub-directory of the memory root that holds the
// preferences file.
const UserProfileDir = "user_profile"

// preferencesFileName is the on-disk preferences file.
const preferencesFileName = "user_preferences.json"

// UserPreferences is the singleton preference record for the store's user.
type UserPreferences struct {
	UserID        string    `json:"user_id"`
	PreferredName string    `json:"preferred_name,omitempty"`
	Language      string    `json:"language"`
	ResponseStyle string    `json:"response_style"`
	Verbosity     string    `json:"verbosity"`
	Persona       string    `json:"persona"`
	Interests     []string  `json:"interests,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultPreferences returns the default-constructed preferences used on
// first load.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:        userID,
		Language:      "en",
		ResponseStyle: "balanced",
		Verbosity:     "normal",
		Persona:       "default",
		UpdatedAt:     time.Now().UTC(),
	}
}

// PreferencesStore persists the UserPreferences singleton as flat JSON.
type PreferencesStore struct {
	path   string
	userID string
}

// NewPreferencesStore creates a store rooted at the memory root.
func NewPreferencesStore(root, userID string) *PreferencesStore {
	return &PreferencesStore{
		path:   filepath.Join(root, UserProfileDir, preferencesFileName),
		userID: userID,
	}
}

// Path returns the preferences file path.
func (s *PreferencesStore) Path() string {
	return s.path
}

// Load reads the preferences file, returning defaults when the file is
// missing. An unreadable or unparseable file is an error; the caller
// decides whether to fall back.
func (s *PreferencesStore) Load() (*UserPreferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPreferences(s.userID), nil
		}
		return nil, fmt.Errorf("failed to read preferences %s: %w", s.path, err)
	}

	var prefs UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", s.path, err)
	}
	return &prefs, nil
}

// Save rewrites the preferences file in full.
func (s *PreferencesStore) Save(prefs *UserPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory %s: %w", dir, err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences %s: %w", s.path, err)
	}
	return nil
}
