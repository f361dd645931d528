// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestVersion identifies the on-disk layout version.
const ManifestVersion = "1.0"

// manifestFileName is the manifest file at the memory root.
const manifestFileName = "memory_manifest.json"

// Manifest summarizes the memory store at its root.
type Manifest struct {
	Version            string    `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
	LastUpdated        time.Time `json:"lastUpdated"`
	TotalConversations int       `json:"totalConversations"`
	TotalMemories      int       `json:"totalMemories"`
}

// loadOrCreateManifest reads the manifest at the memory root, creating a
// fresh one when absent. An unparseable manifest is replaced rather than
// failing the whole store.
func loadOrCreateManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, manifestFileName)

	data, err := os.ReadFile(path)
	if err == nil {
		var m Manifest
		if jsonErr := json.Unmarshal(data, &m); jsonErr == nil {
			return &m, nil
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	m := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   time.Now().UTC(),
		LastUpdated: time.Now().UTC(),
	}
	if err := saveManifest(root, m); err != nil {
		return nil, err
	}
	return m, nil
}

// saveManifest rewrites the manifest file in full.
func saveManifest(root string, m *Manifest) error {
	m.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(root, manifestFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}
