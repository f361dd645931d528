// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectContextDir is the sub-directory of the memory root that holds the
// project overview file.
const ProjectContextDir = "project_context"

// projectFileName is the on-disk project overview file.
const projectFileName = "project_overview.md"

// ProjectContext is the singleton project record: structured fields in a
// YAML frontmatter block, free-text overview as the markdown body.
type ProjectContext struct {
	Project     string    `yaml:"project"`
	Goals       []string  `yaml:"goals,omitempty"`
	Conventions []string  `yaml:"conventions,omitempty"`
	TechStack   []string  `yaml:"tech_stack,omitempty"`
	UpdatedAt   time.Time `yaml:"updated_at"`
	Overview    string    `yaml:"-"`
}

// DefaultProjectContext returns the default-constructed context used on
// first load.
func DefaultProjectContext(project string) *ProjectContext {
	return &ProjectContext{
		Project:   project,
		UpdatedAt: time.Now().UTC(),
	}
}

// ProjectStore persists the ProjectContext singleton as structured markdown.
type ProjectStore struct {
	path    string
	project string
}

// NewProjectStore creates a store rooted at the memory root.
func NewProjectStore(root, project string) *ProjectStore {
	return &ProjectStore{
		path:    filepath.Join(root, ProjectContextDir, projectFileName),
		project: project,
	}
}

// Path returns the project overview file path.
func (s *ProjectStore) Path() string {
	return s.path
}

// Load reads and parses the project overview, returning defaults when the
// file is missing.
func (s *ProjectStore) Load() (*ProjectContext, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProjectContext(s.project), nil
		}
		return nil, fmt.Errorf("failed to read project context %s: %w", s.path, err)
	}

	pc, err := parseProjectMarkdown(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse project context %s: %w", s.path, err)
	}
	return pc, nil
}

// Save rewrites the project overview file in full.
func (s *ProjectStore) Save(pc *ProjectContext) error {
	pc.UpdatedAt = time.Now().UTC()

	content, err := renderProjectMarkdown(pc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project context directory %s: %w", dir, err)
	}
	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write project context %s: %w", s.path, err)
	}
	return nil
}

// renderProjectMarkdown serializes the context as YAML frontmatter followed
// by the overview body.
func renderProjectMarkdown(pc *ProjectContext) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	fm, err := yaml.Marshal(pc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal project frontmatter: %w", err)
	}
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(pc.Overview))
	buf.WriteString("\n")

	return buf.String(), nil
}

// parseProjectMarkdown splits frontmatter from the body and unmarshals the
// structured fields.
func parseProjectMarkdown(content string) (*ProjectContext, error) {
	content = strings.TrimSpace(content)

	var pc ProjectContext
	if !strings.HasPrefix(content, "---") {
		pc.Overview = content
		return &pc, nil
	}

	lines := strings.Split(content, "\n")
	closingIndex := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIndex = i
			break
		}
	}
	if closingIndex == -1 {
		return nil, fmt.Errorf("frontmatter not properly closed")
	}

	fm := strings.Join(lines[1:closingIndex], "\n")
	if err := yaml.Unmarshal([]byte(fm), &pc); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if closingIndex+1 < len(lines) {
		pc.Overview = strings.TrimSpace(strings.Join(lines[closingIndex+1:], "\n"))
	}
	return &pc, nil
}
