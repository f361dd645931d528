// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no conversation with the requested id
// exists in the store. Mutating operations never silently ignore it.
var ErrNotFound = errors.New("conversation not found")

// ConversationsDir is the sub-directory of the memory root that holds
// conversation files.
const ConversationsDir = "conversations"

// Store provides durable CRUD for conversation records.
//
// The authoritative format is one JSON document per record; a markdown
// export with the same basename is regenerated on every save for human
// consumption. Every mutating operation is read-modify-write with no
// locking: two operations racing on the same id resolve as last-write-wins.
// That is intentional; the store is built for a single interactive client
// driving one coordinator instance.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given memory root directory.
func NewStore(root string) *Store {
	return &Store{dir: filepath.Join(root, ConversationsDir)}
}

// Dir returns the conversations directory this store reads and writes.
func (s *Store) Dir() string {
	return s.dir
}

// Create allocates a fresh conversation id, writes an empty record with the
// current time as start time and returns the id.
func (s *Store) Create(title, userName, project string) (string, error) {
	now := time.Now().UTC()
	rec := &ConversationRecord{
		ID:        newConversationID(now),
		Title:     SanitizeTitle(title),
		StartTime: now,
		UserName:  userName,
		Project:   project,
	}

	if err := s.Save(rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Save serializes the full record with overwrite semantics. The previous
// file content is replaced, not patched; a failure mid-write can corrupt
// the record, which is accepted for this scope.
func (s *Store) Save(rec *ConversationRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("cannot save record without an id")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create conversations directory %s: %w", s.dir, err)
	}

	base := s.baseName(rec)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}
	jsonPath := filepath.Join(s.dir, base+".json")
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", jsonPath, err)
	}

	md, err := ToMarkdown(rec)
	if err != nil {
		return fmt.Errorf("failed to render markdown export for %s: %w", rec.ID, err)
	}
	mdPath := filepath.Join(s.dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write markdown export %s: %w", mdPath, err)
	}

	return nil
}

// Load scans the conversation directory for a file belonging to the id and
// parses it. The JSON document is preferred; a markdown file without a JSON
// sibling yields only the metadata shell. An unparseable file is treated as
// "no record", favoring availability over strict correctness.
func (s *Store) Load(id string) (*ConversationRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to list conversations directory %s: %w", s.dir, err)
	}

	marker := "_" + id + "_"
	var mdName string
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), marker) {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".json":
			return s.loadJSON(filepath.Join(s.dir, e.Name()), id)
		case ".md":
			mdName = e.Name()
		}
	}

	if mdName != "" {
		return s.loadMarkdown(filepath.Join(s.dir, mdName), id)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ListRecent returns up to limit records ordered by descending filename.
// Filenames are date-prefixed, so lexicographic descending order
// approximates recency.
func (s *Store) ListRecent(limit int) ([]*ConversationRecord, error) {
	names, err := s.jsonFiles()
	if err != nil {
		return nil, err
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	records := make([]*ConversationRecord, 0, len(names))
	for _, name := range names {
		rec, err := s.loadJSON(filepath.Join(s.dir, name), "")
		if err != nil {
			continue // unparseable file, skip
		}
		records = append(records, rec)
	}
	return records, nil
}

// Search performs a case-insensitive raw-text containment scan over every
// stored record and returns the parsed matches.
func (s *Store) Search(substring string) ([]*ConversationRecord, error) {
	names, err := s.jsonFiles()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(substring)
	var matches []*ConversationRecord
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", path, err)
		}
		if !strings.Contains(strings.ToLower(string(data)), needle) {
			continue
		}
		rec, err := s.loadJSON(path, "")
		if err != nil {
			continue
		}
		matches = append(matches, rec)
	}
	return matches, nil
}

// AddDecision appends a decision to the conversation and persists it.
func (s *Store) AddDecision(id, point, decision, rationale string) error {
	return s.mutate(id, func(rec *ConversationRecord) {
		rec.AddDecision(point, decision, rationale)
	})
}

// AddProblemSolution appends a problem/solution pair and persists it.
func (s *Store) AddProblemSolution(id, problem, solution, result string) error {
	return s.mutate(id, func(rec *ConversationRecord) {
		rec.AddProblemSolution(problem, solution, result)
	})
}

// AddTodo appends a todo item and persists it, returning the todo id.
func (s *Store) AddTodo(id, task, priority string) (string, error) {
	var todoID string
	err := s.mutate(id, func(rec *ConversationRecord) {
		todoID = rec.AddTodo(task, priority)
	})
	return todoID, err
}

// CompleteTodo marks a todo as done and persists the record.
func (s *Store) CompleteTodo(id, todoID string) error {
	var found bool
	err := s.mutate(id, func(rec *ConversationRecord) {
		found = rec.CompleteTodo(todoID)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("todo %s not found in conversation %s", todoID, id)
	}
	return nil
}

// UpdateSummary replaces the free-text summary and persists the record.
func (s *Store) UpdateSummary(id, summary string) error {
	return s.mutate(id, func(rec *ConversationRecord) {
		rec.Summary = summary
	})
}

// AddTechnology records a referenced technology and persists the record.
func (s *Store) AddTechnology(id, name string) error {
	return s.mutate(id, func(rec *ConversationRecord) {
		rec.AddTechnology(name)
	})
}

// EndConversation stamps the end time. Once set it is never cleared;
// ending an already-closed conversation is a no-op.
func (s *Store) EndConversation(id string) error {
	return s.mutate(id, func(rec *ConversationRecord) {
		if rec.EndTime.IsZero() {
			rec.EndTime = time.Now().UTC()
		}
	})
}

// mutate is the shared read-modify-write path for all mutating operations.
// A missing record is a hard error, never silently ignored.
func (s *Store) mutate(id string, fn func(*ConversationRecord)) error {
	rec, err := s.Load(id)
	if err != nil {
		return err
	}
	fn(rec)
	return s.Save(rec)
}

func (s *Store) loadJSON(path, id string) (*ConversationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", path, err)
	}
	var rec ConversationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		if id == "" {
			id = path
		}
		return nil, fmt.Errorf("%w: %s (unparseable record file)", ErrNotFound, id)
	}
	return &rec, nil
}

func (s *Store) loadMarkdown(path, id string) (*ConversationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", path, err)
	}
	rec, err := ParseMarkdown(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s (unparseable record file)", ErrNotFound, id)
	}
	return rec, nil
}

func (s *Store) jsonFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list conversations directory %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// baseName derives the shared basename for a record's JSON and markdown
// files: <YYYY-MM-DD>_<id>_<slug>.
func (s *Store) baseName(rec *ConversationRecord) string {
	return fmt.Sprintf("%s_%s_%s",
		rec.StartTime.Format("2006-01-02"), rec.ID, SlugifyTitle(rec.Title))
}

// newConversationID builds an id from a timestamp plus a random suffix.
// Ids are opaque and immutable after creation.
func newConversationID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s", now.Format("20060102150405"), suffix)
}
