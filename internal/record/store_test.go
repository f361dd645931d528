// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDay(day string) (time.Time, error) {
	return time.Parse("2006-01-02", day)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestCreate_WritesJSONAndMarkdown(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Auth Redesign", "alice", "gateway")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var haveJSON, haveMD bool
	for _, e := range entries {
		assert.Contains(t, e.Name(), "_"+id+"_")
		assert.Contains(t, e.Name(), "auth-redesign")
		switch filepath.Ext(e.Name()) {
		case ".json":
			haveJSON = true
		case ".md":
			haveMD = true
		}
	}
	assert.True(t, haveJSON)
	assert.True(t, haveMD)
}

func TestCreate_UniqueIDs(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := store.Create("Same Title", "alice", "proj")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Cache Layer", "bob", "backend")
	require.NoError(t, err)

	require.NoError(t, store.AddDecision(id, "Eviction policy", "LRU", "simple and predictable"))
	require.NoError(t, store.AddProblemSolution(id, "stale reads", "versioned keys", "fixed"))
	todoID, err := store.AddTodo(id, "benchmark hit rate", PriorityHigh)
	require.NoError(t, err)
	require.NoError(t, store.AddTechnology(id, "Redis"))
	require.NoError(t, store.UpdateSummary(id, "Designed the cache layer."))

	rec, err := store.Load(id)
	require.NoError(t, err)

	assert.Equal(t, "Cache Layer", rec.Title)
	assert.Equal(t, "bob", rec.UserName)
	assert.Equal(t, "backend", rec.Project)
	assert.Equal(t, "Designed the cache layer.", rec.Summary)
	require.Len(t, rec.Decisions, 1)
	assert.Equal(t, "LRU", rec.Decisions[0].Decision)
	require.Len(t, rec.Problems, 1)
	assert.Equal(t, "versioned keys", rec.Problems[0].Solution)
	require.Len(t, rec.Todos, 1)
	assert.Equal(t, todoID, rec.Todos[0].ID)
	assert.Equal(t, PriorityHigh, rec.Todos[0].Priority)
	assert.False(t, rec.Todos[0].Done)
	assert.Equal(t, []string{"Redis"}, rec.Technologies)
	assert.True(t, rec.IsOpen())
}

func TestLoad_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("20240101000000-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Same signal when the directory exists but holds other records.
	_, err = store.Create("Something Else", "alice", "proj")
	require.NoError(t, err)
	_, err = store.Load("20240101000000-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_UnparseableJSONActsAsMissing(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Broken Record", "alice", "proj")
	require.NoError(t, err)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), e.Name()), []byte("{not json"), 0644))
		}
	}

	_, err = store.Load(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMutate_MissingRecordIsError(t *testing.T) {
	store := newTestStore(t)

	err := store.AddDecision("nope", "p", "d", "r")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.UpdateSummary("nope", "summary")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.EndConversation("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteTodo(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Todos", "alice", "proj")
	require.NoError(t, err)

	first, err := store.AddTodo(id, "first task", "")
	require.NoError(t, err)
	second, err := store.AddTodo(id, "second task", PriorityLow)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, store.CompleteTodo(id, first))

	rec, err := store.Load(id)
	require.NoError(t, err)
	assert.True(t, rec.Todos[0].Done)
	assert.False(t, rec.Todos[1].Done)

	// Completing again is idempotent, an unknown id is an error.
	require.NoError(t, store.CompleteTodo(id, first))
	err = store.CompleteTodo(id, "todo-99")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestEndConversation_SetOnce(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Ending", "alice", "proj")
	require.NoError(t, err)

	require.NoError(t, store.EndConversation(id))
	rec, err := store.Load(id)
	require.NoError(t, err)
	require.False(t, rec.IsOpen())
	ended := rec.EndTime

	require.NoError(t, store.EndConversation(id))
	rec, err = store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, ended, rec.EndTime)
}

func TestListRecent_OrderAndLimit(t *testing.T) {
	store := newTestStore(t)

	// Filenames are date-prefixed, so write records with distinct start
	// dates directly to control ordering.
	days := []string{"2024-01-10", "2024-03-05", "2024-02-20"}
	for i, day := range days {
		rec := &ConversationRecord{
			ID:    "20240101000000-rec" + string(rune('a'+i)),
			Title: "Record " + day,
		}
		var err error
		rec.StartTime, err = parseDay(day)
		require.NoError(t, err)
		require.NoError(t, store.Save(rec))
	}

	records, err := store.ListRecent(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Record 2024-03-05", records[0].Title)
	assert.Equal(t, "Record 2024-02-20", records[1].Title)
	assert.Equal(t, "Record 2024-01-10", records[2].Title)

	records, err = store.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Record 2024-03-05", records[0].Title)
}

func TestSearch_CaseInsensitiveContainment(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Gateway Timeouts", "alice", "edge")
	require.NoError(t, err)
	require.NoError(t, store.UpdateSummary(id, "Raised the upstream timeout to 30s."))

	_, err = store.Create("Unrelated", "alice", "edge")
	require.NoError(t, err)

	matches, err := store.Search("UPSTREAM TIMEOUT")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ID)

	matches, err = store.Search("no such phrase anywhere")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	matches, err := store.Search("anything")
	require.NoError(t, err)
	assert.Empty(t, matches)

	records, err := store.ListRecent(5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_MarkdownFallback(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create("Markdown Only", "alice", "proj")
	require.NoError(t, err)
	require.NoError(t, store.UpdateSummary(id, "kept in metadata"))
	require.NoError(t, store.AddDecision(id, "p", "d", "r"))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			require.NoError(t, os.Remove(filepath.Join(store.Dir(), e.Name())))
		}
	}

	rec, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Markdown Only", rec.Title)
	assert.Equal(t, "kept in metadata", rec.Summary)
	// Body sections are not recovered from the export.
	assert.Empty(t, rec.Decisions)
}

func TestSave_RequiresID(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(&ConversationRecord{Title: "no id"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "without an id"))
}

func TestSave_ErrNotFoundDistinguishable(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(&ConversationRecord{Title: "no id"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
