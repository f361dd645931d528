// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/muninn-mcp/muninn/internal/record"
)

// Entry kinds.
const (
	EntryTypeConversation = "conversation"
	EntryTypeDecision     = "decision"
	EntryTypeProblem      = "problem"
)

// Base relevance weights per entry kind. These are fixed constants used as
// the unit of accumulation during retrieval scoring, not learned values.
const (
	WeightConversation = 1.0
	WeightDecision     = 0.9
	WeightProblem      = 0.95
)

// SemanticIndexDir is the sub-directory of the memory root that holds the
// index snapshot.
const SemanticIndexDir = "semantic_index"

// indexFileName is the on-disk snapshot file.
const indexFileName = "index.json"

// problemIDRunes caps the truncated problem text used in composite ids.
const problemIDRunes = 20

// Entry is a denormalized projection of part of a conversation record for
// search. An entry fans out into every keyword bucket it matches; the
// duplicate bucket membership is intentional denormalization.
type Entry struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Keywords       []string  `json:"keywords"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversationId"`
	RelevanceScore float64   `json:"relevanceScore"`
}

// Stats summarizes the index contents. TotalEntries sums bucket lengths and
// therefore counts fan-out duplicates, by design.
type Stats struct {
	KeywordCount int `json:"keyword_count"`
	TotalEntries int `json:"total_entries"`
}

// Index maintains the keyword -> entries mapping and its on-disk snapshot.
//
// A secondary id-keyed map is maintained alongside the keyword buckets so
// resolving a scored id back to an entry is a deterministic O(1) lookup
// instead of a bucket scan in map-iteration order.
//
// All methods are safe for concurrent use; the maps are guarded by a
// mutex because mutation and persistence are not otherwise atomic under
// preemptive scheduling.
type Index struct {
	mu      sync.RWMutex
	path    string
	buckets map[string][]*Entry
	byID    map[string]*Entry
}

// NewIndex creates an empty index whose snapshot lives under the memory root.
func NewIndex(root string) *Index {
	return &Index{
		path:    filepath.Join(root, SemanticIndexDir, indexFileName),
		buckets: make(map[string][]*Entry),
		byID:    make(map[string]*Entry),
	}
}

// Path returns the snapshot file path.
func (ix *Index) Path() string {
	return ix.path
}

// Load reads the snapshot from disk. A missing or corrupt snapshot is
// treated as "start empty", never as an error: the index prefers an
// available-but-stale posture over strict correctness.
func (ix *Index) Load() {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		return
	}

	var buckets map[string][]*Entry
	if err := json.Unmarshal(data, &buckets); err != nil {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.buckets = buckets
	if ix.buckets == nil {
		ix.buckets = make(map[string][]*Entry)
	}
	ix.byID = make(map[string]*Entry)
	for _, entries := range ix.buckets {
		for _, e := range entries {
			ix.byID[e.ID] = e
		}
	}
}

// Save persists the whole index as one JSON document keyed by keyword.
func (ix *Index) Save() error {
	ix.mu.RLock()
	data, err := json.MarshalIndent(ix.buckets, "", "  ")
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	dir := filepath.Dir(ix.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory %s: %w", dir, err)
	}
	if err := os.WriteFile(ix.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", ix.path, err)
	}
	return nil
}

// IndexConversation rebuilds the index entries for a record and persists
// the snapshot. All existing entries owned by the record's conversation id
// are removed first, so re-indexing reflects only the record's current
// state instead of accumulating stale duplicates across calls.
func (ix *Index) IndexConversation(rec *record.ConversationRecord) error {
	entries := buildEntries(rec)

	ix.mu.Lock()
	ix.removeByConversationLocked(rec.ID)
	for _, e := range entries {
		ix.byID[e.ID] = e
		for _, kw := range e.Keywords {
			ix.buckets[kw] = append(ix.buckets[kw], e)
		}
	}
	ix.mu.Unlock()

	return ix.Save()
}

// RemoveConversation drops every entry owned by the conversation id and
// persists the snapshot.
func (ix *Index) RemoveConversation(conversationID string) error {
	ix.mu.Lock()
	ix.removeByConversationLocked(conversationID)
	ix.mu.Unlock()
	return ix.Save()
}

// ClearOldEntries evicts entries older than daysToKeep calendar days and
// persists the snapshot. The cutoff is the UTC midnight daysToKeep days
// before today, and an entry is kept when its timestamp is not before that
// cutoff. With daysToKeep=0 every entry stamped today survives, so a sweep
// run immediately after indexing never evicts the fresh entries. Buckets
// that become empty are dropped entirely. Returns the number of bucket
// slots evicted.
func (ix *Index) ClearOldEntries(daysToKeep int) (int, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := midnight.AddDate(0, 0, -daysToKeep)

	ix.mu.Lock()
	removed := 0
	for kw, entries := range ix.buckets {
		kept := entries[:0]
		for _, e := range entries {
			if !e.Timestamp.Before(cutoff) {
				kept = append(kept, e)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(ix.buckets, kw)
		} else {
			ix.buckets[kw] = kept
		}
	}
	for id, e := range ix.byID {
		if e.Timestamp.Before(cutoff) {
			delete(ix.byID, id)
		}
	}
	ix.mu.Unlock()

	if err := ix.Save(); err != nil {
		return removed, err
	}
	return removed, nil
}

// EntriesFor returns the bucket for a keyword. The returned slice is a
// copy; entries themselves are shared and must not be mutated.
func (ix *Index) EntriesFor(keyword string) []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	bucket := ix.buckets[keyword]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*Entry, len(bucket))
	copy(out, bucket)
	return out
}

// Resolve looks up an entry by id in the secondary map.
func (ix *Index) Resolve(id string) (*Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.byID[id]
	return e, ok
}

// GetStats returns the keyword bucket count and the summed bucket lengths.
func (ix *Index) GetStats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	total := 0
	for _, entries := range ix.buckets {
		total += len(entries)
	}
	return Stats{KeywordCount: len(ix.buckets), TotalEntries: total}
}

// removeByConversationLocked drops all entries owned by a conversation id.
// Callers must hold the write lock.
func (ix *Index) removeByConversationLocked(conversationID string) {
	for kw, entries := range ix.buckets {
		kept := entries[:0]
		for _, e := range entries {
			if e.ConversationID != conversationID {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(ix.buckets, kw)
		} else {
			ix.buckets[kw] = kept
		}
	}
	for id, e := range ix.byID {
		if e.ConversationID == conversationID {
			delete(ix.byID, id)
		}
	}
}

// buildEntries derives the index entries for a record: one conversation
// level entry plus one entry per decision and per problem/solution pair.
// Composite ids embed the slice index, so decisions sharing a point and
// problems sharing a prefix still get distinct ids. Entries inherit the
// record's start time as their timestamp.
func buildEntries(rec *record.ConversationRecord) []*Entry {
	var entries []*Entry

	convText := strings.Join(append([]string{rec.Title, rec.Summary, rec.Project},
		rec.Technologies...), " ")
	if kws := ExtractKeywords(convText); len(kws) > 0 {
		entries = append(entries, &Entry{
			ID:             rec.ID,
			Type:           EntryTypeConversation,
			Keywords:       kws,
			Timestamp:      rec.StartTime,
			ConversationID: rec.ID,
			RelevanceScore: WeightConversation,
		})
	}

	for i, d := range rec.Decisions {
		kws := ExtractKeywords(d.Decision + " " + d.Rationale)
		if len(kws) == 0 {
			continue
		}
		entries = append(entries, &Entry{
			ID:             fmt.Sprintf("%s_decision_%d_%s", rec.ID, i, d.Point),
			Type:           EntryTypeDecision,
			Keywords:       kws,
			Timestamp:      rec.StartTime,
			ConversationID: rec.ID,
			RelevanceScore: WeightDecision,
		})
	}

	for i, p := range rec.Problems {
		kws := ExtractKeywords(p.Problem + " " + p.Solution)
		if len(kws) == 0 {
			continue
		}
		entries = append(entries, &Entry{
			ID:             fmt.Sprintf("%s_problem_%d_%s", rec.ID, i, truncateRunes(p.Problem, problemIDRunes)),
			Type:           EntryTypeProblem,
			Keywords:       kws,
			Timestamp:      rec.StartTime,
			ConversationID: rec.ID,
			RelevanceScore: WeightProblem,
		})
	}

	return entries
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
