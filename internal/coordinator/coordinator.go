// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package coordinator composes the record store, the keyword index and the
// two singleton stores behind one API. A Coordinator is ready as soon as
// Open returns; there is no separate initialize step or runtime readiness
// flag.
package coordinator

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/muninn-mcp/muninn/internal/config"
	"github.com/muninn-mcp/muninn/internal/index"
	"github.com/muninn-mcp/muninn/internal/profile"
	"github.com/muninn-mcp/muninn/internal/record"
	"github.com/muninn-mcp/muninn/internal/retrieval"
	"github.com/muninn-mcp/muninn/internal/stats"
)

// hitRelevanceScore is the coarse relevance reported by RetrieveMemories
// when any conversation matched. It is a placeholder constant, not a
// computed aggregate; callers must not over-interpret it.
const hitRelevanceScore = 0.8

// RetrievalResult is the unified answer to a memory query.
type RetrievalResult struct {
	MatchingConversations []*record.ConversationRecord
	UserPreferences       *profile.UserPreferences
	ProjectContext        *profile.ProjectContext
	RelevanceScore        float64
}

// Coordinator exclusively owns one record store, one keyword index and the
// two singleton stores. Stores reference each other only through ids.
//
// Every mutating operation is read-modify-write on files with no
// cross-process locking: two processes racing on the same conversation id
// resolve as last-write-wins. Intended deployment is one interactive client
// driving one coordinator instance at a time.
type Coordinator struct {
	cfg     *config.Config
	root    string
	store   *record.Store
	index   *index.Index
	engine  *retrieval.Engine
	prefsDB *profile.PreferencesStore
	projDB  *profile.ProjectStore

	prefs   *profile.UserPreferences
	project *profile.ProjectContext

	recorder *stats.Recorder // optional, best-effort

	manifest *Manifest

	// autoSaveFailures counts swallowed auto-save errors so a host can
	// alert on repeated failures instead of reading logs.
	autoSaveFailures atomic.Int64
}

// Open bootstraps the on-disk layout under cfg.Memory.Root and returns a
// ready-to-use coordinator. The keyword index and the singleton stores are
// loaded according to the configuration flags. recorder may be nil.
func Open(cfg *config.Config, recorder *stats.Recorder) (*Coordinator, error) {
	root := cfg.Memory.Root
	if root == "" {
		return nil, fmt.Errorf("memory root is required")
	}

	if err := ensureLayout(root); err != nil {
		return nil, err
	}

	manifest, err := loadOrCreateManifest(root)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		cfg:      cfg,
		root:     root,
		store:    record.NewStore(root),
		index:    index.NewIndex(root),
		prefsDB:  profile.NewPreferencesStore(root, cfg.Memory.UserID),
		projDB:   profile.NewProjectStore(root, cfg.Memory.Project),
		recorder: recorder,
		manifest: manifest,
	}
	c.engine = retrieval.NewEngine(c.index)

	if cfg.Index.Enabled {
		c.index.Load()
	}

	if cfg.Memory.LoadUserPreferences {
		prefs, err := c.prefsDB.Load()
		if err != nil {
			log.Printf("Warning: failed to load user preferences: %v", err)
			prefs = profile.DefaultPreferences(cfg.Memory.UserID)
		}
		c.prefs = prefs
	}

	if cfg.Memory.LoadProjectContext {
		project, err := c.projDB.Load()
		if err != nil {
			log.Printf("Warning: failed to load project context: %v", err)
			project = profile.DefaultProjectContext(cfg.Memory.Project)
		}
		c.project = project
	}

	return c, nil
}

// ensureLayout creates the standard sub-areas under the memory root.
func ensureLayout(root string) error {
	dirs := []string{
		root,
		filepath.Join(root, record.ConversationsDir),
		filepath.Join(root, profile.UserProfileDir),
		filepath.Join(root, profile.ProjectContextDir),
		filepath.Join(root, index.SemanticIndexDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Root returns the memory root directory.
func (c *Coordinator) Root() string {
	return c.root
}

// Store exposes the underlying record store for read-only callers.
func (c *Coordinator) Store() *record.Store {
	return c.store
}

// Preferences returns the owned user preferences singleton, or nil when
// preference loading is disabled.
func (c *Coordinator) Preferences() *profile.UserPreferences {
	return c.prefs
}

// ProjectContext returns the owned project context singleton, or nil when
// context loading is disabled.
func (c *Coordinator) ProjectContext() *profile.ProjectContext {
	return c.project
}

// Manifest returns a copy of the current manifest.
func (c *Coordinator) Manifest() Manifest {
	return *c.manifest
}

// IndexStats reports keyword and entry counts for the index.
func (c *Coordinator) IndexStats() index.Stats {
	return c.index.GetStats()
}

// AutoSaveFailures reports how many auto-save errors have been swallowed
// since the coordinator was opened.
func (c *Coordinator) AutoSaveFailures() int64 {
	return c.autoSaveFailures.Load()
}

// StartConversation creates a new conversation record, indexes it and
// returns its id.
func (c *Coordinator) StartConversation(title string) (string, error) {
	id, err := c.store.Create(title, c.cfg.Memory.UserID, c.cfg.Memory.Project)
	if err != nil {
		return "", err
	}

	c.manifest.TotalConversations++
	if err := c.reindex(id); err != nil {
		return "", err
	}
	c.autoSave()
	return id, nil
}

// RetrieveMemories ranks stored entries against the query, loads the
// related conversations and attaches the owned singletons. When semantic
// indexing is disabled the conversation list is empty immediately.
func (c *Coordinator) RetrieveMemories(query string, limit int) (*RetrievalResult, error) {
	result := &RetrievalResult{
		UserPreferences: c.prefs,
		ProjectContext:  c.project,
	}

	if !c.cfg.Index.Enabled {
		return result, nil
	}

	ids := c.engine.RelatedConversationIDs(query, limit)
	for _, id := range ids {
		rec, err := c.store.Load(id)
		if err != nil {
			// Index and record lifecycles are decoupled; a stale
			// index entry is not an error.
			continue
		}
		result.MatchingConversations = append(result.MatchingConversations, rec)
	}

	if len(result.MatchingConversations) > 0 {
		result.RelevanceScore = hitRelevanceScore
		c.recordRecall(result.MatchingConversations)
	}
	return result, nil
}

// SearchEntries exposes raw ranked index entries for callers that want
// entry-level matches instead of whole conversations.
func (c *Coordinator) SearchEntries(query string, limit int) []retrieval.Result {
	if !c.cfg.Index.Enabled {
		return nil
	}
	return c.engine.Search(query, limit)
}

// AddDecision records a decision on a conversation and re-indexes it.
func (c *Coordinator) AddDecision(id, point, decision, rationale string) error {
	if err := c.store.AddDecision(id, point, decision, rationale); err != nil {
		return err
	}
	return c.afterMutation(id)
}

// AddProblemSolution records a problem/solution pair and re-indexes.
func (c *Coordinator) AddProblemSolution(id, problem, solution, result string) error {
	if err := c.store.AddProblemSolution(id, problem, solution, result); err != nil {
		return err
	}
	return c.afterMutation(id)
}

// AddTodo appends a todo item and re-indexes, returning the todo id.
func (c *Coordinator) AddTodo(id, task, priority string) (string, error) {
	todoID, err := c.store.AddTodo(id, task, priority)
	if err != nil {
		return "", err
	}
	return todoID, c.afterMutation(id)
}

// CompleteTodo marks a todo as done.
func (c *Coordinator) CompleteTodo(id, todoID string) error {
	if err := c.store.CompleteTodo(id, todoID); err != nil {
		return err
	}
	return c.afterMutation(id)
}

// UpdateSummary replaces the conversation summary and re-indexes.
func (c *Coordinator) UpdateSummary(id, summary string) error {
	if err := c.store.UpdateSummary(id, summary); err != nil {
		return err
	}
	return c.afterMutation(id)
}

// AddTechnology records a referenced technology and re-indexes.
func (c *Coordinator) AddTechnology(id, name string) error {
	if err := c.store.AddTechnology(id, name); err != nil {
		return err
	}
	return c.afterMutation(id)
}

// EndConversation stamps the end time and re-indexes.
func (c *Coordinator) EndConversation(id string) error {
	if err := c.store.EndConversation(id); err != nil {
		return err
	}
	return c.afterMutation(id)
}

// UpdatePreferences mutates the owned preferences singleton and persists it.
func (c *Coordinator) UpdatePreferences(fn func(*profile.UserPreferences)) error {
	if c.prefs == nil {
		return fmt.Errorf("user preferences are not loaded")
	}
	fn(c.prefs)
	return c.prefsDB.Save(c.prefs)
}

// UpdateProjectContext mutates the owned project singleton and persists it.
func (c *Coordinator) UpdateProjectContext(fn func(*profile.ProjectContext)) error {
	if c.project == nil {
		return fmt.Errorf("project context is not loaded")
	}
	fn(c.project)
	return c.projDB.Save(c.project)
}

// CleanupOldMemories runs the age-based eviction sweep over the keyword
// index. Conversation files are never deleted here; index and record
// lifecycles are intentionally decoupled.
func (c *Coordinator) CleanupOldMemories(daysToKeep int) (int, error) {
	if !c.cfg.Index.Enabled {
		return 0, nil
	}
	removed, err := c.index.ClearOldEntries(daysToKeep)
	if err != nil {
		return removed, err
	}
	c.manifest.TotalMemories = c.index.GetStats().TotalEntries
	c.autoSave()
	return removed, nil
}

// SaveAll persists both singleton stores, the keyword index when enabled,
// and the manifest. Used both as an explicit API and as the shutdown hook.
func (c *Coordinator) SaveAll() error {
	if c.prefs != nil {
		if err := c.prefsDB.Save(c.prefs); err != nil {
			return err
		}
	}
	if c.project != nil {
		if err := c.projDB.Save(c.project); err != nil {
			return err
		}
	}
	if c.cfg.Index.Enabled {
		if err := c.index.Save(); err != nil {
			return err
		}
	}
	return saveManifest(c.root, c.manifest)
}

// afterMutation reloads and re-indexes the record, then runs the
// best-effort auto-save of the side-channel state.
func (c *Coordinator) afterMutation(id string) error {
	if err := c.reindex(id); err != nil {
		return err
	}
	c.autoSave()
	return nil
}

// reindex reloads a record and rebuilds its index entries.
func (c *Coordinator) reindex(id string) error {
	if !c.cfg.Index.Enabled {
		return nil
	}
	rec, err := c.store.Load(id)
	if err != nil {
		return err
	}
	if err := c.index.IndexConversation(rec); err != nil {
		return err
	}
	c.manifest.TotalMemories = c.index.GetStats().TotalEntries
	return nil
}

// autoSave persists the singleton stores and manifest after a successful
// mutation. Failures are counted and logged but never propagated: the
// mutation itself already succeeded and is not rolled back for a failed
// convenience persist. This asymmetry is deliberate.
func (c *Coordinator) autoSave() {
	if !c.cfg.Memory.AutoSave {
		return
	}
	if err := c.SaveAll(); err != nil {
		c.autoSaveFailures.Add(1)
		log.Printf("Warning: auto-save failed (%d so far): %v", c.autoSaveFailures.Load(), err)
	}
}

// recordRecall bumps access statistics for retrieved conversations.
// Best-effort: a stats failure never affects the retrieval result.
func (c *Coordinator) recordRecall(records []*record.ConversationRecord) {
	if c.recorder == nil {
		return
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if err := c.recorder.RecordRecall(ids); err != nil {
		log.Printf("Warning: failed to record access stats: %v", err)
	}
}
