// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package coordinator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muninn-mcp/muninn/internal/config"
	"github.com/muninn-mcp/muninn/internal/index"
	"github.com/muninn-mcp/muninn/internal/profile"
	"github.com/muninn-mcp/muninn/internal/record"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Memory.Root = t.TempDir()
	cfg.Memory.UserID = "alice"
	cfg.Memory.Project = "gateway"
	cfg.Stats.Enabled = false
	return cfg
}

func openCoordinator(t *testing.T, cfg *config.Config) *Coordinator {
	t.Helper()
	coord, err := Open(cfg, nil)
	require.NoError(t, err)
	return coord
}

func TestOpen_BootstrapsLayout(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	assert.Equal(t, cfg.Memory.Root, coord.Root())
	assert.DirExists(t, filepath.Join(cfg.Memory.Root, record.ConversationsDir))
	assert.DirExists(t, filepath.Join(cfg.Memory.Root, profile.UserProfileDir))
	assert.DirExists(t, filepath.Join(cfg.Memory.Root, profile.ProjectContextDir))
	assert.DirExists(t, filepath.Join(cfg.Memory.Root, index.SemanticIndexDir))
	assert.FileExists(t, filepath.Join(cfg.Memory.Root, "memory_manifest.json"))

	manifest := coord.Manifest()
	assert.Equal(t, ManifestVersion, manifest.Version)
	assert.Zero(t, manifest.TotalConversations)

	require.NotNil(t, coord.Preferences())
	assert.Equal(t, "alice", coord.Preferences().UserID)
	require.NotNil(t, coord.ProjectContext())
	assert.Equal(t, "gateway", coord.ProjectContext().Project)
}

func TestOpen_MissingRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Memory.Root = ""
	_, err := Open(cfg, nil)
	assert.Error(t, err)
}

func TestOpen_SingletonLoadingDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Memory.LoadUserPreferences = false
	cfg.Memory.LoadProjectContext = false
	coord := openCoordinator(t, cfg)

	assert.Nil(t, coord.Preferences())
	assert.Nil(t, coord.ProjectContext())

	err := coord.UpdatePreferences(func(p *profile.UserPreferences) {})
	assert.Error(t, err)
	err = coord.UpdateProjectContext(func(p *profile.ProjectContext) {})
	assert.Error(t, err)
}

func TestStartConversation_CountsAndIndexes(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Cache Eviction Strategy")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.Equal(t, 1, coord.Manifest().TotalConversations)
	assert.Greater(t, coord.IndexStats().TotalEntries, 0)

	rec, err := coord.Store().Load(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.UserName)
	assert.Equal(t, "gateway", rec.Project)
}

func TestRetrieveMemories_FindsRelatedConversations(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Auth Redesign")
	require.NoError(t, err)
	require.NoError(t, coord.AddDecision(id, "Session storage",
		"switch to jwt for stateless scaling", "no shared session store"))
	_, err = coord.StartConversation("Unrelated Styling Work")
	require.NoError(t, err)

	result, err := coord.RetrieveMemories("jwt stateless", 10)
	require.NoError(t, err)
	require.Len(t, result.MatchingConversations, 1)
	assert.Equal(t, id, result.MatchingConversations[0].ID)
	assert.Equal(t, 0.8, result.RelevanceScore)
	assert.NotNil(t, result.UserPreferences)
	assert.NotNil(t, result.ProjectContext)
}

func TestRetrieveMemories_NoMatchScoresZero(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	_, err := coord.StartConversation("Something Indexed")
	require.NoError(t, err)

	result, err := coord.RetrieveMemories("completely unrelated novel terms", 10)
	require.NoError(t, err)
	assert.Empty(t, result.MatchingConversations)
	assert.Zero(t, result.RelevanceScore)
}

func TestRetrieveMemories_IndexDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Enabled = false
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Invisible To Search")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	result, err := coord.RetrieveMemories("invisible search", 10)
	require.NoError(t, err)
	assert.Empty(t, result.MatchingConversations)
	assert.Zero(t, result.RelevanceScore)
	// Singletons are still attached.
	assert.NotNil(t, result.UserPreferences)

	assert.Nil(t, coord.SearchEntries("invisible", 10))
}

func TestMutations_Reindex(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Plain Title")
	require.NoError(t, err)

	// The new keyword only becomes searchable after the mutation re-indexes.
	result, err := coord.RetrieveMemories("zookeeper", 10)
	require.NoError(t, err)
	assert.Empty(t, result.MatchingConversations)

	require.NoError(t, coord.AddProblemSolution(id,
		"zookeeper session expiry", "longer timeouts", "resolved"))

	result, err = coord.RetrieveMemories("zookeeper", 10)
	require.NoError(t, err)
	require.Len(t, result.MatchingConversations, 1)
	assert.Equal(t, id, result.MatchingConversations[0].ID)
}

func TestTodoLifecycle(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Todo Tracking")
	require.NoError(t, err)

	todoID, err := coord.AddTodo(id, "write the migration script", record.PriorityHigh)
	require.NoError(t, err)
	require.NoError(t, coord.CompleteTodo(id, todoID))

	rec, err := coord.Store().Load(id)
	require.NoError(t, err)
	require.Len(t, rec.Todos, 1)
	assert.True(t, rec.Todos[0].Done)
}

func TestEndConversation(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Wrap Up")
	require.NoError(t, err)
	require.NoError(t, coord.UpdateSummary(id, "all done"))
	require.NoError(t, coord.EndConversation(id))

	rec, err := coord.Store().Load(id)
	require.NoError(t, err)
	assert.False(t, rec.IsOpen())
	assert.Equal(t, "all done", rec.Summary)
}

func TestMutations_MissingConversation(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	err := coord.AddDecision("missing-id", "p", "d", "r")
	assert.ErrorIs(t, err, record.ErrNotFound)
	err = coord.UpdateSummary("missing-id", "s")
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestUpdatePreferences_Persists(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	require.NoError(t, coord.UpdatePreferences(func(p *profile.UserPreferences) {
		p.PreferredName = "Ali"
		p.Persona = "mentor"
	}))

	// A fresh coordinator over the same root sees the saved values.
	reopened := openCoordinator(t, cfg)
	require.NotNil(t, reopened.Preferences())
	assert.Equal(t, "Ali", reopened.Preferences().PreferredName)
	assert.Equal(t, "mentor", reopened.Preferences().Persona)
}

func TestCleanupOldMemories_KeepsCurrentEntries(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Recent Work")
	require.NoError(t, err)

	removed, err := coord.CleanupOldMemories(30)
	require.NoError(t, err)
	assert.Zero(t, removed)

	// Conversation files survive the sweep regardless of index eviction.
	_, err = coord.Store().Load(id)
	require.NoError(t, err)
}

func TestCleanupOldMemories_ZeroDaySweepKeepsTodaysEntries(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	id, err := coord.StartConversation("Auth Redesign")
	require.NoError(t, err)
	require.NoError(t, coord.AddDecision(id, "Session storage", "JWT", "stateless scaling"))

	// A sweep run right after indexing must not evict what was just added.
	removed, err := coord.CleanupOldMemories(0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	results := coord.SearchEntries("JWT stateless", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, id, results[0].Entry.ConversationID)
}

func TestManifest_PersistsAcrossReopen(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	_, err := coord.StartConversation("First")
	require.NoError(t, err)
	_, err = coord.StartConversation("Second")
	require.NoError(t, err)
	require.NoError(t, coord.SaveAll())

	reopened := openCoordinator(t, cfg)
	assert.Equal(t, 2, reopened.Manifest().TotalConversations)
}

func TestManifest_CorruptFileReplaced(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(cfg.Memory.Root, "memory_manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0644))

	coord := openCoordinator(t, cfg)
	assert.Equal(t, ManifestVersion, coord.Manifest().Version)
}

func TestAutoSaveFailures_StartsAtZero(t *testing.T) {
	cfg := testConfig(t)
	coord := openCoordinator(t, cfg)

	_, err := coord.StartConversation("Healthy Saves")
	require.NoError(t, err)
	assert.Zero(t, coord.AutoSaveFailures())
}
