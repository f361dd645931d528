// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muninn-mcp/muninn/internal/index"
	"github.com/muninn-mcp/muninn/internal/record"
)

func indexedEngine(t *testing.T, records ...*record.ConversationRecord) *Engine {
	t.Helper()
	ix := index.NewIndex(t.TempDir())
	for _, rec := range records {
		require.NoError(t, ix.IndexConversation(rec))
	}
	return NewEngine(ix)
}

func newRecord(id, title, summary string) *record.ConversationRecord {
	return &record.ConversationRecord{
		ID:        id,
		Title:     title,
		Summary:   summary,
		StartTime: time.Now().UTC(),
	}
}

func TestSearch_AccumulationBeatsSingleStrongMatch(t *testing.T) {
	// A decision entry matched by two query keywords outranks a
	// conversation entry matched by one, because scores accumulate per
	// matching keyword instead of taking the max base weight.
	conv := newRecord("conv-a", "Session handling", "session cleanup work")
	decided := newRecord("conv-b", "Auth rework", "general auth notes")
	decided.AddDecision("Token format", "session tokens move to jwt", "simpler rotation")

	engine := indexedEngine(t, conv, decided)

	results := engine.Search("session jwt", 10)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "conv-b_decision_0_Token format", top.Entry.ID)
	// 0.9 per matched keyword, two matches.
	assert.InDelta(t, 1.8, top.Score, 1e-9)

	// The conversation entry matched "session" only.
	var convScore float64
	for _, r := range results {
		if r.Entry.ID == "conv-a" {
			convScore = r.Score
		}
	}
	assert.InDelta(t, 1.0, convScore, 1e-9)
}

func TestSearch_StatelessAuthScenario(t *testing.T) {
	auth := newRecord("conv-auth", "Auth Redesign", "moving sessions off the database")
	auth.AddDecision("Session storage", "switch to jwt for stateless scaling", "no sticky sessions")
	unrelated := newRecord("conv-ui", "UI Polish", "button alignment fixes")

	engine := indexedEngine(t, auth, unrelated)

	results := engine.Search("JWT stateless", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "conv-auth", results[0].Entry.ConversationID)
	for _, r := range results {
		assert.NotEqual(t, "conv-ui", r.Entry.ConversationID)
	}
}

func TestSearch_EmptyAndNoMatchQueries(t *testing.T) {
	engine := indexedEngine(t, newRecord("conv-a", "Something", "stored content here"))

	assert.Empty(t, engine.Search("", 10))
	assert.Empty(t, engine.Search("the and of", 10), "stop words only")
	assert.Empty(t, engine.Search("zzzzunmatched", 10))
}

func TestSearch_LimitAndDeterministicTieBreak(t *testing.T) {
	records := []*record.ConversationRecord{
		newRecord("conv-c", "Gamma", "shared keyword payload"),
		newRecord("conv-a", "Alpha", "shared keyword payload"),
		newRecord("conv-b", "Beta", "shared keyword payload"),
	}
	engine := indexedEngine(t, records...)

	results := engine.Search("payload", 10)
	require.Len(t, results, 3)
	// Equal scores fall back to id order.
	assert.Equal(t, "conv-a", results[0].Entry.ID)
	assert.Equal(t, "conv-b", results[1].Entry.ID)
	assert.Equal(t, "conv-c", results[2].Entry.ID)

	results = engine.Search("payload", 2)
	assert.Len(t, results, 2)

	// Non-positive limit falls back to the default.
	results = engine.Search("payload", 0)
	assert.Len(t, results, 3)
}

func TestRelatedConversationIDs_DistinctAndOrdered(t *testing.T) {
	rec := newRecord("conv-a", "Postgres Tuning", "postgres index tuning")
	rec.AddDecision("Index type", "partial postgres index", "smaller writes")
	rec.AddProblemSolution("postgres bloat", "routine vacuum", "stable")
	other := newRecord("conv-b", "Backups", "postgres backup schedule")

	engine := indexedEngine(t, rec, other)

	ids := engine.RelatedConversationIDs("postgres", 10)
	require.NotEmpty(t, ids)
	seen := make(map[string]int)
	for _, id := range ids {
		seen[id]++
	}
	// Three conv-a entries project to one id.
	assert.Equal(t, 1, seen["conv-a"])
	assert.Equal(t, 1, seen["conv-b"])
}

func TestRelatedConversationIDs_TwoStageCut(t *testing.T) {
	// With limit 2, both top entries can belong to the same conversation,
	// so only one id comes back even though another conversation matches.
	rec := newRecord("conv-a", "Grafana Dashboards", "grafana alert routing")
	rec.AddDecision("Alert channel", "grafana oncall routing", "fewer pages")
	other := newRecord("conv-b", "Metrics", "grafana datasource cleanup")

	engine := indexedEngine(t, rec, other)

	ids := engine.RelatedConversationIDs("grafana", 2)
	assert.LessOrEqual(t, len(ids), 2)
	require.NotEmpty(t, ids)
}
