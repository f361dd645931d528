// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package retrieval

import (
	"sort"

	"github.com/muninn-mcp/muninn/internal/index"
)

// DefaultLimit bounds result sets when the caller passes a non-positive limit.
const DefaultLimit = 10

// Result pairs an index entry with its accumulated relevance score for one
// query.
type Result struct {
	Entry *index.Entry
	Score float64
}

// Engine ranks stored index entries against a free-text query and resolves
// them to conversation ids.
type Engine struct {
	index *index.Index
}

// NewEngine creates a retrieval engine over an index.
func NewEngine(ix *index.Index) *Engine {
	return &Engine{index: ix}
}

// Search extracts keywords from the query with the same extractor used at
// indexing time, accumulates each matching entry's base weight once per
// matching query keyword, and returns the top results by score.
//
// An entry matched by three query keywords accumulates three times its base
// weight: multi-keyword overlap is rewarded over single strong matches.
// Ties are broken by entry id, so results are deterministic for a given
// index state. An empty query or a query with no matching keyword yields an
// empty result, not an error.
func (e *Engine) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	keywords := index.ExtractKeywords(query)
	if len(keywords) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for _, kw := range keywords {
		for _, entry := range e.index.EntriesFor(kw) {
			scores[entry.ID] += entry.RelevanceScore
		}
	}
	if len(scores) == 0 {
		return nil
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scored{id: id, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		entry, ok := e.index.Resolve(r.id)
		if !ok {
			continue
		}
		results = append(results, Result{Entry: entry, Score: r.score})
	}
	return results
}

// RelatedConversationIDs runs Search and projects the results to the
// distinct owning conversation ids in order of first appearance.
//
// The same limit bounds both the entry search and the id projection, so
// fewer than limit ids may come back even when more exist. That two-stage
// cut is intentional.
func (e *Engine) RelatedConversationIDs(query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := e.Search(query, limit)
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range results {
		if _, ok := seen[r.Entry.ConversationID]; ok {
			continue
		}
		seen[r.Entry.ConversationID] = struct{}{}
		ids = append(ids, r.Entry.ConversationID)
		if len(ids) >= limit {
			break
		}
	}
	return ids
}
