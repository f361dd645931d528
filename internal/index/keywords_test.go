// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "lowercases and strips punctuation",
			text:     "Migrate the API-Gateway to gRPC!",
			expected: []string{"apigateway", "grpc", "migrate"},
		},
		{
			name:     "drops stop words",
			text:     "the cache is in the gateway and it was slow",
			expected: []string{"cache", "gateway", "slow"},
		},
		{
			name:     "drops single character tokens",
			text:     "a b c redis x 7",
			expected: []string{"redis"},
		},
		{
			name:     "keeps digits inside tokens",
			text:     "upgrade to http2 and tls13",
			expected: []string{"http2", "tls13", "upgrade"},
		},
		{
			name:     "handles cjk text",
			text:     "数据库 迁移 的 计划",
			expected: []string{"数据库", "计划", "迁移"},
		},
		{
			name:     "mixed scripts",
			text:     "JWT 认证 token design",
			expected: []string{"design", "jwt", "token", "认证"},
		},
		{
			name:     "empty input",
			text:     "",
			expected: []string{},
		},
		{
			name:     "only stop words and punctuation",
			text:     "the, and, of!!!",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractKeywords_SortedAndDeduplicated(t *testing.T) {
	got := ExtractKeywords("redis cache redis CACHE Redis")
	assert.Equal(t, []string{"cache", "redis"}, got)
	assert.True(t, sort.StringsAreSorted(got))
}

func TestExtractKeywords_SameResultAtIndexAndQueryTime(t *testing.T) {
	// The extractor is the only tokenizer in the system, so the exact
	// normalization matters less than it being identical on both sides.
	indexed := ExtractKeywords("Switched auth to JWT for stateless sessions")
	queried := ExtractKeywords("JWT stateless")

	for _, kw := range queried {
		assert.Contains(t, indexed, kw)
	}
}
