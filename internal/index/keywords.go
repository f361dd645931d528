// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package index

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords are discarded during keyword extraction: common English
// function words plus a handful of Chinese function words.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "we": {}, "you": {},
	"的": {}, "了": {}, "是": {}, "在": {}, "我": {}, "有": {},
	"和": {}, "就": {}, "不": {}, "人": {},
}

// ExtractKeywords normalizes free text into a deduplicated, sorted keyword
// list. Everything outside the allow-list of CJK ideographs, ASCII
// letters/digits and whitespace is stripped, the result is split on
// whitespace, and single-character and stop-word tokens are discarded.
//
// There is no stemming and no multi-byte-aware segmentation beyond the
// character-class allow-list. That is a conscious simplification, not a
// linguistic claim: the same extractor runs at index and query time, so
// overlap is still found.
func ExtractKeywords(text string) []string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case isCJK(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Everything else is stripped.
	}

	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		seen[tok] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// isCJK reports whether r falls in the CJK Unified Ideographs block.
func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}
