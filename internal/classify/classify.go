// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package classify tags an incoming user message along three axes using
// keyword and regex matching. There is no natural-language understanding
// here; the detectors are tables of patterns, nothing more.
package classify

import (
	"regexp"
	"strings"
)

// Intent values.
const (
	IntentQuestion = "question"
	IntentTask     = "task"
	IntentDebug    = "debug"
	IntentReview   = "review"
	IntentChat     = "chat"
)

// Complexity tiers.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Emotional tone values.
const (
	ToneFrustrated = "frustrated"
	ToneCurious    = "curious"
	ToneUrgent     = "urgent"
	ToneNeutral    = "neutral"
)

// Classification is the result of running all detectors over one message.
type Classification struct {
	Intent     string `json:"intent"`
	Complexity string `json:"complexity"`
	Tone       string `json:"tone"`
}

var intentPatterns = []struct {
	intent string
	re     *regexp.Regexp
}{
	{IntentDebug, regexp.MustCompile(`(?i)\b(bug|error|crash|panic|broken|fails?|failing|stack\s*trace|exception|doesn'?t work)\b`)},
	{IntentReview, regexp.MustCompile(`(?i)\b(review|feedback|critique|look over|check my|refactor)\b`)},
	{IntentTask, regexp.MustCompile(`(?i)\b(implement|create|build|write|add|make|generate|fix|update|remove|delete|rename)\b`)},
	{IntentQuestion, regexp.MustCompile(`(?i)^(what|how|why|when|where|who|which|can|could|should|would|is|are|does|do)\b|\?`)},
}

var tonePatterns = []struct {
	tone string
	re   *regexp.Regexp
}{
	{ToneFrustrated, regexp.MustCompile(`(?i)\b(frustrat|annoying|annoyed|stuck|again!?|still (broken|failing)|why (won'?t|isn'?t)|ugh|argh)\b`)},
	{ToneUrgent, regexp.MustCompile(`(?i)\b(urgent|asap|immediately|right now|deadline|production (is )?down|critical)\b`)},
	{ToneCurious, regexp.MustCompile(`(?i)\b(curious|wonder(ing)?|interest(ed|ing)|what if|how does .+ work)\b`)},
}

// complexKeywords push a message into the complex tier regardless of length.
var complexKeywords = regexp.MustCompile(`(?i)\b(architecture|distributed|concurren(t|cy)|migration|refactor entire|across (the )?codebase|performance tuning|race condition)\b`)

// Classify runs every detector over the message.
func Classify(message string) Classification {
	return Classification{
		Intent:     DetectIntent(message),
		Complexity: DetectComplexity(message),
		Tone:       DetectTone(message),
	}
}

// DetectIntent returns the first matching intent pattern, defaulting to chat.
func DetectIntent(message string) string {
	for _, p := range intentPatterns {
		if p.re.MatchString(message) {
			return p.intent
		}
	}
	return IntentChat
}

// DetectComplexity tiers a message by trigger keywords, then by length.
func DetectComplexity(message string) string {
	if complexKeywords.MatchString(message) {
		return ComplexityComplex
	}
	words := len(strings.Fields(message))
	switch {
	case words > 80:
		return ComplexityComplex
	case words > 25:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

// DetectTone returns the first matching tone pattern, defaulting to neutral.
func DetectTone(message string) string {
	for _, p := range tonePatterns {
		if p.re.MatchString(message) {
			return p.tone
		}
	}
	return ToneNeutral
}
