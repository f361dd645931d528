// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package persona holds the response persona definitions and synthesizes
// the decorated prompt envelope handed back to the chat client. This is
// templating over classification results and retrieved context, not
// language generation.
package persona

import (
	"fmt"
	"strings"

	"github.com/muninn-mcp/muninn/internal/classify"
)

// Persona describes one response style.
type Persona struct {
	Name       string `json:"name"`
	Voice      string `json:"voice"`
	StyleNotes string `json:"style_notes"`
}

// builtins are the shipped personas, keyed by name.
var builtins = map[string]Persona{
	"default": {
		Name:       "default",
		Voice:      "clear and direct",
		StyleNotes: "Answer plainly. Prefer short sentences and concrete examples.",
	},
	"mentor": {
		Name:       "mentor",
		Voice:      "patient and explanatory",
		StyleNotes: "Explain the why behind each step. Point at documentation when relevant.",
	},
	"reviewer": {
		Name:       "reviewer",
		Voice:      "critical but constructive",
		StyleNotes: "Lead with the most important issue. Separate blocking problems from nitpicks.",
	},
	"pair": {
		Name:       "pair",
		Voice:      "collaborative and incremental",
		StyleNotes: "Work in small steps. Confirm direction before large changes.",
	},
}

// Get returns a persona by name, falling back to the default persona.
func Get(name string) Persona {
	if p, ok := builtins[name]; ok {
		return p
	}
	return builtins["default"]
}

// Names lists the available persona names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

// Envelope is the decorated request handed back to the client: the original
// message, its classification, the persona guidance and any retrieved
// memory context.
type Envelope struct {
	Persona        Persona                 `json:"persona"`
	Classification classify.Classification `json:"classification"`
	ContextNotes   []string                `json:"context_notes,omitempty"`
	Prompt         string                  `json:"prompt"`
}

// BuildEnvelope synthesizes the prompt envelope for a message.
// contextNotes carry summaries of retrieved conversations; they are
// included verbatim under a "Relevant history" heading.
func BuildEnvelope(p Persona, cls classify.Classification, message string, contextNotes []string) Envelope {
	var b strings.Builder

	fmt.Fprintf(&b, "You are responding in the %q persona: %s.\n", p.Name, p.Voice)
	fmt.Fprintf(&b, "Style: %s\n", p.StyleNotes)
	fmt.Fprintf(&b, "Request intent: %s (complexity: %s, tone: %s)\n",
		cls.Intent, cls.Complexity, cls.Tone)

	if cls.Tone == classify.ToneFrustrated {
		b.WriteString("The user sounds frustrated; acknowledge that before diving in.\n")
	}
	if cls.Tone == classify.ToneUrgent {
		b.WriteString("The user is under time pressure; lead with the fix, defer background.\n")
	}

	if len(contextNotes) > 0 {
		b.WriteString("\nRelevant history:\n")
		for _, note := range contextNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	b.WriteString("\nUser message:\n")
	b.WriteString(message)

	return Envelope{
		Persona:        p,
		Classification: cls,
		ContextNotes:   contextNotes,
		Prompt:         b.String(),
	}
}
