// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package record

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToMarkdown renders a conversation record as a human-readable markdown
// document: a ----delimited metadata block followed by summary, decision
// and problem tables, technical-details bullets and a todo checklist.
//
// The markdown file is an export, not the authoritative storage format.
// The JSON document written next to it is what Load reads back.
func ToMarkdown(r *ConversationRecord) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	meta, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata block: %w", err)
	}
	buf.Write(meta)
	buf.WriteString("---\n\n")

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Title))

	if r.Summary != "" {
		buf.WriteString("## Summary\n\n")
		buf.WriteString(r.Summary)
		buf.WriteString("\n\n")
	}

	if len(r.Decisions) > 0 {
		buf.WriteString("## Decisions\n\n")
		buf.WriteString("| Decision Point | Decision | Rationale |\n")
		buf.WriteString("|---|---|---|\n")
		for _, d := range r.Decisions {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				escapeCell(d.Point), escapeCell(d.Decision), escapeCell(d.Rationale)))
		}
		buf.WriteString("\n")
	}

	if len(r.Problems) > 0 {
		buf.WriteString("## Problems & Solutions\n\n")
		buf.WriteString("| Problem | Solution | Result |\n")
		buf.WriteString("|---|---|---|\n")
		for _, p := range r.Problems {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				escapeCell(p.Problem), escapeCell(p.Solution), escapeCell(p.Result)))
		}
		buf.WriteString("\n")
	}

	if len(r.Technologies) > 0 {
		buf.WriteString("## Technical Details\n\n")
		for _, t := range r.Technologies {
			buf.WriteString(fmt.Sprintf("- %s\n", t))
		}
		buf.WriteString("\n")
	}

	if len(r.Todos) > 0 {
		buf.WriteString("## Todos\n\n")
		for _, todo := range r.Todos {
			box := "[ ]"
			if todo.Done {
				box = "[x]"
			}
			glyph := ""
			switch todo.Priority {
			case PriorityHigh:
				glyph = "! "
			case PriorityLow:
				glyph = "? "
			}
			buf.WriteString(fmt.Sprintf("- %s %s%s (%s)\n", box, glyph, todo.Task, todo.ID))
		}
		buf.WriteString("\n")
	}

	return buf.String(), nil
}

// ParseMarkdown parses a conversation markdown export. Only the metadata
// block is recovered; the body sections come back empty. Callers that need
// full fidelity must read the JSON document instead.
func ParseMarkdown(content string) (*ConversationRecord, error) {
	meta, _, err := splitMetadataBlock(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split metadata block: %w", err)
	}

	var rec ConversationRecord
	if meta != "" {
		if err := yaml.Unmarshal([]byte(meta), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse metadata block: %w", err)
		}
	}
	return &rec, nil
}

// splitMetadataBlock splits a document into its ----delimited metadata
// block and the markdown body.
func splitMetadataBlock(content string) (string, string, error) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "---") {
		return "", content, nil
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 3 {
		return "", content, nil
	}

	closingIndex := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIndex = i
			break
		}
	}
	if closingIndex == -1 {
		return "", content, fmt.Errorf("metadata block not properly closed")
	}

	meta := strings.Join(lines[1:closingIndex], "\n")
	body := ""
	if closingIndex+1 < len(lines) {
		body = strings.Join(lines[closingIndex+1:], "\n")
	}
	return meta, body, nil
}

// escapeCell keeps table cells on one line and free of pipe characters.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
