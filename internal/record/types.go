// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package record

import (
	"fmt"
	"time"
)

// ConversationRecord represents one tracked interaction with metadata,
// decisions, problem/solution pairs and todos.
type ConversationRecord struct {
	ID           string            `json:"conversation_id" yaml:"conversation_id"`
	Title        string            `json:"title" yaml:"title"`
	StartTime    time.Time         `json:"start_time" yaml:"start_time"`
	EndTime      time.Time         `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	UserName     string            `json:"user_name" yaml:"user_name"`
	Project      string            `json:"project" yaml:"project"`
	Summary      string            `json:"summary" yaml:"summary"`
	Decisions    []Decision        `json:"decisions,omitempty" yaml:"-"`
	Problems     []ProblemSolution `json:"problems,omitempty" yaml:"-"`
	Todos        []TodoItem        `json:"todos,omitempty" yaml:"-"`
	Technologies []string          `json:"technologies,omitempty" yaml:"-"`
	RelatedIDs   []string          `json:"related_ids,omitempty" yaml:"-"`
}

// Decision records a single decision made during a conversation.
type Decision struct {
	Point     string `json:"point" yaml:"point"`
	Decision  string `json:"decision" yaml:"decision"`
	Rationale string `json:"rationale" yaml:"rationale"`
}

// ProblemSolution records a problem encountered and how it was resolved.
type ProblemSolution struct {
	Problem  string `json:"problem" yaml:"problem"`
	Solution string `json:"solution" yaml:"solution"`
	Result   string `json:"result" yaml:"result"`
}

// TodoItem represents a tracked task inside a conversation.
type TodoItem struct {
	ID       string `json:"id" yaml:"id"`
	Task     string `json:"task" yaml:"task"`
	Done     bool   `json:"done" yaml:"done"`
	Priority string `json:"priority" yaml:"priority"`
}

// Todo priority tiers. The markdown export renders high priority as "!"
// and low priority as "?" after the checkbox.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// IsOpen returns true while the conversation has not been ended.
// The end time is set exactly once by EndConversation and never cleared.
func (r *ConversationRecord) IsOpen() bool {
	return r.EndTime.IsZero()
}

// AddDecision appends a decision. Appends are monotonic; there is no
// removal path for decisions, problems or todos.
func (r *ConversationRecord) AddDecision(point, decision, rationale string) {
	r.Decisions = append(r.Decisions, Decision{
		Point:     point,
		Decision:  decision,
		Rationale: rationale,
	})
}

// AddProblemSolution appends a problem/solution pair.
func (r *ConversationRecord) AddProblemSolution(problem, solution, result string) {
	r.Problems = append(r.Problems, ProblemSolution{
		Problem:  problem,
		Solution: solution,
		Result:   result,
	})
}

// AddTodo appends a todo item and returns its generated id.
func (r *ConversationRecord) AddTodo(task, priority string) string {
	if priority == "" {
		priority = PriorityNormal
	}
	id := nextTodoID(r)
	r.Todos = append(r.Todos, TodoItem{
		ID:       id,
		Task:     task,
		Priority: priority,
	})
	return id
}

// CompleteTodo marks the todo with the given id as done.
// Returns false when no todo with that id exists.
func (r *ConversationRecord) CompleteTodo(id string) bool {
	for i := range r.Todos {
		if r.Todos[i].ID == id {
			r.Todos[i].Done = true
			return true
		}
	}
	return false
}

// nextTodoID derives a sequential id from the current todo count.
// Ids are stable because todos are append-only.
func nextTodoID(r *ConversationRecord) string {
	return fmt.Sprintf("todo-%d", len(r.Todos)+1)
}

// AddTechnology records a referenced technology name, deduplicated.
func (r *ConversationRecord) AddTechnology(name string) {
	for _, t := range r.Technologies {
		if t == name {
			return
		}
	}
	r.Technologies = append(r.Technologies, name)
}
