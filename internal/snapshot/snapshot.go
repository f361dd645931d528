// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package snapshot keeps a local git history of the memory root so the
// best-effort file store gains an undo trail without any remote or
// durability promise.
package snapshot

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Committer identity used for snapshot commits.
const (
	commitAuthor = "Muninn"
	commitEmail  = "memory@muninn.local"
)

// Repository wraps go-git operations on the memory root.
type Repository struct {
	Path string
	repo *git.Repository
}

// OpenOrInit opens the git repository at the memory root, initializing a
// fresh one when none exists.
func OpenOrInit(path string) (*Repository, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", path, err)
	}

	repo, err := git.PlainOpen(path)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(path, false)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot repository %s: %w", path, err)
	}

	return &Repository{Path: path, repo: repo}, nil
}

// IsClean returns true when the worktree has no uncommitted changes.
func (r *Repository) IsClean() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// Commit stages every change under the memory root and commits it. Returns
// false without error when there was nothing to commit.
func (r *Repository) Commit(message string) (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("failed to stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	if message == "" {
		message = fmt.Sprintf("snapshot %s", time.Now().UTC().Format(time.RFC3339))
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthor,
			Email: commitEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return true, nil
}

// Log returns up to limit snapshot commit messages, newest first.
func (r *Repository) Log(limit int) ([]string, error) {
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot log: %w", err)
	}
	defer iter.Close()

	var messages []string
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(messages) >= limit {
			return storer.ErrStop
		}
		messages = append(messages, c.Message)
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, err
	}
	return messages, nil
}
