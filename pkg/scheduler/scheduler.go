// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"log"
	"time"

	"github.com/muninn-mcp/muninn/internal/coordinator"
	"github.com/muninn-mcp/muninn/internal/snapshot"
)

// Scheduler handles periodic maintenance: the index eviction sweep and,
// when configured, a git snapshot of the memory root.
type Scheduler struct {
	coord         *coordinator.Coordinator
	snap          *snapshot.Repository // nil when snapshots are disabled
	interval      time.Duration
	retentionDays int
	stopChan      chan bool
}

// NewScheduler creates a new scheduler. snap may be nil.
func NewScheduler(coord *coordinator.Coordinator, snap *snapshot.Repository, intervalMinutes, retentionDays int) *Scheduler {
	return &Scheduler{
		coord:         coord,
		snap:          snap,
		interval:      time.Duration(intervalMinutes) * time.Minute,
		retentionDays: retentionDays,
		stopChan:      make(chan bool),
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.runMaintenance()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopChan <- true
}

// runMaintenance runs one eviction sweep plus an optional snapshot commit.
// Failures are logged, never fatal; the next tick retries.
func (s *Scheduler) runMaintenance() {
	if s.retentionDays > 0 {
		removed, err := s.coord.CleanupOldMemories(s.retentionDays)
		if err != nil {
			log.Printf("Failed to run eviction sweep: %v", err)
		} else if removed > 0 {
			log.Printf("Eviction sweep removed %d index entries", removed)
		}
	}

	if s.snap == nil {
		return
	}
	committed, err := s.snap.Commit("")
	if err != nil {
		log.Printf("Failed to commit memory snapshot: %v", err)
	} else if committed {
		log.Printf("Committed memory snapshot")
	}
}
