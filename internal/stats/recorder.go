// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stats

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationAccess tracks how often a conversation surfaced in retrieval.
type ConversationAccess struct {
	ConversationID string    `gorm:"primaryKey" json:"conversation_id"`
	RecallCount    int64     `gorm:"not null;default:0" json:"recall_count"`
	LastRecalledAt time.Time `json:"last_recalled_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for ConversationAccess.
func (ConversationAccess) TableName() string {
	return "conversation_access"
}

// Recorder persists access statistics.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder migrates the schema and returns a recorder.
func NewRecorder(db *gorm.DB) (*Recorder, error) {
	if err := db.AutoMigrate(&ConversationAccess{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stats schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// RecordRecall bumps the recall counter for each conversation id.
func (r *Recorder) RecordRecall(conversationIDs []string) error {
	now := time.Now().UTC()
	for _, id := range conversationIDs {
		access := ConversationAccess{
			ConversationID: id,
			RecallCount:    1,
			LastRecalledAt: now,
		}
		err := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"recall_count":     gorm.Expr("recall_count + 1"),
				"last_recalled_at": now,
			}),
		}).Create(&access).Error
		if err != nil {
			return fmt.Errorf("failed to record recall for %s: %w", id, err)
		}
	}
	return nil
}

// Get returns the access row for a conversation id, or nil when none exists.
func (r *Recorder) Get(conversationID string) (*ConversationAccess, error) {
	var access ConversationAccess
	err := r.db.Where("conversation_id = ?", conversationID).First(&access).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &access, nil
}

// TopRecalled returns up to limit rows ordered by recall count descending.
func (r *Recorder) TopRecalled(limit int) ([]ConversationAccess, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ConversationAccess
	err := r.db.Order("recall_count DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
