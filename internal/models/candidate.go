package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SyncStatus string

const (
	StatusInProgress SyncStatus = "IN_PROGRESS"
	StatusCompleted  SyncStatus = "COMPLETED"
	StatusFailed     SyncStatus = "FAILED"
	StatusTimeout    SyncStatus = "TIMEOUT"
)

// ChatTurn is one question/answer exchange. Timestamp is unix milliseconds.
type ChatTurn struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Context   string `json:"context,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ChatTurns is stored as a single JSONB column.
type ChatTurns []ChatTurn

func (t ChatTurns) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat history: %w", err)
	}
	return string(b), nil
}

func (t *ChatTurns) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported chat history column type %T", value)
	}

	if err := json.Unmarshal(data, t); err != nil {
		return fmt.Errorf("failed to unmarshal chat history: %w", err)
	}
	return nil
}

// CandidateRecord is the single table of the record store, keyed by the
// candidate's email. The upload workflow owns Status/LastUpdated/ErrorMessage,
// the evaluator owns SummaryJSON, and the chat paths own ChatHistory.
type CandidateRecord struct {
	Email        string     `gorm:"type:text;primary_key" json:"email"`
	ChatHistory  ChatTurns  `gorm:"type:jsonb;default:'[]'" json:"chatHistory"`
	Status       SyncStatus `gorm:"type:text" json:"status,omitempty"`
	LastUpdated  time.Time  `gorm:"type:timestamp" json:"last_updated,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	SummaryJSON  string     `gorm:"type:text" json:"summary_json,omitempty"`
}

func (CandidateRecord) TableName() string {
	return "candidate_records"
}
