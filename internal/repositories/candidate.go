package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"elev8ai/assessment-api/internal/models"
)

// CandidateRepository fronts the record store. Every write is
// create-or-merge on the email key; concurrent writers are last-write-wins
// per column, which the callers accept.
type CandidateRepository interface {
	FindByEmail(email string) (*models.CandidateRecord, error)
	UpsertStatus(email string, status models.SyncStatus, errorMessage string) error
	UpsertSummary(email string, summaryJSON string) error
	AppendChatTurn(email string, turn models.ChatTurn) (*models.ChatTurn, error)
	ListEmails() ([]string, error)
}

// ErrNotFound translates to a 404 at the handlers.
var ErrNotFound = fmt.Errorf("record not found")

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// FindByEmail implements CandidateRepository.
func (r *candidateRepository) FindByEmail(email string) (*models.CandidateRecord, error) {
	var record models.CandidateRecord
	if err := r.db.Where("email = ?", email).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find candidate record: %w", err)
	}
	return &record, nil
}

// UpsertStatus implements CandidateRepository.
func (r *candidateRepository) UpsertStatus(email string, status models.SyncStatus, errorMessage string) error {
	record := models.CandidateRecord{
		Email:        email,
		Status:       status,
		LastUpdated:  time.Now().UTC(),
		ErrorMessage: errorMessage,
	}

	assignments := []string{"status", "last_updated"}
	if errorMessage != "" {
		assignments = append(assignments, "error_message")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(assignments),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert status: %w", err)
	}
	return nil
}

// UpsertSummary implements CandidateRepository.
func (r *candidateRepository) UpsertSummary(email string, summaryJSON string) error {
	record := models.CandidateRecord{
		Email:       email,
		SummaryJSON: summaryJSON,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary_json"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

// AppendChatTurn implements CandidateRepository. Read-modify-write: the
// record store offers no list-append primitive and the callers tolerate
// last-write-wins races.
func (r *candidateRepository) AppendChatTurn(email string, turn models.ChatTurn) (*models.ChatTurn, error) {
	record, err := r.FindByEmail(email)
	if err != nil {
		if err != ErrNotFound {
			return nil, err
		}
		record = &models.CandidateRecord{Email: email}
	}

	record.ChatHistory = append(record.ChatHistory, turn)

	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"chat_history"}),
	}).Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to append chat turn: %w", err)
	}

	stored := record.ChatHistory[len(record.ChatHistory)-1]
	return &stored, nil
}

// ListEmails implements CandidateRepository.
func (r *candidateRepository) ListEmails() ([]string, error) {
	var emails []string
	err := r.db.Model(&models.CandidateRecord{}).
		Order("email ASC").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return emails, nil
}
