package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/repositories"
)

// EvaluatorService runs one assessment of a candidate's artifact against the
// competency matrix and persists the result.
type EvaluatorService interface {
	Evaluate(ctx context.Context, job models.EvaluationJob) (string, error)
}

type evaluatorService struct {
	repo          repositories.CandidateRepository
	store         ArtifactStore
	kb            KnowledgeBase
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewEvaluatorService(
	repo repositories.CandidateRepository,
	store ArtifactStore,
	kb KnowledgeBase,
	log *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		repo:          repo,
		store:         store,
		kb:            kb,
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

// Evaluate implements EvaluatorService. The assessment makes exactly one
// retrieval-generation call, scoped to documents tagged with the candidate's
// email. Model output that fails to parse as JSON is stored and returned
// verbatim rather than treated as an error.
func (e *evaluatorService) Evaluate(ctx context.Context, job models.EvaluationJob) (string, error) {
	if job.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	matrix, err := e.store.GetCompetencyMatrix(ctx)
	if err != nil {
		return "", err
	}

	prompt := e.promptBuilder.BuildAssessmentPrompt(matrix, job.FromDesignation, job.ToDesignation)

	raw, err := e.kb.RetrieveAndGenerate(ctx, prompt, job.Email, job.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate assessment: %w", err)
	}
	raw = strings.TrimSpace(raw)

	result := raw
	if cleaned := extractJSON(raw); json.Valid([]byte(cleaned)) {
		result = cleaned
	} else {
		e.log.Warn("assessment output is not valid JSON, storing raw text",
			zap.String("email", job.Email))
	}

	if err := e.repo.UpsertSummary(job.Email, result); err != nil {
		return "", err
	}

	e.log.Info("assessment stored", zap.String("email", job.Email),
		zap.Int("summary_length", len(result)))
	return result, nil
}

// extractJSON strips markdown fences and surrounding prose from model output
// that should be a bare JSON object or array.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
