package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/repositories"
)

// ChatService answers candidate questions grounded in the shared knowledge
// base and records each turn.
type ChatService interface {
	Ask(ctx context.Context, email, input string) (*models.AskResponse, error)
}

type chatService struct {
	repo          repositories.CandidateRepository
	store         ArtifactStore
	kb            KnowledgeBase
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewChatService(
	repo repositories.CandidateRepository,
	store ArtifactStore,
	kb KnowledgeBase,
	log *zap.Logger,
) ChatService {
	return &chatService{
		repo:          repo,
		store:         store,
		kb:            kb,
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

// Ask implements ChatService. History lookup failures degrade to an empty
// context; generation and storage failures are returned to the caller.
func (s *chatService) Ask(ctx context.Context, email, input string) (*models.AskResponse, error) {
	matrix, err := s.store.GetCompetencyMatrix(ctx)
	if err != nil {
		return nil, err
	}

	chatContext := s.buildChatContext(email, input)

	prompt := s.promptBuilder.BuildChatPrompt(email, input, chatContext, matrix)
	s.log.Debug("chat prompt assembled", zap.String("email", email),
		zap.Int("prompt_length", len(prompt)))

	// Unfiltered: chat retrieves across the shared knowledge base.
	answer, err := s.kb.RetrieveAndGenerate(ctx, prompt, input, "")
	if err != nil {
		return nil, fmt.Errorf("failed to generate chat response: %w", err)
	}

	turn := models.ChatTurn{
		Question:  input,
		Answer:    answer,
		Context:   chatContext,
		Timestamp: time.Now().UnixMilli(),
	}
	if _, err := s.repo.AppendChatTurn(email, turn); err != nil {
		return nil, fmt.Errorf("failed to store chat turn: %w", err)
	}

	return &models.AskResponse{Answer: answer, Context: chatContext}, nil
}

func (s *chatService) buildChatContext(email, currentQuestion string) string {
	record, err := s.repo.FindByEmail(email)
	if err != nil {
		if err != repositories.ErrNotFound {
			s.log.Warn("failed to fetch chat history, continuing without it",
				zap.String("email", email), zap.Error(err))
		}
		return s.promptBuilder.BuildChatContext(nil, currentQuestion)
	}

	return s.promptBuilder.BuildChatContext(record.ChatHistory, currentQuestion)
}
