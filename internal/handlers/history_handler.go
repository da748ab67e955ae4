package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/repositories"
)

type HistoryHandler struct {
	repo repositories.CandidateRepository
	log  *zap.Logger
}

func NewHistoryHandler(repo repositories.CandidateRepository, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, log: log}
}

// HandleGetHistory handles GET /chat?email=.
func (h *HistoryHandler) HandleGetHistory(c *fiber.Ctx) error {
	email := c.Query("email")

	record, err := h.repo.FindByEmail(email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No data found",
			})
		}
		h.log.Error("failed to fetch chat history", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(record)
}

// HandleAppendTurn handles POST /chat?email=: append one turn to the
// candidate's history, creating the record when absent.
func (h *HistoryHandler) HandleAppendTurn(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameter: email",
		})
	}

	var turn models.ChatTurn
	if err := decodeBody(c.Body(), &turn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	stored, err := h.repo.AppendChatTurn(email, turn)
	if err != nil {
		h.log.Error("failed to append chat turn", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(stored)
}
