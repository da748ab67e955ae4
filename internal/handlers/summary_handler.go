package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/repositories"
)

type SummaryHandler struct {
	repo repositories.CandidateRepository
	log  *zap.Logger
}

func NewSummaryHandler(repo repositories.CandidateRepository, log *zap.Logger) *SummaryHandler {
	return &SummaryHandler{repo: repo, log: log}
}

// HandleGetSummary handles GET /summary?email=. The stored assessment is
// returned as the response body unchanged, whether it is JSON or the raw
// model text.
func (h *SummaryHandler) HandleGetSummary(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameter: email",
		})
	}

	record, err := h.repo.FindByEmail(email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		h.log.Error("failed to fetch summary", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if record.SummaryJSON == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(record.SummaryJSON)
}

// HandleListUsers handles GET /users: every known candidate identity.
func (h *SummaryHandler) HandleListUsers(c *fiber.Ctx) error {
	emails, err := h.repo.ListEmails()
	if err != nil {
		h.log.Error("failed to list candidates", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if emails == nil {
		emails = []string{}
	}

	return c.JSON(models.UsersResponse{Emails: emails})
}
