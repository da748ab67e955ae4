package handlers

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
	log  *zap.Logger
}

func NewChatHandler(chat services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

// HandleAsk handles POST /ask.
func (h *ChatHandler) HandleAsk(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := decodeBody(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameter: email",
		})
	}
	if req.Input == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameter: input",
		})
	}

	resp, err := h.chat.Ask(c.Context(), req.Email, req.Input)
	if err != nil {
		h.log.Error("chat request failed", zap.String("email", req.Email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(resp)
}

// decodeBody accepts either raw JSON or a base64-encoded JSON payload, which
// is how gateway-fronted clients deliver bodies.
func decodeBody(body []byte, target interface{}) error {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return json.Unmarshal([]byte("{}"), target)
	}

	if json.Valid([]byte(trimmed)) {
		return json.Unmarshal([]byte(trimmed), target)
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return err
	}
	return json.Unmarshal(decoded, target)
}
