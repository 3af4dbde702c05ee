package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/repositories"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/services"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/utils"
)

type ChatHandler struct {
	analyze *services.AnalyzeService
	history repositories.HistoryRepo
}

func NewChatHandler(analyze *services.AnalyzeService, history repositories.HistoryRepo) *ChatHandler {
	return &ChatHandler{
		analyze: analyze,
		history: history,
	}
}

// AnalyzeRequest represents request body for conversational analysis
type AnalyzeRequest struct {
	Message string `json:"message" example:"How did revenue develop over the last quarter?"`
}

// AnalyzeText godoc
// @Summary Analyze a business question conversationally
// @Description Decomposes the question into sub-questions, answers each against the data, and returns a conversational summary
// @Tags Chat
// @Accept json
// @Produce json
// @Param data body AnalyzeRequest true "Question to analyze"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/text/analyze [post]
func (h *ChatHandler) AnalyzeText(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.analyze.Analyze(c.Context(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No message provided",
			})
		}
		utils.LogError("❌ text analysis failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"response":  result.Summary,
		"timestamp": result.Timestamp,
	})
}

// GetChatHistory godoc
// @Summary Get recent chat exchanges
// @Description Returns the most recent chat exchanges in chronological order
// @Tags Chat
// @Produce json
// @Param limit query int false "Maximum number of exchanges" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/chat/history [get]
func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	exchanges, err := h.history.RecentChats(limit)
	if err != nil {
		utils.LogError("❌ chat history fetch failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch chat history",
		})
	}

	items := make([]fiber.Map, 0, len(exchanges))
	for _, e := range exchanges {
		items = append(items, fiber.Map{
			"user_message":       e.UserMessage,
			"assistant_response": e.AssistantResponse,
			"created_at":         e.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"history": items,
	})
}
