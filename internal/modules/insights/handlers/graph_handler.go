package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/repositories"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/services"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/utils"
)

type GraphHandler struct {
	graphs  *services.GraphService
	history repositories.HistoryRepo
}

func NewGraphHandler(graphs *services.GraphService, history repositories.HistoryRepo) *GraphHandler {
	return &GraphHandler{
		graphs:  graphs,
		history: history,
	}
}

// GraphRequest represents request body for chart generation
type GraphRequest struct {
	Message string `json:"message" example:"Show me revenue trends by category"`
}

// GenerateGraphs godoc
// @Summary Generate charts from a business question
// @Description Produces up to four chart specs from the question, executes each read-only query, and returns chart-ready data
// @Tags Graphs
// @Accept json
// @Produce json
// @Param data body GraphRequest true "Question to visualize"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/graphs/generate [post]
func (h *GraphHandler) GenerateGraphs(c *fiber.Ctx) error {
	var req GraphRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.graphs.Generate(c.Context(), req.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No message provided",
			})
		}
		var genErr *services.GenerationError
		if errors.As(err, &genErr) {
			utils.LogError("❌ chart spec parsing failed", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": genErr.Error(),
				"raw":   genErr.Raw,
			})
		}
		utils.LogError("❌ graph generation failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"charts":         result.Charts,
		"questions_text": result.QuestionsText,
		"timestamp":      result.Timestamp,
	})
}

// GetGraphHistory godoc
// @Summary Get recent chart generation traces
// @Description Returns the most recent chart generation requests and their flattened spec traces
// @Tags Graphs
// @Produce json
// @Param limit query int false "Maximum number of traces" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/graphs/history [get]
func (h *GraphHandler) GetGraphHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	traces, err := h.history.RecentGraphTraces(limit)
	if err != nil {
		utils.LogError("❌ graph history fetch failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch graph history",
		})
	}

	items := make([]fiber.Map, 0, len(traces))
	for _, t := range traces {
		items = append(items, fiber.Map{
			"user_message": t.UserInputQuestion,
			"queries_text": t.Queries,
			"created_at":   t.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"history": items,
	})
}
