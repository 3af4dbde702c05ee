package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/query"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/services"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/utils"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboardData godoc
// @Summary Get filtered dashboard aggregates
// @Description Runs the full dashboard query battery against the transaction table with the given filters applied
// @Tags Dashboard
// @Produce json
// @Param regions query string false "Comma-separated region names"
// @Param categories query string false "Comma-separated category names"
// @Param customerTenure query string false "Comma-separated tenure buckets"
// @Param customerRecency query string false "Comma-separated recency buckets"
// @Param transactionsMin query number false "Minimum transaction count"
// @Param transactionsMax query number false "Maximum transaction count"
// @Param discountMin query number false "Minimum discount applied"
// @Param discountMax query number false "Maximum discount applied"
// @Param timeFilter query string false "Time window: 1m, 3m, 6m, 1y or all"
// @Success 200 {array} models.DashboardBundle
// @Failure 500 {object} map[string]string
// @Router /api/data [get]
func (h *DashboardHandler) GetDashboardData(c *fiber.Ctx) error {
	filters := query.Filters{
		Regions:         splitList(c.Query("regions")),
		Categories:      splitList(c.Query("categories")),
		CustomerTenure:  splitList(c.Query("customerTenure")),
		CustomerRecency: splitList(c.Query("customerRecency")),
		TransactionsMin: parseFloat(c.Query("transactionsMin")),
		TransactionsMax: parseFloat(c.Query("transactionsMax")),
		DiscountMin:     parseFloat(c.Query("discountMin")),
		DiscountMax:     parseFloat(c.Query("discountMax")),
		TimeFilter:      c.Query("timeFilter", "all"),
	}

	bundle, err := h.dashboard.Bundle(filters)
	if err != nil {
		utils.LogError("❌ dashboard bundle failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Single-element array envelope, as expected by the dashboard frontend.
	return c.JSON([]interface{}{bundle})
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
