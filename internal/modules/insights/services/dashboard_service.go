package services

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/analytics"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/query"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/models"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/repositories"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/sanitize"
)

// DashboardService compiles the filter state once and runs the fixed
// aggregation battery. Any query failure aborts the whole bundle; partial
// dashboards are never returned.
type DashboardService struct {
	repo          repositories.DashboardRepo
	referenceDate string
}

func NewDashboardService(repo repositories.DashboardRepo, referenceDate string) *DashboardService {
	return &DashboardService{repo: repo, referenceDate: referenceDate}
}

func (s *DashboardService) Bundle(f query.Filters) (*models.DashboardBundle, error) {
	where := f.WhereClause(s.referenceDate)
	log.Info().Str("where", truncateText(where, 100)).Msg("📊 building dashboard bundle")

	kpis, err := s.repo.KPIs(where)
	if err != nil {
		return nil, err
	}

	monthly, err := s.repo.MonthlySeries(where)
	if err != nil {
		return nil, err
	}
	for i := range monthly {
		monthly[i].Month = analytics.MonthLabel(monthly[i].Month)
		monthly[i].Revenue = sanitize.Float(monthly[i].Revenue)
		monthly[i].LostRevenue = sanitize.Float(monthly[i].LostRevenue)
		monthly[i].CAC = sanitize.Float(monthly[i].CAC)
	}

	regions, err := s.repo.RegionCounts(where)
	if err != nil {
		return nil, err
	}
	regionData := make([]models.RegionSlice, len(regions))
	for i, r := range regions {
		regionData[i] = models.RegionSlice{
			Name:  r.Region,
			Value: r.Count,
			Fill:  analytics.ColorAt(i),
		}
	}

	categoryRows, err := s.repo.CategoryMonthly(where)
	if err != nil {
		return nil, err
	}

	histogram, err := s.repo.PurchaseHistogram(where)
	if err != nil {
		return nil, err
	}
	for i := range histogram {
		histogram[i].NumPurchases = sanitize.Float(histogram[i].NumPurchases)
	}

	recency, err := s.repo.RecencyAOV(where)
	if err != nil {
		return nil, err
	}
	for i := range recency {
		recency[i].WeeksSinceFirst = sanitize.Float(recency[i].WeeksSinceFirst)
		recency[i].AvgAOV = sanitize.Float(recency[i].AvgAOV)
	}

	roas, err := s.repo.CategoryROAS(where)
	if err != nil {
		return nil, err
	}
	for i := range roas {
		roas[i].AvgROAS = sanitize.Float(roas[i].AvgROAS)
	}

	// The filter universe ignores the request's predicate on purpose: the
	// controls must always show every available choice.
	filterLists, err := s.repo.FilterUniverse()
	if err != nil {
		return nil, err
	}

	return &models.DashboardBundle{
		KPIs:                sanitizeKPIs(kpis),
		MonthlyData:         monthly,
		RegionData:          regionData,
		CategoryMonthlyData: pivotCategoryMonthly(categoryRows),
		HistogramData:       histogram,
		AOVDaysData:         recency,
		ROASCategoryData:    roas,
		FilterLists:         filterLists,
	}, nil
}

// sanitizeKPIs nulls out non-finite aggregates; SQL NULL is already
// coalesced to 0 by the repository.
func sanitizeKPIs(k models.KPIs) models.KPIs {
	k.TotalRevenue = sanitize.Float(k.TotalRevenue)
	k.AvgAOV = sanitize.Float(k.AvgAOV)
	k.AvgLTV = sanitize.Float(k.AvgLTV)
	k.AvgCACPercent = sanitize.Float(k.AvgCACPercent)
	k.AvgROAS = sanitize.Float(k.AvgROAS)
	k.AvgLifetime = sanitize.Float(k.AvgLifetime)
	return k
}

// pivotCategoryMonthly turns (month, category, volume) rows into one row
// per month with one column per category, missing combinations filled
// with 0. Months keep their ascending query order.
func pivotCategoryMonthly(rows []models.CategoryMonthlyRow) []map[string]interface{} {
	var months []string
	seen := make(map[string]bool)
	volumes := make(map[string]map[string]int64)
	categorySet := make(map[string]bool)

	for _, row := range rows {
		if !seen[row.Month] {
			seen[row.Month] = true
			months = append(months, row.Month)
			volumes[row.Month] = make(map[string]int64)
		}
		volumes[row.Month][row.Category] = row.Volume
		categorySet[row.Category] = true
	}

	categories := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	out := make([]map[string]interface{}, 0, len(months))
	for _, month := range months {
		row := map[string]interface{}{"month": analytics.MonthLabel(month)}
		for _, cat := range categories {
			row[cat] = volumes[month][cat]
		}
		out = append(out, row)
	}
	return out
}
