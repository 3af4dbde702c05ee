package repositories

import (
	"database/sql"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/models"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/sanitize"
)

// DashboardRepo runs the fixed aggregation battery against the wide
// transactions table. Every method takes the compiled predicate fragment;
// the filter universe is always fetched unfiltered.
type DashboardRepo interface {
	KPIs(where string) (models.KPIs, error)
	MonthlySeries(where string) ([]models.MonthlyPoint, error)
	RegionCounts(where string) ([]models.RegionCount, error)
	CategoryMonthly(where string) ([]models.CategoryMonthlyRow, error)
	PurchaseHistogram(where string) ([]models.HistogramBin, error)
	RecencyAOV(where string) ([]models.RecencyBin, error)
	CategoryROAS(where string) ([]models.CategoryROAS, error)
	FilterUniverse() (models.FilterOptions, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepo {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) KPIs(where string) (models.KPIs, error) {
	var row struct {
		TotalRevenue  sql.NullFloat64 `gorm:"column:total_revenue"`
		AvgAOV        sql.NullFloat64 `gorm:"column:avg_aov"`
		AvgLTV        sql.NullFloat64 `gorm:"column:avg_ltv"`
		AvgCACPercent sql.NullFloat64 `gorm:"column:avg_cac_percent"`
		AvgROAS       sql.NullFloat64 `gorm:"column:avg_roas"`
		AvgLifetime   sql.NullFloat64 `gorm:"column:avg_lifetime"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT
			SUM("Revenue") AS total_revenue,
			AVG("AOV") AS avg_aov,
			AVG("LTV") AS avg_ltv,
			AVG("CAC Percent") AS avg_cac_percent,
			AVG("ROAS") AS avg_roas,
			AVG("Customer Lifetime") AS avg_lifetime
		FROM main
		%s`, where)).Scan(&row).Error
	if err != nil {
		return models.KPIs{}, fmt.Errorf("kpi query failed: %w", err)
	}

	return models.KPIs{
		TotalRevenue:  coalesce(row.TotalRevenue),
		AvgAOV:        coalesce(row.AvgAOV),
		AvgLTV:        coalesce(row.AvgLTV),
		AvgCACPercent: coalesce(row.AvgCACPercent),
		AvgROAS:       coalesce(row.AvgROAS),
		AvgLifetime:   coalesce(row.AvgLifetime),
	}, nil
}

func (r *dashboardRepo) MonthlySeries(where string) ([]models.MonthlyPoint, error) {
	var rows []struct {
		Month       string   `gorm:"column:month"`
		Revenue     *float64 `gorm:"column:revenue"`
		LostRevenue *float64 `gorm:"column:lost_revenue"`
		CAC         *float64 `gorm:"column:cac"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT
			TO_CHAR("Transaction_Date", 'YYYY-MM') AS month,
			SUM("Revenue") AS revenue,
			SUM("Lost Revenue") AS lost_revenue,
			AVG("CAC") AS cac
		FROM main
		%s
		GROUP BY month
		ORDER BY month ASC`, where)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("monthly series query failed: %w", err)
	}

	out := make([]models.MonthlyPoint, len(rows))
	for i, row := range rows {
		out[i] = models.MonthlyPoint{
			Month:       row.Month,
			Revenue:     row.Revenue,
			LostRevenue: row.LostRevenue,
			CAC:         row.CAC,
		}
	}
	return out, nil
}

func (r *dashboardRepo) RegionCounts(where string) ([]models.RegionCount, error) {
	var rows []struct {
		Region string `gorm:"column:region"`
		Count  int64  `gorm:"column:count"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT "Region" AS region, COUNT(*) AS count
		FROM main
		%s
		GROUP BY "Region"
		ORDER BY count DESC`, where)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("region distribution query failed: %w", err)
	}

	out := make([]models.RegionCount, len(rows))
	for i, row := range rows {
		out[i] = models.RegionCount{Region: row.Region, Count: row.Count}
	}
	return out, nil
}

func (r *dashboardRepo) CategoryMonthly(where string) ([]models.CategoryMonthlyRow, error) {
	var rows []struct {
		Month    string `gorm:"column:month"`
		Category string `gorm:"column:category"`
		Volume   int64  `gorm:"column:volume"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT
			TO_CHAR("Transaction_Date", 'YYYY-MM') AS month,
			"Category" AS category,
			COUNT(*) AS volume
		FROM main
		%s
		GROUP BY month, "Category"
		ORDER BY month ASC, category ASC`, where)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("category by month query failed: %w", err)
	}

	out := make([]models.CategoryMonthlyRow, len(rows))
	for i, row := range rows {
		out[i] = models.CategoryMonthlyRow{Month: row.Month, Category: row.Category, Volume: row.Volume}
	}
	return out, nil
}

func (r *dashboardRepo) PurchaseHistogram(where string) ([]models.HistogramBin, error) {
	var rows []struct {
		NumPurchases  *float64 `gorm:"column:num_purchases"`
		CustomerCount int64    `gorm:"column:customer_count"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT
			"Total Customer Transactions" AS num_purchases,
			COUNT(*) AS customer_count
		FROM main
		%s
		GROUP BY num_purchases
		ORDER BY num_purchases ASC`, where)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("purchase histogram query failed: %w", err)
	}

	out := make([]models.HistogramBin, len(rows))
	for i, row := range rows {
		out[i] = models.HistogramBin{NumPurchases: row.NumPurchases, CustomerCount: row.CustomerCount}
	}
	return out, nil
}

func (r *dashboardRepo) RecencyAOV(where string) ([]models.RecencyBin, error) {
	// Rows with unknown or negative recency would produce nonsense bins.
	cond := `"Customer Days Since First Purchase" IS NOT NULL AND "AOV" IS NOT NULL AND "Customer Days Since First Purchase" >= 0`
	if where == "" {
		where = "WHERE " + cond
	} else {
		where += " AND " + cond
	}

	var rows []struct {
		WeeksSinceFirst *float64 `gorm:"column:weeks_since_first"`
		AvgAOV          *float64 `gorm:"column:avg_aov"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT
			FLOOR("Customer Days Since First Purchase" / 7.0) AS weeks_since_first,
			AVG("AOV") AS avg_aov
		FROM main
		%s
		GROUP BY weeks_since_first
		ORDER BY weeks_since_first ASC`, where)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recency vs AOV query failed: %w", err)
	}

	out := make([]models.RecencyBin, len(rows))
	for i, row := range rows {
		out[i] = models.RecencyBin{WeeksSinceFirst: row.WeeksSinceFirst, AvgAOV: row.AvgAOV}
	}
	return out, nil
}

func (r *dashboardRepo) CategoryROAS(where string) ([]models.CategoryROAS, error) {
	var rows []struct {
		Category string   `gorm:"column:category"`
		AvgROAS  *float64 `gorm:"column:avg_roas"`
	}

	err := r.db.Raw(fmt.Sprintf(`
		SELECT "Category" AS category, AVG("ROAS") AS avg_roas
		FROM main
		%s
		GROUP BY "Category"
		ORDER BY avg_roas DESC`, where)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("category ROAS query failed: %w", err)
	}

	out := make([]models.CategoryROAS, len(rows))
	for i, row := range rows {
		out[i] = models.CategoryROAS{Category: row.Category, AvgROAS: row.AvgROAS}
	}
	return out, nil
}

func (r *dashboardRepo) FilterUniverse() (models.FilterOptions, error) {
	opts := models.FilterOptions{}

	lists := []struct {
		column string
		dest   *[]string
	}{
		{"Region", &opts.Regions},
		{"Category", &opts.Categories},
		{"Customer Tenure", &opts.TenureList},
		{"Customer Recency", &opts.RecencyList},
	}
	for _, l := range lists {
		err := r.db.Raw(fmt.Sprintf(
			`SELECT DISTINCT "%s" FROM main ORDER BY "%s"`, l.column, l.column)).Scan(l.dest).Error
		if err != nil {
			return opts, fmt.Errorf("distinct %q query failed: %w", l.column, err)
		}
	}

	var txMax sql.NullFloat64
	if err := r.db.Raw(`SELECT MAX("Total Customer Transactions") FROM main`).Scan(&txMax).Error; err != nil {
		return opts, fmt.Errorf("transactions max query failed: %w", err)
	}
	opts.TransactionsMax = finiteOr(txMax, 50)

	var discountMax sql.NullFloat64
	if err := r.db.Raw(`SELECT MAX("Discount_Applied") FROM main`).Scan(&discountMax).Error; err != nil {
		return opts, fmt.Errorf("discount max query failed: %w", err)
	}
	opts.DiscountMax = math.Round(finiteOr(discountMax, 1.0)*100) / 100

	return opts, nil
}

// finiteOr guards the slider maxima: NULL or non-finite aggregates fall
// back to the default so the bundle always serializes.
func finiteOr(v sql.NullFloat64, def float64) float64 {
	if !v.Valid {
		return def
	}
	f := v.Float64
	if sanitize.Float(&f) == nil {
		return def
	}
	return f
}

// coalesce maps SQL NULL to 0. Non-finite values pass through untouched;
// the service layer nulls those out before serialization.
func coalesce(v sql.NullFloat64) *float64 {
	f := 0.0
	if v.Valid {
		f = v.Float64
	}
	return &f
}
