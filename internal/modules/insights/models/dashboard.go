package models

// KPIs are the scalar headline metrics. SQL NULL (no matching rows)
// coalesces to 0; a non-finite aggregate is emitted as null.
type KPIs struct {
	TotalRevenue  *float64 `json:"totalRevenue"`
	AvgAOV        *float64 `json:"avgAOV"`
	AvgLTV        *float64 `json:"avgLTV"`
	AvgCACPercent *float64 `json:"avgCACPercent"`
	AvgROAS       *float64 `json:"avgROAS"`
	AvgLifetime   *float64 `json:"avgLifetime"`
}

// MonthlyPoint is one calendar-month bucket of the revenue series.
type MonthlyPoint struct {
	Month       string   `json:"month"`
	Revenue     *float64 `json:"revenue"`
	LostRevenue *float64 `json:"lost_revenue"`
	CAC         *float64 `json:"cac"`
}

// RegionCount is a raw region/row-count pair before colors are assigned.
type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

// RegionSlice is one region of the distribution with its display color.
type RegionSlice struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Fill  string `json:"fill"`
}

// CategoryMonthlyRow is one (month, category) cell before pivoting.
type CategoryMonthlyRow struct {
	Month    string `json:"month"`
	Category string `json:"category"`
	Volume   int64  `json:"volume"`
}

// HistogramBin is one bucket of the purchase-count histogram.
type HistogramBin struct {
	NumPurchases  *float64 `json:"num_purchases"`
	CustomerCount int64    `json:"customer_count"`
}

// RecencyBin is one 7-day-wide bin of the recency-vs-AOV series.
type RecencyBin struct {
	WeeksSinceFirst *float64 `json:"weeks_since_first"`
	AvgAOV          *float64 `json:"avg_aov"`
}

// CategoryROAS is one entry of the ROAS ranking.
type CategoryROAS struct {
	Category string   `json:"category"`
	AvgROAS  *float64 `json:"avg_roas"`
}

// FilterOptions is the unfiltered universe of filter choices used to
// populate the dashboard controls.
type FilterOptions struct {
	Regions         []string `json:"regions"`
	Categories      []string `json:"categories"`
	TenureList      []string `json:"tenureList"`
	RecencyList     []string `json:"recencyList"`
	TransactionsMax float64  `json:"transactionsMax"`
	DiscountMax     float64  `json:"discountMax"`
}

// DashboardBundle is the full dashboard dataset, constructed fresh per
// request and never persisted.
type DashboardBundle struct {
	KPIs                KPIs                     `json:"kpis"`
	MonthlyData         []MonthlyPoint           `json:"monthlyData"`
	RegionData          []RegionSlice            `json:"regionData"`
	CategoryMonthlyData []map[string]interface{} `json:"categoryMonthlyData"`
	HistogramData       []HistogramBin           `json:"histogramData"`
	AOVDaysData         []RecencyBin             `json:"aovDaysData"`
	ROASCategoryData    []CategoryROAS           `json:"roasCategoryData"`
	FilterLists         FilterOptions            `json:"filterLists"`
}
