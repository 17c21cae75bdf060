package domain

// ============================================================
// Seed: synthetic demo data
// ============================================================

// SeedSummary counts what the seed inserted.
type SeedSummary struct {
	Workspaces             int `json:"workspaces"`
	Clients                int `json:"clients"`
	RevenueClassifications int `json:"revenueClassifications"`
	ExpenseClassifications int `json:"expenseClassifications"`
	Revenues               int `json:"revenues"`
	Expenses               int `json:"expenses"`
}

// SeedResult is returned by POST /api/seed.
type SeedResult struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	Summary SeedSummary `json:"summary"`
}

// SeedUsage is returned by GET /api/seed.
type SeedUsage struct {
	Message string `json:"message"`
	Method  string `json:"method"`
	Access  string `json:"access"`
}
