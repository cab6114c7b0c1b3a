package models

// DashboardSummary is the monthly overview for the active account. Only the
// totals are typed; the breakdown lists are left to callers that need them.
type DashboardSummary struct {
	Period               string  `json:"period"`
	PrimaryCurrency      string  `json:"primary_currency"`
	TotalIncome          float64 `json:"total_income"`
	TotalExpenses        float64 `json:"total_expenses"`
	TotalAssignedToGoals float64 `json:"total_assigned_to_goals"`
	AvailableBalance     float64 `json:"available_balance"`
}
