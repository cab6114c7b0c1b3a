// Package resources wraps the API's resource endpoints on top of the
// authenticated client. It adds no behaviour of its own: credentials,
// account scoping, refresh and caching all happen in the client.
package resources

import (
	"sort"
	"strings"
)

const (
	EndpointAccounts          = "/accounts"
	EndpointExpenses          = "/expenses"
	EndpointIncomes           = "/incomes"
	EndpointRecurringExpenses = "/recurring-expenses"
	EndpointRecurringIncomes  = "/recurring-incomes"
	EndpointSavingsGoals      = "/savings-goals"
	EndpointExpenseCategories = "/expense-categories"
	EndpointIncomeCategories  = "/income-categories"
	EndpointDashboardSummary  = "/dashboard/summary"
)

var Endpoints = map[string]string{
	"accounts":           EndpointAccounts,
	"expenses":           EndpointExpenses,
	"incomes":            EndpointIncomes,
	"recurring-expenses": EndpointRecurringExpenses,
	"recurring-incomes":  EndpointRecurringIncomes,
	"savings-goals":      EndpointSavingsGoals,
	"expense-categories": EndpointExpenseCategories,
	"income-categories":  EndpointIncomeCategories,
	"dashboard":          EndpointDashboardSummary,
}

// EndpointNames returns the known endpoint names, sorted.
func EndpointNames() []string {
	names := make([]string, 0, len(Endpoints))
	for name := range Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveEndpoint maps a short name to its path. Anything else is treated
// as a path relative to the API base.
func ResolveEndpoint(name string) string {
	if path, found := Endpoints[strings.ToLower(name)]; found {
		return path
	}
	if !strings.HasPrefix(name, "/") {
		return "/" + name
	}
	return name
}
