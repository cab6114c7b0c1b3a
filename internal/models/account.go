package models

type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

var Currencies = []Currency{CurrencyARS, CurrencyUSD, CurrencyEUR}

var CurrencySymbols = map[Currency]string{
	CurrencyARS: "$",
	CurrencyUSD: "US$",
	CurrencyEUR: "€",
}

type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
	AccountTypeFamily   AccountType = "family"
)

var AccountTypes = []AccountType{AccountTypePersonal, AccountTypeFamily}

type Account struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id,omitempty"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Currency    Currency    `json:"currency"`
	MemberCount *int        `json:"memberCount,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

type CreateAccountRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Type     AccountType `json:"type" validate:"required,oneof=personal family"`
	Currency Currency    `json:"currency" validate:"required,oneof=ARS USD EUR"`
}

// AccountList is the envelope returned by GET /accounts.
type AccountList struct {
	Accounts []Account `json:"accounts"`
	Count    int       `json:"count"`
}
