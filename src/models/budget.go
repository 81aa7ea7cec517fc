package models

import "time"

type Budget struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	CategoryID  int       `json:"category_id"`
	LimitAmount float64   `json:"limit_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// BudgetStatus is the outcome of setting a budget: the inserted row, the
// cumulative spend for the category at that moment, and the alert that was
// written when the spend already exceeds the new limit.
type BudgetStatus struct {
	Budget     Budget  `json:"budget"`
	TotalSpent float64 `json:"total_spent"`
	Exceeded   bool    `json:"exceeded"`
	Alert      *Alert  `json:"alert,omitempty"`
}
