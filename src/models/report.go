package models

// CategoryTotal is one row of the monthly report: spend summed per category.
type CategoryTotal struct {
	Category   string  `json:"category"`
	TotalSpent float64 `json:"total_spent"`
}

// MonthlyTotal is one point of the spending trend series. Month is the
// calendar month number; all years fold into the same bucket.
type MonthlyTotal struct {
	Month      int     `json:"month"`
	TotalSpent float64 `json:"total_spent"`
}
