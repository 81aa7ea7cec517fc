package db

import (
	"context"
	"fmt"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

func (s *PostgresStore) MonthlyReport(ctx context.Context, userID, month, year int) ([]models.CategoryTotal, error) {
	query := `
		SELECT c.name, SUM(e.amount)::float8 AS total_spent
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = $1
		  AND EXTRACT(MONTH FROM e.expense_date) = $2
		  AND EXTRACT(YEAR FROM e.expense_date) = $3
		GROUP BY c.name
		ORDER BY c.name
	`
	rows, err := s.pool.Query(ctx, query, userID, month, year)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("monthly report: %w", err))
	}
	defer rows.Close()

	var report []models.CategoryTotal
	for rows.Next() {
		var row models.CategoryTotal
		if err := rows.Scan(&row.Category, &row.TotalSpent); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

// SpendingTrend buckets by calendar month across all years. Conflating
// years is the documented behavior, not an oversight to fix here.
func (s *PostgresStore) SpendingTrend(ctx context.Context, userID int) ([]models.MonthlyTotal, error) {
	query := `
		SELECT EXTRACT(MONTH FROM expense_date)::int AS month, SUM(amount)::float8 AS total_spent
		FROM expenses
		WHERE user_id = $1
		GROUP BY month
		ORDER BY month
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("spending trend: %w", err))
	}
	defer rows.Close()

	var trend []models.MonthlyTotal
	for rows.Next() {
		var row models.MonthlyTotal
		if err := rows.Scan(&row.Month, &row.TotalSpent); err != nil {
			return nil, err
		}
		trend = append(trend, row)
	}
	return trend, rows.Err()
}
