package db

import (
	"context"
	"fmt"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

// SetBudget runs the insert, the spend aggregation, and the conditional
// alert write in one transaction, so a concurrent SetBudget for the same
// user and category cannot observe a stale total.
//
// Repeated calls for the same pair intentionally accumulate rows; the
// newest row is the budget in effect.
func (s *PostgresStore) SetBudget(ctx context.Context, userID, categoryID int, limitAmount float64) (*models.BudgetStatus, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	var status models.BudgetStatus
	err = tx.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, limit_amount)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, category_id, limit_amount, created_at
	`, userID, categoryID, limitAmount).
		Scan(&status.Budget.ID, &status.Budget.UserID, &status.Budget.CategoryID,
			&status.Budget.LimitAmount, &status.Budget.CreatedAt)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("insert budget: %w", err))
	}

	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::float8
		FROM expenses
		WHERE user_id = $1 AND category_id = $2
	`, userID, categoryID).Scan(&status.TotalSpent)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("sum category spend: %w", err))
	}

	if status.TotalSpent > limitAmount {
		status.Exceeded = true
		var alert models.Alert
		err = tx.QueryRow(ctx, `
			INSERT INTO alerts (user_id, message, alert_date)
			VALUES ($1, $2, CURRENT_DATE)
			RETURNING id, user_id, message, alert_date
		`, userID, fmt.Sprintf("Budget Exceeded for Category ID %d", categoryID)).
			Scan(&alert.ID, &alert.UserID, &alert.Message, &alert.Date)
		if err != nil {
			return nil, errs.FromPg(fmt.Errorf("insert alert: %w", err))
		}
		status.Alert = &alert
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errs.FromPg(fmt.Errorf("commit: %w", err))
	}
	return &status, nil
}

func (s *PostgresStore) ListBudgets(ctx context.Context, userID int) ([]models.Budget, error) {
	query := `
		SELECT id, user_id, category_id, limit_amount, created_at
		FROM budgets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("list budgets: %w", err))
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.LimitAmount, &b.CreatedAt)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *PostgresStore) ListAlerts(ctx context.Context, userID int) ([]models.Alert, error) {
	query := `
		SELECT id, user_id, message, alert_date
		FROM alerts
		WHERE user_id = $1
		ORDER BY alert_date DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("list alerts: %w", err))
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.Message, &a.Date); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
