package db

import (
	"context"
	"fmt"
	"time"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

// Fixed identifier maps keyed by the whitelisted sort tokens. Values here
// are the only strings ever formatted into an ORDER BY clause.
var (
	sortColumns = map[SortField]string{
		SortByDate:   "expense_date",
		SortByAmount: "amount",
	}
	sortDirections = map[SortOrder]string{
		OrderAsc:  "ASC",
		OrderDesc: "DESC",
	}
)

func (s *PostgresStore) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, category_id, amount, expense_date, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, category_id, amount, expense_date, description, created_at
	`
	var e models.Expense
	err := s.pool.QueryRow(ctx, query,
		expense.UserID, expense.CategoryID, expense.Amount, expense.Date, expense.Description).
		Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Date, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("create expense: %w", err))
	}
	return &e, nil
}

func (s *PostgresStore) ListExpenses(ctx context.Context, userID int, sortBy SortField, order SortOrder) ([]models.Expense, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		return nil, errs.Validationf("invalid sort field %q", sortBy)
	}
	dir, ok := sortDirections[order]
	if !ok {
		return nil, errs.Validationf("invalid sort order %q", order)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, category_id, amount, expense_date, description, created_at
		FROM expenses
		WHERE user_id = $1
		ORDER BY %s %s, id
	`, col, dir)

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("list expenses: %w", err))
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Date, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *PostgresStore) ListExpensesByDateRange(ctx context.Context, userID int, start, end time.Time) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, category_id, amount, expense_date, description, created_at
		FROM expenses
		WHERE user_id = $1 AND expense_date BETWEEN $2 AND $3
		ORDER BY expense_date, id
	`
	rows, err := s.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("list expenses by date range: %w", err))
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Date, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense updates only rows owned by userID and returns the number of
// rows affected so the caller can distinguish no-match from success.
func (s *PostgresStore) UpdateExpense(ctx context.Context, userID, expenseID int, description string, amount float64, date time.Time) (int64, error) {
	query := `
		UPDATE expenses
		SET description = $1, amount = $2, expense_date = $3
		WHERE id = $4 AND user_id = $5
	`
	cmd, err := s.pool.Exec(ctx, query, description, amount, date, expenseID, userID)
	if err != nil {
		return 0, errs.FromPg(fmt.Errorf("update expense: %w", err))
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) DeleteExpense(ctx context.Context, userID, expenseID int) error {
	// Ownership-scoped existence check first, so "not found" is reported
	// distinctly from "deleted".
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM expenses WHERE id = $1 AND user_id = $2)`,
		expenseID, userID).Scan(&exists)
	if err != nil {
		return errs.FromPg(fmt.Errorf("check expense: %w", err))
	}
	if !exists {
		return errs.NotFoundf("expense %d not found for user %d", expenseID, userID)
	}

	_, err = s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	if err != nil {
		return errs.FromPg(fmt.Errorf("delete expense: %w", err))
	}
	return nil
}

// UpdateExpenseWithRollback applies the update in a transaction and rolls it
// back unconditionally. The commit path does not exist.
func (s *PostgresStore) UpdateExpenseWithRollback(ctx context.Context, userID, expenseID int, newAmount float64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.FromPg(fmt.Errorf("begin transaction: %w", err))
	}

	_, err = tx.Exec(ctx,
		`UPDATE expenses SET amount = $1 WHERE id = $2 AND user_id = $3`,
		newAmount, expenseID, userID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return errs.FromPg(fmt.Errorf("update within transaction: %w", err))
	}

	if err := tx.Rollback(ctx); err != nil {
		return errs.FromPg(fmt.Errorf("rollback: %w", err))
	}
	return nil
}
