package db

import (
	"context"
	"time"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

// SortField and SortOrder are the only identifiers that may reach an
// ORDER BY clause. User input is parsed through ParseSort and mapped to
// fixed column names; it is never spliced into query text.
type SortField string

type SortOrder string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"

	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSort validates the sort parameters of an expense listing. Empty
// values fall back to date ascending.
func ParseSort(field, order string) (SortField, SortOrder, error) {
	f := SortByDate
	switch field {
	case "", "date":
	case "amount":
		f = SortByAmount
	default:
		return "", "", errs.Validationf("invalid sort_by %q: must be 'date' or 'amount'", field)
	}

	o := OrderAsc
	switch order {
	case "", "asc":
	case "desc":
		o = OrderDesc
	default:
		return "", "", errs.Validationf("invalid order %q: must be 'asc' or 'desc'", order)
	}

	return f, o, nil
}

// Store is the persistence surface the handlers depend on. PostgresStore is
// the production implementation; MemStore backs the tests.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int) (*models.User, error)

	CreateSession(ctx context.Context, userID int, ttl time.Duration) (*models.Session, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error

	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	ListExpenses(ctx context.Context, userID int, sortBy SortField, order SortOrder) ([]models.Expense, error)
	ListExpensesByDateRange(ctx context.Context, userID int, start, end time.Time) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID int, description string, amount float64, date time.Time) (int64, error)
	DeleteExpense(ctx context.Context, userID, expenseID int) error
	// UpdateExpenseWithRollback applies an amount update inside a
	// transaction and unconditionally rolls it back. It never persists
	// anything.
	UpdateExpenseWithRollback(ctx context.Context, userID, expenseID int, newAmount float64) error

	MonthlyReport(ctx context.Context, userID, month, year int) ([]models.CategoryTotal, error)
	SpendingTrend(ctx context.Context, userID int) ([]models.MonthlyTotal, error)

	// SetBudget inserts a budget row, computes cumulative spend for the
	// category, and writes an alert when the spend exceeds the limit,
	// all in a single transaction.
	SetBudget(ctx context.Context, userID, categoryID int, limitAmount float64) (*models.BudgetStatus, error)
	ListBudgets(ctx context.Context, userID int) ([]models.Budget, error)
	ListAlerts(ctx context.Context, userID int) ([]models.Alert, error)
}
