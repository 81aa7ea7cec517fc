package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

// MemStore is an in-memory Store with the same observable semantics as
// PostgresStore. It backs the handler and router tests.
type MemStore struct {
	mu sync.Mutex

	users      map[int]models.User
	sessions   map[string]models.Session
	categories []models.Category
	expenses   map[int]models.Expense
	budgets    map[int]models.Budget
	alerts     map[int]models.Alert

	nextUserID    int
	nextExpenseID int
	nextBudgetID  int
	nextAlertID   int

	// FailWith, when set, is returned by every subsequent operation.
	// Lets tests exercise the store-error paths.
	FailWith error
}

func NewMemStore() *MemStore {
	names := []string{"Food", "Transport", "Housing", "Utilities", "Entertainment", "Healthcare", "Shopping", "Other"}
	categories := make([]models.Category, len(names))
	for i, n := range names {
		categories[i] = models.Category{ID: i + 1, Name: n}
	}
	return &MemStore{
		users:         make(map[int]models.User),
		sessions:      make(map[string]models.Session),
		categories:    categories,
		expenses:      make(map[int]models.Expense),
		budgets:       make(map[int]models.Budget),
		alerts:        make(map[int]models.Alert),
		nextUserID:    1,
		nextExpenseID: 1,
		nextBudgetID:  1,
		nextAlertID:   1,
	}
}

func (m *MemStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, u := range m.users {
		if u.Email == email {
			return nil, errs.Constraintf("duplicate value violates unique constraint")
		}
	}
	u := models.User{
		ID:           m.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.nextUserID++
	m.users[u.ID] = u
	return &u, nil
}

func (m *MemStore) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, errs.NotFoundf("user not found")
	}
	return &u, nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, errs.NotFoundf("user not found")
}

func (m *MemStore) CreateSession(ctx context.Context, userID int, ttl time.Duration) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	m.sessions[sess.ID] = sess
	return &sess, nil
}

func (m *MemStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	sess, ok := m.sessions[sessionID]
	if !ok || !sess.ExpiresAt.After(time.Now()) {
		return nil, errs.NotFoundf("session not found")
	}
	return &sess, nil
}

func (m *MemStore) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]models.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *MemStore) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if !m.categoryExists(expense.CategoryID) {
		return nil, errs.Constraintf("referenced row does not exist")
	}
	e := *expense
	e.ID = m.nextExpenseID
	e.CreatedAt = time.Now()
	m.nextExpenseID++
	m.expenses[e.ID] = e
	return &e, nil
}

func (m *MemStore) ListExpenses(ctx context.Context, userID int, sortBy SortField, order SortOrder) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if _, ok := sortColumns[sortBy]; !ok {
		return nil, errs.Validationf("invalid sort field %q", sortBy)
	}
	if _, ok := sortDirections[order]; !ok {
		return nil, errs.Validationf("invalid sort order %q", order)
	}

	var out []models.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var cmp int
		switch sortBy {
		case SortByAmount:
			switch {
			case a.Amount < b.Amount:
				cmp = -1
			case a.Amount > b.Amount:
				cmp = 1
			}
		default:
			switch {
			case a.Date.Before(b.Date):
				cmp = -1
			case a.Date.After(b.Date):
				cmp = 1
			}
		}
		if order == OrderDesc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (m *MemStore) ListExpensesByDateRange(ctx context.Context, userID int, start, end time.Time) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []models.Expense
	for _, e := range m.expenses {
		if e.UserID != userID {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) UpdateExpense(ctx context.Context, userID, expenseID int, description string, amount float64, date time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	e, ok := m.expenses[expenseID]
	if !ok || e.UserID != userID {
		return 0, nil
	}
	e.Description = description
	e.Amount = amount
	e.Date = date
	m.expenses[expenseID] = e
	return 1, nil
}

func (m *MemStore) DeleteExpense(ctx context.Context, userID, expenseID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	e, ok := m.expenses[expenseID]
	if !ok || e.UserID != userID {
		return errs.NotFoundf("expense %d not found for user %d", expenseID, userID)
	}
	delete(m.expenses, expenseID)
	return nil
}

func (m *MemStore) UpdateExpenseWithRollback(ctx context.Context, userID, expenseID int, newAmount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	// The update is applied and rolled back inside one transaction, so
	// the net effect on the store is nothing at all.
	return nil
}

func (m *MemStore) MonthlyReport(ctx context.Context, userID, month, year int) ([]models.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	totals := make(map[string]float64)
	for _, e := range m.expenses {
		if e.UserID != userID || int(e.Date.Month()) != month || e.Date.Year() != year {
			continue
		}
		totals[m.categoryName(e.CategoryID)] += e.Amount
	}
	var report []models.CategoryTotal
	for name, total := range totals {
		report = append(report, models.CategoryTotal{Category: name, TotalSpent: total})
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Category < report[j].Category })
	return report, nil
}

func (m *MemStore) SpendingTrend(ctx context.Context, userID int) ([]models.MonthlyTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	totals := make(map[int]float64)
	for _, e := range m.expenses {
		if e.UserID == userID {
			totals[int(e.Date.Month())] += e.Amount
		}
	}
	var trend []models.MonthlyTotal
	for month, total := range totals {
		trend = append(trend, models.MonthlyTotal{Month: month, TotalSpent: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend, nil
}

func (m *MemStore) SetBudget(ctx context.Context, userID, categoryID int, limitAmount float64) (*models.BudgetStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if !m.categoryExists(categoryID) {
		return nil, errs.Constraintf("referenced row does not exist")
	}

	var status models.BudgetStatus
	status.Budget = models.Budget{
		ID:          m.nextBudgetID,
		UserID:      userID,
		CategoryID:  categoryID,
		LimitAmount: limitAmount,
		CreatedAt:   time.Now(),
	}
	m.nextBudgetID++
	m.budgets[status.Budget.ID] = status.Budget

	for _, e := range m.expenses {
		if e.UserID == userID && e.CategoryID == categoryID {
			status.TotalSpent += e.Amount
		}
	}

	if status.TotalSpent > limitAmount {
		status.Exceeded = true
		alert := models.Alert{
			ID:      m.nextAlertID,
			UserID:  userID,
			Message: fmt.Sprintf("Budget Exceeded for Category ID %d", categoryID),
			Date:    time.Now().Truncate(24 * time.Hour),
		}
		m.nextAlertID++
		m.alerts[alert.ID] = alert
		status.Alert = &alert
	}
	return &status, nil
}

func (m *MemStore) ListBudgets(ctx context.Context, userID int) ([]models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []models.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemStore) ListAlerts(ctx context.Context, userID int) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []models.Alert
	for _, a := range m.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemStore) categoryExists(id int) bool {
	for _, c := range m.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (m *MemStore) categoryName(id int) string {
	for _, c := range m.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return fmt.Sprintf("category %d", id)
}
