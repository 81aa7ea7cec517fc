package db

import (
	"context"
	"testing"
	"time"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

func TestMemStoreDuplicateEmailIsConstraint(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "casey", "casey@example.com", "hash"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := store.CreateUser(ctx, "other", "casey@example.com", "hash")
	if !errs.Is(err, errs.KindConstraint) {
		t.Fatalf("duplicate email error = %v, want constraint kind", err)
	}
}

func TestMemStoreSessionLifecycle(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, 1, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := store.GetSession(ctx, sess.ID); err != nil {
		t.Fatalf("get live session: %v", err)
	}

	if err := store.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.GetSession(ctx, sess.ID); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("get deleted session error = %v, want not found", err)
	}

	// Deleting again is a no-op, not an error.
	if err := store.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemStoreExpiredSessionNotReturned(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, 1, -time.Minute)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := store.GetSession(ctx, sess.ID); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("expired session error = %v, want not found", err)
	}
}

func TestMemStoreCreateExpenseUnknownCategory(t *testing.T) {
	store := NewMemStore()

	_, err := store.CreateExpense(context.Background(), &models.Expense{
		UserID:     1,
		CategoryID: 999,
		Amount:     10,
		Date:       time.Now(),
	})
	if !errs.Is(err, errs.KindConstraint) {
		t.Fatalf("unknown category error = %v, want constraint kind", err)
	}
}

func TestMemStoreSeededCategories(t *testing.T) {
	store := NewMemStore()

	categories, err := store.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 8 {
		t.Fatalf("len(categories) = %d, want 8", len(categories))
	}
	if categories[0].Name != "Food" || categories[0].ID != 1 {
		t.Fatalf("first category = %+v, want Food with id 1", categories[0])
	}
}

func TestMemStoreRollbackLeavesExpensesUntouched(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	created, err := store.CreateExpense(ctx, &models.Expense{
		UserID:     1,
		CategoryID: 1,
		Amount:     20,
		Date:       time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.UpdateExpenseWithRollback(ctx, 1, created.ID, 999); err != nil {
		t.Fatalf("rollback update: %v", err)
	}

	expenses, err := store.ListExpenses(ctx, 1, SortByDate, OrderAsc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if expenses[0].Amount != 20 {
		t.Fatalf("amount = %.2f after rollback, want 20", expenses[0].Amount)
	}
}

func TestMemStoreSetBudgetAlertPerExceedingCall(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if _, err := store.CreateExpense(ctx, &models.Expense{UserID: 1, CategoryID: 1, Amount: 150, Date: time.Now()}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	// Each exceeding SetBudget call records a fresh alert.
	for i := 0; i < 2; i++ {
		status, err := store.SetBudget(ctx, 1, 1, 100)
		if err != nil {
			t.Fatalf("set budget: %v", err)
		}
		if !status.Exceeded || status.Alert == nil {
			t.Fatalf("call %d not flagged exceeded: %+v", i, status)
		}
	}
	alerts, err := store.ListAlerts(ctx, 1)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2", len(alerts))
	}

	budgets, err := store.ListBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("len(budgets) = %d, want 2", len(budgets))
	}
}

func TestMemStoreFailWithPropagates(t *testing.T) {
	store := NewMemStore()
	store.FailWith = errs.Connectionf("connection refused")

	if _, err := store.ListExpenses(context.Background(), 1, SortByDate, OrderAsc); !errs.Is(err, errs.KindConnection) {
		t.Fatalf("error = %v, want connection kind", err)
	}
}
