package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"spendlog-server/src/db"
	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

var errTestConnection = errs.Connectionf("connection refused")

func newExpenseRouter(store db.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/expenses", ListExpenses(store))
	r.Post("/api/expenses", CreateExpense(store))
	r.Get("/api/expenses/range", ListExpensesByDateRange(store))
	r.Put("/api/expenses/{expense_id}", UpdateExpense(store))
	r.Delete("/api/expenses/{expense_id}", DeleteExpense(store))
	r.Post("/api/expenses/{expense_id}/rollback-demo", RollbackDemo(store))
	return r
}

// doAs issues a request with the context values the auth middleware would
// have set.
func doAs(t *testing.T, h http.Handler, userID int64, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), "user_id", userID)
	ctx = context.WithValue(ctx, "session_id", "test-session")
	h.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func addExpense(t *testing.T, store db.Store, userID, categoryID int, amount float64, date, description string) *models.Expense {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	e, err := store.CreateExpense(context.Background(), &models.Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Date:        d,
		Description: description,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

func TestCreateThenListExpense(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)

	rr := doAs(t, r, 1, http.MethodPost, "/api/expenses",
		`{"description":"groceries","amount":42.50,"date":"2024-03-15","category_id":1}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	rr = doAs(t, r, 1, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}
	var expenses []models.Expense
	if err := json.NewDecoder(rr.Body).Decode(&expenses); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("len(expenses) = %d, want 1", len(expenses))
	}
	e := expenses[0]
	if e.Amount != 42.50 || e.Description != "groceries" || e.Date.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("listed expense does not match input: %+v", e)
	}
}

func TestListExpensesSortWhitelist(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)

	addExpense(t, store, 1, 1, 10, "2024-01-02", "b")
	addExpense(t, store, 1, 1, 30, "2024-01-01", "a")
	addExpense(t, store, 1, 1, 20, "2024-01-03", "c")

	tests := []struct {
		query       string
		wantStatus  int
		wantAmounts []float64
	}{
		{"", http.StatusOK, []float64{30, 10, 20}},
		{"?sort_by=date&order=desc", http.StatusOK, []float64{20, 10, 30}},
		{"?sort_by=amount&order=asc", http.StatusOK, []float64{10, 20, 30}},
		{"?sort_by=amount&order=desc", http.StatusOK, []float64{30, 20, 10}},
		{"?sort_by=amount;%20DROP%20TABLE%20expenses", http.StatusBadRequest, nil},
		{"?sort_by=date&order=sideways", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		rr := doAs(t, r, 1, http.MethodGet, "/api/expenses"+tt.query, "")
		if rr.Code != tt.wantStatus {
			t.Fatalf("%q status = %d, want %d", tt.query, rr.Code, tt.wantStatus)
		}
		if tt.wantStatus != http.StatusOK {
			continue
		}
		var expenses []models.Expense
		if err := json.NewDecoder(rr.Body).Decode(&expenses); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		for i, want := range tt.wantAmounts {
			if expenses[i].Amount != want {
				t.Fatalf("%q order wrong at %d: got %.2f, want %.2f", tt.query, i, expenses[i].Amount, want)
			}
		}
	}
}

func TestUpdateExpenseOwnedByOtherUser(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)

	target := addExpense(t, store, 1, 1, 20, "2024-03-01", "lunch")

	rr := doAs(t, r, 2, http.MethodPut, "/api/expenses/1",
		`{"description":"hijacked","amount":999,"date":"2024-03-02"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("cross-user update status = %d, want 404", rr.Code)
	}

	expenses, err := store.ListExpenses(context.Background(), 1, db.SortByDate, db.OrderAsc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("len = %d, want 1", len(expenses))
	}
	got := expenses[0]
	if got.Amount != target.Amount || got.Description != target.Description || !got.Date.Equal(target.Date) {
		t.Fatalf("target row was altered: %+v", got)
	}
}

func TestUpdateExpenseValidation(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)
	addExpense(t, store, 1, 1, 20, "2024-03-01", "lunch")

	// Below the 0.01 minimum.
	rr := doAs(t, r, 1, http.MethodPut, "/api/expenses/1",
		`{"description":"lunch","amount":0,"date":"2024-03-01"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("zero amount status = %d, want 400", rr.Code)
	}

	rr = doAs(t, r, 1, http.MethodPut, "/api/expenses/1",
		`{"description":"lunch","amount":25.50,"date":"2024-03-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid update status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
}

func TestDeleteExpenseNotFoundLeavesSetUnchanged(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)
	addExpense(t, store, 1, 1, 20, "2024-03-01", "lunch")

	rr := doAs(t, r, 1, http.MethodDelete, "/api/expenses/999", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing status = %d, want 404", rr.Code)
	}

	expenses, err := store.ListExpenses(context.Background(), 1, db.SortByDate, db.OrderAsc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("cardinality changed: len = %d, want 1", len(expenses))
	}

	rr = doAs(t, r, 1, http.MethodDelete, "/api/expenses/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete existing status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "deleted") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestListExpensesByDateRangeInclusive(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)

	addExpense(t, store, 1, 1, 1, "2024-02-29", "before")
	addExpense(t, store, 1, 1, 2, "2024-03-01", "start boundary")
	addExpense(t, store, 1, 1, 3, "2024-03-15", "inside")
	addExpense(t, store, 1, 1, 4, "2024-03-31", "end boundary")
	addExpense(t, store, 1, 1, 5, "2024-04-01", "after")

	rr := doAs(t, r, 1, http.MethodGet, "/api/expenses/range?start_date=2024-03-01&end_date=2024-03-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("range status = %d, want 200", rr.Code)
	}
	var expenses []models.Expense
	if err := json.NewDecoder(rr.Body).Decode(&expenses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("len = %d, want 3", len(expenses))
	}
	if expenses[0].Amount != 2 || expenses[2].Amount != 4 {
		t.Fatalf("boundaries missing: %+v", expenses)
	}

	// Inverted range is a validation error.
	rr = doAs(t, r, 1, http.MethodGet, "/api/expenses/range?start_date=2024-03-31&end_date=2024-03-01", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d, want 400", rr.Code)
	}

	// An empty window is an empty list, not an error.
	rr = doAs(t, r, 1, http.MethodGet, "/api/expenses/range?start_date=2025-01-01&end_date=2025-01-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("empty range status = %d, want 200", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty range body = %s, want []", rr.Body.String())
	}
}

func TestRollbackDemoPersistsNothing(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)

	addExpense(t, store, 1, 1, 20, "2024-03-01", "lunch")

	rr := doAs(t, r, 1, http.MethodPost, "/api/expenses/1/rollback-demo", `{"new_amount":999}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("rollback demo status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Message  string           `json:"message"`
		Expenses []models.Expense `json:"expenses"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Expenses) != 1 || resp.Expenses[0].Amount != 20 {
		t.Fatalf("post-rollback rows changed: %+v", resp.Expenses)
	}

	// The store itself must be untouched too.
	expenses, err := store.ListExpenses(context.Background(), 1, db.SortByDate, db.OrderAsc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if expenses[0].Amount != 20 {
		t.Fatalf("amount = %.2f after rollback, want 20", expenses[0].Amount)
	}
}

func TestRollbackDemoReportsStoreFailure(t *testing.T) {
	store := db.NewMemStore()
	r := newExpenseRouter(store)
	addExpense(t, store, 1, 1, 20, "2024-03-01", "lunch")

	store.FailWith = errTestConnection
	rr := doAs(t, r, 1, http.MethodPost, "/api/expenses/1/rollback-demo", `{"new_amount":50}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "transaction failed") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
