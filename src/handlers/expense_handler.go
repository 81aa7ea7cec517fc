package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spendlog-server/src/db"
	"spendlog-server/src/errs"
	"spendlog-server/src/models"
	"spendlog-server/src/util"
)

func ListExpenses(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		sortBy, order, err := db.ParseSort(r.URL.Query().Get("sort_by"), r.URL.Query().Get("order"))
		if err != nil {
			log.Printf("ERROR: Invalid sort parameters for user %d: %v", userID, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		expenses, err := store.ListExpenses(r.Context(), int(userID), sortBy, order)
		if err != nil {
			log.Printf("ERROR: Failed to list expenses for user %d: %v", userID, err)
			http.Error(w, "failed to list expenses", storeErrorStatus(err))
			return
		}
		if expenses == nil {
			expenses = []models.Expense{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expenses)
	}
}

func CreateExpense(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Description string  `json:"description"`
			Amount      float64 `json:"amount"`
			Date        string  `json:"date"`
			CategoryID  int     `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create expense request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Amount < 0 {
			log.Printf("ERROR: Negative amount in create expense for user %d: %f", userID, req.Amount)
			http.Error(w, "amount must be non-negative", http.StatusBadRequest)
			return
		}
		date, err := util.ParseDate(req.Date)
		if err != nil {
			log.Printf("ERROR: Invalid date in create expense for user %d: %q", userID, req.Date)
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		created, err := store.CreateExpense(r.Context(), &models.Expense{
			UserID:      int(userID),
			CategoryID:  req.CategoryID,
			Amount:      req.Amount,
			Date:        date,
			Description: req.Description,
		})
		if err != nil {
			if errs.Is(err, errs.KindConstraint) {
				log.Printf("ERROR: Unknown category %d in create expense for user %d", req.CategoryID, userID)
				http.Error(w, "category does not exist", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create expense for user %d: %v", userID, err)
			http.Error(w, "failed to create expense", storeErrorStatus(err))
			return
		}

		expenses, err := store.ListExpenses(r.Context(), int(userID), db.SortByDate, db.OrderAsc)
		if err != nil {
			log.Printf("ERROR: Failed to list expenses after create for user %d: %v", userID, err)
			http.Error(w, "failed to list expenses", storeErrorStatus(err))
			return
		}

		log.Printf("INFO: Created expense id %d for user %d", created.ID, userID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"expense":  created,
			"expenses": expenses,
		})
	}
}

func UpdateExpense(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		expenseIDStr := chi.URLParam(r, "expense_id")
		expenseID, err := strconv.Atoi(expenseIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid expense id param: %s", expenseIDStr)
			http.Error(w, "invalid expense id", http.StatusBadRequest)
			return
		}

		var req struct {
			Description string  `json:"description"`
			Amount      float64 `json:"amount"`
			Date        string  `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update expense request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Amount < 0.01 {
			log.Printf("ERROR: Amount below minimum in update expense for user %d: %f", userID, req.Amount)
			http.Error(w, "amount must be at least 0.01", http.StatusBadRequest)
			return
		}
		date, err := util.ParseDate(req.Date)
		if err != nil {
			log.Printf("ERROR: Invalid date in update expense for user %d: %q", userID, req.Date)
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		affected, err := store.UpdateExpense(r.Context(), int(userID), expenseID, req.Description, req.Amount, date)
		if err != nil {
			log.Printf("ERROR: Failed to update expense id %d for user %d: %v", expenseID, userID, err)
			http.Error(w, "failed to update expense", storeErrorStatus(err))
			return
		}
		// Zero rows means the expense does not exist or belongs to
		// someone else; never report that as success.
		if affected == 0 {
			log.Printf("ERROR: Update matched no rows - expense %d, user %d", expenseID, userID)
			http.Error(w, "expense not found", http.StatusNotFound)
			return
		}

		log.Printf("INFO: Updated expense id %d for user %d", expenseID, userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "expense updated successfully",
		})
	}
}

func DeleteExpense(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		expenseIDStr := chi.URLParam(r, "expense_id")
		expenseID, err := strconv.Atoi(expenseIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid expense id param: %s", expenseIDStr)
			http.Error(w, "invalid expense id", http.StatusBadRequest)
			return
		}

		if err := store.DeleteExpense(r.Context(), int(userID), expenseID); err != nil {
			if errs.Is(err, errs.KindNotFound) {
				log.Printf("ERROR: Delete of missing expense %d by user %d", expenseID, userID)
				http.Error(w, "expense not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to delete expense id %d for user %d: %v", expenseID, userID, err)
			http.Error(w, "failed to delete expense", storeErrorStatus(err))
			return
		}

		log.Printf("INFO: Deleted expense id %d for user %d", expenseID, userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "expense deleted",
		})
	}
}

func ListExpensesByDateRange(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		start, err := util.ParseDate(r.URL.Query().Get("start_date"))
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := util.ParseDate(r.URL.Query().Get("end_date"))
		if err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if start.After(end) {
			http.Error(w, "start_date must not be after end_date", http.StatusBadRequest)
			return
		}

		expenses, err := store.ListExpensesByDateRange(r.Context(), int(userID), start, end)
		if err != nil {
			log.Printf("ERROR: Failed to list expenses by range for user %d: %v", userID, err)
			http.Error(w, "failed to list expenses", storeErrorStatus(err))
			return
		}
		if expenses == nil {
			expenses = []models.Expense{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expenses)
	}
}

// RollbackDemo runs the transactional illustration: the amount update is
// applied and rolled back, and the unchanged rows are returned as proof.
func RollbackDemo(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		expenseIDStr := chi.URLParam(r, "expense_id")
		expenseID, err := strconv.Atoi(expenseIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid expense id param: %s", expenseIDStr)
			http.Error(w, "invalid expense id", http.StatusBadRequest)
			return
		}

		var req struct {
			NewAmount float64 `json:"new_amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode rollback demo request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.NewAmount < 0.01 {
			http.Error(w, "new_amount must be at least 0.01", http.StatusBadRequest)
			return
		}

		if err := store.UpdateExpenseWithRollback(r.Context(), int(userID), expenseID, req.NewAmount); err != nil {
			log.Printf("ERROR: Transaction demo failed for user %d, expense %d: %v", userID, expenseID, err)
			http.Error(w, "transaction failed", storeErrorStatus(err))
			return
		}

		expenses, err := store.ListExpenses(r.Context(), int(userID), db.SortByDate, db.OrderAsc)
		if err != nil {
			log.Printf("ERROR: Failed to list expenses after rollback demo for user %d: %v", userID, err)
			http.Error(w, "failed to list expenses", storeErrorStatus(err))
			return
		}
		if expenses == nil {
			expenses = []models.Expense{}
		}

		log.Printf("INFO: Transaction rolled back for user %d, expense %d", userID, expenseID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message":  "transaction rolled back successfully",
			"expenses": expenses,
		})
	}
}
