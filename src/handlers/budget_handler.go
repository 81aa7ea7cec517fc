package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"spendlog-server/src/db"
	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

// SetBudget stores the limit, checks cumulative spend for the category, and
// returns the full alert list for the user whichever way the check went.
func SetBudget(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			CategoryID  int     `json:"category_id"`
			LimitAmount float64 `json:"limit_amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode set budget request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.LimitAmount < 0 {
			log.Printf("ERROR: Negative limit in set budget for user %d: %f", userID, req.LimitAmount)
			http.Error(w, "limit_amount must be non-negative", http.StatusBadRequest)
			return
		}

		status, err := store.SetBudget(r.Context(), int(userID), req.CategoryID, req.LimitAmount)
		if err != nil {
			if errs.Is(err, errs.KindConstraint) {
				log.Printf("ERROR: Unknown category %d in set budget for user %d", req.CategoryID, userID)
				http.Error(w, "category does not exist", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to set budget for user %d: %v", userID, err)
			http.Error(w, "failed to set budget", storeErrorStatus(err))
			return
		}

		alerts, err := store.ListAlerts(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to list alerts for user %d: %v", userID, err)
			http.Error(w, "failed to list alerts", storeErrorStatus(err))
			return
		}
		if alerts == nil {
			alerts = []models.Alert{}
		}

		if status.Exceeded {
			log.Printf("INFO: Budget exceeded for user %d, category %d: spent %.2f against limit %.2f",
				userID, req.CategoryID, status.TotalSpent, req.LimitAmount)
		} else {
			log.Printf("INFO: Budget set for user %d, category %d: spent %.2f within limit %.2f",
				userID, req.CategoryID, status.TotalSpent, req.LimitAmount)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"budget":      status.Budget,
			"total_spent": status.TotalSpent,
			"exceeded":    status.Exceeded,
			"alert":       status.Alert,
			"alerts":      alerts,
		})
	}
}

func GetAllBudgetsForUser(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		budgets, err := store.ListBudgets(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get budgets for user %d: %v", userID, err)
			http.Error(w, "failed to get budgets", storeErrorStatus(err))
			return
		}
		if budgets == nil {
			budgets = []models.Budget{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(budgets)
	}
}

func GetAllAlertsForUser(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		alerts, err := store.ListAlerts(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get alerts for user %d: %v", userID, err)
			http.Error(w, "failed to get alerts", storeErrorStatus(err))
			return
		}
		if alerts == nil {
			alerts = []models.Alert{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(alerts)
	}
}
